package controller

import (
	"fmt"
	"log"
	"net/http"

	"studio-storefront/models"
	"studio-storefront/service"
)

// QuoteController serves a lead's quote through its share token
type QuoteController struct {
	leads *service.LeadService
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(leads *service.LeadService) *QuoteController {
	return &QuoteController{
		leads: leads,
	}
}

// tokenFrom extracts the share token from /quotes/{token}[/action]
func tokenFrom(r *http.Request, action string) (string, bool) {
	parts := pathParts(r.URL.Path, "/quotes/")
	switch {
	case action == "" && len(parts) == 1:
		return parts[0], true
	case action != "" && len(parts) == 2 && parts[1] == action:
		return parts[0], true
	}
	return "", false
}

// GetQuote handles GET /quotes/{token}
// Returns the stored lead exactly as it was priced at checkout
func (c *QuoteController) GetQuote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetQuote: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := tokenFrom(r, "")
	if !ok {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	lead, err := c.leads.ByShareToken(r.Context(), token)
	if err != nil {
		writeError(w, err, "GetQuote")
		return
	}
	writeJSON(w, http.StatusOK, lead, "GetQuote")
}

// RenderQuote handles GET /quotes/{token}/render
// Returns the quote HTML (used by chromedp for PDF generation)
func (c *QuoteController) RenderQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		log.Printf("❌ RenderQuote: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := tokenFrom(r, "render")
	if !ok {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	htmlContent, err := c.leads.RenderHTML(r.Context(), token)
	if err != nil {
		writeError(w, err, "RenderQuote")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		log.Printf("❌ RenderQuote: Error writing HTML response: %v", err)
	}
}

// DownloadPDF handles GET /quotes/{token}/pdf
func (c *QuoteController) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 DownloadPDF: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := tokenFrom(r, "pdf")
	if !ok {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	pdf, lead, err := c.leads.PDF(r.Context(), token)
	if err != nil {
		writeError(w, err, "DownloadPDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="preventivo-%s.pdf"`, lead.ShareToken[:min(8, len(lead.ShareToken))]))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("❌ DownloadPDF: Error writing PDF response: %v", err)
		return
	}
	log.Printf("✅ DownloadPDF: sent %d bytes for lead %s", len(pdf), lead.ID)
}

// GetWhatsApp handles GET /quotes/{token}/whatsapp
// Example response:
//
//	{"message": "Ciao Studio! Sono Giulia ...", "url": "https://wa.me/39333...?text=..."}
func (c *QuoteController) GetWhatsApp(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetWhatsApp: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := tokenFrom(r, "whatsapp")
	if !ok {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	resp, err := c.leads.WhatsApp(r.Context(), token)
	if err != nil {
		writeError(w, err, "GetWhatsApp")
		return
	}
	writeJSON(w, http.StatusOK, resp, "GetWhatsApp")
}

// Share handles POST /quotes/{token}/share
// Uploads the quote PDF to Google Drive; 503 when sharing is not configured
func (c *QuoteController) Share(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Share: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, ok := tokenFrom(r, "share")
	if !ok {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	link, err := c.leads.Share(r.Context(), token)
	if err != nil {
		writeError(w, err, "Share")
		return
	}
	writeJSON(w, http.StatusOK, models.ShareResponse{QuoteURL: link}, "Share")
}

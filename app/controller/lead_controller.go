package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"studio-storefront/models"
	"studio-storefront/service"
)

// LeadController handles the admin dashboard's lead endpoints
type LeadController struct {
	leads *service.LeadService
}

// NewLeadController creates a new LeadController
func NewLeadController(leads *service.LeadService) *LeadController {
	return &LeadController{
		leads: leads,
	}
}

// ListLeads handles GET /admin/leads?status=new&limit=50
func (c *LeadController) ListLeads(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListLeads: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var status models.LeadStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := models.ParseLeadStatus(raw)
		if err != nil {
			log.Printf("❌ ListLeads: Invalid status: %s", raw)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status = parsed
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	resp, err := c.leads.List(r.Context(), status, limit)
	if err != nil {
		writeError(w, err, "ListLeads")
		return
	}

	log.Printf("✅ ListLeads: %d leads", resp.Total)
	writeJSON(w, http.StatusOK, resp, "ListLeads")
}

// GetLead handles GET /admin/leads/{id}
func (c *LeadController) GetLead(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetLead: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := pathParts(r.URL.Path, "/admin/leads/")
	if len(parts) != 1 {
		http.Error(w, "lead id parameter is required", http.StatusBadRequest)
		return
	}

	lead, err := c.leads.ByID(r.Context(), parts[0])
	if err != nil {
		writeError(w, err, "GetLead")
		return
	}
	writeJSON(w, http.StatusOK, lead, "GetLead")
}

// UpdateLeadStatus handles PATCH /admin/leads/{id}
// Example request: {"status": "contacted"}
func (c *LeadController) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UpdateLeadStatus: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := pathParts(r.URL.Path, "/admin/leads/")
	if len(parts) != 1 {
		http.Error(w, "lead id parameter is required", http.StatusBadRequest)
		return
	}

	var req models.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ UpdateLeadStatus: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	status, err := models.ParseLeadStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lead, err := c.leads.UpdateStatus(r.Context(), parts[0], status)
	if err != nil {
		writeError(w, err, "UpdateLeadStatus")
		return
	}

	log.Printf("✅ UpdateLeadStatus: lead %s is now %s", lead.ID, lead.Status)
	writeJSON(w, http.StatusOK, lead, "UpdateLeadStatus")
}

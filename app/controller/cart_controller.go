package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"studio-storefront/models"
	"studio-storefront/service"
)

// CartController handles HTTP requests for cart sessions and checkout
type CartController struct {
	carts    *service.CartService
	checkout *service.CheckoutService
}

// NewCartController creates a new CartController
func NewCartController(carts *service.CartService, checkout *service.CheckoutService) *CartController {
	return &CartController{
		carts:    carts,
		checkout: checkout,
	}
}

// CreateCart handles POST /cart
// Example response:
//
//	{"id": "5f0c…", "items": [], "pricing": {"subtotal": 0, ...}, "conflicts": []}
func (c *CartController) CreateCart(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateCart: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusCreated, c.carts.Create(), "CreateCart")
}

// GetCart handles GET /cart/{id}
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetCart: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r.URL.Path, "/cart/")
	if len(parts) != 1 {
		http.Error(w, "cart id parameter is required", http.StatusBadRequest)
		return
	}

	resp, err := c.carts.Get(parts[0])
	if err != nil {
		writeError(w, err, "GetCart")
		return
	}
	writeJSON(w, http.StatusOK, resp, "GetCart")
}

// DeleteCart handles DELETE /cart/{id}
func (c *CartController) DeleteCart(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 DeleteCart: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r.URL.Path, "/cart/")
	if len(parts) != 1 {
		http.Error(w, "cart id parameter is required", http.StatusBadRequest)
		return
	}

	if err := c.carts.Delete(parts[0]); err != nil {
		writeError(w, err, "DeleteCart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /cart/{id}/items
// Example request:
//
//	POST /cart/5f0c…/items
//	{"itemId": "riprese-drone"}
//
// Blocked items answer 409 with the reason, e.g. "item unavailable: requires: Videomaker"
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r.URL.Path, "/cart/")
	if len(parts) != 2 || parts[1] != "items" {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ AddItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.ItemID == "" {
		http.Error(w, "itemId is required", http.StatusBadRequest)
		return
	}

	resp, err := c.carts.AddItem(parts[0], req.ItemID)
	if err != nil {
		writeError(w, err, "AddItem")
		return
	}
	writeJSON(w, http.StatusOK, resp, "AddItem")
}

// RemoveItem handles DELETE /cart/{id}/items/{itemId}
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 RemoveItem: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r.URL.Path, "/cart/")
	if len(parts) != 3 || parts[1] != "items" {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	resp, err := c.carts.RemoveItem(parts[0], parts[2])
	if err != nil {
		writeError(w, err, "RemoveItem")
		return
	}
	writeJSON(w, http.StatusOK, resp, "RemoveItem")
}

// Checkout handles POST /cart/{id}/checkout
// Example request:
//
//	{
//	  "customer": {"name": "Giulia Bianchi", "email": "giulia@example.it", "eventDate": "2026-06-20"},
//	  "gdprConsent": {"accepted": true}
//	}
//
// Example response:
//
//	{"leadId": "…", "shareToken": "…", "quoteUrl": "…/quotes/…/render", "whatsappUrl": "https://wa.me/…", "pricing": {...}}
func (c *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Checkout: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := pathParts(r.URL.Path, "/cart/")
	if len(parts) != 2 || parts[1] != "checkout" {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Checkout: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	resp, err := c.checkout.Checkout(r.Context(), parts[0], req)
	if err != nil {
		writeError(w, err, "Checkout")
		return
	}

	log.Printf("✅ Checkout: lead %s created", resp.LeadID)
	writeJSON(w, http.StatusCreated, resp, "Checkout")
}

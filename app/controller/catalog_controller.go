package controller

import (
	"log"
	"net/http"
	"strings"

	"studio-storefront/service"
)

// CatalogController handles HTTP requests for the storefront catalog
type CatalogController struct {
	carts *service.CartService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(carts *service.CartService) *CatalogController {
	return &CatalogController{
		carts: carts,
	}
}

// GetCatalog handles GET /catalog?cartId=...
// Without cartId every item is assessed against an empty selection.
// Example response:
//
//	{
//	  "version": 3,
//	  "items": [
//	    {"id": "riprese-drone", "title": "Riprese Drone", "price": 300, "available": false, "reason": "requires: Videomaker"}
//	  ],
//	  "globalDiscount": {"isActive": true, "type": "percent", "value": 10}
//	}
func (c *CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetCatalog: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GetCatalog: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cartID := strings.TrimSpace(r.URL.Query().Get("cartId"))
	resp, err := c.carts.Catalog(cartID)
	if err != nil {
		writeError(w, err, "GetCatalog")
		return
	}

	log.Printf("✅ GetCatalog: %d items (settings v%d)", len(resp.Items), resp.Version)
	writeJSON(w, http.StatusOK, resp, "GetCatalog")
}

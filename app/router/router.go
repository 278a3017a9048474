package router

import (
	"net/http"
	"strings"

	"studio-storefront/app/controller"
)

type Controllers struct {
	Catalog  *controller.CatalogController
	Cart     *controller.CartController
	Quote    *controller.QuoteController
	Lead     *controller.LeadController
	Settings *controller.SettingsController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every endpoint on mux (http.DefaultServeMux in production)
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Catalog with item statuses, optionally for a cart
	mux.HandleFunc("/catalog", controllers.Catalog.GetCatalog)

	// Create cart
	mux.HandleFunc("/cart", controllers.Cart.CreateCart)

	// Cart actions
	mux.HandleFunc("/cart/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/cart/"), "/")
		parts := strings.Split(path, "/")

		switch {
		// POST /cart/:id/checkout
		case len(parts) == 2 && parts[1] == "checkout":
			controllers.Cart.Checkout(w, r)
		// POST /cart/:id/items
		case len(parts) == 2 && parts[1] == "items":
			controllers.Cart.AddItem(w, r)
		// DELETE /cart/:id/items/:itemId
		case len(parts) == 3 && parts[1] == "items":
			controllers.Cart.RemoveItem(w, r)
		case len(parts) == 1 && parts[0] != "":
			if r.Method == http.MethodDelete {
				controllers.Cart.DeleteCart(w, r)
				return
			}
			controllers.Cart.GetCart(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	// Public quote pages by share token
	mux.HandleFunc("/quotes/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/quotes/"), "/")
		parts := strings.Split(path, "/")

		if len(parts) == 1 && parts[0] != "" {
			controllers.Quote.GetQuote(w, r)
			return
		}
		if len(parts) != 2 {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		switch parts[1] {
		case "render":
			controllers.Quote.RenderQuote(w, r)
		case "pdf":
			controllers.Quote.DownloadPDF(w, r)
		case "whatsapp":
			controllers.Quote.GetWhatsApp(w, r)
		case "share":
			controllers.Quote.Share(w, r)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})

	// Admin: leads
	mux.HandleFunc("/admin/leads", controllers.Lead.ListLeads)

	// Lead by ID - handles both GET (get) and PATCH (status update)
	mux.HandleFunc("/admin/leads/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Lead.GetLead(w, r)
		} else if r.Method == http.MethodPatch {
			controllers.Lead.UpdateLeadStatus(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Admin: settings
	mux.HandleFunc("/admin/settings", controllers.Settings.GetStatus)
	mux.HandleFunc("/admin/settings/reload", controllers.Settings.Reload)
}

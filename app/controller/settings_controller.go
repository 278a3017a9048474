package controller

import (
	"log"
	"net/http"

	"studio-storefront/service"
)

// SettingsController exposes the settings synchronization to the admin dashboard
type SettingsController struct {
	settings service.SettingsServiceInterface
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settings service.SettingsServiceInterface) *SettingsController {
	return &SettingsController{
		settings: settings,
	}
}

// Reload handles POST /admin/settings/reload
// Reloads catalog, rules and discounts now. A failed load keeps the active settings
// and answers 502 with the status.
// Example response:
//
//	{"source": "database", "version": 4, "items": 8, "rules": 3, "issues": []}
func (c *SettingsController) Reload(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ReloadSettings: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, changed, err := c.settings.Sync(r.Context())
	if err != nil {
		log.Printf("❌ ReloadSettings: %v", err)
		writeJSON(w, http.StatusBadGateway, c.settings.Status(), "ReloadSettings")
		return
	}

	log.Printf("✅ ReloadSettings: changed=%t", changed)
	writeJSON(w, http.StatusOK, c.settings.Status(), "ReloadSettings")
}

// GetStatus handles GET /admin/settings
func (c *SettingsController) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, c.settings.Status(), "GetSettingsStatus")
}

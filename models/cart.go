package models

import "studio-storefront/pricing"

// CartResponse is the state of a cart session as returned by every /cart endpoint
// Example response:
//
//	{
//	  "id": "5f0c…",
//	  "items": [{"id": "videomaker", "title": "Videomaker", "price": 850}],
//	  "pricing": {"subtotal": 850, "finalTotal": 765, ...},
//	  "statuses": {"riprese-drone": {"available": true, "isGift": false}},
//	  "conflicts": []
//	}
type CartResponse struct {
	ID        string                        `json:"id"`
	Items     []pricing.CartItem            `json:"items"`
	Pricing   pricing.Breakdown             `json:"pricing"`
	Statuses  map[string]pricing.ItemStatus `json:"statuses"`
	Conflicts []string                      `json:"conflicts"`
	Version   uint64                        `json:"settingsVersion"`
	ExpiresAt string                        `json:"expiresAt"`
}

// AddItemRequest is the body of POST /cart/{id}/items
// Example: {"itemId": "videomaker"}
type AddItemRequest struct {
	ItemID string `json:"itemId"`
}

// CheckoutRequest is the body of POST /cart/{id}/checkout
// Example:
//
//	{
//	  "customer": {"name": "Giulia Bianchi", "email": "giulia@example.it", "eventDate": "2026-06-20"},
//	  "gdprConsent": {"accepted": true, "marketing": false}
//	}
type CheckoutRequest struct {
	Customer    Customer    `json:"customer"`
	GDPRConsent GDPRConsent `json:"gdprConsent"`
}

// CheckoutResponse is returned once a lead has been stored
type CheckoutResponse struct {
	LeadID        string            `json:"leadId"`
	ShareToken    string            `json:"shareToken"`
	QuoteURL      string            `json:"quoteUrl"`
	WhatsAppURL   string            `json:"whatsappUrl,omitempty"`
	Pricing       pricing.Breakdown `json:"pricing"`
	SelectedItems []SelectedItem    `json:"selectedItems"`
}

// WhatsAppResponse is returned by GET /quotes/{token}/whatsapp
type WhatsAppResponse struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// ShareResponse is returned by POST /quotes/{token}/share
type ShareResponse struct {
	QuoteURL string `json:"quoteUrl"`
}

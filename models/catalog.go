package models

import "studio-storefront/pricing"

// CatalogItemView is a catalog item with its availability for the current selection
type CatalogItemView struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Category      pricing.Category `json:"category"`
	CategoryLabel string           `json:"categoryLabel"`
	Price         int64            `json:"price"`
	OriginalPrice int64            `json:"originalPrice,omitempty"`
	Selected      bool             `json:"selected"`
	Available     bool             `json:"available"`
	Reason        string           `json:"reason,omitempty"`
	IsGift        bool             `json:"isGift"`
}

// CatalogResponse represents the response for GET /catalog
// Example response:
//
//	{
//	  "version": 3,
//	  "items": [{"id": "videomaker", "title": "Videomaker", "price": 850, "available": true}],
//	  "globalDiscount": {"isActive": true, "type": "percent", "value": 10}
//	}
type CatalogResponse struct {
	Version        uint64            `json:"version"`
	Items          []CatalogItemView `json:"items"`
	GlobalDiscount *pricing.Discount `json:"globalDiscount,omitempty"`
}

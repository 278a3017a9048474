package repository

import (
	"context"

	"studio-storefront/models"
	"studio-storefront/pricing"
)

// CatalogRepositoryInterface defines the contract for catalog item storage
type CatalogRepositoryInterface interface {
	ListItems(ctx context.Context) ([]pricing.CatalogItem, error)
	UpsertItem(ctx context.Context, item pricing.CatalogItem) error
}

// RuleRepositoryInterface defines the contract for selection rule storage
type RuleRepositoryInterface interface {
	ListRules(ctx context.Context) ([]pricing.RuleSpec, error)
	UpsertRule(ctx context.Context, rule pricing.RuleSpec) error
}

// SettingsRepositoryInterface defines the contract for studio-wide settings such as discounts
type SettingsRepositoryInterface interface {
	// GetDiscounts returns the stored discount configuration; found is false when none was saved
	GetDiscounts(ctx context.Context) (cfg pricing.DiscountConfig, found bool, err error)
	SaveDiscounts(ctx context.Context, cfg pricing.DiscountConfig) error
}

// LeadRepositoryInterface defines the contract for lead storage
type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	GetByShareToken(ctx context.Context, token string) (*models.Lead, error)
	// List returns leads newest first; an empty status lists every status
	List(ctx context.Context, status models.LeadStatus, limit int) ([]models.Lead, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error)
	SetQuoteURL(ctx context.Context, id string, quoteURL string) error
}

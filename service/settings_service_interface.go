package service

import (
	"context"
	"time"

	"studio-storefront/pricing"
)

// SettingsSource provides the raw studio configuration (catalog, rules, discounts)
type SettingsSource interface {
	Name() string
	Load(ctx context.Context) (*pricing.Settings, error)
}

// SettingsServiceInterface defines the contract for pushing configuration into the pricing engine
type SettingsServiceInterface interface {
	// Sync loads settings from the source and activates them. changed is false when the
	// loaded settings equal the active ones, in which case no new snapshot is built.
	Sync(ctx context.Context) (snapshot *pricing.Snapshot, changed bool, err error)
	Watch(ctx context.Context, interval time.Duration)
	Status() SettingsStatus
}

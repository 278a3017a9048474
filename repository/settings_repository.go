package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"studio-storefront/db"
	"studio-storefront/pricing"
)

const discountsKey = "discounts"

// SettingsRepository handles the studio_settings key/value table
type SettingsRepository struct{}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Ensure SettingsRepository implements SettingsRepositoryInterface
var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)

// GetDiscounts reads the discount configuration. Dates inside the stored JSON may be
// strings, epoch numbers or timestamp objects; malformed ones disable their discount.
func (r *SettingsRepository) GetDiscounts(ctx context.Context) (pricing.DiscountConfig, bool, error) {
	var value string
	err := db.Conn(ctx).QueryRowContext(ctx, db.Rebind(`SELECT value FROM studio_settings WHERE key = $1`), discountsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return pricing.DiscountConfig{}, false, nil
	}
	if err != nil {
		log.Printf("❌ GetDiscounts: Error fetching discounts: %v", err)
		return pricing.DiscountConfig{}, false, fmt.Errorf("failed to fetch discounts: %w", err)
	}

	var cfg pricing.DiscountConfig
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		log.Printf("❌ GetDiscounts: stored discounts are not valid JSON: %v", err)
		return pricing.DiscountConfig{}, false, fmt.Errorf("failed to decode discounts: %w", err)
	}
	return cfg, true, nil
}

// SaveDiscounts stores the discount configuration
func (r *SettingsRepository) SaveDiscounts(ctx context.Context, cfg pricing.DiscountConfig) error {
	value, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode discounts: %w", err)
	}

	query := db.Rebind(`
		INSERT INTO studio_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := db.Conn(ctx).ExecContext(ctx, query, discountsKey, string(value), time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Printf("❌ SaveDiscounts: Error saving discounts: %v", err)
		return fmt.Errorf("failed to save discounts: %w", err)
	}
	log.Printf("✅ SaveDiscounts: discounts updated")
	return nil
}

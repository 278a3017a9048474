package repository

import (
	"context"
	"fmt"
	"log"
	"strings"

	"studio-storefront/db"
	"studio-storefront/pricing"
)

// CatalogRepository handles database operations for catalog items
type CatalogRepository struct{}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

// ListItems returns every stored item, inactive ones included; the pricing catalog filters them
func (r *CatalogRepository) ListItems(ctx context.Context) ([]pricing.CatalogItem, error) {
	query := `
		SELECT id, title, category, price, original_price, active, sort_order
		FROM catalog_items
		ORDER BY sort_order ASC, id ASC
	`

	rows, err := db.Conn(ctx).QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ ListItems: Error querying catalog items: %v", err)
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []pricing.CatalogItem
	for rows.Next() {
		var item pricing.CatalogItem
		var category string
		if err := rows.Scan(&item.ID, &item.Title, &category, &item.Price, &item.OriginalPrice, &item.Active, &item.SortOrder); err != nil {
			log.Printf("❌ ListItems: Error scanning catalog item: %v", err)
			continue
		}
		item.Category = pricing.Category(strings.ToLower(strings.TrimSpace(category)))
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog items: %w", err)
	}

	log.Printf("✅ ListItems: Loaded %d catalog items", len(items))
	return items, nil
}

// UpsertItem inserts or replaces a catalog item by id
func (r *CatalogRepository) UpsertItem(ctx context.Context, item pricing.CatalogItem) error {
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("catalog item id is required")
	}

	query := db.Rebind(`
		INSERT INTO catalog_items (id, title, category, price, original_price, active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			price = excluded.price,
			original_price = excluded.original_price,
			active = excluded.active,
			sort_order = excluded.sort_order
	`)

	_, err := db.Conn(ctx).ExecContext(ctx, query,
		item.ID, item.Title, string(item.Category), item.Price, item.OriginalPrice, item.Active, item.SortOrder)
	if err != nil {
		log.Printf("❌ UpsertItem: Error saving catalog item %s: %v", item.ID, err)
		return fmt.Errorf("failed to save catalog item: %w", err)
	}
	return nil
}

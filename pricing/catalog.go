package pricing

import (
	"log"
	"sort"
)

// Category classifies a catalog item
type Category string

const (
	CategoryService Category = "service"
	CategoryProduct Category = "product"
)

// CatalogItem is a purchasable unit as supplied by the catalog provider.
// Price is the current list price and may already reflect an item-level discount;
// OriginalPrice is the pre-discount reference price (0 when the item is not discounted).
type CatalogItem struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Category      Category `json:"category" yaml:"category"`
	Price         int64    `json:"price" yaml:"price"`
	OriginalPrice int64    `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Active        bool     `json:"active" yaml:"active"`
	SortOrder     int      `json:"sortOrder" yaml:"sortOrder"`
}

// ReferencePrice returns the price used as the "before discount" value
func (i CatalogItem) ReferencePrice() int64 {
	if i.OriginalPrice > i.Price {
		return i.OriginalPrice
	}
	return i.Price
}

// Catalog is the set of active items, ordered by SortOrder then ID.
type Catalog struct {
	items []CatalogItem
	index map[string]int
}

// NewCatalog builds a Catalog from provider data. Inactive items are dropped;
// duplicate ids keep the first occurrence.
func NewCatalog(items []CatalogItem) *Catalog {
	c := &Catalog{index: make(map[string]int, len(items))}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !item.Active {
			continue
		}
		if item.ID == "" {
			log.Printf("⚠️ Catalog: skipping item with empty id (title=%q)", item.Title)
			continue
		}
		if seen[item.ID] {
			log.Printf("⚠️ Catalog: duplicate item id %s, keeping first occurrence", item.ID)
			continue
		}
		seen[item.ID] = true
		c.items = append(c.items, item)
	}

	sort.SliceStable(c.items, func(i, j int) bool {
		if c.items[i].SortOrder != c.items[j].SortOrder {
			return c.items[i].SortOrder < c.items[j].SortOrder
		}
		return c.items[i].ID < c.items[j].ID
	})
	for i, item := range c.items {
		c.index[item.ID] = i
	}
	return c
}

// Get returns the active item with the given id
func (c *Catalog) Get(id string) (CatalogItem, bool) {
	if c == nil {
		return CatalogItem{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return CatalogItem{}, false
	}
	return c.items[i], true
}

// Has reports whether id is an active catalog item
func (c *Catalog) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Items returns a copy of the active items in display order
func (c *Catalog) Items() []CatalogItem {
	if c == nil {
		return nil
	}
	out := make([]CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of active items
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// position returns the display position of id, or -1 when it is not in the catalog
func (c *Catalog) position(id string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// sortIDs orders ids by catalog position; unknown ids go last, by id
func (c *Catalog) sortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		pi, pj := c.position(ids[i]), c.position(ids[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		}
		return ids[i] < ids[j]
	})
}

// titles maps ids to titles, falling back to the id itself
func (c *Catalog) titles(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if item, ok := c.Get(id); ok && item.Title != "" {
			out = append(out, item.Title)
			continue
		}
		out = append(out, id)
	}
	return out
}

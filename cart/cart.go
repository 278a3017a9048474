package cart

import (
	"log"
	"time"

	"studio-storefront/pricing"
)

// Cart owns a customer's current selection. Every derived value (availability,
// gifts, prices) comes from the rules evaluator and the pricing calculator; the cart
// never computes prices itself.
//
// A Cart is not safe for concurrent use; callers serialize mutations.
type Cart struct {
	snapshot  *pricing.Snapshot
	clock     func() time.Time
	items     map[string]*pricing.CartItem
	order     []string
	statuses  map[string]pricing.ItemStatus
	breakdown pricing.Breakdown
}

// New creates an empty cart bound to a settings snapshot. A nil clock means time.Now.
func New(snapshot *pricing.Snapshot, clock func() time.Time) *Cart {
	if snapshot == nil {
		snapshot = pricing.NewSnapshot(pricing.Settings{})
	}
	if clock == nil {
		clock = time.Now
	}
	c := &Cart{
		snapshot: snapshot,
		clock:    clock,
		items:    make(map[string]*pricing.CartItem),
	}
	c.recompute()
	return c
}

// Add selects a catalog item. It returns false when the item is unknown, already
// selected or currently unavailable.
func (c *Cart) Add(itemID string) bool {
	item, ok := c.snapshot.Catalog.Get(itemID)
	if !ok {
		log.Printf("❌ Cart.Add: item %s is not in the catalog", itemID)
		return false
	}
	if _, exists := c.items[itemID]; exists {
		return false
	}
	status := c.statuses[itemID]
	if !status.Available {
		log.Printf("⚠️ Cart.Add: item %s unavailable (%s)", itemID, status.Reason)
		return false
	}

	entry := &pricing.CartItem{
		ID:            item.ID,
		Title:         item.Title,
		Category:      item.Category,
		Price:         item.Price,
		OriginalPrice: item.ReferencePrice(),
	}
	if status.IsGift {
		entry.Price = 0
		entry.OriginalPrice = status.GiftOriginalPrice
	}
	c.items[itemID] = entry
	c.order = append(c.order, itemID)
	c.recompute()
	return true
}

// Remove deselects an item. It returns false when the item was not selected.
func (c *Cart) Remove(itemID string) bool {
	if _, exists := c.items[itemID]; !exists {
		return false
	}
	delete(c.items, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.recompute()
	return true
}

// Clear empties the selection
func (c *Cart) Clear() {
	c.items = make(map[string]*pricing.CartItem)
	c.order = nil
	c.recompute()
}

// ApplySnapshot rebinds the cart to newer settings. Selected items are kept, including
// ones that left the catalog or became unavailable; they surface through Conflicts.
func (c *Cart) ApplySnapshot(snapshot *pricing.Snapshot) {
	if snapshot == nil || snapshot == c.snapshot {
		return
	}
	c.snapshot = snapshot
	c.recompute()
}

// Snapshot returns the settings snapshot the cart is priced against
func (c *Cart) Snapshot() *pricing.Snapshot {
	return c.snapshot
}

// Refresh reprices against the clock, picking up discounts that started or ended
func (c *Cart) Refresh() {
	c.recompute()
}

// Breakdown returns the canonical breakdown of the current selection
func (c *Cart) Breakdown() pricing.Breakdown {
	return c.breakdown
}

// IsAvailable reports whether the item may currently be added
func (c *Cart) IsAvailable(itemID string) bool {
	status, ok := c.statuses[itemID]
	return ok && status.Available
}

// UnavailableReason returns why an item is blocked, or "" when it is available
func (c *Cart) UnavailableReason(itemID string) string {
	status, ok := c.statuses[itemID]
	if !ok {
		return "not in catalog"
	}
	return status.Reason
}

// Status returns the evaluated status of an item
func (c *Cart) Status(itemID string) (pricing.ItemStatus, bool) {
	status, ok := c.statuses[itemID]
	return status, ok
}

// Statuses returns a copy of every catalog item's status
func (c *Cart) Statuses() map[string]pricing.ItemStatus {
	out := make(map[string]pricing.ItemStatus, len(c.statuses))
	for id, s := range c.statuses {
		out[id] = s
	}
	return out
}

// Items returns copies of the selected items in insertion order
func (c *Cart) Items() []pricing.CartItem {
	out := make([]pricing.CartItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id])
	}
	return out
}

// IDs returns the selected item ids in insertion order
func (c *Cart) IDs() []string {
	return append([]string(nil), c.order...)
}

// Contains reports whether the item is selected
func (c *Cart) Contains(itemID string) bool {
	_, ok := c.items[itemID]
	return ok
}

// Len returns the number of selected items
func (c *Cart) Len() int {
	return len(c.order)
}

// Conflicts returns selected items that the current rules mark unavailable
func (c *Cart) Conflicts() []string {
	var out []string
	for _, id := range c.order {
		if !c.IsAvailable(id) {
			out = append(out, id)
		}
	}
	return out
}

// recompute is the single path that derives statuses, re-syncs stored gift prices and
// reprices. It runs after every mutation.
func (c *Cart) recompute() {
	c.statuses = c.snapshot.Evaluate(c.order)

	for _, id := range c.order {
		entry := c.items[id]
		status := c.statuses[id]
		wasGift := entry.Price == 0 && entry.OriginalPrice > 0

		switch {
		case status.IsGift:
			entry.Price = 0
			entry.OriginalPrice = status.GiftOriginalPrice
		case wasGift:
			if item, ok := c.snapshot.Catalog.Get(id); ok {
				entry.Price = item.Price
				entry.OriginalPrice = item.ReferencePrice()
			}
		}
	}

	c.breakdown = pricing.Calculate(c.Items(), c.snapshot.Discounts, c.statuses, c.clock())
}

package pricing

import "strings"

// ItemStatus is the availability and gift state of one catalog item for a given selection
type ItemStatus struct {
	Available         bool     `json:"available"`
	Reason            string   `json:"reason,omitempty"`
	BlockedBy         []string `json:"blockedBy,omitempty"`
	IsGift            bool     `json:"isGift"`
	GiftOriginalPrice int64    `json:"giftOriginalPrice,omitempty"`
}

const (
	reasonRequires = "requires: "
	reasonExcludes = "not combinable with: "
)

type evaluation struct {
	catalog   *Catalog
	selected  map[string]bool
	missing   map[string][]string
	excluders map[string][]string
	gifts     map[string]bool
}

func (ev *evaluation) addMissing(itemID, requiredID string) {
	for _, id := range ev.missing[itemID] {
		if id == requiredID {
			return
		}
	}
	ev.missing[itemID] = append(ev.missing[itemID], requiredID)
}

func (ev *evaluation) addExcluder(itemID, excluderID string) {
	for _, id := range ev.excluders[itemID] {
		if id == excluderID {
			return
		}
	}
	ev.excluders[itemID] = append(ev.excluders[itemID], excluderID)
}

func (ev *evaluation) markGift(itemID string) {
	ev.gifts[itemID] = true
}

// Evaluate computes the status of every active catalog item for the given selection.
//
// Every item starts available. Requires rules block an item while any prerequisite is
// missing; Excludes rules block it while any excluded item is selected, and their reason
// replaces a requirement reason. BundleGift rules mark gifts independently of
// availability. Selected items are assessed like any other so callers can surface
// conflicts; nothing is removed from the selection. Reasons list items in catalog order.
func Evaluate(selection []string, rules *RuleSet, catalog *Catalog) map[string]ItemStatus {
	ev := &evaluation{
		catalog:   catalog,
		selected:  make(map[string]bool, len(selection)),
		missing:   make(map[string][]string),
		excluders: make(map[string][]string),
		gifts:     make(map[string]bool),
	}
	for _, id := range selection {
		if catalog.Has(id) {
			ev.selected[id] = true
		}
	}

	for _, rule := range rules.Rules() {
		rule.apply(ev)
	}

	statuses := make(map[string]ItemStatus, catalog.Len())
	for _, item := range catalog.Items() {
		status := ItemStatus{Available: true}

		if excl := ev.excluders[item.ID]; len(excl) > 0 {
			blocked := append([]string(nil), excl...)
			catalog.sortIDs(blocked)
			status.Available = false
			status.BlockedBy = blocked
			status.Reason = reasonExcludes + strings.Join(catalog.titles(blocked), ", ")
		} else if miss := ev.missing[item.ID]; len(miss) > 0 {
			blocked := append([]string(nil), miss...)
			catalog.sortIDs(blocked)
			status.Available = false
			status.BlockedBy = blocked
			status.Reason = reasonRequires + strings.Join(catalog.titles(blocked), ", ")
		}

		if ev.gifts[item.ID] {
			status.IsGift = true
			status.GiftOriginalPrice = item.Price
		}
		statuses[item.ID] = status
	}
	return statuses
}

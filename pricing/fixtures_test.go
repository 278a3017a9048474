package pricing

import "time"

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func weddingCatalog() []CatalogItem {
	return []CatalogItem{
		{ID: "servizio-fotografico", Title: "Servizio Fotografico", Category: CategoryService, Price: 600, Active: true, SortOrder: 1},
		{ID: "videomaker", Title: "Videomaker", Category: CategoryService, Price: 850, Active: true, SortOrder: 2},
		{ID: "album-30x40", Title: "Album 30x40", Category: CategoryProduct, Price: 800, Active: true, SortOrder: 3},
		{ID: "videoproiezione", Title: "VideoProiezione", Category: CategoryService, Price: 200, Active: true, SortOrder: 4},
		{ID: "riprese-drone", Title: "Riprese Drone", Category: CategoryService, Price: 300, Active: true, SortOrder: 5},
		{ID: "album-genitori", Title: "Album Genitori", Category: CategoryProduct, Price: 300, Active: true, SortOrder: 6},
		{ID: "foto-invitati", Title: "Foto per Invitati", Category: CategoryService, Price: 450, Active: true, SortOrder: 7},
		{ID: "book-prematrimoniale", Title: "Book Prematrimoniale", Category: CategoryService, Price: 350, OriginalPrice: 400, Active: true, SortOrder: 8},
		{ID: "archivio", Title: "Archivio Storico", Category: CategoryProduct, Price: 90, Active: false, SortOrder: 9},
	}
}

var bundleTriggers = []string{
	"servizio-fotografico", "videomaker", "album-30x40",
	"videoproiezione", "riprese-drone", "album-genitori",
}

func weddingRules() []RuleSpec {
	return []RuleSpec{
		{ID: "gift-invitati", Type: RuleBundleGift, TriggerIDs: bundleTriggers, GiftItemID: "foto-invitati"},
		{ID: "drone-needs-video", Type: RuleRequires, ItemID: "riprese-drone", RequiredIDs: []string{"videomaker"}},
		{ID: "genitori-needs-album", Type: RuleRequires, ItemID: "album-genitori", RequiredIDs: []string{"album-30x40", "servizio-fotografico"}},
	}
}

func weddingSnapshot(discounts DiscountConfig) *Snapshot {
	return NewSnapshot(Settings{
		Catalog:   weddingCatalog(),
		Rules:     weddingRules(),
		Discounts: discounts,
	})
}

func percentGlobal(value float64) DiscountConfig {
	return DiscountConfig{Global: Discount{IsActive: true, Type: DiscountPercent, Value: value}}
}

func instantPtr(t time.Time) *Instant {
	i := NewInstant(t)
	return &i
}

// cartItemsFor mirrors how the cart stores items at add time
func cartItemsFor(s *Snapshot, statuses map[string]ItemStatus, ids ...string) []CartItem {
	out := make([]CartItem, 0, len(ids))
	for _, id := range ids {
		item, _ := s.Catalog.Get(id)
		ci := CartItem{ID: item.ID, Title: item.Title, Category: item.Category, Price: item.Price, OriginalPrice: item.ReferencePrice()}
		if st := statuses[id]; st.IsGift {
			ci.Price = 0
			ci.OriginalPrice = st.GiftOriginalPrice
		}
		out = append(out, ci)
	}
	return out
}

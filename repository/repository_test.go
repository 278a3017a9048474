package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-storefront/db"
	"studio-storefront/models"
	"studio-storefront/pricing"
)

func setupDB(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, db.Open("sqlite", filepath.Join(t.TempDir(), "storefront.db")))
	t.Cleanup(func() { db.CloseDB() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	return ctx
}

func TestCatalogRepository_UpsertAndList(t *testing.T) {
	ctx := setupDB(t)
	repo := NewCatalogRepository()

	require.NoError(t, repo.UpsertItem(ctx, pricing.CatalogItem{ID: "videomaker", Title: "Videomaker", Category: pricing.CategoryService, Price: 850, Active: true, SortOrder: 2}))
	require.NoError(t, repo.UpsertItem(ctx, pricing.CatalogItem{ID: "book", Title: "Book", Category: pricing.CategoryService, Price: 350, OriginalPrice: 400, Active: true, SortOrder: 1}))
	require.NoError(t, repo.UpsertItem(ctx, pricing.CatalogItem{ID: "videomaker", Title: "Videomaker 4K", Category: pricing.CategoryService, Price: 900, Active: false, SortOrder: 2}))

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "book", items[0].ID)
	assert.Equal(t, int64(400), items[0].OriginalPrice)
	assert.Equal(t, "Videomaker 4K", items[1].Title)
	assert.False(t, items[1].Active)

	assert.Error(t, repo.UpsertItem(ctx, pricing.CatalogItem{Title: "no id"}))
}

func TestRuleRepository_RoundTripsEveryKind(t *testing.T) {
	ctx := setupDB(t)
	repo := NewRuleRepository()

	rules := []pricing.RuleSpec{
		{ID: "a-requires", Type: pricing.RuleRequires, ItemID: "riprese-drone", RequiredIDs: []string{"videomaker"}},
		{ID: "b-excludes", Type: pricing.RuleExcludes, ItemID: "album", ExcludedIDs: []string{"album-deluxe"}},
		{ID: "c-gift", Type: pricing.RuleBundleGift, GiftItemID: "foto-invitati", TriggerIDs: []string{"servizio", "videomaker"}},
	}
	for _, rule := range rules {
		require.NoError(t, repo.UpsertRule(ctx, rule))
	}

	stored, err := repo.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules, stored)
}

func TestRuleRepository_RuleWithoutIDUsesLabel(t *testing.T) {
	ctx := setupDB(t)
	repo := NewRuleRepository()

	require.NoError(t, repo.UpsertRule(ctx, pricing.RuleSpec{Type: pricing.RuleRequires, ItemID: "b", RequiredIDs: []string{"a"}}))

	stored, err := repo.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "requires:b", stored[0].ID)
	assert.Equal(t, []string{"a"}, stored[0].RequiredIDs)
}

func TestSettingsRepository_Discounts(t *testing.T) {
	ctx := setupDB(t)
	repo := NewSettingsRepository()

	_, found, err := repo.GetDiscounts(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	end := pricing.NewInstant(time.Date(2030, 12, 31, 23, 0, 0, 0, time.UTC))
	cfg := pricing.DiscountConfig{
		Global: pricing.Discount{IsActive: true, Type: pricing.DiscountPercent, Value: 10, EndDate: &end},
		PerItemOverrides: map[string]pricing.Discount{
			"videomaker": {IsActive: true, Type: pricing.DiscountFixed, Value: 100},
		},
	}
	require.NoError(t, repo.SaveDiscounts(ctx, cfg))
	cfg.Global.Value = 15
	require.NoError(t, repo.SaveDiscounts(ctx, cfg))

	stored, found, err := repo.GetDiscounts(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, float64(15), stored.Global.Value)
	require.NotNil(t, stored.Global.EndDate)
	assert.True(t, end.Time().Equal(stored.Global.EndDate.Time()))
	assert.Equal(t, float64(100), stored.PerItemOverrides["videomaker"].Value)
}

func newTestLead(t *testing.T, name string, createdAt time.Time) *models.Lead {
	t.Helper()
	items := []pricing.CartItem{
		{ID: "videomaker", Title: "Videomaker", Category: pricing.CategoryService, Price: 850, OriginalPrice: 850},
		{ID: "foto-invitati", Title: "Foto per Invitati", Category: pricing.CategoryService, Price: 0, OriginalPrice: 450},
	}
	discounts := pricing.DiscountConfig{Global: pricing.Discount{IsActive: true, Type: pricing.DiscountPercent, Value: 10}}
	breakdown := pricing.Calculate(items, discounts, nil, createdAt)

	lead, err := models.NewLead(models.Customer{Name: name, Email: "sposi@example.it"}, models.GDPRConsent{Accepted: true}, items, breakdown, createdAt)
	require.NoError(t, err)
	return lead
}

func TestLeadRepository_CreateAndReadBackByteIdentical(t *testing.T) {
	ctx := setupDB(t)
	repo := NewLeadRepository()

	lead := newTestLead(t, "Giulia Bianchi", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, lead))

	byID, err := repo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	byToken, err := repo.GetByShareToken(ctx, lead.ShareToken)
	require.NoError(t, err)

	want, err := json.Marshal(lead)
	require.NoError(t, err)
	gotByID, err := json.Marshal(byID)
	require.NoError(t, err)
	gotByToken, err := json.Marshal(byToken)
	require.NoError(t, err)

	assert.Equal(t, string(want), string(gotByID))
	assert.Equal(t, string(want), string(gotByToken))
}

func TestLeadRepository_NotFound(t *testing.T) {
	ctx := setupDB(t)
	repo := NewLeadRepository()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrLeadNotFound)
	_, err = repo.UpdateStatus(ctx, "missing", models.LeadStatusWon)
	assert.ErrorIs(t, err, ErrLeadNotFound)
	assert.ErrorIs(t, repo.SetQuoteURL(ctx, "missing", "https://x"), ErrLeadNotFound)
}

func TestLeadRepository_ListAndUpdate(t *testing.T) {
	ctx := setupDB(t)
	repo := NewLeadRepository()

	older := newTestLead(t, "Older", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	newer := newTestLead(t, "Newer", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	all, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Newer", all[0].Customer.Name)

	updated, err := repo.UpdateStatus(ctx, older.ID, models.LeadStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)
	assert.Equal(t, older.Pricing.FinalTotal(), updated.Pricing.FinalTotal())

	contacted, err := repo.List(ctx, models.LeadStatusContacted, 10)
	require.NoError(t, err)
	require.Len(t, contacted, 1)
	assert.Equal(t, older.ID, contacted[0].ID)

	require.NoError(t, repo.SetQuoteURL(ctx, newer.ID, "https://drive.example/quote"))
	reloaded, err := repo.GetByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example/quote", reloaded.QuoteURL)
}

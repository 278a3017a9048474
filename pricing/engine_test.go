package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFile_ExampleYAML(t *testing.T) {
	settings, err := LoadSettingsFile("../config/settings.example.yaml")
	require.NoError(t, err)

	snap := NewSnapshot(*settings)
	assert.Equal(t, 8, snap.Catalog.Len())
	assert.Equal(t, 3, snap.Rules.Len())
	assert.Empty(t, snap.Issues)

	selection := append(append([]string{}, bundleTriggers...), "foto-invitati")
	statuses := snap.Evaluate(selection)
	b := Calculate(cartItemsFor(snap, statuses, selection...), snap.Discounts, statuses, testNow)
	assert.Equal(t, int64(2745), b.FinalTotal())
}

func TestLoadSettingsFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{
		"catalog": [{"id": "a", "title": "A", "category": "service", "price": 100, "active": true}],
		"rules": [],
		"discounts": {"global": {"isActive": true, "type": "fixed", "value": 30, "endDate": 4102444800000}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	require.Len(t, settings.Catalog, 1)
	require.NotNil(t, settings.Discounts.Global.EndDate)
	assert.Equal(t, 2100, settings.Discounts.Global.EndDate.Time().Year())
}

func TestLoadSettingsFile_Missing(t *testing.T) {
	_, err := LoadSettingsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewSnapshot_ReportsUnknownOverrides(t *testing.T) {
	snap := NewSnapshot(Settings{
		Catalog: weddingCatalog(),
		Discounts: DiscountConfig{PerItemOverrides: map[string]Discount{
			"ghost": {IsActive: true, Type: DiscountFixed, Value: 10},
		}},
	})
	require.Len(t, snap.Issues, 1)
	assert.Equal(t, "discount override ghost", snap.Issues[0].Source)
}

func TestEngine_ReplaceKeepsOldSnapshotIntact(t *testing.T) {
	first := weddingSnapshot(percentGlobal(10))
	engine := NewEngine(first)
	assert.Same(t, first, engine.Current())

	second := weddingSnapshot(percentGlobal(20))
	old := engine.Replace(second)

	assert.Same(t, first, old)
	assert.Same(t, second, engine.Current())
	assert.Greater(t, second.Version, first.Version)
	assert.Equal(t, float64(10), first.Discounts.Global.Value)

	assert.Same(t, second, engine.Replace(nil))
	assert.Same(t, second, engine.Current())
}

func TestNewEngine_NilSnapshotIsEmpty(t *testing.T) {
	engine := NewEngine(nil)
	require.NotNil(t, engine.Current())
	assert.Zero(t, engine.Current().Catalog.Len())
}

func TestNewSnapshot_SettingsAreCopied(t *testing.T) {
	settings := Settings{Catalog: weddingCatalog(), Discounts: percentGlobal(10)}
	snap := NewSnapshot(settings)

	settings.Catalog[0].Price = 1
	settings.Discounts.Global.Value = 50

	item, _ := snap.Catalog.Get("servizio-fotografico")
	assert.Equal(t, int64(600), item.Price)
	assert.Equal(t, float64(10), snap.Discounts.Global.Value)
}

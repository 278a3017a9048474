package pricing

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_BundleGiftWithGlobalPercent(t *testing.T) {
	snap := weddingSnapshot(percentGlobal(10))
	selection := append(append([]string{}, bundleTriggers...), "foto-invitati")
	statuses := snap.Evaluate(selection)
	require.True(t, statuses["foto-invitati"].IsGift)

	b := Calculate(cartItemsFor(snap, statuses, selection...), snap.Discounts, statuses, testNow)

	assert.Equal(t, int64(3050), b.Subtotal())
	assert.Equal(t, int64(305), b.GlobalDiscountSavings())
	assert.Equal(t, int64(2745), b.FinalTotal())
	assert.Equal(t, int64(450), b.GiftSavings())
	assert.Equal(t, int64(0), b.IndividualDiscountSavings())
	assert.Equal(t, int64(755), b.TotalSavings())

	gd, ok := b.GlobalDiscount()
	require.True(t, ok)
	assert.Equal(t, "10%", gd.Label)

	lines := b.Lines()
	require.Len(t, lines, 7)
	assert.True(t, lines[6].IsGift)
	assert.Equal(t, int64(0), lines[6].Price)
	assert.Equal(t, int64(450), lines[6].OriginalPrice)
}

func TestCalculate_NoDiscountsNoGifts(t *testing.T) {
	snap := weddingSnapshot(DiscountConfig{})
	selection := []string{"servizio-fotografico", "videomaker"}
	statuses := snap.Evaluate(selection)

	b := Calculate(cartItemsFor(snap, statuses, selection...), snap.Discounts, statuses, testNow)

	assert.Equal(t, int64(1450), b.Subtotal())
	assert.Equal(t, b.Subtotal(), b.FinalTotal())
	assert.Zero(t, b.IndividualDiscountSavings())
	assert.Zero(t, b.GlobalDiscountSavings())
	assert.Zero(t, b.GiftSavings())
	assert.Zero(t, b.TotalSavings())
	_, ok := b.GlobalDiscount()
	assert.False(t, ok)
}

func TestCalculate_FixedDiscountClampsToSubtotal(t *testing.T) {
	discounts := DiscountConfig{Global: Discount{IsActive: true, Type: DiscountFixed, Value: 400}}
	snap := weddingSnapshot(discounts)
	selection := []string{"riprese-drone", "videomaker"}
	statuses := snap.Evaluate(selection)

	items := cartItemsFor(snap, statuses, "riprese-drone")
	b := Calculate(items, snap.Discounts, statuses, testNow)

	assert.Equal(t, int64(300), b.Subtotal())
	assert.Equal(t, int64(300), b.GlobalDiscountSavings())
	assert.Equal(t, int64(0), b.FinalTotal())
}

func TestCalculate_StoredItemDiscountCountsAsIndividualSavings(t *testing.T) {
	snap := weddingSnapshot(percentGlobal(10))
	statuses := snap.Evaluate([]string{"book-prematrimoniale"})

	b := Calculate(cartItemsFor(snap, statuses, "book-prematrimoniale"), snap.Discounts, statuses, testNow)

	assert.Equal(t, int64(350), b.Subtotal())
	assert.Equal(t, int64(50), b.IndividualDiscountSavings())
	// 35 = round(350 * 0.10), applied after the item discount
	assert.Equal(t, int64(35), b.GlobalDiscountSavings())
	assert.Equal(t, int64(315), b.FinalTotal())
	assert.Equal(t, int64(85), b.TotalSavings())
}

func TestCalculate_OverrideReplacesStoredItemDiscount(t *testing.T) {
	discounts := DiscountConfig{PerItemOverrides: map[string]Discount{
		"book-prematrimoniale": {IsActive: true, Type: DiscountPercent, Value: 25},
	}}
	snap := weddingSnapshot(discounts)
	statuses := snap.Evaluate([]string{"book-prematrimoniale"})

	b := Calculate(cartItemsFor(snap, statuses, "book-prematrimoniale"), snap.Discounts, statuses, testNow)

	// the override applies to the 400 reference price, not on top of the stored 350
	assert.Equal(t, int64(300), b.Subtotal())
	assert.Equal(t, int64(100), b.IndividualDiscountSavings())
	lines := b.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Discounted)
	assert.Equal(t, int64(400), lines[0].OriginalPrice)
	assert.Equal(t, int64(300), lines[0].Price)
}

func TestCalculate_OverrideOutsideWindowIsIgnored(t *testing.T) {
	discounts := DiscountConfig{PerItemOverrides: map[string]Discount{
		"videomaker": {
			IsActive: true, Type: DiscountFixed, Value: 100,
			EndDate: instantPtr(testNow.Add(-time.Hour)),
		},
	}}
	snap := weddingSnapshot(discounts)
	statuses := snap.Evaluate([]string{"videomaker"})

	b := Calculate(cartItemsFor(snap, statuses, "videomaker"), snap.Discounts, statuses, testNow)

	assert.Equal(t, int64(850), b.Subtotal())
	assert.Zero(t, b.IndividualDiscountSavings())
}

func TestCalculate_PercentRoundsHalfUp(t *testing.T) {
	items := []CartItem{{ID: "a", Title: "A", Price: 25, OriginalPrice: 25}}
	b := Calculate(items, percentGlobal(10), nil, testNow)

	// 2.5 rounds up to 3
	assert.Equal(t, int64(3), b.GlobalDiscountSavings())
	assert.Equal(t, int64(22), b.FinalTotal())
}

func TestCalculate_PercentAboveHundredClamps(t *testing.T) {
	items := []CartItem{{ID: "a", Title: "A", Price: 500, OriginalPrice: 500}}
	b := Calculate(items, percentGlobal(150), nil, testNow)

	assert.Equal(t, int64(500), b.GlobalDiscountSavings())
	assert.Equal(t, int64(0), b.FinalTotal())
}

func TestCalculate_ZeroPricedItemWithOriginalIsGift(t *testing.T) {
	items := []CartItem{
		{ID: "a", Title: "A", Price: 500, OriginalPrice: 500},
		{ID: "g", Title: "G", Price: 0, OriginalPrice: 120},
	}
	b := Calculate(items, DiscountConfig{}, nil, testNow)

	assert.Equal(t, int64(500), b.Subtotal())
	assert.Equal(t, int64(120), b.GiftSavings())
}

func TestCalculate_GiftStatusOverridesStoredPrice(t *testing.T) {
	// stored as paid, but the evaluator now reports it as a gift
	items := []CartItem{{ID: "g", Title: "G", Price: 450, OriginalPrice: 450}}
	statuses := map[string]ItemStatus{"g": {Available: true, IsGift: true, GiftOriginalPrice: 450}}
	b := Calculate(items, percentGlobal(10), statuses, testNow)

	assert.Zero(t, b.Subtotal())
	assert.Equal(t, int64(450), b.GiftSavings())
	assert.Zero(t, b.FinalTotal())
}

func TestCalculate_DuplicateIDsCountOnce(t *testing.T) {
	items := []CartItem{
		{ID: "a", Title: "A", Price: 100, OriginalPrice: 100},
		{ID: "a", Title: "A", Price: 100, OriginalPrice: 100},
	}
	b := Calculate(items, DiscountConfig{}, nil, testNow)
	assert.Equal(t, int64(100), b.Subtotal())
	assert.Len(t, b.Lines(), 1)
}

func TestCalculate_Idempotent(t *testing.T) {
	snap := weddingSnapshot(percentGlobal(12.5))
	selection := append(append([]string{}, bundleTriggers...), "foto-invitati", "book-prematrimoniale")
	statuses := snap.Evaluate(selection)
	items := cartItemsFor(snap, statuses, selection...)

	first, err := json.Marshal(Calculate(items, snap.Discounts, statuses, testNow))
	require.NoError(t, err)
	second, err := json.Marshal(Calculate(items, snap.Discounts, statuses, testNow))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestCalculate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	discountTypes := []DiscountType{DiscountPercent, DiscountFixed}

	for i := 0; i < 500; i++ {
		var items []CartItem
		statuses := map[string]ItemStatus{}
		giftIDs := map[string]bool{}
		for j := 0; j < rng.Intn(8); j++ {
			id := string(rune('a' + j))
			price := int64(rng.Intn(2000))
			original := price + int64(rng.Intn(300))
			items = append(items, CartItem{ID: id, Title: id, Price: price, OriginalPrice: original})
			if rng.Intn(4) == 0 {
				statuses[id] = ItemStatus{Available: true, IsGift: true, GiftOriginalPrice: original}
				giftIDs[id] = true
			}
		}
		discounts := DiscountConfig{Global: Discount{
			IsActive: rng.Intn(3) > 0,
			Type:     discountTypes[rng.Intn(2)],
			Value:    float64(rng.Intn(3000)) / 7,
		}}

		b := Calculate(items, discounts, statuses, testNow)

		assert.Equal(t, b.Subtotal(), b.FinalTotal()+b.GlobalDiscountSavings(), "conservation, case %d", i)
		assert.GreaterOrEqual(t, b.FinalTotal(), int64(0))
		assert.Equal(t, b.IndividualDiscountSavings()+b.GlobalDiscountSavings()+b.GiftSavings(), b.TotalSavings())

		var paid int64
		for _, line := range b.Lines() {
			if giftIDs[line.ID] {
				assert.True(t, line.IsGift)
				continue
			}
			if !line.IsGift {
				paid += line.Price
			}
		}
		assert.Equal(t, paid, b.Subtotal(), "subtotal excludes gifts, case %d", i)
	}
}

func TestBreakdown_JSONFieldNamesAndRoundTrip(t *testing.T) {
	snap := weddingSnapshot(percentGlobal(10))
	selection := append(append([]string{}, bundleTriggers...), "foto-invitati")
	statuses := snap.Evaluate(selection)
	b := Calculate(cartItemsFor(snap, statuses, selection...), snap.Discounts, statuses, testNow)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, name := range []string{"subtotal", "individualDiscountSavings", "globalDiscountSavings", "giftSavings", "finalTotal", "totalSavings", "lines"} {
		assert.Contains(t, fields, name)
	}

	var restored Breakdown
	require.NoError(t, json.Unmarshal(data, &restored))
	again, err := json.Marshal(restored)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestBreakdown_CloneIsIndependent(t *testing.T) {
	items := []CartItem{{ID: "a", Title: "A", Price: 100, OriginalPrice: 100}}
	b := Calculate(items, percentGlobal(10), nil, testNow)
	c := b.Clone()

	lines := c.Lines()
	lines[0].Price = 1
	assert.Equal(t, int64(100), b.Lines()[0].Price)
	assert.Equal(t, int64(100), c.Lines()[0].Price)
}

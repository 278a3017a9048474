package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calculate is the only producer of a Breakdown. Steps run in a fixed order:
//
//  1. split the selection into gifts and paid items
//  2. resolve each paid item's discount basis (an override in effect replaces the
//     stored item discount, it does not stack with it)
//  3. subtotal = sum of paid prices
//  4. global discount on the subtotal, capped at the subtotal
//  5. finalTotal = subtotal - global discount, never negative
//  6. giftSavings = sum of gift reference prices
//  7. totalSavings = individual + global + gift savings
//
// Amounts are whole currency units; fractional results are rounded half-up.
// The result depends only on the arguments.
func Calculate(selection []CartItem, discounts DiscountConfig, statuses map[string]ItemStatus, now time.Time) Breakdown {
	var (
		b          Breakdown
		subtotal   int64
		individual int64
		gifts      int64
	)
	seen := make(map[string]bool, len(selection))

	for _, item := range selection {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		price := clampZero(item.Price)
		original := clampZero(item.OriginalPrice)
		status := statuses[item.ID]

		if status.IsGift || (price == 0 && original > 0) {
			value := original
			if value == 0 {
				value = clampZero(status.GiftOriginalPrice)
			}
			gifts += value
			b.lines = append(b.lines, Line{
				ID:            item.ID,
				Title:         item.Title,
				Category:      item.Category,
				Price:         0,
				OriginalPrice: value,
				IsGift:        true,
			})
			continue
		}

		line := Line{
			ID:            item.ID,
			Title:         item.Title,
			Category:      item.Category,
			Price:         price,
			OriginalPrice: original,
		}

		if override, ok := discounts.Override(item.ID, now); ok {
			base := price
			if original > base {
				base = original
			}
			off := roundHalfUp(override.amount(decimal.NewFromInt(base)))
			line.Price = base - off
			line.OriginalPrice = base
			line.Discounted = true
			individual += off
		} else if original > price {
			individual += original - price
		}

		subtotal += line.Price
		b.lines = append(b.lines, line)
	}

	var global int64
	if discounts.Global.InEffect(now) {
		global = roundHalfUp(discounts.Global.amount(decimal.NewFromInt(subtotal)))
		if global > subtotal {
			global = subtotal
		}
		applied := &AppliedDiscount{
			Type:  discounts.Global.Type,
			Value: discounts.Global.Value,
			Label: discounts.Global.Label(),
		}
		if discounts.Global.EndDate.bounded() {
			applied.EndDate = discounts.Global.EndDate.String()
		}
		b.globalDiscount = applied
	}

	b.subtotal = subtotal
	b.individualDiscountSavings = individual
	b.globalDiscountSavings = global
	b.finalTotal = clampZero(subtotal - global)
	b.giftSavings = gifts
	b.totalSavings = individual + global + gifts
	return b
}

func roundHalfUp(d decimal.Decimal) int64 {
	if d.Sign() <= 0 {
		return 0
	}
	return d.Round(0).IntPart()
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

package pricing

import (
	"encoding/json"
)

// CartItem is a selected item as stored by the cart. Price is the price at the moment
// of addition (0 for a gift); OriginalPrice is the reference price for savings.
type CartItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      Category `json:"category"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"originalPrice"`
}

// Line is the priced view of one selected item
type Line struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      Category `json:"category"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"originalPrice"`
	IsGift        bool     `json:"isGift"`
	// Discounted is set when a per-item override priced this line
	Discounted bool `json:"discounted,omitempty"`
}

// AppliedDiscount describes the global discount that was in effect for a breakdown
type AppliedDiscount struct {
	Type    DiscountType `json:"type"`
	Value   float64      `json:"value"`
	Label   string       `json:"label"`
	EndDate string       `json:"endDate,omitempty"`
}

// Breakdown is the canonical price breakdown. Its fields are only set by Calculate;
// presentation code reads them through accessors and must not derive totals itself.
type Breakdown struct {
	subtotal                  int64
	individualDiscountSavings int64
	globalDiscountSavings     int64
	giftSavings               int64
	finalTotal                int64
	totalSavings              int64
	lines                     []Line
	globalDiscount            *AppliedDiscount
}

func (b Breakdown) Subtotal() int64                  { return b.subtotal }
func (b Breakdown) IndividualDiscountSavings() int64 { return b.individualDiscountSavings }
func (b Breakdown) GlobalDiscountSavings() int64     { return b.globalDiscountSavings }
func (b Breakdown) GiftSavings() int64               { return b.giftSavings }
func (b Breakdown) FinalTotal() int64                { return b.finalTotal }
func (b Breakdown) TotalSavings() int64              { return b.totalSavings }

// Lines returns a copy of the priced lines in selection order
func (b Breakdown) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// GlobalDiscount returns the global discount that applied, if any
func (b Breakdown) GlobalDiscount() (AppliedDiscount, bool) {
	if b.globalDiscount == nil {
		return AppliedDiscount{}, false
	}
	return *b.globalDiscount, true
}

// IsEmpty reports whether the breakdown has no lines
func (b Breakdown) IsEmpty() bool { return len(b.lines) == 0 }

// Clone returns a deep copy, used when a breakdown is frozen into a lead
func (b Breakdown) Clone() Breakdown {
	out := b
	out.lines = b.Lines()
	if b.globalDiscount != nil {
		gd := *b.globalDiscount
		out.globalDiscount = &gd
	}
	return out
}

type breakdownJSON struct {
	Subtotal                  int64            `json:"subtotal"`
	IndividualDiscountSavings int64            `json:"individualDiscountSavings"`
	GlobalDiscountSavings     int64            `json:"globalDiscountSavings"`
	GiftSavings               int64            `json:"giftSavings"`
	FinalTotal                int64            `json:"finalTotal"`
	TotalSavings              int64            `json:"totalSavings"`
	Lines                     []Line           `json:"lines"`
	GlobalDiscount            *AppliedDiscount `json:"globalDiscount,omitempty"`
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	lines := b.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(breakdownJSON{
		Subtotal:                  b.subtotal,
		IndividualDiscountSavings: b.individualDiscountSavings,
		GlobalDiscountSavings:     b.globalDiscountSavings,
		GiftSavings:               b.giftSavings,
		FinalTotal:                b.finalTotal,
		TotalSavings:              b.totalSavings,
		Lines:                     lines,
		GlobalDiscount:            b.globalDiscount,
	})
}

// UnmarshalJSON restores a persisted breakdown verbatim. It does not recompute anything.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw breakdownJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Breakdown{
		subtotal:                  raw.Subtotal,
		individualDiscountSavings: raw.IndividualDiscountSavings,
		globalDiscountSavings:     raw.GlobalDiscountSavings,
		giftSavings:               raw.GiftSavings,
		finalTotal:                raw.FinalTotal,
		totalSavings:              raw.TotalSavings,
		lines:                     raw.Lines,
		globalDiscount:            raw.GlobalDiscount,
	}
	return nil
}

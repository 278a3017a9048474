package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DiscountType selects how a discount value is interpreted
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

var (
	dateLocationMu sync.RWMutex
	dateLocation   = time.UTC
)

// SetDateLocation sets the zone used for date-only discount bounds such as "2025-12-31"
func SetDateLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	dateLocationMu.Lock()
	dateLocation = loc
	dateLocationMu.Unlock()
}

func currentDateLocation() *time.Location {
	dateLocationMu.RLock()
	defer dateLocationMu.RUnlock()
	return dateLocation
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Instant is a discount bound. Providers send ISO-8601 strings, epoch numbers or
// {seconds, nanoseconds} timestamp objects; all decode to a comparable instant.
// A bound that cannot be read does not fail decoding: it stays invalid and the
// owning discount is never in effect. An empty value is no bound at all.
type Instant struct {
	t        time.Time
	dateOnly bool
	invalid  bool
	blank    bool
	raw      string
}

// NewInstant wraps a native time
func NewInstant(t time.Time) Instant {
	return Instant{t: t}
}

// ParseInstant parses an ISO-8601 date or date-time. Date-only values are placed in
// the configured date location and, as an end bound, cover the whole day.
func ParseInstant(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{blank: true}, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Instant{t: t}, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, currentDateLocation()); err == nil {
		return Instant{t: t, dateOnly: true}, nil
	}
	return Instant{invalid: true, raw: s}, fmt.Errorf("unrecognized date %q", s)
}

// instantFromEpoch treats values below 1e11 as seconds and larger ones as milliseconds
func instantFromEpoch(v float64) Instant {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Instant{invalid: true, raw: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	if math.Abs(v) < 1e11 {
		sec, frac := math.Modf(v)
		return Instant{t: time.Unix(int64(sec), int64(frac*1e9)).UTC()}
	}
	return Instant{t: time.UnixMilli(int64(v)).UTC()}
}

// Time returns the instant
func (i Instant) Time() time.Time { return i.t }

// Valid reports whether the bound was understood
func (i Instant) Valid() bool { return !i.invalid }

// String returns the RFC3339 form, or the raw input when it was not understood
func (i Instant) String() string {
	if i.invalid {
		return i.raw
	}
	if i.blank {
		return ""
	}
	if i.dateOnly {
		return i.t.Format("2006-01-02")
	}
	return i.t.Format(time.RFC3339)
}

// bounded reports whether i constrains the window; nil and empty bounds are open
func (i *Instant) bounded() bool {
	return i != nil && !i.blank
}

func (i Instant) notAfter(now time.Time) bool {
	return !i.t.After(now)
}

func (i Instant) notBefore(now time.Time) bool {
	if i.dateOnly {
		return now.Before(i.t.AddDate(0, 0, 1))
	}
	return !i.t.Before(now)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Instant{blank: true}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*i = Instant{invalid: true, raw: string(data)}
			return nil
		}
		*i, _ = ParseInstant(s)
		return nil
	case '{':
		var ts struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(data, &ts); err != nil {
			*i = Instant{invalid: true, raw: string(data)}
			return nil
		}
		switch {
		case ts.Seconds != nil:
			*i = Instant{t: time.Unix(*ts.Seconds, ts.Nanoseconds).UTC()}
		case ts.USeconds != nil:
			*i = Instant{t: time.Unix(*ts.USeconds, ts.UNanoseconds).UTC()}
		default:
			*i = Instant{invalid: true, raw: string(data)}
		}
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*i = Instant{invalid: true, raw: string(data)}
		return nil
	}
	*i = instantFromEpoch(v)
	return nil
}

func (i Instant) MarshalYAML() (interface{}, error) {
	return i.String(), nil
}

func (i *Instant) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
			*i = Instant{blank: true}
			return nil
		}
		if node.Tag == "!!int" || node.Tag == "!!float" {
			v, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				*i = Instant{invalid: true, raw: node.Value}
				return nil
			}
			*i = instantFromEpoch(v)
			return nil
		}
		*i, _ = ParseInstant(node.Value)
		return nil
	case yaml.MappingNode:
		var ts struct {
			Seconds     *int64 `yaml:"seconds"`
			Nanoseconds int64  `yaml:"nanoseconds"`
		}
		if err := node.Decode(&ts); err != nil || ts.Seconds == nil {
			*i = Instant{invalid: true, raw: fmt.Sprintf("line %d", node.Line)}
			return nil
		}
		*i = Instant{t: time.Unix(*ts.Seconds, ts.Nanoseconds).UTC()}
		return nil
	}
	*i = Instant{invalid: true, raw: fmt.Sprintf("line %d", node.Line)}
	return nil
}

// Discount is a time-bounded percent or fixed reduction
type Discount struct {
	IsActive  bool         `json:"isActive" yaml:"isActive"`
	Type      DiscountType `json:"type" yaml:"type"`
	Value     float64      `json:"value" yaml:"value"`
	StartDate *Instant     `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate   *Instant     `json:"endDate,omitempty" yaml:"endDate,omitempty"`
}

// Problems lists configuration errors that keep the discount from ever applying
func (d Discount) Problems() []string {
	var out []string
	if d.Type != DiscountPercent && d.Type != DiscountFixed {
		out = append(out, fmt.Sprintf("unknown discount type %q", d.Type))
	}
	if d.Value < 0 || math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
		out = append(out, fmt.Sprintf("invalid discount value %v", d.Value))
	}
	if d.StartDate.bounded() && !d.StartDate.Valid() {
		out = append(out, fmt.Sprintf("malformed startDate %q", d.StartDate.raw))
	}
	if d.EndDate.bounded() && !d.EndDate.Valid() {
		out = append(out, fmt.Sprintf("malformed endDate %q", d.EndDate.raw))
	}
	if d.StartDate.bounded() && d.EndDate.bounded() && d.StartDate.Valid() && d.EndDate.Valid() &&
		!d.EndDate.notBefore(d.StartDate.t) {
		out = append(out, "endDate is before startDate")
	}
	return out
}

// InEffect reports whether the discount applies at now. Missing bounds are open;
// present bounds are inclusive.
func (d Discount) InEffect(now time.Time) bool {
	if !d.IsActive || d.Value <= 0 || len(d.Problems()) > 0 {
		return false
	}
	if d.StartDate.bounded() && !d.StartDate.notAfter(now) {
		return false
	}
	if d.EndDate.bounded() && !d.EndDate.notBefore(now) {
		return false
	}
	return true
}

// amount returns the unrounded reduction on base, clamped to [0, base]
func (d Discount) amount(base decimal.Decimal) decimal.Decimal {
	if base.Sign() <= 0 {
		return decimal.Zero
	}
	value := decimal.NewFromFloat(d.Value)
	var off decimal.Decimal
	switch d.Type {
	case DiscountPercent:
		off = base.Mul(value).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		off = value
	default:
		return decimal.Zero
	}
	if off.Sign() < 0 {
		return decimal.Zero
	}
	if off.GreaterThan(base) {
		return base
	}
	return off
}

// Label renders the discount for display, e.g. "10%" or "400"
func (d Discount) Label() string {
	v := strconv.FormatFloat(d.Value, 'f', -1, 64)
	if d.Type == DiscountPercent {
		return v + "%"
	}
	return v
}

// DiscountConfig is the studio-wide discount plus per-item overrides
type DiscountConfig struct {
	Global           Discount            `json:"global" yaml:"global"`
	PerItemOverrides map[string]Discount `json:"perItemOverrides,omitempty" yaml:"perItemOverrides,omitempty"`
}

// Override returns the per-item override for id when it is in effect at now
func (c DiscountConfig) Override(id string, now time.Time) (Discount, bool) {
	d, ok := c.PerItemOverrides[id]
	if !ok || !d.InEffect(now) {
		return Discount{}, false
	}
	return d, true
}

// Issues lists configuration problems of the global discount and every override,
// ordered by item id. Inactive discounts are not checked.
func (c DiscountConfig) Issues() []Issue {
	var out []Issue
	if c.Global.IsActive {
		for _, p := range c.Global.Problems() {
			out = append(out, Issue{Source: "global discount", Message: p})
		}
	}
	ids := make([]string, 0, len(c.PerItemOverrides))
	for id := range c.PerItemOverrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := c.PerItemOverrides[id]
		if !d.IsActive {
			continue
		}
		for _, p := range d.Problems() {
			out = append(out, Issue{Source: "discount override " + id, Message: p})
		}
	}
	return out
}

// Clone returns a deep copy
func (c DiscountConfig) Clone() DiscountConfig {
	out := DiscountConfig{Global: c.Global.clone()}
	if c.PerItemOverrides != nil {
		out.PerItemOverrides = make(map[string]Discount, len(c.PerItemOverrides))
		for id, d := range c.PerItemOverrides {
			out.PerItemOverrides[id] = d.clone()
		}
	}
	return out
}

func (d Discount) clone() Discount {
	if d.StartDate != nil {
		s := *d.StartDate
		d.StartDate = &s
	}
	if d.EndDate != nil {
		e := *d.EndDate
		d.EndDate = &e
	}
	return d
}

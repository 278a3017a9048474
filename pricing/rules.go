package pricing

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// RuleKind tags a selection rule variant
type RuleKind string

const (
	RuleRequires   RuleKind = "requires"
	RuleExcludes   RuleKind = "excludes"
	RuleBundleGift RuleKind = "bundle_gift"
)

// RuleSpec is the serialized form of a selection rule, as stored by the rules provider.
// Only the fields relevant to Type are read.
type RuleSpec struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type        RuleKind `json:"type" yaml:"type"`
	ItemID      string   `json:"itemId,omitempty" yaml:"itemId,omitempty"`
	RequiredIDs []string `json:"requiredIds,omitempty" yaml:"requiredIds,omitempty"`
	ExcludedIDs []string `json:"excludedIds,omitempty" yaml:"excludedIds,omitempty"`
	TriggerIDs  []string `json:"triggerIds,omitempty" yaml:"triggerIds,omitempty"`
	GiftItemID  string   `json:"giftItemId,omitempty" yaml:"giftItemId,omitempty"`
}

// Label returns the rule id, or a descriptive fallback when the provider gave none
func (s RuleSpec) Label() string {
	if s.ID != "" {
		return s.ID
	}
	subject := s.ItemID
	if s.Type == RuleBundleGift {
		subject = s.GiftItemID
	}
	return fmt.Sprintf("%s:%s", s.Type, subject)
}

// Rule is a compiled selection rule. The set of variants is closed: Requires,
// Excludes and BundleGift. New kinds are added here and picked up by Evaluate.
type Rule interface {
	ID() string
	Kind() RuleKind
	// Subject is the item whose status the rule affects
	Subject() string
	phase() int
	apply(ev *evaluation)
}

// Requires makes ItemID available only when every RequiredIDs item is selected
type Requires struct {
	RuleID      string
	ItemID      string
	RequiredIDs []string
}

func (r Requires) ID() string      { return r.RuleID }
func (r Requires) Kind() RuleKind  { return RuleRequires }
func (r Requires) Subject() string { return r.ItemID }
func (r Requires) phase() int      { return 1 }

func (r Requires) apply(ev *evaluation) {
	for _, id := range r.RequiredIDs {
		if !ev.selected[id] {
			ev.addMissing(r.ItemID, id)
		}
	}
}

// Excludes makes ItemID unavailable while any ExcludedIDs item is selected
type Excludes struct {
	RuleID      string
	ItemID      string
	ExcludedIDs []string
}

func (r Excludes) ID() string      { return r.RuleID }
func (r Excludes) Kind() RuleKind  { return RuleExcludes }
func (r Excludes) Subject() string { return r.ItemID }
func (r Excludes) phase() int      { return 2 }

func (r Excludes) apply(ev *evaluation) {
	for _, id := range r.ExcludedIDs {
		if ev.selected[id] {
			ev.addExcluder(r.ItemID, id)
		}
	}
}

// BundleGift makes GiftItemID free once every TriggerIDs item is selected
type BundleGift struct {
	RuleID     string
	TriggerIDs []string
	GiftItemID string
}

func (r BundleGift) ID() string      { return r.RuleID }
func (r BundleGift) Kind() RuleKind  { return RuleBundleGift }
func (r BundleGift) Subject() string { return r.GiftItemID }
func (r BundleGift) phase() int      { return 3 }

func (r BundleGift) apply(ev *evaluation) {
	for _, id := range r.TriggerIDs {
		if !ev.selected[id] {
			return
		}
	}
	ev.markGift(r.GiftItemID)
}

// Issue describes a configuration problem found while compiling rules or discounts
type Issue struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Source, i.Message)
}

// RuleSet is the compiled, read-only rule configuration, indexed by affected item id
type RuleSet struct {
	rules  []Rule
	byItem map[string][]Rule
	issues []Issue
}

// NewRuleSet compiles rule specs against a catalog. Rules that are self-referential,
// reference missing items or are otherwise unusable become no-ops; each problem is
// logged and reported through Issues. It never fails.
func NewRuleSet(specs []RuleSpec, catalog *Catalog) *RuleSet {
	rs := &RuleSet{byItem: make(map[string][]Rule)}
	for _, spec := range specs {
		rule, issues := compileRule(spec, catalog)
		rs.issues = append(rs.issues, issues...)
		if rule == nil {
			continue
		}
		rs.rules = append(rs.rules, rule)
		rs.byItem[rule.Subject()] = append(rs.byItem[rule.Subject()], rule)
	}

	sort.SliceStable(rs.rules, func(i, j int) bool {
		return rs.rules[i].phase() < rs.rules[j].phase()
	})

	for _, issue := range rs.issues {
		log.Printf("⚠️ RuleSet: %s", issue)
	}
	return rs
}

// Rules returns the compiled rules in evaluation order
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// ForItem returns the rules affecting the given item
func (rs *RuleSet) ForItem(id string) []Rule {
	if rs == nil {
		return nil
	}
	return rs.byItem[id]
}

// Issues returns the configuration problems found at compile time
func (rs *RuleSet) Issues() []Issue {
	if rs == nil {
		return nil
	}
	out := make([]Issue, len(rs.issues))
	copy(out, rs.issues)
	return out
}

// Len returns the number of usable rules
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

func compileRule(spec RuleSpec, catalog *Catalog) (Rule, []Issue) {
	label := spec.Label()
	var issues []Issue
	report := func(format string, args ...interface{}) {
		issues = append(issues, Issue{Source: "rule " + label, Message: fmt.Sprintf(format, args...)})
	}

	switch RuleKind(strings.ToLower(string(spec.Type))) {
	case RuleRequires, RuleExcludes:
		kind := RuleKind(strings.ToLower(string(spec.Type)))
		ids := spec.RequiredIDs
		if kind == RuleExcludes {
			ids = spec.ExcludedIDs
		}
		if spec.ItemID == "" {
			report("missing itemId, rule skipped")
			return nil, issues
		}
		if !catalog.Has(spec.ItemID) {
			report("item %s is not in the catalog, rule skipped", spec.ItemID)
			return nil, issues
		}
		related := make([]string, 0, len(ids))
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if id == spec.ItemID {
				report("item %s references itself, rule skipped", spec.ItemID)
				return nil, issues
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			if !catalog.Has(id) {
				report("referenced item %s is not in the catalog, ignored", id)
				continue
			}
			related = append(related, id)
		}
		if len(related) == 0 {
			report("no usable referenced items, rule skipped")
			return nil, issues
		}
		catalog.sortIDs(related)
		if kind == RuleRequires {
			return Requires{RuleID: label, ItemID: spec.ItemID, RequiredIDs: related}, issues
		}
		return Excludes{RuleID: label, ItemID: spec.ItemID, ExcludedIDs: related}, issues

	case RuleBundleGift:
		if spec.GiftItemID == "" {
			report("missing giftItemId, rule skipped")
			return nil, issues
		}
		if !catalog.Has(spec.GiftItemID) {
			report("gift item %s is not in the catalog, rule skipped", spec.GiftItemID)
			return nil, issues
		}
		if len(spec.TriggerIDs) == 0 {
			report("empty trigger set, rule skipped")
			return nil, issues
		}
		triggers := make([]string, 0, len(spec.TriggerIDs))
		seen := make(map[string]bool, len(spec.TriggerIDs))
		for _, id := range spec.TriggerIDs {
			if id == spec.GiftItemID {
				report("trigger set contains the gift item %s, rule skipped", id)
				return nil, issues
			}
			if !catalog.Has(id) {
				report("trigger item %s is not in the catalog, rule skipped", id)
				return nil, issues
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			triggers = append(triggers, id)
		}
		catalog.sortIDs(triggers)
		return BundleGift{RuleID: label, TriggerIDs: triggers, GiftItemID: spec.GiftItemID}, issues
	}

	report("unknown rule type %q, rule skipped", spec.Type)
	return nil, issues
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"studio-storefront/db"
	"studio-storefront/pricing"
)

// RuleRepository handles database operations for selection rules.
// A row stores the affected item in item_id and the other items as a JSON array in
// related_ids; for bundle gifts item_id is the gift and related_ids the triggers.
type RuleRepository struct{}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository() *RuleRepository {
	return &RuleRepository{}
}

// Ensure RuleRepository implements RuleRepositoryInterface
var _ RuleRepositoryInterface = (*RuleRepository)(nil)

// ListRules returns the active rules in their stored form
func (r *RuleRepository) ListRules(ctx context.Context) ([]pricing.RuleSpec, error) {
	query := `
		SELECT id, type, item_id, related_ids
		FROM selection_rules
		WHERE active = TRUE
		ORDER BY id ASC
	`

	rows, err := db.Conn(ctx).QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ ListRules: Error querying selection rules: %v", err)
		return nil, fmt.Errorf("failed to query selection rules: %w", err)
	}
	defer rows.Close()

	var rules []pricing.RuleSpec
	for rows.Next() {
		var id, ruleType, itemID, relatedJSON string
		if err := rows.Scan(&id, &ruleType, &itemID, &relatedJSON); err != nil {
			log.Printf("❌ ListRules: Error scanning rule: %v", err)
			continue
		}

		var related []string
		if strings.TrimSpace(relatedJSON) != "" {
			if err := json.Unmarshal([]byte(relatedJSON), &related); err != nil {
				// kept so the rule set reports it as unusable
				log.Printf("⚠️ ListRules: rule %s has malformed related_ids: %v", id, err)
			}
		}

		rules = append(rules, specFromRow(id, ruleType, itemID, related))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate selection rules: %w", err)
	}

	log.Printf("✅ ListRules: Loaded %d selection rules", len(rules))
	return rules, nil
}

// UpsertRule inserts or replaces a rule by id. A rule without an id is stored under its label.
func (r *RuleRepository) UpsertRule(ctx context.Context, rule pricing.RuleSpec) error {
	if strings.TrimSpace(rule.ID) == "" {
		rule.ID = rule.Label()
	}

	itemID, related := rowFromSpec(rule)
	relatedJSON, err := json.Marshal(related)
	if err != nil {
		return fmt.Errorf("failed to encode related ids: %w", err)
	}

	query := db.Rebind(`
		INSERT INTO selection_rules (id, type, item_id, related_ids, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			item_id = excluded.item_id,
			related_ids = excluded.related_ids,
			active = TRUE
	`)

	if _, err := db.Conn(ctx).ExecContext(ctx, query, rule.ID, string(rule.Type), itemID, string(relatedJSON)); err != nil {
		log.Printf("❌ UpsertRule: Error saving rule %s: %v", rule.ID, err)
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

func specFromRow(id, ruleType, itemID string, related []string) pricing.RuleSpec {
	spec := pricing.RuleSpec{ID: id, Type: pricing.RuleKind(strings.ToLower(strings.TrimSpace(ruleType)))}
	switch spec.Type {
	case pricing.RuleRequires:
		spec.ItemID = itemID
		spec.RequiredIDs = related
	case pricing.RuleExcludes:
		spec.ItemID = itemID
		spec.ExcludedIDs = related
	case pricing.RuleBundleGift:
		spec.GiftItemID = itemID
		spec.TriggerIDs = related
	default:
		spec.ItemID = itemID
	}
	return spec
}

func rowFromSpec(rule pricing.RuleSpec) (string, []string) {
	switch pricing.RuleKind(strings.ToLower(string(rule.Type))) {
	case pricing.RuleRequires:
		return rule.ItemID, nonNil(rule.RequiredIDs)
	case pricing.RuleExcludes:
		return rule.ItemID, nonNil(rule.ExcludedIDs)
	case pricing.RuleBundleGift:
		return rule.GiftItemID, nonNil(rule.TriggerIDs)
	}
	return rule.ItemID, []string{}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

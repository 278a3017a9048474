package pricing

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the raw studio configuration handed over by the catalog, rules and
// discount providers
type Settings struct {
	Catalog   []CatalogItem  `json:"catalog" yaml:"catalog"`
	Rules     []RuleSpec     `json:"rules" yaml:"rules"`
	Discounts DiscountConfig `json:"discounts" yaml:"discounts"`
}

// Snapshot is an immutable, compiled view of Settings
type Snapshot struct {
	Version   uint64
	LoadedAt  time.Time
	Catalog   *Catalog
	Rules     *RuleSet
	Discounts DiscountConfig
	Issues    []Issue
}

var snapshotVersion uint64

// NewSnapshot compiles settings. Configuration problems are logged and returned in
// Issues; they never prevent a snapshot from being built.
func NewSnapshot(settings Settings) *Snapshot {
	catalog := NewCatalog(settings.Catalog)
	rules := NewRuleSet(settings.Rules, catalog)
	discounts := settings.Discounts.Clone()

	issues := rules.Issues()
	for _, issue := range discounts.Issues() {
		log.Printf("⚠️ Discounts: %s", issue)
		issues = append(issues, issue)
	}
	for id := range discounts.PerItemOverrides {
		if !catalog.Has(id) {
			issue := Issue{Source: "discount override " + id, Message: "item is not in the catalog, ignored"}
			log.Printf("⚠️ Discounts: %s", issue)
			issues = append(issues, issue)
		}
	}

	return &Snapshot{
		Version:   atomic.AddUint64(&snapshotVersion, 1),
		LoadedAt:  time.Now(),
		Catalog:   catalog,
		Rules:     rules,
		Discounts: discounts,
		Issues:    issues,
	}
}

// Evaluate runs the rules evaluator against this snapshot
func (s *Snapshot) Evaluate(selection []string) map[string]ItemStatus {
	return Evaluate(selection, s.Rules, s.Catalog)
}

// Engine holds the snapshot currently in use. It never loads configuration on its
// own: an observer pushes fresh snapshots through Replace.
type Engine struct {
	current atomic.Pointer[Snapshot]
}

// NewEngine creates an engine serving the given snapshot
func NewEngine(snapshot *Snapshot) *Engine {
	e := &Engine{}
	if snapshot == nil {
		snapshot = NewSnapshot(Settings{})
	}
	e.current.Store(snapshot)
	return e
}

// Current returns the snapshot in use
func (e *Engine) Current() *Snapshot {
	return e.current.Load()
}

// Replace swaps in a new snapshot and returns the previous one
func (e *Engine) Replace(snapshot *Snapshot) *Snapshot {
	if snapshot == nil {
		return e.current.Load()
	}
	old := e.current.Swap(snapshot)
	log.Printf("✅ PricingEngine: snapshot v%d active (%d items, %d rules, %d issues)",
		snapshot.Version, snapshot.Catalog.Len(), snapshot.Rules.Len(), len(snapshot.Issues))
	return old
}

// LoadSettingsFile reads settings from a YAML or JSON file
func LoadSettingsFile(path string) (*Settings, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	log.Printf("✅ PricingEngine: loaded settings from %s (%d items, %d rules)", path, len(settings.Catalog), len(settings.Rules))
	return &settings, nil
}

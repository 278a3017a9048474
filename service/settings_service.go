package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"studio-storefront/db"
	"studio-storefront/pricing"
	"studio-storefront/repository"
)

// DBSettingsSource reads settings from the catalog, rule and settings tables
type DBSettingsSource struct {
	catalog  repository.CatalogRepositoryInterface
	rules    repository.RuleRepositoryInterface
	settings repository.SettingsRepositoryInterface
}

// NewDBSettingsSource creates a SettingsSource backed by the database repositories
func NewDBSettingsSource(
	catalog repository.CatalogRepositoryInterface,
	rules repository.RuleRepositoryInterface,
	settings repository.SettingsRepositoryInterface,
) *DBSettingsSource {
	return &DBSettingsSource{catalog: catalog, rules: rules, settings: settings}
}

var _ SettingsSource = (*DBSettingsSource)(nil)

func (s *DBSettingsSource) Name() string { return "database" }

// Load reads all three providers. A missing discount row means no discounts.
func (s *DBSettingsSource) Load(ctx context.Context) (*pricing.Settings, error) {
	items, err := s.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	discounts, found, err := s.settings.GetDiscounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load discounts: %w", err)
	}
	if !found {
		log.Printf("⚠️ DBSettingsSource: no discounts configured")
	}
	return &pricing.Settings{Catalog: items, Rules: rules, Discounts: discounts}, nil
}

// FileSettingsSource reads settings from a YAML or JSON file
type FileSettingsSource struct {
	path string
}

// NewFileSettingsSource creates a SettingsSource backed by a settings file
func NewFileSettingsSource(path string) *FileSettingsSource {
	return &FileSettingsSource{path: path}
}

var _ SettingsSource = (*FileSettingsSource)(nil)

func (s *FileSettingsSource) Name() string { return "file " + s.path }

func (s *FileSettingsSource) Load(ctx context.Context) (*pricing.Settings, error) {
	return pricing.LoadSettingsFile(s.path)
}

// SettingsStatus describes the last synchronization
type SettingsStatus struct {
	Source    string          `json:"source"`
	Version   uint64          `json:"version"`
	LoadedAt  string          `json:"loadedAt"`
	LastSync  string          `json:"lastSync,omitempty"`
	LastError string          `json:"lastError,omitempty"`
	Items     int             `json:"items"`
	Rules     int             `json:"rules"`
	Issues    []pricing.Issue `json:"issues"`
}

// SettingsService observes the configuration providers and pushes fresh snapshots into
// the pricing engine. A failed load keeps the active snapshot.
// Implements SettingsServiceInterface
type SettingsService struct {
	source SettingsSource
	engine *pricing.Engine

	mu          sync.Mutex
	fingerprint []byte
	lastSync    time.Time
	lastErr     error
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(source SettingsSource, engine *pricing.Engine) *SettingsService {
	return &SettingsService{
		source: source,
		engine: engine,
	}
}

// Ensure SettingsService implements SettingsServiceInterface
var _ SettingsServiceInterface = (*SettingsService)(nil)

// Sync loads settings and activates them when they differ from the active ones
func (s *SettingsService) Sync(ctx context.Context) (*pricing.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("🔄 SettingsService: loading settings from %s", s.source.Name())
	s.lastSync = time.Now()

	settings, err := s.source.Load(ctx)
	if err != nil {
		s.lastErr = err
		log.Printf("❌ SettingsService: keeping snapshot v%d, load failed: %v", s.engine.Current().Version, err)
		return s.engine.Current(), false, fmt.Errorf("failed to load settings from %s: %w", s.source.Name(), err)
	}
	s.lastErr = nil

	fingerprint, err := json.Marshal(settings)
	if err != nil {
		return s.engine.Current(), false, fmt.Errorf("failed to fingerprint settings: %w", err)
	}
	if s.fingerprint != nil && bytes.Equal(fingerprint, s.fingerprint) {
		log.Printf("⏭️  SettingsService: settings unchanged, snapshot v%d stays active", s.engine.Current().Version)
		return s.engine.Current(), false, nil
	}

	snapshot := pricing.NewSnapshot(*settings)
	s.engine.Replace(snapshot)
	s.fingerprint = fingerprint
	return snapshot, true, nil
}

// Watch re-syncs every interval until ctx is done. Errors are logged, never fatal.
func (s *SettingsService) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log.Printf("👀 SettingsService: watching %s every %s", s.source.Name(), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 SettingsService: watch stopped")
			return
		case <-ticker.C:
			if _, _, err := s.Sync(ctx); err != nil {
				log.Printf("⚠️ SettingsService: periodic sync failed: %v", err)
			}
		}
	}
}

// Status reports the active snapshot and the outcome of the last sync
func (s *SettingsService) Status() SettingsStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.engine.Current()
	status := SettingsStatus{
		Source:   s.source.Name(),
		Version:  snap.Version,
		LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
		Items:    snap.Catalog.Len(),
		Rules:    snap.Rules.Len(),
		Issues:   snap.Issues,
	}
	if status.Issues == nil {
		status.Issues = []pricing.Issue{}
	}
	if !s.lastSync.IsZero() {
		status.LastSync = s.lastSync.UTC().Format(time.RFC3339)
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// ImportSettings writes settings into the database repositories so the database source
// serves them on the next sync. The import is all or nothing.
func ImportSettings(
	ctx context.Context,
	settings *pricing.Settings,
	catalog repository.CatalogRepositoryInterface,
	rules repository.RuleRepositoryInterface,
	store repository.SettingsRepositoryInterface,
) error {
	specs := withRuleIDs(settings.Rules)
	err := db.WithTx(ctx, func(ctx context.Context) error {
		for _, item := range settings.Catalog {
			if err := catalog.UpsertItem(ctx, item); err != nil {
				return fmt.Errorf("failed to import item %s: %w", item.ID, err)
			}
		}
		for _, rule := range specs {
			if err := rules.UpsertRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to import rule %s: %w", rule.ID, err)
			}
		}
		if err := store.SaveDiscounts(ctx, settings.Discounts); err != nil {
			return fmt.Errorf("failed to import discounts: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ ImportSettings: %v", err)
		return err
	}
	log.Printf("✅ ImportSettings: %d items, %d rules imported", len(settings.Catalog), len(specs))
	return nil
}

// withRuleIDs gives every id-less rule its label as id, suffixed with its position
// among rules sharing that label so none overwrites another
func withRuleIDs(specs []pricing.RuleSpec) []pricing.RuleSpec {
	out := make([]pricing.RuleSpec, len(specs))
	taken := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if id := strings.TrimSpace(spec.ID); id != "" {
			taken[id] = true
		}
	}
	for i, spec := range specs {
		out[i] = spec
		if strings.TrimSpace(spec.ID) != "" {
			continue
		}
		id := spec.Label()
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s#%d", spec.Label(), n)
		}
		taken[id] = true
		out[i].ID = id
	}
	return out
}

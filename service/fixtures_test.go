package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"studio-storefront/models"
	"studio-storefront/pricing"
	"studio-storefront/repository"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var bundleTriggers = []string{
	"servizio-fotografico", "videomaker", "album-30x40",
	"videoproiezione", "riprese-drone", "album-genitori",
}

func studioSettings(globalPercent float64) *pricing.Settings {
	return &pricing.Settings{
		Catalog: []pricing.CatalogItem{
			{ID: "servizio-fotografico", Title: "Servizio Fotografico", Category: pricing.CategoryService, Price: 600, Active: true, SortOrder: 1},
			{ID: "videomaker", Title: "Videomaker", Category: pricing.CategoryService, Price: 850, Active: true, SortOrder: 2},
			{ID: "album-30x40", Title: "Album 30x40", Category: pricing.CategoryProduct, Price: 800, Active: true, SortOrder: 3},
			{ID: "videoproiezione", Title: "VideoProiezione", Category: pricing.CategoryService, Price: 200, Active: true, SortOrder: 4},
			{ID: "riprese-drone", Title: "Riprese Drone", Category: pricing.CategoryService, Price: 300, Active: true, SortOrder: 5},
			{ID: "album-genitori", Title: "Album Genitori", Category: pricing.CategoryProduct, Price: 300, Active: true, SortOrder: 6},
			{ID: "foto-invitati", Title: "Foto per Invitati", Category: pricing.CategoryService, Price: 450, Active: true, SortOrder: 7},
		},
		Rules: []pricing.RuleSpec{
			{ID: "gift", Type: pricing.RuleBundleGift, GiftItemID: "foto-invitati", TriggerIDs: bundleTriggers},
			{ID: "drone", Type: pricing.RuleRequires, ItemID: "riprese-drone", RequiredIDs: []string{"videomaker"}},
		},
		Discounts: pricing.DiscountConfig{Global: pricing.Discount{
			IsActive: globalPercent > 0, Type: pricing.DiscountPercent, Value: globalPercent,
		}},
	}
}

func newTestEngine(globalPercent float64) *pricing.Engine {
	return pricing.NewEngine(pricing.NewSnapshot(*studioSettings(globalPercent)))
}

// stubSource returns a fixed settings value or error
type stubSource struct {
	mu       sync.Mutex
	settings *pricing.Settings
	err      error
	loads    int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(ctx context.Context) (*pricing.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.settings, nil
}

// memoryLeadRepository keeps leads in memory
type memoryLeadRepository struct {
	mu        sync.Mutex
	leads     map[string]*models.Lead
	createErr error
}

func newMemoryLeadRepository() *memoryLeadRepository {
	return &memoryLeadRepository{leads: make(map[string]*models.Lead)}
}

var _ repository.LeadRepositoryInterface = (*memoryLeadRepository)(nil)

func (r *memoryLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	stored := *lead
	r.leads[lead.ID] = &stored
	return nil
}

func (r *memoryLeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, repository.ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

func (r *memoryLeadRepository) GetByShareToken(ctx context.Context, token string) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lead := range r.leads {
		if lead.ShareToken == token {
			out := *lead
			return &out, nil
		}
	}
	return nil, repository.ErrLeadNotFound
}

func (r *memoryLeadRepository) List(ctx context.Context, status models.LeadStatus, limit int) ([]models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		if status == "" || lead.Status == status {
			out = append(out, *lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryLeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, repository.ErrLeadNotFound
	}
	lead.Status = status
	out := *lead
	return &out, nil
}

func (r *memoryLeadRepository) SetQuoteURL(ctx context.Context, id, quoteURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[id]
	if !ok {
		return repository.ErrLeadNotFound
	}
	lead.QuoteURL = quoteURL
	return nil
}

// stubQuoteService renders a marker page and a fake PDF
type stubQuoteService struct {
	pdfErr error
}

func (s *stubQuoteService) RenderQuoteHTML(lead *models.Lead) (string, error) {
	return "<html>" + lead.Customer.Name + "</html>", nil
}

func (s *stubQuoteService) GeneratePDF(ctx context.Context, shareToken string) ([]byte, error) {
	if s.pdfErr != nil {
		return nil, s.pdfErr
	}
	return []byte("%PDF-" + shareToken), nil
}

// stubDrive records uploads
type stubDrive struct {
	uploads []string
	err     error
}

func (d *stubDrive) UploadQuote(ctx context.Context, fileName string, pdf []byte) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.uploads = append(d.uploads, fileName)
	return "https://drive.google.com/file/d/abc/view", nil
}

var errBoom = errors.New("boom")

func validCheckout() models.CheckoutRequest {
	return models.CheckoutRequest{
		Customer:    models.Customer{Name: "Giulia Bianchi", Email: "giulia@example.it", EventDate: "2026-06-20"},
		GDPRConsent: models.GDPRConsent{Accepted: true},
	}
}

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studio-storefront/pricing"
	"studio-storefront/utils"
)

// LeadStatus is the sales pipeline stage of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

var leadStatuses = map[LeadStatus]bool{
	LeadStatusNew:       true,
	LeadStatusContacted: true,
	LeadStatusQuoted:    true,
	LeadStatusWon:       true,
	LeadStatusLost:      true,
}

// ParseLeadStatus validates a status coming from the dashboard
func ParseLeadStatus(s string) (LeadStatus, error) {
	status := LeadStatus(strings.ToLower(strings.TrimSpace(s)))
	if !leadStatuses[status] {
		return "", fmt.Errorf("invalid lead status %q", s)
	}
	return status, nil
}

// Validation errors returned by NewLead
var (
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrContactRequired      = errors.New("customer email or phone is required")
	ErrConsentRequired      = errors.New("privacy consent must be accepted")
	ErrEmptySelection       = errors.New("at least one item must be selected")
)

// Customer is the contact data collected at checkout
type Customer struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	EventDate string `json:"eventDate,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// GDPRConsent records what the customer accepted and when
type GDPRConsent struct {
	Accepted   bool   `json:"accepted"`
	Marketing  bool   `json:"marketing"`
	AcceptedAt string `json:"acceptedAt,omitempty"`
	Version    string `json:"version,omitempty"`
}

// SelectedItem is a frozen copy of a cart item at checkout time
type SelectedItem struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Category      pricing.Category `json:"category"`
	Price         int64            `json:"price"`
	OriginalPrice int64            `json:"originalPrice,omitempty"`
	IsGift        bool             `json:"isGift"`
}

// Lead is an immutable snapshot of a customer's request. Prices are copied at
// creation and are never recomputed, even when the catalog or discounts change.
type Lead struct {
	ID            string            `json:"id"`
	ShareToken    string            `json:"shareToken"`
	Customer      Customer          `json:"customer"`
	SelectedItems []SelectedItem    `json:"selectedItems"`
	Pricing       pricing.Breakdown `json:"pricing"`
	GDPRConsent   GDPRConsent       `json:"gdprConsent"`
	Status        LeadStatus        `json:"status"`
	QuoteURL      string            `json:"quoteUrl,omitempty"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

// NewLead validates checkout input and freezes the selection and breakdown into a lead.
// Gift flags come from the breakdown lines, so the lead shows exactly what was priced.
func NewLead(customer Customer, consent GDPRConsent, items []pricing.CartItem, breakdown pricing.Breakdown, now time.Time) (*Lead, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	customer.Phone = strings.TrimSpace(customer.Phone)

	if customer.Name == "" {
		return nil, ErrCustomerNameRequired
	}
	if customer.Email == "" && customer.Phone == "" {
		return nil, ErrContactRequired
	}
	if !consent.Accepted {
		return nil, ErrConsentRequired
	}
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}

	lines := make(map[string]pricing.Line)
	for _, line := range breakdown.Lines() {
		lines[line.ID] = line
	}

	selected := make([]SelectedItem, 0, len(items))
	for _, item := range items {
		si := SelectedItem{
			ID:            item.ID,
			Title:         item.Title,
			Category:      item.Category,
			Price:         item.Price,
			OriginalPrice: item.OriginalPrice,
		}
		if line, ok := lines[item.ID]; ok {
			si.Price = line.Price
			si.OriginalPrice = line.OriginalPrice
			si.IsGift = line.IsGift
		}
		selected = append(selected, si)
	}

	ts := now.UTC().Format(time.RFC3339)
	if consent.AcceptedAt == "" {
		consent.AcceptedAt = ts
	}

	return &Lead{
		ID:            uuid.NewString(),
		ShareToken:    strings.ReplaceAll(uuid.NewString(), "-", ""),
		Customer:      customer,
		SelectedItems: selected,
		Pricing:       breakdown.Clone(),
		GDPRConsent:   consent,
		Status:        LeadStatusNew,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}, nil
}

// LeadListItem is the dashboard summary of a lead
type LeadListItem struct {
	ID          string     `json:"id"`
	ShareToken  string     `json:"shareToken"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	ItemCount   int        `json:"itemCount"`
	FinalTotal  int64      `json:"finalTotal"`
	Status      LeadStatus `json:"status"`
	StatusLabel string     `json:"statusLabel"`
	CreatedAt   string     `json:"createdAt"`
}

// Summary returns the dashboard row for the lead
func (l *Lead) Summary() LeadListItem {
	return LeadListItem{
		ID:          l.ID,
		ShareToken:  l.ShareToken,
		Name:        l.Customer.Name,
		Email:       l.Customer.Email,
		Phone:       l.Customer.Phone,
		ItemCount:   len(l.SelectedItems),
		FinalTotal:  l.Pricing.FinalTotal(),
		Status:      l.Status,
		StatusLabel: utils.LeadStatusLabel(string(l.Status)),
		CreatedAt:   l.CreatedAt,
	}
}

// LeadListResponse represents the response for listing leads
// Example response:
//
//	{
//	  "leads": [{"id": "…", "name": "Giulia Bianchi", "finalTotal": 2745, "status": "new"}],
//	  "total": 1
//	}
type LeadListResponse struct {
	Leads []LeadListItem `json:"leads"`
	Total int            `json:"total"`
}

// UpdateLeadStatusRequest is the body of PATCH /admin/leads/{id}
// Example: {"status": "contacted"}
type UpdateLeadStatusRequest struct {
	Status string `json:"status"`
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"studio-storefront/db"
	"studio-storefront/models"
)

// ErrLeadNotFound is returned when no lead matches the lookup
var ErrLeadNotFound = errors.New("lead not found")

// LeadRepository handles database operations for leads.
// Customer, items, pricing and consent are stored as JSON documents so a lead reads
// back exactly as it was written.
type LeadRepository struct{}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository() *LeadRepository {
	return &LeadRepository{}
}

// Ensure LeadRepository implements LeadRepositoryInterface
var _ LeadRepositoryInterface = (*LeadRepository)(nil)

const leadColumns = `id, share_token, customer, selected_items, pricing, gdpr_consent, status, quote_url, created_at, updated_at`

// Create stores a new lead
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	log.Printf("📦 CreateLead: Storing lead id=%s", lead.ID)

	customer, err := json.Marshal(lead.Customer)
	if err != nil {
		return fmt.Errorf("failed to encode customer: %w", err)
	}
	items, err := json.Marshal(lead.SelectedItems)
	if err != nil {
		return fmt.Errorf("failed to encode selected items: %w", err)
	}
	pricingJSON, err := json.Marshal(lead.Pricing)
	if err != nil {
		return fmt.Errorf("failed to encode pricing: %w", err)
	}
	consent, err := json.Marshal(lead.GDPRConsent)
	if err != nil {
		return fmt.Errorf("failed to encode consent: %w", err)
	}

	query := db.Rebind(`
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	_, err = db.Conn(ctx).ExecContext(ctx, query,
		lead.ID, lead.ShareToken, string(customer), string(items), string(pricingJSON), string(consent),
		string(lead.Status), lead.QuoteURL, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		log.Printf("❌ CreateLead: Error inserting lead: %v", err)
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	log.Printf("✅ CreateLead: Stored lead id=%s total=%d", lead.ID, lead.Pricing.FinalTotal())
	return nil
}

// GetByID returns the lead with the given id
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	row := db.Conn(ctx).QueryRowContext(ctx, db.Rebind(`SELECT `+leadColumns+` FROM leads WHERE id = $1`), id)
	return scanLead(row)
}

// GetByShareToken returns the lead a public quote link points to
func (r *LeadRepository) GetByShareToken(ctx context.Context, token string) (*models.Lead, error) {
	row := db.Conn(ctx).QueryRowContext(ctx, db.Rebind(`SELECT `+leadColumns+` FROM leads WHERE share_token = $1`), token)
	return scanLead(row)
}

// List returns leads newest first, optionally filtered by status
func (r *LeadRepository) List(ctx context.Context, status models.LeadStatus, limit int) ([]models.Lead, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = db.Conn(ctx).QueryContext(ctx,
			db.Rebind(`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id ASC LIMIT $1`), limit)
	} else {
		rows, err = db.Conn(ctx).QueryContext(ctx,
			db.Rebind(`SELECT `+leadColumns+` FROM leads WHERE status = $1 ORDER BY created_at DESC, id ASC LIMIT $2`),
			string(status), limit)
	}
	if err != nil {
		log.Printf("❌ ListLeads: Error querying leads: %v", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			log.Printf("❌ ListLeads: Error scanning lead: %v", err)
			continue
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// UpdateStatus moves a lead through the pipeline. The priced snapshot is never touched.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Conn(ctx).ExecContext(ctx, db.Rebind(`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`),
		string(status), now, id)
	if err != nil {
		log.Printf("❌ UpdateLeadStatus: Error updating lead %s: %v", id, err)
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrLeadNotFound
	}

	log.Printf("✅ UpdateLeadStatus: lead %s -> %s", id, status)
	return r.GetByID(ctx, id)
}

// SetQuoteURL records where the shared quote document lives
func (r *LeadRepository) SetQuoteURL(ctx context.Context, id string, quoteURL string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Conn(ctx).ExecContext(ctx, db.Rebind(`UPDATE leads SET quote_url = $1, updated_at = $2 WHERE id = $3`),
		quoteURL, now, id)
	if err != nil {
		return fmt.Errorf("failed to update quote url: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLeadNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var (
		lead                                  models.Lead
		customer, items, pricingJSON, consent string
		status                                string
	)
	err := row.Scan(&lead.ID, &lead.ShareToken, &customer, &items, &pricingJSON, &consent,
		&status, &lead.QuoteURL, &lead.CreatedAt, &lead.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	lead.Status = models.LeadStatus(status)

	if err := json.Unmarshal([]byte(customer), &lead.Customer); err != nil {
		return nil, fmt.Errorf("failed to decode customer: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &lead.SelectedItems); err != nil {
		return nil, fmt.Errorf("failed to decode selected items: %w", err)
	}
	if err := json.Unmarshal([]byte(pricingJSON), &lead.Pricing); err != nil {
		return nil, fmt.Errorf("failed to decode pricing: %w", err)
	}
	if err := json.Unmarshal([]byte(consent), &lead.GDPRConsent); err != nil {
		return nil, fmt.Errorf("failed to decode consent: %w", err)
	}
	return &lead, nil
}

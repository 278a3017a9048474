package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"studio-storefront/models"
	"studio-storefront/repository"
)

// ErrSharingDisabled is returned when no Drive folder is configured
var ErrSharingDisabled = errors.New("quote sharing is not configured")

// LeadService serves stored leads to the quote pages and the admin dashboard
type LeadService struct {
	leads    repository.LeadRepositoryInterface
	quotes   QuoteServiceInterface
	drive    DriveServiceInterface
	whatsapp *WhatsAppService
	baseURL  string
}

// NewLeadService creates a new LeadService. drive may be nil when sharing is disabled.
func NewLeadService(
	leads repository.LeadRepositoryInterface,
	quotes QuoteServiceInterface,
	drive DriveServiceInterface,
	whatsapp *WhatsAppService,
	baseURL string,
) *LeadService {
	return &LeadService{
		leads:    leads,
		quotes:   quotes,
		drive:    drive,
		whatsapp: whatsapp,
		baseURL:  baseURL,
	}
}

// ByShareToken returns the lead behind a public quote link
func (s *LeadService) ByShareToken(ctx context.Context, token string) (*models.Lead, error) {
	return s.leads.GetByShareToken(ctx, token)
}

// ByID returns a lead for the dashboard
func (s *LeadService) ByID(ctx context.Context, id string) (*models.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

// List returns dashboard rows, newest first
func (s *LeadService) List(ctx context.Context, status models.LeadStatus, limit int) (*models.LeadListResponse, error) {
	leads, err := s.leads.List(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	resp := &models.LeadListResponse{Leads: make([]models.LeadListItem, 0, len(leads))}
	for i := range leads {
		resp.Leads = append(resp.Leads, leads[i].Summary())
	}
	resp.Total = len(resp.Leads)
	return resp, nil
}

// UpdateStatus changes a lead's pipeline status
func (s *LeadService) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error) {
	return s.leads.UpdateStatus(ctx, id, status)
}

// RenderHTML renders the quote page of a lead
func (s *LeadService) RenderHTML(ctx context.Context, token string) (string, error) {
	lead, err := s.leads.GetByShareToken(ctx, token)
	if err != nil {
		return "", err
	}
	return s.quotes.RenderQuoteHTML(lead)
}

// PDF prints a lead's quote page
func (s *LeadService) PDF(ctx context.Context, token string) ([]byte, *models.Lead, error) {
	lead, err := s.leads.GetByShareToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.quotes.GeneratePDF(ctx, lead.ShareToken)
	if err != nil {
		return nil, nil, err
	}
	return pdf, lead, nil
}

// WhatsApp returns the message text and wa.me link for a lead's quote
func (s *LeadService) WhatsApp(ctx context.Context, token string) (*models.WhatsAppResponse, error) {
	lead, err := s.leads.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	quoteURL := lead.QuoteURL
	if quoteURL == "" {
		quoteURL = QuoteLink(s.baseURL, lead.ShareToken)
	}
	message := s.whatsapp.BuildMessage(lead, quoteURL)
	return &models.WhatsAppResponse{Message: message, URL: s.whatsapp.Link(message)}, nil
}

// Share uploads the quote PDF to Drive, stores the public link on the lead and
// returns it. An already shared quote returns its existing link.
func (s *LeadService) Share(ctx context.Context, token string) (string, error) {
	if s.drive == nil {
		return "", ErrSharingDisabled
	}

	pdf, lead, err := s.PDF(ctx, token)
	if err != nil {
		return "", err
	}
	if lead.QuoteURL != "" {
		return lead.QuoteURL, nil
	}

	name := fmt.Sprintf("Preventivo %s %s.pdf", lead.Customer.Name, quoteNumber(lead))
	link, err := s.drive.UploadQuote(ctx, name, pdf)
	if err != nil {
		return "", fmt.Errorf("failed to upload quote: %w", err)
	}
	if err := s.leads.SetQuoteURL(ctx, lead.ID, link); err != nil {
		return "", err
	}
	if lead.Status == models.LeadStatusNew {
		if _, err := s.leads.UpdateStatus(ctx, lead.ID, models.LeadStatusQuoted); err != nil {
			log.Printf("⚠️ Share: lead %s shared but status not updated: %v", lead.ID, err)
		}
	}
	return link, nil
}

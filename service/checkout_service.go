package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"studio-storefront/cart"
	"studio-storefront/models"
	"studio-storefront/repository"
)

// ErrCartConflicts is returned when a cart holds items the current rules block
var ErrCartConflicts = errors.New("cart has conflicting items")

// CheckoutService turns a cart into a stored lead
type CheckoutService struct {
	carts    *CartService
	leads    repository.LeadRepositoryInterface
	whatsapp *WhatsAppService
	baseURL  string
	clock    func() time.Time
}

// NewCheckoutService creates a new CheckoutService. A nil clock means time.Now.
func NewCheckoutService(
	carts *CartService,
	leads repository.LeadRepositoryInterface,
	whatsapp *WhatsAppService,
	baseURL string,
	clock func() time.Time,
) *CheckoutService {
	if clock == nil {
		clock = time.Now
	}
	return &CheckoutService{
		carts:    carts,
		leads:    leads,
		whatsapp: whatsapp,
		baseURL:  baseURL,
		clock:    clock,
	}
}

// Checkout freezes the cart's current breakdown into a lead, stores it and clears the
// cart. The lead carries the breakdown the customer was shown, copied, never recomputed.
func (s *CheckoutService) Checkout(ctx context.Context, cartID string, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	log.Printf("📥 Checkout: cart %s", cartID)

	var lead *models.Lead
	err := s.carts.WithCart(cartID, func(c *cart.Cart) error {
		c.Refresh()
		if conflicts := c.Conflicts(); len(conflicts) > 0 {
			reasons := make([]string, 0, len(conflicts))
			for _, id := range conflicts {
				reasons = append(reasons, fmt.Sprintf("%s (%s)", id, c.UnavailableReason(id)))
			}
			return fmt.Errorf("%w: %s", ErrCartConflicts, strings.Join(reasons, "; "))
		}

		var err error
		lead, err = models.NewLead(req.Customer, req.GDPRConsent, c.Items(), c.Breakdown(), s.clock())
		if err != nil {
			return err
		}

		if err := s.leads.Create(ctx, lead); err != nil {
			return fmt.Errorf("failed to store lead: %w", err)
		}
		c.Clear()
		return nil
	})
	if err != nil {
		log.Printf("❌ Checkout: cart %s: %v", cartID, err)
		return nil, err
	}

	quoteURL := QuoteLink(s.baseURL, lead.ShareToken)
	resp := &models.CheckoutResponse{
		LeadID:        lead.ID,
		ShareToken:    lead.ShareToken,
		QuoteURL:      quoteURL,
		Pricing:       lead.Pricing,
		SelectedItems: lead.SelectedItems,
	}
	if s.whatsapp != nil {
		resp.WhatsAppURL = s.whatsapp.Link(s.whatsapp.BuildMessage(lead, quoteURL))
	}

	log.Printf("💰 Checkout: lead %s stored, final total %d", lead.ID, lead.Pricing.FinalTotal())
	return resp, nil
}

// QuoteLink returns the public link of a lead's quote page
func QuoteLink(baseURL, shareToken string) string {
	return fmt.Sprintf("%s/quotes/%s/render", strings.TrimSuffix(baseURL, "/"), shareToken)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio-storefront/cart"
	"studio-storefront/models"
	"studio-storefront/pricing"
	"studio-storefront/utils"
)

// Cart mutation errors
var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrItemNotInCatalog = errors.New("item not in catalog")
	ErrItemNotSelected  = errors.New("item not in cart")
	ErrAlreadySelected  = errors.New("item already in cart")
	ErrItemUnavailable  = errors.New("item unavailable")
)

type cartSession struct {
	mu        sync.Mutex
	id        string
	cart      *cart.Cart
	expiresAt time.Time
}

// CartService keeps in-memory cart sessions. Each session has its own lock so a
// mutation and its recompute pass are never interleaved with another request on
// the same cart. Sessions adopt the engine's newest snapshot lazily, on next access.
type CartService struct {
	engine *pricing.Engine
	ttl    time.Duration
	clock  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*cartSession
}

// NewCartService creates a new CartService. A nil clock means time.Now.
func NewCartService(engine *pricing.Engine, ttl time.Duration, clock func() time.Time) *CartService {
	if clock == nil {
		clock = time.Now
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CartService{
		engine:   engine,
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]*cartSession),
	}
}

// Create opens an empty cart session
func (s *CartService) Create() *models.CartResponse {
	session := &cartSession{
		id:        uuid.NewString(),
		cart:      cart.New(s.engine.Current(), s.clock),
		expiresAt: s.clock().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.id] = session
	s.mu.Unlock()

	log.Printf("🛒 CartService: created cart %s", session.id)
	return session.response()
}

// Get returns the current state of a cart, repriced against the clock
func (s *CartService) Get(cartID string) (*models.CartResponse, error) {
	var resp *models.CartResponse
	err := s.withSession(cartID, func(session *cartSession) error {
		session.cart.Refresh()
		resp = session.response()
		return nil
	})
	return resp, err
}

// AddItem selects an item, failing with the item's unavailable reason when it is blocked
func (s *CartService) AddItem(cartID, itemID string) (*models.CartResponse, error) {
	var resp *models.CartResponse
	err := s.withSession(cartID, func(session *cartSession) error {
		c := session.cart
		if _, ok := c.Snapshot().Catalog.Get(itemID); !ok {
			return fmt.Errorf("%w: %s", ErrItemNotInCatalog, itemID)
		}
		if c.Contains(itemID) {
			return fmt.Errorf("%w: %s", ErrAlreadySelected, itemID)
		}
		if !c.IsAvailable(itemID) {
			return fmt.Errorf("%w: %s", ErrItemUnavailable, c.UnavailableReason(itemID))
		}
		if !c.Add(itemID) {
			return fmt.Errorf("%w: %s", ErrItemUnavailable, itemID)
		}
		log.Printf("✅ CartService: cart %s added %s (total %s)", cartID, itemID, utils.FormatEUR(c.Breakdown().FinalTotal()))
		resp = session.response()
		return nil
	})
	return resp, err
}

// RemoveItem deselects an item
func (s *CartService) RemoveItem(cartID, itemID string) (*models.CartResponse, error) {
	var resp *models.CartResponse
	err := s.withSession(cartID, func(session *cartSession) error {
		if !session.cart.Remove(itemID) {
			return fmt.Errorf("%w: %s", ErrItemNotSelected, itemID)
		}
		resp = session.response()
		return nil
	})
	return resp, err
}

// Clear empties a cart without closing the session
func (s *CartService) Clear(cartID string) (*models.CartResponse, error) {
	var resp *models.CartResponse
	err := s.withSession(cartID, func(session *cartSession) error {
		session.cart.Clear()
		resp = session.response()
		return nil
	})
	return resp, err
}

// Delete closes a cart session
func (s *CartService) Delete(cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[cartID]; !ok {
		return ErrCartNotFound
	}
	delete(s.sessions, cartID)
	return nil
}

// WithCart runs fn while holding the cart's lock, after adopting the newest snapshot
func (s *CartService) WithCart(cartID string, fn func(c *cart.Cart) error) error {
	return s.withSession(cartID, func(session *cartSession) error {
		return fn(session.cart)
	})
}

// Catalog returns every active item with its status for the given cart's selection.
// An empty cartID evaluates against an empty selection.
func (s *CartService) Catalog(cartID string) (*models.CatalogResponse, error) {
	if cartID == "" {
		snap := s.engine.Current()
		return catalogView(snap, snap.Evaluate(nil), nil, s.clock()), nil
	}

	var resp *models.CatalogResponse
	err := s.withSession(cartID, func(session *cartSession) error {
		c := session.cart
		resp = catalogView(c.Snapshot(), c.Statuses(), c.IDs(), s.clock())
		return nil
	})
	return resp, err
}

// CleanupExpired drops sessions past their expiry and returns how many were removed
func (s *CartService) CleanupExpired() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		session.mu.Lock()
		expired := now.After(session.expiresAt)
		session.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("🧹 CartService: removed %d expired carts", removed)
	}
	return removed
}

// StartJanitor runs CleanupExpired every interval until ctx is done
func (s *CartService) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanupExpired()
		}
	}
}

// Len returns the number of open sessions
func (s *CartService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *CartService) withSession(cartID string, fn func(session *cartSession) error) error {
	s.mu.RLock()
	session, ok := s.sessions[cartID]
	s.mu.RUnlock()
	if !ok {
		return ErrCartNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	now := s.clock()
	if now.After(session.expiresAt) {
		return ErrCartNotFound
	}
	session.expiresAt = now.Add(s.ttl)

	if latest := s.engine.Current(); latest.Version > session.cart.Snapshot().Version {
		session.cart.ApplySnapshot(latest)
		if conflicts := session.cart.Conflicts(); len(conflicts) > 0 {
			log.Printf("⚠️ CartService: cart %s has conflicts after settings v%d: %v", cartID, latest.Version, conflicts)
		}
	}
	return fn(session)
}

func (session *cartSession) response() *models.CartResponse {
	c := session.cart
	conflicts := c.Conflicts()
	if conflicts == nil {
		conflicts = []string{}
	}
	return &models.CartResponse{
		ID:        session.id,
		Items:     c.Items(),
		Pricing:   c.Breakdown().Clone(),
		Statuses:  c.Statuses(),
		Conflicts: conflicts,
		Version:   c.Snapshot().Version,
		ExpiresAt: session.expiresAt.UTC().Format(time.RFC3339),
	}
}

func catalogView(snap *pricing.Snapshot, statuses map[string]pricing.ItemStatus, selected []string, now time.Time) *models.CatalogResponse {
	inCart := make(map[string]bool, len(selected))
	for _, id := range selected {
		inCart[id] = true
	}

	items := make([]models.CatalogItemView, 0, snap.Catalog.Len())
	for _, item := range snap.Catalog.Items() {
		status := statuses[item.ID]
		items = append(items, models.CatalogItemView{
			ID:            item.ID,
			Title:         item.Title,
			Category:      item.Category,
			CategoryLabel: utils.CategoryLabel(string(item.Category)),
			Price:         item.Price,
			OriginalPrice: item.OriginalPrice,
			Selected:      inCart[item.ID],
			Available:     status.Available,
			Reason:        status.Reason,
			IsGift:        status.IsGift,
		})
	}

	resp := &models.CatalogResponse{Version: snap.Version, Items: items}
	if snap.Discounts.Global.InEffect(now) {
		global := snap.Discounts.Global
		resp.GlobalDiscount = &global
	}
	return resp
}

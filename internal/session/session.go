// Package session gives each open admin screen its own cart, catalog cache
// and order history, with explicit construction and teardown. All access to
// a session's state goes through its methods, which serialize behind one
// mutex: within a session, user actions run to completion one at a time.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/cart"
	"github.com/pizzadesk/api/internal/catalog"
	"github.com/pizzadesk/api/internal/checkout"
	"github.com/pizzadesk/api/internal/history"
	"github.com/shopspring/decimal"
)

// Backend is the remote API surface sessions need. Satisfied by
// *backend.Client.
type Backend interface {
	ListItems(ctx context.Context) ([]backend.Item, error)
	ListOrders(ctx context.Context) ([]backend.Order, error)
	CreateOrder(ctx context.Context, sub backend.OrderSubmission) (int64, error)
}

// Session owns the state of one invoice screen.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	cart     *cart.Cart
	catalog  *catalog.Cache
	history  *history.ViewModel
	checkout *checkout.Service
}

// View is a consistent read snapshot of a session's cart.
type View struct {
	Lines         []cart.LineItem
	CustomerName  string
	CustomerPhone string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// RefreshCatalog refetches the menu. On failure the previous snapshot
// stays available and the error is returned for user notification.
func (s *Session) RefreshCatalog(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Refresh(ctx)
}

// Catalog returns the current menu snapshot.
func (s *Session) Catalog() []backend.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.List()
}

// AddItem adds one unit of the catalog item with the given id to the cart.
// Returns false if the id is not in the catalog snapshot.
func (s *Session) AddItem(itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.catalog.Find(itemID)
	if !ok {
		return false
	}
	s.cart.AddItem(it)
	return true
}

// RemoveItem deletes the cart line for the given item id.
func (s *Session) RemoveItem(itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveItem(itemID)
}

// SetQuantity replaces a line's quantity; <= 0 removes the line.
func (s *Session) SetQuantity(itemID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetQuantity(itemID, quantity)
}

// SetCustomer sets the cart's customer fields.
func (s *Session) SetCustomer(name, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetCustomer(name, phone)
}

// ClearCart empties the cart and customer fields.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
}

// CartView returns a consistent snapshot of the cart with derived totals.
func (s *Session) CartView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Lines:         s.cart.Lines(),
		CustomerName:  s.cart.CustomerName(),
		CustomerPhone: s.cart.CustomerPhone(),
		Subtotal:      s.cart.Subtotal(),
		Tax:           s.cart.Tax(),
		Total:         s.cart.Total(),
	}
}

// Submit runs the order submission workflow against this session's cart.
func (s *Session) Submit(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Submit(ctx, s.cart)
}

// RefreshHistory refetches the order list, same policy as RefreshCatalog.
func (s *Session) RefreshHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Refresh(ctx)
}

// Orders returns the current order history snapshot.
func (s *Session) Orders() []backend.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.List()
}

// Manager tracks the live sessions.
type Manager struct {
	backend Backend
	taxRate decimal.Decimal

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager whose sessions talk to the given backend and
// tax carts at the given rate.
func NewManager(b Backend, taxRate decimal.Decimal) *Manager {
	return &Manager{
		backend:  b,
		taxRate:  taxRate,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open creates a new empty session. The caller is expected to refresh the
// catalog and history right after, mirroring the screen's mount sequence.
func (m *Manager) Open() *Session {
	hist := history.New(m.backend)
	s := &Session{
		ID:       uuid.New(),
		cart:     cart.New(m.taxRate),
		catalog:  catalog.New(m.backend),
		history:  hist,
		checkout: checkout.NewService(m.backend, hist),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session and everything it owns. Returns false if the id
// is unknown.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

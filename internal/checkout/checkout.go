// Package checkout turns a cart into a recorded order via the backend.
package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/cart"
)

// Validation errors, caught before any network call. The cart is never
// touched when one of these is returned.
var (
	ErrNameRequired = errors.New("customer name required")
	ErrEmptyCart    = errors.New("cart is empty")
)

// OrderPoster is the backend surface the workflow needs. Satisfied by
// *backend.Client.
type OrderPoster interface {
	CreateOrder(ctx context.Context, sub backend.OrderSubmission) (int64, error)
}

// HistoryRefresher is refreshed after each successful submission. Satisfied
// by *history.ViewModel.
type HistoryRefresher interface {
	Refresh(ctx context.Context) error
}

// Service runs the order submission workflow for one session.
type Service struct {
	poster  OrderPoster
	history HistoryRefresher
}

// NewService creates a new Service.
func NewService(poster OrderPoster, history HistoryRefresher) *Service {
	return &Service{poster: poster, history: history}
}

// Submit validates the cart, posts it to the backend, and on success clears
// the cart and refreshes the order history. Returns the backend-assigned
// order id.
//
// On any failure the cart is left exactly as it was, so the user can fix
// the input or simply resubmit; there is no automatic retry. An order is
// either fully recorded (cart clears) or not recorded at all.
func (s *Service) Submit(ctx context.Context, c *cart.Cart) (int64, error) {
	if c.CustomerName() == "" {
		return 0, ErrNameRequired
	}
	// The UI disables submit on an empty cart; still refuse here so a
	// zero-item order can never reach the backend.
	if c.IsEmpty() {
		return 0, ErrEmptyCart
	}

	id, err := s.poster.CreateOrder(ctx, Snapshot(c))
	if err != nil {
		return 0, err
	}

	c.Clear()

	// Submission already succeeded; a failed refresh only leaves the
	// history stale, per its usual policy.
	if err := s.history.Refresh(ctx); err != nil {
		log.Printf("WARNING: order %d recorded but history refresh failed: %v", id, err)
	}
	return id, nil
}

// Snapshot builds the write-only projection of the cart, capturing each
// line's price at this moment so the recorded order is immune to later
// price changes.
func Snapshot(c *cart.Cart) backend.OrderSubmission {
	lines := c.Lines()
	sub := backend.OrderSubmission{
		CustomerName:  c.CustomerName(),
		CustomerPhone: c.CustomerPhone(),
		Subtotal:      c.Subtotal(),
		Items:         make([]backend.SubmissionItem, 0, len(lines)),
	}
	for _, l := range lines {
		sub.Items = append(sub.Items, backend.SubmissionItem{
			ItemID:       l.Item.ID,
			Quantity:     l.Quantity,
			PriceAtOrder: l.Item.Price,
		})
	}
	return sub
}

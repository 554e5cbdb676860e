// Package history caches the list of recorded orders shown on the invoice
// screen, refreshed after each successful submission.
package history

import (
	"context"

	"github.com/pizzadesk/api/internal/backend"
)

// Fetcher is the backend surface the view-model needs. Satisfied by
// *backend.Client.
type Fetcher interface {
	ListOrders(ctx context.Context) ([]backend.Order, error)
}

// ViewModel holds the latest successfully fetched order list, in the
// backend's own ordering. Same stale-on-failure policy as the catalog
// cache. Not safe for concurrent use: the owning session serializes access.
type ViewModel struct {
	fetcher Fetcher
	orders  []backend.Order
}

// New creates an empty view-model backed by the given fetcher.
func New(fetcher Fetcher) *ViewModel {
	return &ViewModel{fetcher: fetcher}
}

// Refresh replaces the snapshot with a fresh fetch. On failure the previous
// snapshot is retained and the *backend.FetchError is returned.
func (v *ViewModel) Refresh(ctx context.Context) error {
	orders, err := v.fetcher.ListOrders(ctx)
	if err != nil {
		return err
	}
	v.orders = orders
	return nil
}

// List returns the current snapshot. Callers must not mutate it.
func (v *ViewModel) List() []backend.Order {
	return v.orders
}

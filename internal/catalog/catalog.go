// Package catalog caches the menu fetched from the backend so the invoice
// screen can render and price items without a round trip per action.
package catalog

import (
	"context"

	"github.com/pizzadesk/api/internal/backend"
)

// Fetcher is the backend surface the cache needs. Satisfied by
// *backend.Client.
type Fetcher interface {
	ListItems(ctx context.Context) ([]backend.Item, error)
}

// Cache holds the latest successfully fetched menu snapshot. Refresh swaps
// the snapshot wholesale; a failed refresh keeps the previous one so the
// screen stays usable on a flaky connection. Not safe for concurrent use:
// the owning session serializes access.
type Cache struct {
	fetcher Fetcher
	items   []backend.Item
}

// New creates an empty cache backed by the given fetcher.
func New(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher}
}

// Refresh replaces the snapshot with a fresh fetch. On failure the previous
// snapshot is retained and the *backend.FetchError is returned for the
// caller to surface.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.fetcher.ListItems(ctx)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

// List returns the current snapshot. Callers must not mutate it.
func (c *Cache) List() []backend.Item {
	return c.items
}

// Find returns the item with the given id from the snapshot.
func (c *Cache) Find(id int64) (backend.Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return backend.Item{}, false
}

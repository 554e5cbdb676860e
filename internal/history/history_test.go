package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/history"
)

// mockFetcher implements history.Fetcher with configurable behavior.
type mockFetcher struct {
	orders []backend.Order
	err    error
}

func (m *mockFetcher) ListOrders(_ context.Context) ([]backend.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func TestRefresh_ReplacesSnapshotKeepingServerOrder(t *testing.T) {
	f := &mockFetcher{orders: []backend.Order{{ID: 3}, {ID: 1}, {ID: 2}}}
	v := history.New(f)

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got := v.List()
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Errorf("server ordering not preserved: %v", got)
	}
}

func TestRefresh_FailureKeepsStaleSnapshot(t *testing.T) {
	f := &mockFetcher{orders: []backend.Order{{ID: 1, CustomerName: "Ada"}}}
	v := history.New(f)

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	f.err = &backend.FetchError{Op: "list orders", Err: errors.New("timeout")}
	if err := v.Refresh(context.Background()); err == nil {
		t.Fatal("expected an error")
	}

	if len(v.List()) != 1 || v.List()[0].CustomerName != "Ada" {
		t.Errorf("stale snapshot not retained: %v", v.List())
	}
}

func TestList_EmptyBeforeFirstRefresh(t *testing.T) {
	v := history.New(&mockFetcher{})
	if len(v.List()) != 0 {
		t.Errorf("expected empty snapshot, got %v", v.List())
	}
}

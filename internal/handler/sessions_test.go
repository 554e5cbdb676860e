package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/cart"
	"github.com/pizzadesk/api/internal/handler"
	"github.com/pizzadesk/api/internal/session"
	"github.com/pizzadesk/api/internal/ws"
	"github.com/shopspring/decimal"
)

// --- Mock backend ---

// mockBackend implements session.Backend with configurable behavior.
type mockBackend struct {
	items         []backend.Item
	listItemsErr  error
	orders        []backend.Order
	listOrdersErr error

	createOrderFn    func(ctx context.Context, sub backend.OrderSubmission) (int64, error)
	createOrderCalls int
	lastSubmission   backend.OrderSubmission
	listOrdersCalls  int
}

func (m *mockBackend) ListItems(_ context.Context) ([]backend.Item, error) {
	if m.listItemsErr != nil {
		return nil, m.listItemsErr
	}
	return m.items, nil
}

func (m *mockBackend) ListOrders(_ context.Context) ([]backend.Order, error) {
	m.listOrdersCalls++
	if m.listOrdersErr != nil {
		return nil, m.listOrdersErr
	}
	return m.orders, nil
}

func (m *mockBackend) CreateOrder(ctx context.Context, sub backend.OrderSubmission) (int64, error) {
	m.createOrderCalls++
	m.lastSubmission = sub
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, sub)
	}
	return 42, nil
}

// --- Helpers ---

func setupSessionRouter(b *mockBackend) *chi.Mux {
	sessions := session.NewManager(b, cart.DefaultTaxRate)
	hub := ws.NewHub()
	go hub.Run()

	sh := handler.NewSessionHandler(sessions)
	oh := handler.NewOrderHandler(sessions, hub)
	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		sh.RegisterRoutes(r)
		oh.RegisterRoutes(r)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decimalField(t *testing.T, resp map[string]interface{}, key string) decimal.Decimal {
	t.Helper()
	s, ok := resp[key].(string)
	if !ok {
		t.Fatalf("%s: expected decimal string, got %T (%v)", key, resp[key], resp[key])
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("%s: parse %q: %v", key, s, err)
	}
	return d
}

// openSession opens a session and returns its id path segment.
func openSession(t *testing.T, router http.Handler) string {
	t.Helper()
	rr := doRequest(t, router, "POST", "/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("open session: got %d; body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	id, _ := resp["session_id"].(string)
	if id == "" {
		t.Fatal("no session_id in response")
	}
	return id
}

func menuBackend() *mockBackend {
	return &mockBackend{
		items: []backend.Item{
			{ID: 1, Name: "Margherita", Category: "pizza", Price: decimal.NewFromFloat(10.00)},
			{ID: 2, Name: "Cola", Category: "beverage", Price: decimal.NewFromFloat(2.50)},
		},
		orders: []backend.Order{{ID: 9, CustomerName: "Ada"}},
	}
}

// --- Session lifecycle ---

func TestOpenSession_LoadsCatalogAndHistory(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)

	rr := doRequest(t, router, "GET", "/sessions/"+sid+"/catalog", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("catalog: got %d", rr.Code)
	}
	if items := decodeListResponse(t, rr); len(items) != 2 {
		t.Errorf("expected 2 catalog items, got %d", len(items))
	}

	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/orders", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("orders: got %d", rr.Code)
	}
	if orders := decodeListResponse(t, rr); len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}
}

func TestOpenSession_BackendDownStillOpensWithWarnings(t *testing.T) {
	b := menuBackend()
	b.listItemsErr = &backend.FetchError{Op: "list items", Err: context.DeadlineExceeded}
	b.listOrdersErr = &backend.FetchError{Op: "list orders", Err: context.DeadlineExceeded}
	router := setupSessionRouter(b)

	rr := doRequest(t, router, "POST", "/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("open: got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	warnings, _ := resp["warnings"].([]interface{})
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", resp["warnings"])
	}

	sid := resp["session_id"].(string)
	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/catalog", nil)
	if items := decodeListResponse(t, rr); len(items) != 0 {
		t.Errorf("expected empty catalog, got %d items", len(items))
	}
}

func TestCloseSession(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)

	rr := doRequest(t, router, "DELETE", "/sessions/"+sid, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("close: got %d", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/cart", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("cart after close: got %d, want 404", rr.Code)
	}

	rr = doRequest(t, router, "DELETE", "/sessions/"+sid, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("double close: got %d, want 404", rr.Code)
	}
}

func TestSession_InvalidIDIs400(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	rr := doRequest(t, router, "GET", "/sessions/not-a-uuid/cart", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}

// --- Cart endpoints ---

func TestAddItem_UpdatesCartAndTotals(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})
	if rr.Code != http.StatusOK {
		t.Fatalf("add: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})
	resp := decodeResponse(t, rr)

	lines := resp["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	line := lines[0].(map[string]interface{})
	if line["quantity"] != float64(2) {
		t.Errorf("quantity: got %v", line["quantity"])
	}
	if got := decimalField(t, resp, "subtotal"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("subtotal: got %s", got)
	}
	if got := decimalField(t, resp, "tax"); !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("tax: got %s", got)
	}
	if got := decimalField(t, resp, "total"); !got.Equal(decimal.NewFromInt(22)) {
		t.Errorf("total: got %s", got)
	}
}

func TestAddItem_UnknownItemIs404(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)

	rr := doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 999})
	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}

func TestSetQuantity_ReplacesQuantity(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)
	doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})

	rr := doRequest(t, router, "PUT", "/sessions/"+sid+"/cart/items/1", map[string]any{"quantity": 7})
	resp := decodeResponse(t, rr)
	line := resp["lines"].([]interface{})[0].(map[string]interface{})
	if line["quantity"] != float64(7) {
		t.Errorf("quantity: got %v", line["quantity"])
	}
}

func TestSetQuantity_CoercionsRemoveLine(t *testing.T) {
	cases := []struct {
		name     string
		quantity any
	}{
		{"zero", 0},
		{"negative", -3},
		{"fractional", 2.5},
		{"non numeric string", "abc"},
		{"null", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupSessionRouter(menuBackend())
			sid := openSession(t, router)
			doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})

			rr := doRequest(t, router, "PUT", "/sessions/"+sid+"/cart/items/1", map[string]any{"quantity": tc.quantity})
			if rr.Code != http.StatusOK {
				t.Fatalf("got %d; body: %s", rr.Code, rr.Body.String())
			}
			resp := decodeResponse(t, rr)
			if lines := resp["lines"].([]interface{}); len(lines) != 0 {
				t.Errorf("line should be removed, got %v", lines)
			}
		})
	}
}

func TestSetQuantity_NumericStringAccepted(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)
	doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})

	rr := doRequest(t, router, "PUT", "/sessions/"+sid+"/cart/items/1", map[string]any{"quantity": "4"})
	resp := decodeResponse(t, rr)
	line := resp["lines"].([]interface{})[0].(map[string]interface{})
	if line["quantity"] != float64(4) {
		t.Errorf("quantity: got %v", line["quantity"])
	}
}

func TestRemoveItem_DeletesLine(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)
	doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})
	doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 2})

	rr := doRequest(t, router, "DELETE", "/sessions/"+sid+"/cart/items/1", nil)
	resp := decodeResponse(t, rr)
	lines := resp["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0].(map[string]interface{})
	if line["item_id"] != float64(2) {
		t.Errorf("wrong line removed: %v", line)
	}
}

func TestSetCustomer_TrimsAndShowsInCart(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)

	rr := doRequest(t, router, "PUT", "/sessions/"+sid+"/cart/customer",
		map[string]string{"customer_name": "  Ada ", "customer_phone": " 555 "})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/cart", nil)
	resp := decodeResponse(t, rr)
	if resp["customer_name"] != "Ada" || resp["customer_phone"] != "555" {
		t.Errorf("customer fields: %v / %v", resp["customer_name"], resp["customer_phone"])
	}
}

func TestClearCart_ResetsEverything(t *testing.T) {
	router := setupSessionRouter(menuBackend())
	sid := openSession(t, router)
	doRequest(t, router, "POST", "/sessions/"+sid+"/cart/items", map[string]int64{"item_id": 1})
	doRequest(t, router, "PUT", "/sessions/"+sid+"/cart/customer", map[string]string{"customer_name": "Ada"})

	rr := doRequest(t, router, "POST", "/sessions/"+sid+"/cart/clear", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/cart", nil)
	resp := decodeResponse(t, rr)
	if lines := resp["lines"].([]interface{}); len(lines) != 0 {
		t.Errorf("lines not cleared: %v", lines)
	}
	if resp["customer_name"] != "" {
		t.Errorf("customer not reset: %v", resp["customer_name"])
	}
}

// --- Catalog refresh ---

func TestRefreshCatalog_FailureKeepsSnapshotAndReturns502(t *testing.T) {
	b := menuBackend()
	router := setupSessionRouter(b)
	sid := openSession(t, router)

	b.listItemsErr = &backend.FetchError{Op: "list items", Err: context.DeadlineExceeded}
	rr := doRequest(t, router, "POST", "/sessions/"+sid+"/catalog/refresh", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("refresh: got %d, want 502", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/catalog", nil)
	if items := decodeListResponse(t, rr); len(items) != 2 {
		t.Errorf("stale catalog lost: got %d items", len(items))
	}
}

func TestRefreshCatalog_PicksUpNewItems(t *testing.T) {
	b := menuBackend()
	router := setupSessionRouter(b)
	sid := openSession(t, router)

	b.items = append(b.items, backend.Item{ID: 3, Name: "Pepperoni", Category: "pizza", Price: decimal.NewFromFloat(12.50)})
	rr := doRequest(t, router, "POST", "/sessions/"+sid+"/catalog/refresh", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("refresh: got %d", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/sessions/"+sid+"/catalog", nil)
	if items := decodeListResponse(t, rr); len(items) != 3 {
		t.Errorf("expected 3 items after refresh, got %d", len(items))
	}
}

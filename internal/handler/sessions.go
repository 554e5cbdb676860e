package handler

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/session"
	"github.com/shopspring/decimal"
)

// SessionStore defines the session-manager methods handlers need.
// Satisfied by *session.Manager; narrow interface for testability.
type SessionStore interface {
	Open() *session.Session
	Get(id uuid.UUID) (*session.Session, bool)
	Close(id uuid.UUID) bool
}

// SessionHandler handles screen-session lifecycle, catalog and cart
// endpoints.
type SessionHandler struct {
	store SessionStore
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(store SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

// RegisterRoutes registers session endpoints on the given Chi router.
// Expected to be mounted at /sessions.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Open)
	r.Delete("/{sid}", h.Close)
	r.Get("/{sid}/catalog", h.Catalog)
	r.Post("/{sid}/catalog/refresh", h.RefreshCatalog)
	r.Get("/{sid}/cart", h.Cart)
	r.Post("/{sid}/cart/items", h.AddItem)
	r.Put("/{sid}/cart/items/{id}", h.SetQuantity)
	r.Delete("/{sid}/cart/items/{id}", h.RemoveItem)
	r.Put("/{sid}/cart/customer", h.SetCustomer)
	r.Post("/{sid}/cart/clear", h.ClearCart)
}

// --- Request / Response types ---

type openSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Warnings  []string  `json:"warnings,omitempty"`
}

type addItemRequest struct {
	ItemID int64 `json:"item_id"`
}

type setQuantityRequest struct {
	// Accepts anything; non-numeric and non-positive values coerce to a
	// removal, mirroring the quantity input's behavior.
	Quantity any `json:"quantity"`
}

type setCustomerRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

type itemResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

func toItemResponse(it backend.Item) itemResponse {
	return itemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Category:    it.Category,
		Price:       it.Price,
	}
}

type cartLineResponse struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartResponse struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Lines         []cartLineResponse `json:"lines"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
}

func toCartResponse(v session.View) cartResponse {
	resp := cartResponse{
		CustomerName:  v.CustomerName,
		CustomerPhone: v.CustomerPhone,
		Lines:         make([]cartLineResponse, 0, len(v.Lines)),
		Subtotal:      v.Subtotal,
		Tax:           v.Tax,
		Total:         v.Total,
	}
	for _, l := range v.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			Price:     l.Item.Price,
			Quantity:  l.Quantity,
			LineTotal: l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return resp
}

// --- Handlers ---

// Open creates a new screen session and performs the initial catalog and
// history load, like the screen's mount sequence. Load failures don't block
// the session; they come back as warnings and leave the snapshots empty.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	s := h.store.Open()

	var warnings []string
	if err := s.RefreshCatalog(r.Context()); err != nil {
		log.Printf("ERROR: initial catalog load: %v", err)
		warnings = append(warnings, "catalog unavailable: "+err.Error())
	}
	if err := s.RefreshHistory(r.Context()); err != nil {
		log.Printf("ERROR: initial history load: %v", err)
		warnings = append(warnings, "order history unavailable: "+err.Error())
	}

	writeJSON(w, http.StatusCreated, openSessionResponse{SessionID: s.ID, Warnings: warnings})
}

// Close tears down a session and discards its cart.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	if !h.store.Close(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Catalog returns the session's current menu snapshot.
func (h *SessionHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	items := s.Catalog()
	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// RefreshCatalog refetches the menu. On failure the stale snapshot stays
// available and the error is surfaced for the screen to display.
func (h *SessionHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.RefreshCatalog(r.Context()); err != nil {
		log.Printf("ERROR: refresh catalog: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cart returns the cart's lines, customer fields and derived totals.
func (h *SessionHandler) Cart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(s.CartView()))
}

// AddItem adds one unit of a catalog item to the cart.
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !s.AddItem(req.ItemID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not in catalog"})
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(s.CartView()))
}

// SetQuantity replaces a cart line's quantity. Non-positive or non-numeric
// quantities remove the line.
func (h *SessionHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.SetQuantity(itemID, coerceQuantity(req.Quantity))
	writeJSON(w, http.StatusOK, toCartResponse(s.CartView()))
}

// RemoveItem deletes a cart line. No-op if the line is absent.
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	s.RemoveItem(itemID)
	writeJSON(w, http.StatusOK, toCartResponse(s.CartView()))
}

// SetCustomer sets the cart's customer name and phone.
func (h *SessionHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req setCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.SetCustomer(req.CustomerName, req.CustomerPhone)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart and customer fields.
func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {sid} URL param to a live session, writing the error
// response itself when it can't.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	s, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return s, true
}

// coerceQuantity turns whatever the quantity field decoded to into an int.
// Anything non-numeric, non-integral or non-positive comes back as 0, which
// the cart treats as a removal.
func coerceQuantity(v any) int {
	switch q := v.(type) {
	case float64:
		if q != math.Trunc(q) {
			return 0
		}
		return int(q)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}

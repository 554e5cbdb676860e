package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/checkout"
	"github.com/pizzadesk/api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order submission and the order history view for a
// session. A successful submission is broadcast on the hub so every other
// open screen knows to refresh.
type OrderHandler struct {
	sessions SessionHandler
	hub      *ws.Hub
}

// NewOrderHandler creates a new OrderHandler. hub may be nil (no
// notifications).
func NewOrderHandler(store SessionStore, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{sessions: SessionHandler{store: store}, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /sessions.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{sid}/orders", h.Submit)
	r.Get("/{sid}/orders", h.List)
	r.Post("/{sid}/orders/refresh", h.Refresh)
}

// --- Response types ---

type submitResponse struct {
	OrderID int64 `json:"order_id"`
}

type orderItemResponse struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Status        string              `json:"status"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []orderItemResponse `json:"items"`
}

func toOrderResponse(o backend.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Status:        o.Status,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
		Items:         make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ItemID:       it.ItemID,
			ItemName:     it.ItemName,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
		})
	}
	return resp
}

// --- Handlers ---

// Submit runs the submission workflow for the session's cart. Validation
// failures are 422 with the cart untouched; a backend rejection is 502 with
// the backend's message, again with the cart untouched so the user can
// retry.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.session(w, r)
	if !ok {
		return
	}

	orderID, err := s.Submit(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNameRequired), errors.Is(err, checkout.ErrEmptyCart):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			var subErr *backend.SubmissionError
			if errors.As(err, &subErr) {
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": subErr.Message})
				return
			}
			log.Printf("ERROR: submit order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	if h.hub != nil {
		payload, _ := json.Marshal(map[string]int64{"order_id": orderID})
		h.hub.Broadcast(ws.Event{Type: "order.created", Payload: payload})
	}

	writeJSON(w, http.StatusCreated, submitResponse{OrderID: orderID})
}

// List returns the session's order history snapshot, in the backend's own
// ordering.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.session(w, r)
	if !ok {
		return
	}

	orders := s.Orders()
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refresh refetches the order history. On failure the stale snapshot stays
// available and the error is surfaced.
func (h *OrderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.session(w, r)
	if !ok {
		return
	}

	if err := s.RefreshHistory(r.Context()); err != nil {
		log.Printf("ERROR: refresh history: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a purchasable menu item as the backend stores it.
type Item struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
}

// Order is a previously submitted order. Read-only: the backend assigns the
// id, status, tax and total.
type Order struct {
	ID            int64
	CustomerName  string
	CustomerPhone string
	Status        string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
	Items         []OrderItem
}

// OrderItem is one line of a recorded order.
type OrderItem struct {
	ItemID       int64
	ItemName     string
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// OrderSubmission is the write-only projection of a cart sent to the order
// creation endpoint. PriceAtOrder is captured at submission time so recorded
// orders are immune to later price changes.
type OrderSubmission struct {
	CustomerName  string
	CustomerPhone string
	Subtotal      decimal.Decimal
	Items         []SubmissionItem
}

// SubmissionItem is one line of an OrderSubmission.
type SubmissionItem struct {
	ItemID       int64
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// --- Wire DTOs ---
//
// The backend speaks JSON numbers for money and snake_case fields. Wire types
// carry float64 and convert to decimal at this boundary; nothing outside this
// package touches the floats.

type itemDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

func (d itemDTO) toItem() Item {
	return Item{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       decimal.NewFromFloat(d.Price),
	}
}

func toItemDTO(it Item) itemDTO {
	return itemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Category:    it.Category,
		Price:       it.Price.InexactFloat64(),
	}
}

type orderItemDTO struct {
	ItemID       int64   `json:"item_id"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	PriceAtOrder float64 `json:"price_at_order"`
}

type orderDTO struct {
	ID            int64          `json:"id"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Status        string         `json:"status"`
	Subtotal      float64        `json:"subtotal"`
	Tax           float64        `json:"tax"`
	Total         float64        `json:"total"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []orderItemDTO `json:"items"`
}

func (d orderDTO) toOrder() Order {
	o := Order{
		ID:            d.ID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		Status:        d.Status,
		Subtotal:      decimal.NewFromFloat(d.Subtotal),
		Tax:           decimal.NewFromFloat(d.Tax),
		Total:         decimal.NewFromFloat(d.Total),
		CreatedAt:     d.CreatedAt,
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, OrderItem{
			ItemID:       it.ItemID,
			ItemName:     it.ItemName,
			Quantity:     it.Quantity,
			PriceAtOrder: decimal.NewFromFloat(it.PriceAtOrder),
		})
	}
	return o
}

type submissionItemDTO struct {
	ItemID       int64   `json:"item_id"`
	Quantity     int     `json:"quantity"`
	PriceAtOrder float64 `json:"price_at_order"`
}

type submissionDTO struct {
	CustomerName  string              `json:"customerName"`
	CustomerPhone string              `json:"customerPhone"`
	Subtotal      float64             `json:"subtotal"`
	Items         []submissionItemDTO `json:"items"`
}

func toSubmissionDTO(s OrderSubmission) submissionDTO {
	dto := submissionDTO{
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Subtotal:      s.Subtotal.InexactFloat64(),
		Items:         make([]submissionItemDTO, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		dto.Items = append(dto.Items, submissionItemDTO{
			ItemID:       it.ItemID,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder.InexactFloat64(),
		})
	}
	return dto
}

// Package cart holds the in-progress order a user is assembling on the
// invoice screen. Purely in-memory; no I/O.
package cart

import (
	"strings"

	"github.com/pizzadesk/api/internal/backend"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the flat tax applied to every order (10%). Overridable
// per cart via New; the TAX_RATE env var feeds through config.
var DefaultTaxRate = decimal.New(1, -1)

// LineItem is one catalog item plus a quantity. Quantity is always >= 1; a
// line whose quantity would drop to zero is removed instead.
type LineItem struct {
	Item     backend.Item
	Quantity int
}

// Cart is an ordered collection of line items plus the customer fields for
// the order being assembled. At most one line exists per item id; order is
// insertion order. Not safe for concurrent use: the owning session
// serializes access.
type Cart struct {
	taxRate       decimal.Decimal
	lines         []LineItem
	customerName  string
	customerPhone string
}

// New creates an empty cart with the given tax rate.
func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

// AddItem adds one unit of the item. If a line for the item already exists
// its quantity is incremented, otherwise a new line is appended.
func (c *Cart) AddItem(it backend.Item) {
	for i := range c.lines {
		if c.lines[i].Item.ID == it.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, LineItem{Item: it, Quantity: 1})
}

// RemoveItem deletes the line for the given item id. No-op if absent.
func (c *Cart) RemoveItem(itemID int64) {
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the quantity of the line for the given item id.
// A quantity <= 0 removes the line instead. No-op if the id is absent.
func (c *Cart) SetQuantity(itemID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}
	for i := range c.lines {
		if c.lines[i].Item.ID == itemID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Lines returns a copy of the current line items in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// SetCustomer sets the customer fields. Values are trimmed.
func (c *Cart) SetCustomer(name, phone string) {
	c.customerName = strings.TrimSpace(name)
	c.customerPhone = strings.TrimSpace(phone)
}

// CustomerName returns the trimmed customer name.
func (c *Cart) CustomerName() string { return c.customerName }

// CustomerPhone returns the trimmed customer phone.
func (c *Cart) CustomerPhone() string { return c.customerPhone }

// Subtotal is the sum of price * quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Tax is Subtotal() multiplied by the cart's tax rate.
func (c *Cart) Tax() decimal.Decimal {
	return c.Subtotal().Mul(c.taxRate)
}

// Total is Subtotal() plus Tax().
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.Tax())
}

// Clear empties the line items and resets the customer fields.
func (c *Cart) Clear() {
	c.lines = nil
	c.customerName = ""
	c.customerPhone = ""
}

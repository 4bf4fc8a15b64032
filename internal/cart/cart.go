// Package cart holds the in-memory cart state for a POS session.
package cart

import (
	"github.com/shopspring/decimal"
)

// DeliveryLineID is the synthetic line id used for the delivery charge.
// The cart never holds more than one line with this id.
const DeliveryLineID = "delivery-income"

// LineItem is one row in the cart: a product, a bundle, or the synthetic
// delivery charge.
type LineItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Qty        int             `json:"qty"`
	IsBundle   bool            `json:"is_bundle,omitempty"`
	SubItems   []SubItem       `json:"selected_items,omitempty"`
	IsDelivery bool            `json:"is_delivery_item,omitempty"`
}

// SubItem is one resolved bundle sub-item.
type SubItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineTotal returns price × qty for this line.
func (li *LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Qty)))
}

// DeliveryDetails carries the four delivery fields set at checkout.
type DeliveryDetails struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	CustomerID string
	CityName   string
}

// Cart is an ordered collection of line items plus delivery context.
// Insertion order is display order. It is confined to the TUI event loop,
// so no locking is needed.
type Cart struct {
	Items           []LineItem
	DeliveryIncome  decimal.Decimal
	DeliveryExpense decimal.Decimal
	CustomerID      string
	CityName        string
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{Items: make([]LineItem, 0)}
}

// AddItem appends item, merging quantities when a line with the same id
// already exists.
func (c *Cart) AddItem(item LineItem) {
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items[i].Qty += item.Qty
			return
		}
	}
	c.Items = append(c.Items, item)
}

// UpdateQty sets the matching line's quantity to exactly qty. Callers must
// route qty-to-zero through RemoveItem; no floor is enforced here.
func (c *Cart) UpdateQty(id string, qty int) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Qty = qty
			return
		}
	}
}

// RemoveItem filters out the line with the given id.
func (c *Cart) RemoveItem(id string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// Clear empties the cart and resets all delivery context.
func (c *Cart) Clear() {
	c.Items = make([]LineItem, 0)
	c.DeliveryIncome = decimal.Zero
	c.DeliveryExpense = decimal.Zero
	c.CustomerID = ""
	c.CityName = ""
}

// SetDeliveryDetails records the delivery fields, strips any existing
// delivery line, and appends a fresh one iff income > 0. After the call the
// cart holds exactly one or zero delivery lines.
func (c *Cart) SetDeliveryDetails(d DeliveryDetails) {
	c.DeliveryIncome = d.Income
	c.DeliveryExpense = d.Expense
	c.CustomerID = d.CustomerID
	c.CityName = d.CityName

	c.stripDeliveryLine()

	if d.Income.IsPositive() {
		c.Items = append(c.Items, LineItem{
			ID:         DeliveryLineID,
			Name:       "Delivery Income",
			Price:      d.Income,
			Qty:        1,
			IsDelivery: true,
		})
	}
}

// RemoveDeliveryDetails resets the delivery fields and strips the delivery
// line, leaving all other lines untouched.
func (c *Cart) RemoveDeliveryDetails() {
	c.DeliveryIncome = decimal.Zero
	c.DeliveryExpense = decimal.Zero
	c.CustomerID = ""
	c.CityName = ""
	c.stripDeliveryLine()
}

func (c *Cart) stripDeliveryLine() {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if !item.IsDelivery {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.Items)
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Qty
	}
	return count
}

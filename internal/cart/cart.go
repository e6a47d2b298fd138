// Package cart holds a shopper's in-progress product selection.
package cart

import (
	"github.com/shopspring/decimal"
	"storefront-service/internal/entity"
)

// Item is a cart line. Name, price and image are snapshots taken when the
// product was first added.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
}

// Subtotal is Quantity x Price.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is not safe for concurrent use; a Manager serialises access per session.
type Cart struct {
	items []Item
}

// New builds a cart from previously persisted items, dropping any entry
// whose quantity is not positive.
func New(items []Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.Quantity > 0 {
			c.items = append(c.items, it)
		}
	}
	return c
}

// Add increments the quantity of an existing entry or appends a new one
// with quantity 1. Stock is not consulted.
func (c *Cart) Add(p entity.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
		Category:  p.Category,
	})
}

// Remove deletes the entry for productID; absent entries are ignored.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity exactly. Zero or less removes the entry.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) index(productID string) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Snapshot is the JSON view returned to clients.
type Snapshot struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

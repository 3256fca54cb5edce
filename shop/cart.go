package shop

import (
	"github.com/shopspring/decimal"
)

// Cart is a transient, session-scoped list of pending sale lines. It holds
// title and unit-price snapshots taken at add time; a later catalog price
// change does not affect an uncommitted line. A Cart belongs to one session
// and is not safe for concurrent use.
type Cart struct {
	items []CartItem
}

// NewCart returns an empty cart.
func NewCart() *Cart { return &Cart{} }

// AddItem puts quantity units of book into the cart. If the book already has
// a line, the quantities merge into it. The (merged) quantity is validated
// against the book's current stock; on violation the cart is left unchanged
// and an InsufficientStockError is returned.
func (c *Cart) AddItem(book Book, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if quantity > book.Stock {
		return &InsufficientStockError{BookID: book.ID, Requested: quantity, Available: book.Stock}
	}

	for i := range c.items {
		if c.items[i].BookID == book.ID {
			merged := c.items[i].Quantity + quantity
			if merged > book.Stock {
				return &InsufficientStockError{BookID: book.ID, Requested: merged, Available: book.Stock}
			}
			c.items[i].Quantity = merged
			return nil
		}
	}

	c.items = append(c.items, CartItem{
		BookID:    book.ID,
		Title:     book.Title,
		Quantity:  quantity,
		UnitPrice: book.Price,
	})
	return nil
}

// RemoveItem drops the line at index. A stale index is a no-op reported as
// ErrNotFound.
func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.items) {
		return ErrNotFound
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() { c.items = nil }

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.items) }

// Total recomputes the cart total, sum of quantity × unit price over all
// lines. It is never cached.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

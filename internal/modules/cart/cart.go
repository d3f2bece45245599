// Package cart holds the in-progress sale: at most one line per product, every
// quantity between 1 and the catalog stock observed when the line was touched.
package cart

import (
	"errors"
	"fmt"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
)

var (
	// ErrNotFound is returned when a quantity change names a product with no line.
	ErrNotFound = errors.New("cart line not found")
	// ErrOutOfStock is returned when adding a product with nothing on the shelf.
	ErrOutOfStock = errors.New("product out of stock")
)

// Line is one product in the cart.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Lookup resolves a product id to its current catalog entry.
type Lookup func(productID string) (*catalog.Product, bool)

// Cart is not safe for concurrent use; the checkout engine serialises access.
type Cart struct {
	order []string
	lines map[string]*Line
}

func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

// Add puts one more unit of p in the cart, never exceeding catalogStock.
func (c *Cart) Add(p *catalog.Product, catalogStock int) error {
	if l, ok := c.lines[p.ID]; ok {
		l.Quantity = min(l.Quantity+1, catalogStock)
		if l.Quantity < 1 {
			c.Remove(p.ID)
		}
		return nil
	}
	if catalogStock < 1 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.ID)
	}
	c.lines[p.ID] = &Line{ProductID: p.ID, Quantity: 1}
	c.order = append(c.order, p.ID)
	return nil
}

// SetQuantity removes the line when quantity is 0 and otherwise clamps it to
// [1, catalogStock]. A line whose product has no stock left is removed.
func (c *Cart) SetQuantity(productID string, quantity, catalogStock int) error {
	l, ok := c.lines[productID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, productID)
	}
	if quantity == 0 || catalogStock < 1 {
		c.Remove(productID)
		return nil
	}
	l.Quantity = max(1, min(quantity, catalogStock))
	return nil
}

// Remove drops the line for productID, if any.
func (c *Cart) Remove(productID string) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Clear() {
	c.order = nil
	c.lines = make(map[string]*Line)
}

// Lines returns a copy of the lines in the order they were first added.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) Len() int { return len(c.order) }

// Quantity returns the quantity staged for productID, 0 if there is no line.
func (c *Cart) Quantity(productID string) int {
	if l, ok := c.lines[productID]; ok {
		return l.Quantity
	}
	return 0
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total prices every line at the catalog's current price. Lines whose product
// can no longer be resolved contribute nothing.
func (c *Cart) Total(lookup Lookup) int64 {
	var total int64
	for _, l := range c.lines {
		if p, ok := lookup(l.ProductID); ok {
			total += p.Price * int64(l.Quantity)
		}
	}
	return total
}

package domain

import "fmt"

// CartLine is the reserved quantity of one item. UnitPrice is pinned when the
// line is first created.
type CartLine struct {
	ItemID    ItemID `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is an ordered set of lines, unique by item id. The zero value is an
// empty cart ready to use.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add reserves one more unit of item. It fails with ErrInsufficientStock,
// leaving the cart untouched, when the item is sold out or the line already
// holds all of the current stock.
func (c *Cart) Add(item CatalogItem) error {
	if item.Stock <= 0 {
		return fmt.Errorf("%w: %s is sold out", ErrInsufficientStock, item.ID)
	}
	if i := c.index(item.ID); i >= 0 {
		if c.lines[i].Quantity >= item.Stock {
			return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, item.Stock, c.lines[i].Quantity+1)
		}
		c.lines[i].Quantity++
		return nil
	}
	c.lines = append(c.lines, CartLine{
		ItemID:    item.ID,
		Name:      item.Product.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	})
	return nil
}

// Remove releases one unit of id and drops the line once it reaches zero.
// It reports whether anything changed.
func (c *Cart) Remove(id ItemID) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return true
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Quantity returns the reserved quantity of id, or 0.
func (c *Cart) Quantity(id ItemID) int {
	if i := c.index(id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) index(id ItemID) int {
	for i, l := range c.lines {
		if l.ItemID == id {
			return i
		}
	}
	return -1
}

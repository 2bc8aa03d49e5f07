package services

import "pizzeria-telegram/models"

// Cart holds at most one line per menu item id, in insertion order.
// Quantities are always >= 1; a line whose quantity reaches 0 is removed.
type Cart struct {
	lines []models.CartLine
}

// Add increments the line for item or appends a new line with quantity 1.
func (c *Cart) Add(item models.MenuItem) {
	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, models.CartLine{Item: item, Quantity: 1})
}

// ChangeQuantity applies delta to the line with the given id, clamping at zero.
// It reports whether a line with that id existed.
func (c *Cart) ChangeQuantity(id, delta int) bool {
	for i := range c.lines {
		if c.lines[i].Item.ID != id {
			continue
		}
		q := c.lines[i].Quantity + delta
		if q <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = q
		}
		return true
	}
	return false
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Count is the sum of quantities (the cart badge).
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) Clear() { c.lines = nil }

// Package cart holds the ephemeral line items of the sale currently
// being assembled. Every mutation is checked against catalog stock; the
// cart itself is never persisted.
package cart

import (
	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/sound"
)

type Cart struct {
	catalog *catalog.Catalog
	sounds  *sound.Bus
	lines   []domain.CartLine
}

func NewCart(cat *catalog.Catalog, sounds *sound.Bus) *Cart {
	return &Cart{catalog: cat, sounds: sounds}
}

// Lines returns a copy of the open lines.
func (c *Cart) Lines() []domain.CartLine {
	return domain.CloneLines(c.lines)
}

func (c *Cart) Len() int { return len(c.lines) }

// QtyOf returns the quantity of a product already in the cart.
func (c *Cart) QtyOf(id string) int64 {
	for _, l := range c.lines {
		if l.ID == id {
			return l.Qty
		}
	}
	return 0
}

// Total recomputes Σ price×qty; never cached.
func (c *Cart) Total() int64 {
	return domain.LinesTotal(c.lines)
}

// Add puts qty units of product into the cart, merging into an existing
// line by id. Non-custom products must fit within
// stock − qtyAlreadyInCart − qty; a violation changes nothing and plays
// the error cue.
func (c *Cart) Add(product domain.Product, qty int64) error {
	if qty <= 0 {
		qty = 1
	}
	if !product.IsCustom {
		// Remaining counts the units still addable, not the raw stock:
		// what is already carted is spoken for.
		remaining := product.Stock - c.QtyOf(product.ID)
		if remaining-qty < 0 {
			c.sounds.Play(domain.SoundError)
			return &domain.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Remaining: remaining,
				Requested: qty,
			}
		}
	}
	for i := range c.lines {
		if c.lines[i].ID == product.ID {
			c.lines[i].Qty += qty
			c.sounds.Play(domain.SoundBeep)
			return nil
		}
	}
	c.lines = append(c.lines, domain.NewCartLine(product, qty))
	c.sounds.Play(domain.SoundBeep)
	return nil
}

// ChangeQty adjusts a line by delta. Increases on a non-custom product
// are rejected once catalog stock no longer exceeds the carried quantity;
// decreases clamp at zero and a zero line is removed.
func (c *Cart) ChangeQty(id string, delta int64) error {
	idx := -1
	for i := range c.lines {
		if c.lines[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &domain.NotFoundError{Kind: "cart line", ID: id}
	}
	if delta > 0 {
		if product, ok := c.catalog.FindByID(id); ok && !product.IsCustom {
			if product.Stock <= c.lines[idx].Qty {
				c.sounds.Play(domain.SoundError)
				return &domain.InsufficientStockError{
					ProductID: id,
					Name:      c.lines[idx].Name,
					Remaining: product.Stock - c.lines[idx].Qty,
					Requested: delta,
				}
			}
		}
	}
	newQty := c.lines[idx].Qty + delta
	if newQty < 0 {
		newQty = 0
	}
	if newQty == 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	}
	c.lines[idx].Qty = newQty
	return nil
}

// Remove drops a line unconditionally.
func (c *Cart) Remove(id string) {
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// OverridePrice replaces one line's unit price (clearance discounting);
// the catalog price is untouched.
func (c *Cart) OverridePrice(id string, price int64) error {
	if price < 0 {
		price = 0
	}
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines[i].Price = price
			return nil
		}
	}
	return &domain.NotFoundError{Kind: "cart line", ID: id}
}

// Clear empties the cart on user confirmation, with the clear cue.
func (c *Cart) Clear() {
	c.lines = nil
	c.sounds.Play(domain.SoundClear)
}

// Reset empties the cart silently (checkout and mode switches).
func (c *Cart) Reset() {
	c.lines = nil
}

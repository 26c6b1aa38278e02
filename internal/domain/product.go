package domain

// Product is one sellable item of the catalog. Stock is the single
// source of truth for how many more units can be sold; for non-custom
// products it never goes below zero.
type Product struct {
	ID       string `json:"id" form:"id"`
	Name     string `json:"name" form:"name"`
	Price    int64  `json:"price" form:"price"`
	Category string `json:"category" form:"category"`
	Barcode  string `json:"barcode" form:"barcode"`
	Stock    int64  `json:"stock" form:"stock"`
	// IsCustom marks ad-hoc entries ("other amount") that live only
	// inside a cart or transaction line, never in the catalog, and are
	// exempt from stock checks.
	IsCustom bool `json:"is_custom,omitempty" form:"is_custom"`
}

// Valid reports whether a product loaded from storage has the required
// shape. Stored blobs are never trusted blindly.
func (p Product) Valid() bool {
	return p.ID != "" && p.Name != "" && p.Price >= 0 && p.Stock >= 0
}

// CartLine is a by-value product snapshot plus a quantity. The price may
// be overridden per line without touching the catalog.
type CartLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Qty      int64  `json:"qty"`
	IsCustom bool   `json:"is_custom,omitempty"`
}

// NewCartLine snapshots product into a line with the given quantity.
func NewCartLine(p Product, qty int64) CartLine {
	return CartLine{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Qty:      qty,
		IsCustom: p.IsCustom,
	}
}

// Subtotal is price × qty for this line.
func (l CartLine) Subtotal() int64 {
	return l.Price * l.Qty
}

// LinesTotal sums price × qty across lines.
func LinesTotal(lines []CartLine) (total int64) {
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// CloneLines deep-copies a line slice so drafts never alias live state.
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

// CloneProducts deep-copies a product slice (snapshot/restore paths).
func CloneProducts(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

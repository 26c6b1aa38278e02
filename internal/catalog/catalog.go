// Package catalog owns the mutable list of sellable products and their
// stock counters. All stock movement goes through AdjustStock/SetStock so
// the non-negativity invariant holds at every entry point.
package catalog

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/width"

	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/store"
)

type Catalog struct {
	store    *store.Store
	products []domain.Product
	// snapshot is the frozen copy taken at the last successful CSV
	// import; nil until an import happens (or one is loaded from disk).
	snapshot []domain.Product
}

func NewCatalog(st *store.Store) *Catalog {
	return &Catalog{store: st}
}

// NormalizeBarcode trims and folds fullwidth forms (U+FF01–U+FF5E) down
// to their ASCII equivalents. Hardware scanners driven through an input
// method routinely deliver fullwidth digits.
func NormalizeBarcode(code string) string {
	return strings.TrimSpace(width.Narrow.String(code))
}

// Load replaces the in-memory catalog and snapshot wholesale. Used by the
// mode controller during a namespace swap; does not persist.
func (c *Catalog) Load(products, snapshot []domain.Product) {
	c.products = domain.CloneProducts(products)
	if snapshot == nil {
		c.snapshot = nil
	} else {
		c.snapshot = domain.CloneProducts(snapshot)
	}
}

// Products returns a copy of the catalog for presentation.
func (c *Catalog) Products() []domain.Product {
	return domain.CloneProducts(c.products)
}

func (c *Catalog) Len() int { return len(c.products) }

// Categories returns the distinct category labels in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool, 8)
	var cats []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	return cats
}

// FindByID is an exact-match lookup.
func (c *Catalog) FindByID(id string) (domain.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// FindByBarcode matches on the normalized code. No fuzzy matching.
func (c *Catalog) FindByBarcode(code string) (domain.Product, bool) {
	normalized := NormalizeBarcode(code)
	if normalized == "" {
		return domain.Product{}, false
	}
	for _, p := range c.products {
		if p.Barcode == normalized {
			return p, true
		}
	}
	return domain.Product{}, false
}

// AdjustStock applies a delta, flooring the result at zero. Attempted
// negative results are silently clamped, never an error.
func (c *Catalog) AdjustStock(id string, delta int64) error {
	for i := range c.products {
		if c.products[i].ID == id {
			newStock := c.products[i].Stock + delta
			if newStock < 0 {
				newStock = 0
			}
			c.products[i].Stock = newStock
			c.persist()
			return nil
		}
	}
	return &domain.NotFoundError{Kind: "product", ID: id}
}

// SetStock overwrites a stock counter (manual restock edit).
func (c *Catalog) SetStock(id string, stock int64) error {
	if stock < 0 {
		stock = 0
	}
	for i := range c.products {
		if c.products[i].ID == id {
			c.products[i].Stock = stock
			c.persist()
			return nil
		}
	}
	return &domain.NotFoundError{Kind: "product", ID: id}
}

// ReplaceAll overwrites the whole catalog. When the replacement comes
// from a CSV import it also becomes the new restore snapshot; a reset
// does not produce one.
func (c *Catalog) ReplaceAll(newProducts []domain.Product, asImport bool) {
	c.products = domain.CloneProducts(newProducts)
	if asImport {
		c.snapshot = domain.CloneProducts(newProducts)
		if err := c.store.SaveSnapshot(c.snapshot); err != nil {
			zap.L().Warn("snapshot not persisted", zap.Error(err))
		}
	}
	c.persist()
	zap.L().Info("catalog replaced",
		zap.Int("products", len(newProducts)),
		zap.Bool("import", asImport))
}

// RestoreFromSnapshot deep-copies the last imported snapshot back over
// the live catalog.
func (c *Catalog) RestoreFromSnapshot() error {
	if c.snapshot == nil {
		return &domain.NoSnapshotError{}
	}
	c.products = domain.CloneProducts(c.snapshot)
	c.persist()
	zap.L().Info("catalog restored from imported snapshot",
		zap.Int("products", len(c.products)))
	return nil
}

// HasSnapshot reports whether a restore point exists.
func (c *Catalog) HasSnapshot() bool { return c.snapshot != nil }

// Snapshot returns a copy of the restore point, if any.
func (c *Catalog) Snapshot() ([]domain.Product, bool) {
	if c.snapshot == nil {
		return nil, false
	}
	return domain.CloneProducts(c.snapshot), true
}

// ResetToFactoryDefaults overwrites the catalog with the built-in
// product list and clears the snapshot.
func (c *Catalog) ResetToFactoryDefaults() {
	c.products = domain.FactoryProducts()
	c.snapshot = nil
	if err := c.store.SaveSnapshot(nil); err != nil {
		zap.L().Warn("snapshot not cleared in store", zap.Error(err))
	}
	c.persist()
	zap.L().Info("catalog reset to factory defaults")
}

// Flush re-persists the current catalog; rollback paths use it after a
// wholesale Load.
func (c *Catalog) Flush() {
	c.persist()
}

func (c *Catalog) persist() {
	if err := c.store.SaveProducts(c.products); err != nil {
		zap.L().Warn("catalog not persisted, memory remains authoritative",
			zap.Error(err))
	}
}

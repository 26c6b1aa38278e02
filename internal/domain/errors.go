package domain

import (
	"fmt"
	"strings"
)

// InsufficientStockError signals that a cart add or increment would
// exceed the units the catalog can still carry.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Remaining int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: remaining %d, cannot add %d",
		e.Name, e.Remaining, e.Requested)
}

// EmptyCartError signals a checkout attempted with nothing to sell.
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string { return "cart is empty" }

// StockShortage describes one offending line of a failed checkout
// validation.
type StockShortage struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// StockValidationError aborts a whole checkout, listing every offending
// line. Catalog and ledger are untouched when it is returned.
type StockValidationError struct {
	Shortages []StockShortage
}

func (e *StockValidationError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (need %d, have %d)", s.Name, s.Requested, s.Available))
	}
	return "stock validation failed: " + strings.Join(parts, "; ")
}

// NoSnapshotError signals a restore request with no prior import this
// session.
type NoSnapshotError struct{}

func (e *NoSnapshotError) Error() string { return "no imported snapshot available" }

// ImportValidationError aggregates every row failure of a rejected CSV
// import; the catalog is never partially replaced.
type ImportValidationError struct {
	RowErrors []string
}

func (e *ImportValidationError) Error() string {
	return fmt.Sprintf("import validation failed: %s", strings.Join(e.RowErrors, "; "))
}

// NotFoundError reports a missing product or transaction.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

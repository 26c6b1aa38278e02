// Package checkout turns an open cart into a ledger transaction. The
// catalog decrement and the ledger append are one unit: no caller can
// observe a state where one happened and not the other.
package checkout

import (
	"time"

	"go.uber.org/zap"

	"github.com/talkincode/fairpos/internal/cart"
	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/ledger"
	"github.com/talkincode/fairpos/internal/sound"
	"github.com/talkincode/fairpos/pkg/common"
	"github.com/talkincode/fairpos/pkg/timeutil"
)

type Engine struct {
	catalog *catalog.Catalog
	cart    *cart.Cart
	ledger  *ledger.Ledger
	sounds  *sound.Bus
	now     func() time.Time
}

func NewEngine(cat *catalog.Catalog, c *cart.Cart, l *ledger.Ledger, sounds *sound.Bus) *Engine {
	return &Engine{catalog: cat, cart: c, ledger: l, sounds: sounds, now: time.Now}
}

// Checkout validates the whole cart against live catalog stock, then
// commits: append transaction, decrement stock, clear cart. received may
// be nil (cash amount not tracked). On any failure every structure is
// left exactly as it was.
func (e *Engine) Checkout(received *int64) (domain.Transaction, error) {
	lines := e.cart.Lines()
	if len(lines) == 0 {
		// Deliberately silent from the user's perspective: just the
		// error chime, no modal.
		e.sounds.Play(domain.SoundError)
		return domain.Transaction{}, &domain.EmptyCartError{}
	}

	// Re-validate at commit time, not just add time, to catch stock
	// drift from edits made elsewhere in the session.
	var shortages []domain.StockShortage
	for _, line := range lines {
		if line.IsCustom {
			continue
		}
		product, ok := e.catalog.FindByID(line.ID)
		if !ok {
			shortages = append(shortages, domain.StockShortage{
				ProductID: line.ID, Name: line.Name, Requested: line.Qty, Available: 0,
			})
			continue
		}
		if product.Stock < line.Qty {
			shortages = append(shortages, domain.StockShortage{
				ProductID: line.ID, Name: line.Name, Requested: line.Qty, Available: product.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		e.sounds.Play(domain.SoundError)
		return domain.Transaction{}, &domain.StockValidationError{Shortages: shortages}
	}

	total := domain.LinesTotal(lines)
	txn := domain.Transaction{
		ID:     common.UUIDint64(),
		Time:   timeutil.EpochMillis(e.now()),
		Items:  lines,
		Total:  total,
		Status: domain.StatusCompleted,
	}
	if received != nil {
		r := *received
		change := r - total
		txn.Received = &r
		txn.Change = &change
	}

	// Snapshot both sides before mutating; restore both on any failure
	// so catalog and ledger never disagree about a completed sale.
	catalogBefore := e.catalog.Products()
	snapshotBefore, _ := e.catalog.Snapshot()

	e.ledger.Append(txn)
	for _, line := range lines {
		if line.IsCustom {
			continue
		}
		if err := e.catalog.AdjustStock(line.ID, -line.Qty); err != nil {
			e.catalog.Load(catalogBefore, snapshotBefore)
			e.catalog.Flush()
			e.ledger.RemoveByID(txn.ID)
			e.sounds.Play(domain.SoundError)
			zap.L().Error("checkout rolled back",
				zap.Int64("txn_id", txn.ID),
				zap.String("product_id", line.ID),
				zap.Error(err))
			return domain.Transaction{}, err
		}
	}

	e.cart.Reset()
	e.sounds.Play(domain.SoundCash)
	zap.L().Info("checkout completed",
		zap.Int64("txn_id", txn.ID),
		zap.Int("items", len(lines)),
		zap.Int64("total", total))
	return txn, nil
}

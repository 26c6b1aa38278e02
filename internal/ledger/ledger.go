// Package ledger keeps the append-mostly history of completed sales and
// the two correction paths: targeted edit and void. Edits reconcile old
// and new item lists into one net stock delta so stock is never double
// counted however the lines were reshuffled.
package ledger

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/sound"
	"github.com/talkincode/fairpos/internal/store"
	"github.com/talkincode/fairpos/pkg/common"
	"github.com/talkincode/fairpos/pkg/timeutil"
)

// ErrEmptyEdit means the caller tried to edit a transaction down to zero
// items; that is a void and must be routed to Void or VoidKeepStock.
var ErrEmptyEdit = errors.New("edit with no items is a void, route it to the void operation")

type Ledger struct {
	store   *store.Store
	catalog *catalog.Catalog
	sounds  *sound.Bus
	// txns is newest-first; edits replace in place without reordering.
	txns []domain.Transaction
}

func NewLedger(st *store.Store, cat *catalog.Catalog, sounds *sound.Bus) *Ledger {
	return &Ledger{store: st, catalog: cat, sounds: sounds}
}

// Load replaces the in-memory history (namespace swap); does not persist.
func (l *Ledger) Load(txns []domain.Transaction) {
	l.txns = append([]domain.Transaction(nil), txns...)
}

// Transactions returns a copy of the history, newest first.
func (l *Ledger) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(l.txns))
	copy(out, l.txns)
	return out
}

func (l *Ledger) Len() int { return len(l.txns) }

func (l *Ledger) Find(id int64) (domain.Transaction, bool) {
	for _, t := range l.txns {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Transaction{}, false
}

// Append prepends a freshly completed transaction and persists.
func (l *Ledger) Append(txn domain.Transaction) {
	l.txns = append([]domain.Transaction{txn}, l.txns...)
	l.persist()
}

// RemoveByID drops a transaction without touching stock. Exposed for the
// checkout engine's rollback path.
func (l *Ledger) RemoveByID(id int64) bool {
	for i := range l.txns {
		if l.txns[i].ID == id {
			l.txns = append(l.txns[:i], l.txns[i+1:]...)
			l.persist()
			return true
		}
	}
	return false
}

// stockDeltas nets released units of the old items against consumed
// units of the new ones, per product. Custom lines never move stock.
func stockDeltas(oldItems, newItems []domain.CartLine) map[string]int64 {
	deltas := make(map[string]int64)
	for _, it := range oldItems {
		if !it.IsCustom {
			deltas[it.ID] += it.Qty
		}
	}
	for _, it := range newItems {
		if !it.IsCustom {
			deltas[it.ID] -= it.Qty
		}
	}
	return deltas
}

// EditAvailable is the stock ceiling shown while building an edit draft:
// live stock as if the original order's units were already released,
// minus what the draft has already staged.
func (l *Ledger) EditAvailable(original domain.Transaction, productID string, draft []domain.CartLine) int64 {
	product, ok := l.catalog.FindByID(productID)
	if !ok {
		return 0
	}
	if product.IsCustom {
		return 1<<62 - 1
	}
	var originalQty, draftQty int64
	for _, it := range original.Items {
		if it.ID == productID {
			originalQty += it.Qty
		}
	}
	for _, it := range draft {
		if it.ID == productID {
			draftQty += it.Qty
		}
	}
	return product.Stock + originalQty - draftQty
}

// ClampDraft trims every non-custom draft line to its EditAvailable
// ceiling, dropping lines whose ceiling is not positive. Per-item
// rejection, never a whole-edit abort.
func (l *Ledger) ClampDraft(original domain.Transaction, draft []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(draft))
	for _, it := range draft {
		if it.Qty < 1 {
			continue
		}
		if !it.IsCustom {
			ceiling := l.EditAvailable(original, it.ID, out) // lines kept so far count as staged
			if ceiling <= 0 {
				zap.L().Info("edit draft line rejected, no stock headroom",
					zap.String("product_id", it.ID))
				continue
			}
			if it.Qty > ceiling {
				it.Qty = ceiling
			}
		}
		out = append(out, it)
	}
	return out
}

// Edit replaces a transaction's items (and optionally payment figures),
// applying the net stock delta once. The record is replaced in place; the
// ledger is never reordered. Payment history survives unless newPayment
// is supplied.
func (l *Ledger) Edit(id int64, newItems []domain.CartLine, newPayment *domain.Payment) (domain.Transaction, error) {
	if len(newItems) == 0 {
		return domain.Transaction{}, ErrEmptyEdit
	}
	idx := -1
	for i := range l.txns {
		if l.txns[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Transaction{}, &domain.NotFoundError{Kind: "transaction", ID: common.Int64String(id)}
	}
	original := l.txns[idx]

	for pid, delta := range stockDeltas(original.Items, newItems) {
		if delta == 0 {
			continue
		}
		if err := l.catalog.AdjustStock(pid, delta); err != nil {
			// Product no longer in catalog (replaced by an import since
			// the sale); its units have nowhere to return to.
			zap.L().Warn("edit stock delta skipped, product gone",
				zap.String("product_id", pid), zap.Int64("delta", delta))
		}
	}

	updated := original
	updated.Items = domain.CloneLines(newItems)
	updated.Total = domain.LinesTotal(newItems)
	if newPayment != nil {
		updated.Received = newPayment.Received
		updated.Change = newPayment.Change
	}
	updated.IsModified = true
	updated.LastModified = timeutil.EpochMillis(time.Now())

	l.txns[idx] = updated
	l.persist()
	l.sounds.Play(domain.SoundCash)
	zap.L().Info("transaction edited",
		zap.Int64("txn_id", id),
		zap.Int("items", len(newItems)),
		zap.Int64("total", updated.Total))
	return updated, nil
}

// Void releases stock for every non-custom item, then removes the
// transaction entirely. Destructive and irreversible; this is the
// same-day mistake-correction path, not a refund workflow.
func (l *Ledger) Void(id int64) error {
	txn, ok := l.Find(id)
	if !ok {
		return &domain.NotFoundError{Kind: "transaction", ID: common.Int64String(id)}
	}
	for _, it := range txn.Items {
		if it.IsCustom {
			continue
		}
		if err := l.catalog.AdjustStock(it.ID, it.Qty); err != nil {
			zap.L().Warn("void stock restore skipped, product gone",
				zap.String("product_id", it.ID), zap.Int64("qty", it.Qty))
		}
	}
	l.RemoveByID(id)
	l.sounds.Play(domain.SoundClear)
	zap.L().Info("transaction voided, stock restored", zap.Int64("txn_id", id))
	return nil
}

// VoidKeepStock is the legacy void: the record is deleted but stock is
// NOT restored and must be adjusted manually. Kept as a separate,
// explicitly named operation; never merged with Void.
func (l *Ledger) VoidKeepStock(id int64) error {
	if !l.RemoveByID(id) {
		return &domain.NotFoundError{Kind: "transaction", ID: common.Int64String(id)}
	}
	l.sounds.Play(domain.SoundClear)
	zap.L().Info("transaction voided, manual restock required", zap.Int64("txn_id", id))
	return nil
}

func (l *Ledger) persist() {
	if err := l.store.SaveTransactions(l.txns); err != nil {
		zap.L().Warn("ledger not persisted, memory remains authoritative",
			zap.Error(err))
	}
}

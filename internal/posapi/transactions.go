package posapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/fairpos/internal/domain"
)

type editPayload struct {
	Items   []domain.CartLine `json:"items"`
	Payment *domain.Payment   `json:"payment"`
}

type ceilingPayload struct {
	ProductID string            `json:"product_id"`
	Draft     []domain.CartLine `json:"draft"`
}

func (h *Handler) registerTransactionRoutes(g *echo.Group) {
	g.GET("/transactions", h.listTransactions)
	g.GET("/transactions/:id", h.getTransaction)
	g.PUT("/transactions/:id", h.editTransaction)
	g.POST("/transactions/:id/edit-ceiling", h.editCeiling)
	// Two void behaviors exist deliberately; the caller always picks one
	// by route, never by flag.
	g.POST("/transactions/:id/void", h.voidTransaction)
	g.POST("/transactions/:id/void-keep-stock", h.voidKeepStock)
}

func txnID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handler) listTransactions(c echo.Context) error {
	var (
		txns    []domain.Transaction
		revenue int64
	)
	_ = h.app.WithRLock(func() error {
		txns = h.app.Ledger().Transactions()
		return nil
	})
	for _, t := range txns {
		revenue += t.Total
	}
	return ok(c, map[string]interface{}{
		"transactions": txns,
		"revenue":      revenue,
	})
}

func (h *Handler) getTransaction(c echo.Context) error {
	id, err := txnID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	var (
		txn   domain.Transaction
		found bool
	)
	_ = h.app.WithRLock(func() error {
		txn, found = h.app.Ledger().Find(id)
		return nil
	})
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Transaction not found", nil)
	}
	return ok(c, txn)
}

func (h *Handler) editTransaction(c echo.Context) error {
	id, err := txnID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	var payload editPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse edit", err.Error())
	}
	var updated domain.Transaction
	err = h.app.WithLock(func() (err error) {
		original, found := h.app.Ledger().Find(id)
		if !found {
			return &domain.NotFoundError{Kind: "transaction", ID: c.Param("id")}
		}
		// Per-item ceiling clamp first; the edit itself then applies one
		// net stock delta.
		items := h.app.Ledger().ClampDraft(original, payload.Items)
		updated, err = h.app.Ledger().Edit(id, items, payload.Payment)
		return err
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, updated)
}

// editCeiling reports the available-stock ceiling for adding a product to
// an edit draft: live stock plus the original order's units minus what
// the draft already stages.
func (h *Handler) editCeiling(c echo.Context) error {
	id, err := txnID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	var payload ceilingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse draft", err.Error())
	}
	var (
		ceiling int64
		found   bool
	)
	_ = h.app.WithRLock(func() error {
		var original domain.Transaction
		original, found = h.app.Ledger().Find(id)
		if found {
			ceiling = h.app.Ledger().EditAvailable(original, payload.ProductID, payload.Draft)
		}
		return nil
	})
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Transaction not found", nil)
	}
	return ok(c, map[string]interface{}{
		"product_id": payload.ProductID,
		"available":  ceiling,
	})
}

func (h *Handler) voidTransaction(c echo.Context) error {
	id, err := txnID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	err = h.app.WithLock(func() error {
		return h.app.Ledger().Void(id)
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"voided": id, "stock_restored": true})
}

func (h *Handler) voidKeepStock(c echo.Context) error {
	id, err := txnID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid transaction ID", nil)
	}
	err = h.app.WithLock(func() error {
		return h.app.Ledger().VoidKeepStock(id)
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"voided": id, "stock_restored": false})
}

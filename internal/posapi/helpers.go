// Package posapi exposes the till operations over HTTP for the
// presentation layer. Handlers exchange plain data only; every mutating
// route serializes through the application lock.
package posapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/fairpos/internal/app"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/ledger"
)

type Handler struct {
	app app.AppContext
}

func New(appCtx app.AppContext) *Handler {
	return &Handler{app: appCtx}
}

// Register mounts every route under /api.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")

	h.registerCatalogRoutes(api)
	h.registerCartRoutes(api)
	h.registerTransactionRoutes(api)
	h.registerReportRoutes(api)
	h.registerSystemRoutes(api)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code string, msg string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": msg,
		"detail":  detail,
	})
}

// failErr converts a domain error into its response shape. Everything in
// the taxonomy is handled here; nothing escapes as a bare 500 unless it
// is genuinely unexpected.
func failErr(c echo.Context, err error) error {
	var (
		insufficient *domain.InsufficientStockError
		emptyCart    *domain.EmptyCartError
		validation   *domain.StockValidationError
		noSnapshot   *domain.NoSnapshotError
		importErr    *domain.ImportValidationError
		notFound     *domain.NotFoundError
	)
	switch {
	case errors.As(err, &insufficient):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", insufficient.Error(), map[string]interface{}{
			"product_id": insufficient.ProductID,
			"remaining":  insufficient.Remaining,
			"requested":  insufficient.Requested,
		})
	case errors.As(err, &emptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case errors.As(err, &validation):
		return fail(c, http.StatusConflict, "STOCK_VALIDATION_FAILED", validation.Error(), validation.Shortages)
	case errors.As(err, &noSnapshot):
		return fail(c, http.StatusNotFound, "NO_SNAPSHOT", "No imported snapshot available", nil)
	case errors.As(err, &importErr):
		return fail(c, http.StatusBadRequest, "IMPORT_VALIDATION_FAILED", "Import rejected", importErr.RowErrors)
	case errors.As(err, &notFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", notFound.Error(), nil)
	case errors.Is(err, ledger.ErrEmptyEdit):
		return fail(c, http.StatusBadRequest, "EMPTY_EDIT", "An edit with no items is a void; call the void endpoint", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}

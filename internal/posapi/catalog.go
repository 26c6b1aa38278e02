package posapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/fairpos/internal/domain"
)

type restockPayload struct {
	Stock int64 `json:"stock"`
}

func (h *Handler) registerCatalogRoutes(g *echo.Group) {
	g.GET("/catalog", h.listCatalog)
	g.GET("/catalog/:id", h.getProduct)
	g.PUT("/catalog/:id/stock", h.restockProduct)
	g.POST("/catalog/restore-snapshot", h.restoreSnapshot)
	g.POST("/catalog/factory-reset", h.factoryReset)
}

func (h *Handler) listCatalog(c echo.Context) error {
	var (
		products    []domain.Product
		categories  []string
		hasSnapshot bool
	)
	_ = h.app.WithRLock(func() error {
		products = h.app.Catalog().Products()
		categories = h.app.Catalog().Categories()
		hasSnapshot = h.app.Catalog().HasSnapshot()
		return nil
	})

	// Filters: q matches name or barcode, category is exact
	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))
	if q != "" || category != "" {
		filtered := products[:0]
		for _, p := range products {
			if category != "" && p.Category != category {
				continue
			}
			if q != "" && !strings.Contains(p.Name, q) && !strings.Contains(p.Barcode, q) {
				continue
			}
			filtered = append(filtered, p)
		}
		products = filtered
	}

	return ok(c, map[string]interface{}{
		"products":     products,
		"categories":   categories,
		"has_snapshot": hasSnapshot,
	})
}

func (h *Handler) getProduct(c echo.Context) error {
	var (
		product domain.Product
		found   bool
	)
	_ = h.app.WithRLock(func() error {
		product, found = h.app.Catalog().FindByID(c.Param("id"))
		return nil
	})
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, product)
}

// restockProduct is the manual stock overwrite (inventory screen edit).
func (h *Handler) restockProduct(c echo.Context) error {
	var payload restockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock", err.Error())
	}
	if payload.Stock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must be >= 0", nil)
	}
	id := c.Param("id")
	var product domain.Product
	err := h.app.WithLock(func() error {
		if err := h.app.Catalog().SetStock(id, payload.Stock); err != nil {
			return err
		}
		product, _ = h.app.Catalog().FindByID(id)
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, product)
}

func (h *Handler) restoreSnapshot(c echo.Context) error {
	var count int
	err := h.app.WithLock(func() error {
		if err := h.app.Catalog().RestoreFromSnapshot(); err != nil {
			return err
		}
		count = h.app.Catalog().Len()
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"products": count})
}

func (h *Handler) factoryReset(c echo.Context) error {
	var count int
	_ = h.app.WithLock(func() error {
		h.app.Catalog().ResetToFactoryDefaults()
		h.app.Ledger().Load(nil)
		h.app.Cart().Reset()
		count = h.app.Catalog().Len()
		return h.app.Store().SaveTransactions(nil)
	})
	h.app.Sounds().Play(domain.SoundClear)
	return ok(c, map[string]interface{}{"products": count})
}

package posapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/pkg/common"
)

type scanPayload struct {
	Code string `json:"code"`
}

type addItemPayload struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
	// Custom entries carry their own name/price and bypass the catalog.
	Custom      bool   `json:"custom"`
	CustomName  string `json:"custom_name"`
	CustomPrice int64  `json:"custom_price"`
}

type qtyPayload struct {
	Delta int64 `json:"delta"`
}

type pricePayload struct {
	Price int64 `json:"price"`
}

type checkoutPayload struct {
	Received *int64 `json:"received"`
}

func (h *Handler) registerCartRoutes(g *echo.Group) {
	g.POST("/scan", h.scanBarcode)
	g.GET("/cart", h.getCart)
	g.POST("/cart/items", h.addCartItem)
	g.PUT("/cart/items/:id/qty", h.changeCartQty)
	g.PUT("/cart/items/:id/price", h.overrideCartPrice)
	g.DELETE("/cart/items/:id", h.removeCartItem)
	g.DELETE("/cart", h.clearCart)
	g.POST("/checkout", h.doCheckout)
}

// cartView snapshots the open cart for a response. Callers must hold the
// application lock (either side); the returned map carries copies only.
func (h *Handler) cartView() map[string]interface{} {
	return map[string]interface{}{
		"lines": h.app.Cart().Lines(),
		"total": h.app.Cart().Total(),
	}
}

func (h *Handler) scanBarcode(c echo.Context) error {
	var payload scanPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse scan", err.Error())
	}
	var (
		product domain.Product
		added   bool
		view    map[string]interface{}
	)
	err := h.app.WithLock(func() (err error) {
		product, added, err = h.app.Scanner().Scan(payload.Code)
		if err != nil {
			return err
		}
		view = h.cartView()
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{
		"product": product,
		"added":   added,
		"cart":    view,
	})
}

func (h *Handler) getCart(c echo.Context) error {
	var view map[string]interface{}
	_ = h.app.WithRLock(func() error {
		view = h.cartView()
		return nil
	})
	return ok(c, view)
}

func (h *Handler) addCartItem(c echo.Context) error {
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", err.Error())
	}

	var custom domain.Product
	if payload.Custom {
		name := strings.TrimSpace(payload.CustomName)
		if name == "" || payload.CustomPrice < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Custom item needs a name and a non-negative price", nil)
		}
		custom = domain.Product{
			ID:       fmt.Sprintf("custom-%s", common.UUID()),
			Name:     name,
			Price:    payload.CustomPrice,
			Category: "自訂",
			IsCustom: true,
		}
	}

	var view map[string]interface{}
	err := h.app.WithLock(func() error {
		product := custom
		if !payload.Custom {
			// Lookup under the same lock as the add so the stock figure
			// the guard sees cannot drift in between.
			var found bool
			product, found = h.app.Catalog().FindByID(payload.ProductID)
			if !found {
				return &domain.NotFoundError{Kind: "product", ID: payload.ProductID}
			}
		}
		if err := h.app.Cart().Add(product, payload.Qty); err != nil {
			return err
		}
		view = h.cartView()
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, view)
}

func (h *Handler) changeCartQty(c echo.Context) error {
	var payload qtyPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse qty change", err.Error())
	}
	var view map[string]interface{}
	err := h.app.WithLock(func() error {
		if err := h.app.Cart().ChangeQty(c.Param("id"), payload.Delta); err != nil {
			return err
		}
		view = h.cartView()
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, view)
}

func (h *Handler) overrideCartPrice(c echo.Context) error {
	var payload pricePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse price", err.Error())
	}
	var view map[string]interface{}
	err := h.app.WithLock(func() error {
		if err := h.app.Cart().OverridePrice(c.Param("id"), payload.Price); err != nil {
			return err
		}
		view = h.cartView()
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, view)
}

func (h *Handler) removeCartItem(c echo.Context) error {
	var view map[string]interface{}
	_ = h.app.WithLock(func() error {
		h.app.Cart().Remove(c.Param("id"))
		view = h.cartView()
		return nil
	})
	return ok(c, view)
}

func (h *Handler) clearCart(c echo.Context) error {
	var view map[string]interface{}
	_ = h.app.WithLock(func() error {
		h.app.Cart().Clear()
		view = h.cartView()
		return nil
	})
	return ok(c, view)
}

func (h *Handler) doCheckout(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment", err.Error())
	}
	var txn domain.Transaction
	err := h.app.WithLock(func() (err error) {
		txn, err = h.app.Checkout().Checkout(payload.Received)
		return err
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, txn)
}

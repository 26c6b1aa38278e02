package posapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/fairpos/internal/domain"
)

type modePayload struct {
	Demo bool `json:"demo"`
}

type settingsPayload struct {
	BarcodeSymbology string `json:"barcode_symbology"`
}

func (h *Handler) registerSystemRoutes(g *echo.Group) {
	g.GET("/mode", h.getMode)
	g.PUT("/mode", h.setMode)
	g.POST("/mode/demo-reset", h.resetDemo)
	g.GET("/settings", h.getSettings)
	g.PUT("/settings", h.updateSettings)
}

func (h *Handler) getMode(c echo.Context) error {
	var (
		demo  bool
		state string
	)
	_ = h.app.WithRLock(func() error {
		demo = h.app.Mode().Demo()
		state = h.app.Store().State().String()
		return nil
	})
	return ok(c, map[string]interface{}{
		"demo":  demo,
		"state": state,
	})
}

func (h *Handler) setMode(c echo.Context) error {
	var payload modePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse mode", err.Error())
	}
	var demo bool
	_ = h.app.WithLock(func() error {
		h.app.Mode().SetMode(payload.Demo)
		demo = h.app.Mode().Demo()
		return nil
	})
	return ok(c, map[string]interface{}{"demo": demo})
}

func (h *Handler) resetDemo(c echo.Context) error {
	var demo bool
	err := h.app.WithLock(func() error {
		if err := h.app.Mode().ResetDemoData(); err != nil {
			return err
		}
		demo = h.app.Mode().Demo()
		return nil
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"demo": demo})
}

func (h *Handler) getSettings(c echo.Context) error {
	var settings domain.Settings
	_ = h.app.WithRLock(func() error {
		settings = h.app.Mode().Settings()
		return nil
	})
	return ok(c, settings)
}

func (h *Handler) updateSettings(c echo.Context) error {
	var payload settingsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	symbology := strings.TrimSpace(payload.BarcodeSymbology)
	if symbology == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Symbology label is required", nil)
	}
	var settings domain.Settings
	_ = h.app.WithLock(func() error {
		h.app.Mode().UpdateSettings(domain.Settings{BarcodeSymbology: symbology})
		settings = h.app.Mode().Settings()
		return nil
	})
	return ok(c, settings)
}

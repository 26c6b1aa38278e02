package posapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/report"
)

func (h *Handler) registerReportRoutes(g *echo.Group) {
	g.POST("/import", h.importCatalog)
	g.GET("/import/template", h.importTemplate)
	g.GET("/export/orders", h.exportOrders)
	g.GET("/export/products", h.exportProducts)
	g.GET("/summary", h.summary)
}

func (h *Handler) importCatalog(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing file upload", nil)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open upload", err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read upload", err.Error())
	}

	var products []domain.Product
	err = h.app.WithLock(func() (err error) {
		products, err = h.app.Importer().ImportCSV(fileHeader.Filename, data)
		return err
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"imported": len(products)})
}

func (h *Handler) importTemplate(c echo.Context) error {
	return sendFile(c, "products_template.csv", "text/csv; charset=utf-8", h.app.Importer().Template())
}

func (h *Handler) exportOrders(c echo.Context) error {
	scope := report.ParseScope(c.QueryParam("scope"))
	var (
		filename string
		data     []byte
	)
	err := h.app.WithRLock(func() (err error) {
		filename, data, err = h.app.Exporter().ExportOrders(scope)
		return err
	})
	if err != nil {
		return failErr(c, err)
	}
	return sendFile(c, filename, "text/csv; charset=utf-8", data)
}

func (h *Handler) exportProducts(c echo.Context) error {
	scope := report.ParseScope(c.QueryParam("scope"))
	var (
		filename    string
		data        []byte
		err         error
		contentType = "text/csv; charset=utf-8"
	)
	err = h.app.WithRLock(func() (err error) {
		if c.QueryParam("format") == "xlsx" {
			filename, data, err = h.app.Exporter().ExportProductStatsXLSX(scope)
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		} else {
			filename, data, err = h.app.Exporter().ExportProductStats(scope)
		}
		return err
	})
	if err != nil {
		return failErr(c, err)
	}
	return sendFile(c, filename, contentType, data)
}

func (h *Handler) summary(c echo.Context) error {
	scope := report.ParseScope(c.QueryParam("scope"))
	var summary report.Summary
	_ = h.app.WithRLock(func() error {
		summary = h.app.Exporter().Summarize(scope)
		return nil
	})
	return ok(c, summary)
}

func sendFile(c echo.Context, filename, contentType string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, contentType, data)
}

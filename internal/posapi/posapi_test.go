package posapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/fairpos/config"
	"github.com/talkincode/fairpos/internal/app"
)

func newTestServer(t *testing.T) (*app.Application, *echo.Echo) {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Logger.Mode = "development"

	application := app.NewApplication(cfg)
	require.NoError(t, application.Init(cfg))
	t.Cleanup(application.Release)

	e := echo.New()
	New(application).Register(e)
	return application, e
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSaleFlow(t *testing.T) {
	_, e := newTestServer(t)

	// Scan two sausages and one tea.
	for _, code := range []string{"101", "201"} {
		rec := doJSON(t, e, http.MethodPost, "/api/scan", map[string]string{"code": code})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := doJSON(t, e, http.MethodPost, "/api/cart/items",
		map[string]interface{}{"product_id": "101", "qty": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/cart", nil)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2*35+25), data["total"])

	rec = doJSON(t, e, http.MethodPost, "/api/checkout",
		map[string]interface{}{"received": 200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	txn := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(95), txn["total"])
	assert.Equal(t, float64(105), txn["change"])
	// Transaction ids serialize as strings to survive JS number precision.
	assert.IsType(t, "", txn["id"])

	// Stock moved and the ledger recorded the sale.
	rec = doJSON(t, e, http.MethodGet, "/api/catalog/101", nil)
	product := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(98), product["stock"])

	rec = doJSON(t, e, http.MethodGet, "/api/transactions", nil)
	listing := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(95), listing["revenue"])

	// Cart is empty again.
	rec = doJSON(t, e, http.MethodGet, "/api/cart", nil)
	data = decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total"])
}

func TestCheckoutEmptyCartResponse(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/api/checkout", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_CART", decode(t, rec)["code"])
}

func TestScanUnknownBarcodeResponse(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/api/scan", map[string]string{"code": "000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["code"])
}

func TestInsufficientStockResponse(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPut, "/api/catalog/406/stock",
		map[string]interface{}{"stock": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/cart/items",
		map[string]interface{}{"product_id": "406", "qty": 2})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	detail := body["detail"].(map[string]interface{})
	assert.Equal(t, "406", detail["product_id"])
}

func TestCustomCartItem(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/api/cart/items", map[string]interface{}{
		"custom": true, "custom_name": "愛心捐款", "custom_price": 120, "qty": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	lines := data["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.True(t, strings.HasPrefix(line["id"].(string), "custom-"))
	assert.Equal(t, true, line["is_custom"])

	// No name: rejected before touching the cart.
	rec = doJSON(t, e, http.MethodPost, "/api/cart/items", map[string]interface{}{
		"custom": true, "custom_price": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoidEndpointsDiffer(t *testing.T) {
	a, e := newTestServer(t)
	sell := func() string {
		// The add endpoint, not scan: back-to-back scans of the same
		// barcode would land inside the debounce window.
		rec := doJSON(t, e, http.MethodPost, "/api/cart/items",
			map[string]interface{}{"product_id": "102", "qty": 1})
		require.Equal(t, http.StatusOK, rec.Code)
		rec = doJSON(t, e, http.MethodPost, "/api/checkout", map[string]interface{}{})
		require.Equal(t, http.StatusOK, rec.Code)
		return decode(t, rec)["data"].(map[string]interface{})["id"].(string)
	}
	stock := func() float64 {
		rec := doJSON(t, e, http.MethodGet, "/api/catalog/102", nil)
		return decode(t, rec)["data"].(map[string]interface{})["stock"].(float64)
	}

	first := sell()
	second := sell()
	require.Equal(t, float64(48), stock())

	rec := doJSON(t, e, http.MethodPost, "/api/transactions/"+first+"/void", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(49), stock())

	rec = doJSON(t, e, http.MethodPost, "/api/transactions/"+second+"/void-keep-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(49), stock())

	assert.Equal(t, 0, a.Ledger().Len())
}

func TestEditTransactionEndpoint(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/api/scan", map[string]string{"code": "103"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/api/cart/items",
		map[string]interface{}{"product_id": "103", "qty": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/api/checkout", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["data"].(map[string]interface{})["id"].(string)

	rec = doJSON(t, e, http.MethodPut, "/api/transactions/"+id, map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": "103", "name": "炒米粉", "price": 50, "qty": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(50), updated["total"])
	assert.Equal(t, true, updated["is_modified"])

	// Editing to zero items routes the caller to the void endpoints.
	rec = doJSON(t, e, http.MethodPut, "/api/transactions/"+id, map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_EDIT", decode(t, rec)["code"])
}

func TestModeRoutes(t *testing.T) {
	a, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodGet, "/api/mode", nil)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, false, data["demo"])
	assert.Equal(t, "ready", data["state"])

	rec = doJSON(t, e, http.MethodPut, "/api/mode", map[string]interface{}{"demo": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, a.Mode().Demo())

	rec = doJSON(t, e, http.MethodPost, "/api/mode/demo-reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, a.Mode().Demo())
}

func TestImportEndpoint(t *testing.T) {
	a, e := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("商品名稱,價格,分類,條碼,庫存\n熱狗,30,食物,901,50\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["data"].(map[string]interface{})["imported"])
	assert.Equal(t, 1, a.Catalog().Len())
	assert.True(t, a.Catalog().HasSnapshot())
}

func TestExportRoutes(t *testing.T) {
	_, e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/import/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "products_template.csv")

	rec = doJSON(t, e, http.MethodGet, "/api/export/orders?scope=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "POS_Orders_all_")

	rec = doJSON(t, e, http.MethodGet, "/api/export/products?scope=today&format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")

	rec = doJSON(t, e, http.MethodGet, "/api/summary?scope=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsRoutes(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodGet, "/api/settings", nil)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "EAN-13", data["barcode_symbology"])

	rec = doJSON(t, e, http.MethodPut, "/api/settings",
		map[string]interface{}{"barcode_symbology": "Code 128"})
	require.Equal(t, http.StatusOK, rec.Code)
	data = decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Code 128", data["barcode_symbology"])

	rec = doJSON(t, e, http.MethodPut, "/api/settings",
		map[string]interface{}{"barcode_symbology": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogFilters(t *testing.T) {
	_, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodGet, "/api/catalog?category=飲料", nil)
	data := decode(t, rec)["data"].(map[string]interface{})
	products := data["products"].([]interface{})
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, "飲料", p.(map[string]interface{})["category"])
	}

	rec = doJSON(t, e, http.MethodGet, "/api/catalog?q=珍珠", nil)
	data = decode(t, rec)["data"].(map[string]interface{})
	require.Len(t, data["products"], 1)
}

func TestFactoryResetEndpoint(t *testing.T) {
	a, e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/api/scan", map[string]string{"code": "104"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/api/checkout", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, a.Ledger().Len())

	rec = doJSON(t, e, http.MethodPost, "/api/catalog/factory-reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, a.Ledger().Len())
	assert.Equal(t, 0, a.Cart().Len())

	rec = doJSON(t, e, http.MethodGet, "/api/catalog/104", nil)
	product := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(80), product["stock"])
}

// Concurrent readers and writers on the shared cart and catalog; under
// the race detector this verifies every handler snapshots its view
// inside the application lock.
func TestConcurrentCartAccess(t *testing.T) {
	_, e := newTestServer(t)

	serve := func(method, path string, payload interface{}) int {
		var body bytes.Buffer
		if payload != nil {
			_ = json.NewEncoder(&body).Encode(payload)
		}
		req := httptest.NewRequest(method, path, &body)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			serve(http.MethodPost, "/api/cart/items",
				map[string]interface{}{"product_id": "101", "qty": 1})
			serve(http.MethodDelete, "/api/cart/items/101", nil)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if code := serve(http.MethodGet, "/api/cart", nil); code != http.StatusOK {
				t.Errorf("cart view returned %d", code)
				return
			}
			serve(http.MethodGet, "/api/catalog", nil)
			serve(http.MethodGet, "/api/summary", nil)
		}
	}()
	wg.Wait()

	require.Equal(t, http.StatusOK, serve(http.MethodDelete, "/api/cart", nil))
}

package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/ledger"
	"github.com/talkincode/fairpos/pkg/common"
	"github.com/talkincode/fairpos/pkg/timeutil"
)

// Scope selects which transactions a report covers. Today is calendar-day
// equality in the exporter's location, not a rolling 24h window.
type Scope string

const (
	ScopeToday Scope = "today"
	ScopeAll   Scope = "all"
)

func ParseScope(s string) Scope {
	if strings.EqualFold(s, string(ScopeAll)) {
		return ScopeAll
	}
	return ScopeToday
}

type orderRow struct {
	ID       string `csv:"交易ID"`
	Time     string `csv:"時間"`
	Items    string `csv:"商品詳情"`
	Total    int64  `csv:"總金額"`
	Received string `csv:"實收"`
	Change   string `csv:"找零"`
	Status   string `csv:"狀態"`
}

type productStatRow struct {
	Name     string `csv:"商品名稱"`
	Category string `csv:"分類"`
	QtySold  int64  `csv:"銷售數量"`
	Revenue  int64  `csv:"銷售總額"`
	Stock    int64  `csv:"目前庫存"`
}

type Exporter struct {
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	location *time.Location
	now      func() time.Time
}

func NewExporter(cat *catalog.Catalog, l *ledger.Ledger, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{catalog: cat, ledger: l, location: loc, now: time.Now}
}

// scoped returns the transactions a scope covers. Stored times are epoch
// millis; anything unparseable upstream already fell back to "now" via
// timeutil, so a malformed record can only ever land in today's bucket.
func (e *Exporter) scoped(scope Scope) []domain.Transaction {
	txns := e.ledger.Transactions()
	if scope == ScopeAll {
		return txns
	}
	today := e.now()
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		when := timeutil.FromMillis(t.Time, e.location)
		if timeutil.SameCalendarDay(when, today, e.location) {
			out = append(out, t)
		}
	}
	return out
}

// ExportOrders renders the order-detail report: one row per transaction,
// UTF-8 with BOM, quoted fields.
func (e *Exporter) ExportOrders(scope Scope) (filename string, data []byte, err error) {
	txns := e.scoped(scope)
	rows := make([]orderRow, 0, len(txns))
	for _, t := range txns {
		row := orderRow{
			ID:       common.Int64String(t.ID),
			Time:     timeutil.Stamp(timeutil.FromMillis(t.Time, e.location), e.location),
			Items:    flattenItems(t.Items),
			Total:    t.Total,
			Received: "-",
			Change:   "-",
			Status:   t.Status,
		}
		if t.Received != nil {
			row.Received = common.Int64String(*t.Received)
		}
		if t.Change != nil {
			row.Change = common.Int64String(*t.Change)
		}
		rows = append(rows, row)
	}
	data, err = marshalCSV(&rows)
	if err != nil {
		return "", nil, err
	}
	filename = fmt.Sprintf("POS_Orders_%s_%s.csv", scope, timeutil.DayTag(e.now(), e.location))
	return filename, data, nil
}

// ProductStats aggregates quantity sold and revenue per current catalog
// product by scanning the ledger; never-sold products appear with zeros.
func (e *Exporter) ProductStats(scope Scope) []productStatRow {
	type agg struct {
		qty     int64
		revenue int64
	}
	sold := make(map[string]agg)
	for _, t := range e.scoped(scope) {
		for _, it := range t.Items {
			a := sold[it.ID]
			a.qty += it.Qty
			a.revenue += it.Subtotal()
			sold[it.ID] = a
		}
	}
	products := e.catalog.Products()
	rows := make([]productStatRow, 0, len(products))
	for _, p := range products {
		a := sold[p.ID]
		rows = append(rows, productStatRow{
			Name:     p.Name,
			Category: p.Category,
			QtySold:  a.qty,
			Revenue:  a.revenue,
			Stock:    p.Stock,
		})
	}
	return rows
}

// ExportProductStats renders the product-statistics report as CSV.
func (e *Exporter) ExportProductStats(scope Scope) (filename string, data []byte, err error) {
	rows := e.ProductStats(scope)
	data, err = marshalCSV(&rows)
	if err != nil {
		return "", nil, err
	}
	filename = fmt.Sprintf("POS_Products_%s_%s.csv", scope, timeutil.DayTag(e.now(), e.location))
	return filename, data, nil
}

// ExportProductStatsXLSX renders the same product statistics as a
// spreadsheet for operators who live in Excel.
func (e *Exporter) ExportProductStatsXLSX(scope Scope) (filename string, data []byte, err error) {
	rows := e.ProductStats(scope)
	xlsx := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"商品名稱", "分類", "銷售數量", "銷售總額", "目前庫存"}
	for col, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%s1", excelize.ToAlphaString(col)), h)
	}
	for i, row := range rows {
		r := i + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.Name)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Category)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.QtySold)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Revenue)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.Stock)
	}
	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return "", nil, errors.Wrap(err, "write xlsx")
	}
	filename = fmt.Sprintf("POS_Products_%s_%s.xlsx", scope, timeutil.DayTag(e.now(), e.location))
	return filename, buf.Bytes(), nil
}

func flattenItems(items []domain.CartLine) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Qty))
	}
	return strings.Join(parts, "; ")
}

// marshalCSV renders rows with the standard quoting rules and a UTF-8
// BOM so spreadsheet tools pick the right encoding.
func marshalCSV(rows interface{}) ([]byte, error) {
	out, err := gocsv.MarshalString(rows)
	if err != nil {
		return nil, errors.Wrap(err, "marshal csv")
	}
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString(out)
	return buf.Bytes(), nil
}

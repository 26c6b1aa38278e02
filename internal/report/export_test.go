package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/ledger"
	"github.com/talkincode/fairpos/internal/sound"
	"github.com/talkincode/fairpos/internal/store"
	"github.com/talkincode/fairpos/pkg/timeutil"
)

func newTestExporter(t *testing.T) (*ledger.Ledger, *Exporter) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "fairpos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	st.BeginLoad(store.Live)
	st.FinishLoad()

	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	cat := catalog.NewCatalog(st)
	cat.Load([]domain.Product{
		{ID: "101", Name: "熱狗", Price: 30, Category: "食物", Barcode: "101", Stock: 8},
		{ID: "201", Name: "紅茶", Price: 20, Category: "飲料", Barcode: "201", Stock: 5},
	}, nil)
	l := ledger.NewLedger(st, cat, sound.NewBus())

	e := NewExporter(cat, l, loc)
	e.now = func() time.Time { return time.Date(2024, 5, 11, 15, 0, 0, 0, loc) }
	return l, e
}

func appendSale(l *ledger.Ledger, id int64, when time.Time, items ...domain.CartLine) {
	l.Append(domain.Transaction{
		ID:     id,
		Time:   timeutil.EpochMillis(when),
		Items:  items,
		Total:  domain.LinesTotal(items),
		Status: domain.StatusCompleted,
	})
}

func TestScopeToday(t *testing.T) {
	l, e := newTestExporter(t)
	today := e.now()
	appendSale(l, 1, today.Add(-2*time.Hour),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 30, Qty: 2})
	appendSale(l, 2, today.AddDate(0, 0, -1),
		domain.CartLine{ID: "201", Name: "紅茶", Price: 20, Qty: 1})

	scoped := e.scoped(ScopeToday)
	require.Len(t, scoped, 1)
	assert.Equal(t, int64(1), scoped[0].ID)

	assert.Len(t, e.scoped(ScopeAll), 2)
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, ScopeAll, ParseScope("all"))
	assert.Equal(t, ScopeAll, ParseScope("ALL"))
	assert.Equal(t, ScopeToday, ParseScope("today"))
	// Unknown values fall back to the safe default.
	assert.Equal(t, ScopeToday, ParseScope(""))
	assert.Equal(t, ScopeToday, ParseScope("everything"))
}

func TestExportOrders(t *testing.T) {
	l, e := newTestExporter(t)
	received, change := int64(100), int64(20)
	l.Append(domain.Transaction{
		ID:   1,
		Time: timeutil.EpochMillis(e.now()),
		Items: []domain.CartLine{
			{ID: "101", Name: "熱狗", Price: 30, Qty: 2},
			{ID: "201", Name: "紅茶", Price: 20, Qty: 1},
		},
		Total:    80,
		Received: &received,
		Change:   &change,
		Status:   domain.StatusCompleted,
	})
	appendSale(l, 2, e.now(),
		domain.CartLine{ID: "201", Name: "紅茶", Price: 20, Qty: 1})

	filename, data, err := e.ExportOrders(ScopeToday)
	require.NoError(t, err)
	assert.Equal(t, "POS_Orders_today_2024-05-11.csv", filename)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, string(utf8BOM)))
	assert.Contains(t, text, "交易ID")
	assert.Contains(t, text, "熱狗 x2; 紅茶 x1")
	assert.Contains(t, text, "2024-05-11")
	assert.Contains(t, text, "100")
	// Untracked cash renders as a dash, not zero.
	assert.Contains(t, text, "-")
}

func TestProductStats(t *testing.T) {
	l, e := newTestExporter(t)
	appendSale(l, 1, e.now(),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 30, Qty: 2})
	appendSale(l, 2, e.now(),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 25, Qty: 1}) // overridden price

	rows := e.ProductStats(ScopeToday)
	require.Len(t, rows, 2)

	assert.Equal(t, "熱狗", rows[0].Name)
	assert.Equal(t, int64(3), rows[0].QtySold)
	assert.Equal(t, int64(85), rows[0].Revenue)
	assert.Equal(t, int64(8), rows[0].Stock)

	// Never-sold products still get a row with zeros.
	assert.Equal(t, "紅茶", rows[1].Name)
	assert.Equal(t, int64(0), rows[1].QtySold)
	assert.Equal(t, int64(0), rows[1].Revenue)
	assert.Equal(t, int64(5), rows[1].Stock)
}

func TestExportProductStatsCSV(t *testing.T) {
	l, e := newTestExporter(t)
	appendSale(l, 1, e.now(),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 30, Qty: 2})

	filename, data, err := e.ExportProductStats(ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "POS_Products_all_2024-05-11.csv", filename)
	text := string(data)
	assert.Contains(t, text, "商品名稱")
	assert.Contains(t, text, "熱狗")
}

func TestExportProductStatsXLSX(t *testing.T) {
	l, e := newTestExporter(t)
	appendSale(l, 1, e.now(),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 30, Qty: 2})

	filename, data, err := e.ExportProductStatsXLSX(ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "POS_Products_all_2024-05-11.xlsx", filename)
	// XLSX payloads are zip archives.
	require.Greater(t, len(data), 4)
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestSummarize(t *testing.T) {
	l, e := newTestExporter(t)
	appendSale(l, 1, e.now(),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 30, Qty: 2}) // 60
	appendSale(l, 2, e.now(),
		domain.CartLine{ID: "201", Name: "紅茶", Price: 20, Qty: 1}) // 20
	appendSale(l, 3, e.now(),
		domain.CartLine{ID: "101", Name: "熱狗", Price: 30, Qty: 1}) // 30

	s := e.Summarize(ScopeToday)
	assert.Equal(t, 3, s.Transactions)
	assert.Equal(t, int64(110), s.Revenue)
	assert.Equal(t, int64(4), s.ItemsSold)
	assert.InDelta(t, 110.0/3.0, s.MeanTotal, 0.001)
	assert.InDelta(t, 30.0, s.MedianTotal, 0.001)
	assert.InDelta(t, 60.0, s.MaxTotal, 0.001)
}

func TestSummarizeEmptyLedger(t *testing.T) {
	_, e := newTestExporter(t)
	s := e.Summarize(ScopeAll)
	assert.Equal(t, 0, s.Transactions)
	assert.Equal(t, int64(0), s.Revenue)
	assert.Equal(t, 0.0, s.MeanTotal)
}

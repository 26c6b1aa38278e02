package mode

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/fairpos/internal/cart"
	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/ledger"
	"github.com/talkincode/fairpos/internal/sound"
	"github.com/talkincode/fairpos/internal/store"
)

type rig struct {
	store   *store.Store
	catalog *catalog.Catalog
	cart    *cart.Cart
	ledger  *ledger.Ledger
	mode    *Controller
}

func newTestRig(t *testing.T) *rig {
	t.Helper()
	return openRig(t, filepath.Join(t.TempDir(), "fairpos.db"))
}

func openRig(t *testing.T, dbfile string) *rig {
	t.Helper()
	st, err := store.Open(dbfile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sounds := sound.NewBus()
	cat := catalog.NewCatalog(st)
	c := cart.NewCart(cat, sounds)
	l := ledger.NewLedger(st, cat, sounds)
	return &rig{store: st, catalog: cat, cart: c, ledger: l, mode: NewController(st, cat, c, l)}
}

func TestBootSeedsFactoryCatalog(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(false)

	assert.False(t, r.mode.Demo())
	assert.Equal(t, store.Live, r.store.Namespace())
	assert.Equal(t, store.Ready, r.store.State())
	assert.Equal(t, len(domain.FactoryProducts()), r.catalog.Len())
	assert.Equal(t, 0, r.ledger.Len())
	assert.Equal(t, domain.DefaultSettings(), r.mode.Settings())
}

func TestBootHonorsPersistedModeFlag(t *testing.T) {
	dbfile := filepath.Join(t.TempDir(), "fairpos.db")
	r := openRig(t, dbfile)
	r.mode.Boot(false)
	r.mode.SetMode(true)
	require.NoError(t, r.store.Close())

	// Restart with a different default: the stored flag wins.
	r2 := openRig(t, dbfile)
	r2.mode.Boot(false)
	assert.True(t, r2.mode.Demo())
}

func TestModeSwitchIsolatesNamespaces(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(false)

	// Mutate live: sell two hot dogs.
	require.NoError(t, r.catalog.AdjustStock("101", -2))
	liveStock := func() int64 {
		p, ok := r.catalog.FindByID("101")
		require.True(t, ok)
		return p.Stock
	}
	liveBefore := liveStock()

	r.mode.SetMode(true)
	require.True(t, r.mode.Demo())

	// Demo starts from its own seeds, untouched by the live sale.
	demoHotdog, ok := r.catalog.FindByID("101")
	require.True(t, ok)
	assert.NotEqual(t, liveBefore, demoHotdog.Stock)

	// Wreck the demo catalog.
	require.NoError(t, r.catalog.SetStock("101", 0))
	r.catalog.ReplaceAll([]domain.Product{
		{ID: "d1", Name: "示範商品", Price: 1, Category: "其他", Stock: 1},
	}, true)

	// Back to live: everything exactly as left.
	r.mode.SetMode(false)
	assert.False(t, r.mode.Demo())
	assert.Equal(t, liveBefore, liveStock())
	assert.False(t, r.catalog.HasSnapshot())
	_, ok = r.catalog.FindByID("d1")
	assert.False(t, ok)
}

func TestModeSwitchDropsOpenCart(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(false)

	p, ok := r.catalog.FindByID("101")
	require.True(t, ok)
	require.NoError(t, r.cart.Add(p, 1))
	require.Equal(t, 1, r.cart.Len())

	r.mode.SetMode(true)
	assert.Equal(t, 0, r.cart.Len())
}

func TestLedgerFollowsNamespace(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(false)
	r.ledger.Append(domain.Transaction{
		ID: 1, Time: 1715390000000, Status: domain.StatusCompleted,
		Items: []domain.CartLine{{ID: "101", Name: "熱狗", Price: 30, Qty: 1}},
		Total: 30,
	})

	r.mode.SetMode(true)
	assert.Equal(t, 0, r.ledger.Len())

	r.mode.SetMode(false)
	require.Equal(t, 1, r.ledger.Len())
	assert.Equal(t, int64(1), r.ledger.Transactions()[0].ID)
}

func TestDemoSeedsCapStock(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(true)
	for _, p := range r.catalog.Products() {
		assert.LessOrEqual(t, p.Stock, int64(10), "demo seed %s", p.ID)
	}
}

func TestResetDemoData(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(true)

	require.NoError(t, r.catalog.SetStock("101", 0))
	r.ledger.Append(domain.Transaction{
		ID: 1, Time: 1715390000000, Status: domain.StatusCompleted,
		Items: []domain.CartLine{{ID: "101", Name: "熱狗", Price: 30, Qty: 1}},
		Total: 30,
	})

	require.NoError(t, r.mode.ResetDemoData())
	assert.True(t, r.mode.Demo())
	assert.Equal(t, 0, r.ledger.Len())
	p, ok := r.catalog.FindByID("101")
	require.True(t, ok)
	assert.NotZero(t, p.Stock)
}

func TestResetDemoDataFromLiveLeavesLiveAlone(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(false)
	require.NoError(t, r.catalog.AdjustStock("101", -2))
	p, _ := r.catalog.FindByID("101")
	before := p.Stock

	require.NoError(t, r.mode.ResetDemoData())
	assert.False(t, r.mode.Demo())
	p, _ = r.catalog.FindByID("101")
	assert.Equal(t, before, p.Stock)
}

func TestSettingsPerNamespace(t *testing.T) {
	r := newTestRig(t)
	r.mode.Boot(false)
	r.mode.UpdateSettings(domain.Settings{BarcodeSymbology: "Code 128"})

	r.mode.SetMode(true)
	assert.Equal(t, domain.DefaultSettings(), r.mode.Settings())

	r.mode.SetMode(false)
	assert.Equal(t, "Code 128", r.mode.Settings().BarcodeSymbology)
}

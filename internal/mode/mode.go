// Package mode swaps the application between the live and demo datasets.
// A switch is a full reload of the four entities from the target
// namespace, never a merge, and persistence writes stay suspended for the
// whole swap window so half-loaded state can never leak into storage.
package mode

import (
	"go.uber.org/zap"

	"github.com/talkincode/fairpos/internal/cart"
	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/ledger"
	"github.com/talkincode/fairpos/internal/store"
)

type Controller struct {
	store    *store.Store
	catalog  *catalog.Catalog
	cart     *cart.Cart
	ledger   *ledger.Ledger
	settings domain.Settings
	demo     bool
}

func NewController(st *store.Store, cat *catalog.Catalog, c *cart.Cart, l *ledger.Ledger) *Controller {
	return &Controller{store: st, catalog: cat, cart: c, ledger: l}
}

func (m *Controller) Demo() bool { return m.demo }

func (m *Controller) Settings() domain.Settings { return m.settings }

// UpdateSettings replaces the settings record for the active namespace.
func (m *Controller) UpdateSettings(s domain.Settings) {
	m.settings = s
	if err := m.store.SaveSettings(s); err != nil {
		zap.L().Warn("settings not persisted", zap.Error(err))
	}
}

// Boot performs the initial load: the persisted mode flag wins, the
// configured default applies on first run.
func (m *Controller) Boot(defaultDemo bool) {
	demo := defaultDemo
	if stored, found := m.store.LoadMode(); found {
		demo = stored
	}
	m.SetMode(demo)
}

// SetMode loads the target namespace (seed data when empty) and only
// then resumes persistence. The open cart never survives a switch.
func (m *Controller) SetMode(demo bool) {
	ns := store.Live
	if demo {
		ns = store.Demo
	}
	m.store.BeginLoad(ns)

	products, ok := m.store.LoadProducts(ns)
	if !ok {
		products = seedProducts(demo)
		zap.L().Info("namespace empty, seeding catalog",
			zap.String("namespace", string(ns)),
			zap.Int("products", len(products)))
	}
	snapshot, _ := m.store.LoadSnapshot(ns)
	txns, ok := m.store.LoadTransactions(ns)
	if !ok {
		txns = nil
	}
	settings, ok := m.store.LoadSettings(ns)
	if !ok {
		settings = domain.DefaultSettings()
	}

	m.catalog.Load(products, snapshot)
	m.ledger.Load(txns)
	m.cart.Reset()
	m.settings = settings
	m.demo = demo

	m.store.FinishLoad()

	if err := m.store.SaveMode(demo); err != nil {
		zap.L().Warn("mode flag not persisted", zap.Error(err))
	}
	// First load of a fresh namespace: make the seeds durable now that
	// writes are allowed again.
	m.catalog.Flush()

	zap.L().Info("mode switched",
		zap.Bool("demo", demo),
		zap.Int("products", m.catalog.Len()),
		zap.Int("transactions", m.ledger.Len()))
}

// ResetDemoData clears only the demo namespace and reloads seed demo
// data. Live data is never touched.
func (m *Controller) ResetDemoData() error {
	if err := m.store.ClearNamespace(store.Demo); err != nil {
		return err
	}
	if m.demo {
		m.SetMode(true)
	}
	zap.L().Info("demo namespace reset")
	return nil
}

func seedProducts(demo bool) []domain.Product {
	if demo {
		return domain.DemoProducts()
	}
	return domain.FactoryProducts()
}

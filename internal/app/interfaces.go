package app

import (
	"time"

	"github.com/talkincode/fairpos/config"
	"github.com/talkincode/fairpos/internal/cart"
	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/checkout"
	"github.com/talkincode/fairpos/internal/ledger"
	"github.com/talkincode/fairpos/internal/mode"
	"github.com/talkincode/fairpos/internal/report"
	"github.com/talkincode/fairpos/internal/sound"
	"github.com/talkincode/fairpos/internal/store"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
	Location() *time.Location
}

// StoreProvider provides durable storage access
type StoreProvider interface {
	Store() *store.Store
}

// SoundProvider provides the audio cue bus
type SoundProvider interface {
	Sounds() *sound.Bus
}

// CatalogProvider provides the product catalog
type CatalogProvider interface {
	Catalog() *catalog.Catalog
}

// LedgerProvider provides the transaction history
type LedgerProvider interface {
	Ledger() *ledger.Ledger
}

// CheckoutProvider provides the checkout engine and the open cart
type CheckoutProvider interface {
	Cart() *cart.Cart
	Scanner() *cart.Scanner
	Checkout() *checkout.Engine
}

// ModeProvider provides the live/demo mode controller
type ModeProvider interface {
	Mode() *mode.Controller
}

// ReportProvider provides import/export services
type ReportProvider interface {
	Importer() *report.Importer
	Exporter() *report.Exporter
}

// AppContext combines all provider interfaces for full application
// context. Handlers should depend on specific providers or this combined
// interface.
type AppContext interface {
	ConfigProvider
	StoreProvider
	SoundProvider
	CatalogProvider
	LedgerProvider
	CheckoutProvider
	ModeProvider
	ReportProvider

	// WithLock serializes a mutating operation on shared state.
	WithLock(fn func() error) error
	// WithRLock serializes a read-only view over shared state.
	WithRLock(fn func() error) error
}

package app

import (
	"os"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

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

// Application owns the four core entities and every service that mutates
// them. Mutations are serialized through one mutex taken at the API
// boundary: the system is a single logical thread of control.
type Application struct {
	appConfig *config.AppConfig
	location  *time.Location
	sched     *cron.Cron

	store    *store.Store
	sounds   *sound.Bus
	catalog  *catalog.Catalog
	cart     *cart.Cart
	scanner  *cart.Scanner
	ledger   *ledger.Ledger
	checkout *checkout.Engine
	mode     *mode.Controller
	importer *report.Importer
	exporter *report.Exporter

	mu sync.RWMutex
}

// Ensure Application implements all provider interfaces
var (
	_ ConfigProvider   = (*Application)(nil)
	_ StoreProvider    = (*Application)(nil)
	_ SoundProvider    = (*Application)(nil)
	_ CatalogProvider  = (*Application)(nil)
	_ LedgerProvider   = (*Application)(nil)
	_ CheckoutProvider = (*Application)(nil)
	_ ModeProvider     = (*Application)(nil)
	_ ReportProvider   = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
		loc = time.Local
	} else {
		time.Local = loc
	}
	a.location = loc

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	if err := cfg.InitDirs(); err != nil {
		return err
	}

	st, err := store.Open(cfg.DBFile())
	if err != nil {
		return err
	}
	a.store = st
	zap.S().Infof("store opened: %s", cfg.DBFile())

	a.sounds = sound.NewBus()
	a.catalog = catalog.NewCatalog(st)
	a.cart = cart.NewCart(a.catalog, a.sounds)
	a.scanner = cart.NewScanner(a.catalog, a.cart, a.sounds,
		time.Duration(cfg.Pos.ScanDebounceMs)*time.Millisecond)
	a.ledger = ledger.NewLedger(st, a.catalog, a.sounds)
	a.checkout = checkout.NewEngine(a.catalog, a.cart, a.ledger, a.sounds)
	a.mode = mode.NewController(st, a.catalog, a.cart, a.ledger)
	a.importer = report.NewImporter(a.catalog, a.sounds, report.ImportLimits{
		MaxBytes: cfg.Pos.ImportMaxBytes,
		MaxRows:  cfg.Pos.ImportMaxRows,
	})
	a.exporter = report.NewExporter(a.catalog, a.ledger, loc)

	// Initial load: the persisted mode flag wins over the config default.
	a.mode.Boot(cfg.System.Demo)

	a.initJobs()
	return nil
}

func (a *Application) Config() *config.AppConfig  { return a.appConfig }
func (a *Application) Location() *time.Location   { return a.location }
func (a *Application) Store() *store.Store        { return a.store }
func (a *Application) Sounds() *sound.Bus         { return a.sounds }
func (a *Application) Catalog() *catalog.Catalog  { return a.catalog }
func (a *Application) Cart() *cart.Cart           { return a.cart }
func (a *Application) Scanner() *cart.Scanner     { return a.scanner }
func (a *Application) Ledger() *ledger.Ledger     { return a.ledger }
func (a *Application) Checkout() *checkout.Engine { return a.checkout }
func (a *Application) Mode() *mode.Controller     { return a.mode }
func (a *Application) Importer() *report.Importer { return a.importer }
func (a *Application) Exporter() *report.Exporter { return a.exporter }

// WithLock serializes a mutating operation on the shared state.
func (a *Application) WithLock(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn()
}

// WithRLock serializes a read-only view over the shared state. Readers
// share the lock with each other but never overlap a mutation.
func (a *Application) WithRLock(fn func() error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fn()
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
	_ = zap.L().Sync()
}

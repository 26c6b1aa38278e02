// Package store is the durable side of the application: a local bbolt
// file holding JSON blobs under one bucket per operating mode. In-memory
// state is always authoritative; the store only mirrors it.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/pkg/timeutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Namespace selects the live or demo dataset.
type Namespace string

const (
	Live Namespace = "live"
	Demo Namespace = "demo"
)

// LoadState gates persistence writes. Writes attempted before the state
// machine reaches Ready are dropped, not queued: mid-load memory is not
// authoritative and flushing it would corrupt the target namespace.
type LoadState int32

const (
	Uninitialized LoadState = iota
	Loading
	Ready
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

const (
	metaBucket = "meta"
	keyMode    = "mode"

	keyProducts     = "products"
	keyTransactions = "transactions"
	keySettings     = "settings"
	keySnapshot     = "snapshot"
)

// Store owns the bbolt handle, the current namespace and the load-state
// machine.
type Store struct {
	mu    sync.Mutex
	db    *bolt.DB
	ns    Namespace
	state int32

	droppedWrites int64
}

// Open opens (creating if needed) the database file and ensures the
// namespace buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{string(Live), string(Demo), metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init store buckets")
	}
	return &Store{db: db, ns: Live}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) State() LoadState {
	return LoadState(atomic.LoadInt32(&s.state))
}

// BeginLoad suspends writes for the duration of a namespace (re)load.
func (s *Store) BeginLoad(ns Namespace) {
	s.mu.Lock()
	s.ns = ns
	s.mu.Unlock()
	atomic.StoreInt32(&s.state, int32(Loading))
	zap.L().Debug("store writes suspended", zap.String("namespace", string(ns)))
}

// FinishLoad resumes writes once all in-memory state has settled.
func (s *Store) FinishLoad() {
	atomic.StoreInt32(&s.state, int32(Ready))
	zap.L().Debug("store writes resumed", zap.String("namespace", string(s.Namespace())))
}

func (s *Store) Namespace() Namespace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ns
}

// DroppedWrites returns how many writes were discarded while not Ready.
func (s *Store) DroppedWrites() int64 {
	return atomic.LoadInt64(&s.droppedWrites)
}

// put writes one JSON value under the current namespace, honoring the
// write gate. A storage failure is logged and reported to the caller but
// is never fatal: memory stays authoritative for the session.
func (s *Store) put(key string, value interface{}) error {
	if s.State() != Ready {
		atomic.AddInt64(&s.droppedWrites, 1)
		zap.L().Debug("store write dropped",
			zap.String("key", key),
			zap.String("state", s.State().String()))
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", key)
	}
	ns := s.Namespace()
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ns)).Put([]byte(key), data)
	})
	if err != nil {
		zap.L().Error("persistence write failed",
			zap.String("namespace", string(ns)),
			zap.String("key", key),
			zap.Error(err))
		return errors.Wrapf(err, "persist %s", key)
	}
	return nil
}

// get reads one JSON value from ns into out; found is false when the key
// is absent or the blob does not decode.
func (s *Store) get(ns Namespace, key string, out interface{}) (found bool, err error) {
	var data []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(ns)).Get([]byte(key))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "read %s", key)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		zap.L().Warn("discarding malformed stored value",
			zap.String("namespace", string(ns)),
			zap.String("key", key),
			zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) SaveProducts(products []domain.Product) error {
	return s.put(keyProducts, products)
}

// LoadProducts validates every stored product; a single malformed record
// rejects the whole blob so callers fall back to seed data.
func (s *Store) LoadProducts(ns Namespace) ([]domain.Product, bool) {
	var products []domain.Product
	found, err := s.get(ns, keyProducts, &products)
	if err != nil || !found {
		return nil, false
	}
	for _, p := range products {
		if !p.Valid() {
			zap.L().Warn("stored catalog failed shape validation",
				zap.String("namespace", string(ns)),
				zap.String("product_id", p.ID))
			return nil, false
		}
	}
	return products, true
}

func (s *Store) SaveTransactions(txns []domain.Transaction) error {
	return s.put(keyTransactions, txns)
}

// storedTransaction shadows the time field with its raw bytes so both
// wire shapes decode: current records carry epoch milliseconds, records
// written by early builds carry a formatted string.
type storedTransaction struct {
	domain.Transaction
	Time jsoniter.RawMessage `json:"time"`
}

func (t storedTransaction) timeMillis() (int64, bool) {
	var millis int64
	if err := json.Unmarshal(t.Time, &millis); err == nil {
		return millis, true
	}
	var legacy string
	if err := json.Unmarshal(t.Time, &legacy); err != nil || legacy == "" {
		return 0, false
	}
	return timeutil.EpochMillis(timeutil.ParseLenient(legacy, time.Local)), true
}

func (s *Store) LoadTransactions(ns Namespace) ([]domain.Transaction, bool) {
	var stored []storedTransaction
	found, err := s.get(ns, keyTransactions, &stored)
	if err != nil || !found {
		return nil, false
	}
	txns := make([]domain.Transaction, 0, len(stored))
	for _, st := range stored {
		t := st.Transaction
		millis, ok := st.timeMillis()
		if ok {
			t.Time = millis
		}
		if !ok || !t.Valid() {
			zap.L().Warn("stored ledger failed shape validation",
				zap.String("namespace", string(ns)),
				zap.Int64("txn_id", t.ID))
			return nil, false
		}
		txns = append(txns, t)
	}
	return txns, true
}

func (s *Store) SaveSettings(settings domain.Settings) error {
	return s.put(keySettings, settings)
}

func (s *Store) LoadSettings(ns Namespace) (domain.Settings, bool) {
	var settings domain.Settings
	found, err := s.get(ns, keySettings, &settings)
	if err != nil || !found {
		return domain.Settings{}, false
	}
	return settings, true
}

// SaveSnapshot persists the imported-catalog restore point; nil deletes
// it (factory reset clears the snapshot).
func (s *Store) SaveSnapshot(products []domain.Product) error {
	if products == nil {
		if s.State() != Ready {
			atomic.AddInt64(&s.droppedWrites, 1)
			return nil
		}
		ns := s.Namespace()
		return s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(ns)).Delete([]byte(keySnapshot))
		})
	}
	return s.put(keySnapshot, products)
}

func (s *Store) LoadSnapshot(ns Namespace) ([]domain.Product, bool) {
	var products []domain.Product
	found, err := s.get(ns, keySnapshot, &products)
	if err != nil || !found || len(products) == 0 {
		return nil, false
	}
	return products, true
}

// SaveMode persists the active-mode flag. The flag lives outside the
// namespaces and outside the write gate: it is exactly what a mode
// switch must record mid-swap.
func (s *Store) SaveMode(demo bool) error {
	data, _ := json.Marshal(demo)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(metaBucket)).Put([]byte(keyMode), data)
	})
	if err != nil {
		zap.L().Error("persistence write failed",
			zap.String("key", keyMode), zap.Error(err))
		return errors.Wrap(err, "persist mode flag")
	}
	return nil
}

func (s *Store) LoadMode() (demo bool, found bool) {
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(metaBucket)).Get([]byte(keyMode))
		if v == nil {
			return nil
		}
		found = json.Unmarshal(v, &demo) == nil
		return nil
	})
	if err != nil {
		return false, false
	}
	return demo, found
}

// ClearNamespace deletes every key of one namespace (demo reset).
func (s *Store) ClearNamespace(ns Namespace) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(ns)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(ns))
		return err
	})
	return errors.Wrapf(err, "clear namespace %s", ns)
}

package pebble

import (
	"errors"
	"testing"
	"time"

	"github.com/NethermindEth/juno-sdk/db"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

var _ db.KeyValueStore = (*DB)(nil)

type DB struct {
	pebble   *pebble.DB
	listener db.EventListener
}

// New opens a new database at the given path
func New(path string, opts ...Option) (*DB, error) {
	options := &pebble.Options{}
	for _, opt := range opts {
		opt(options)
	}
	return newPebble(path, options)
}

// NewMem opens a new in-memory database
func NewMem(opts ...Option) (*DB, error) {
	options := &pebble.Options{FS: vfs.NewMem()}
	for _, opt := range opts {
		opt(options)
	}
	return newPebble("", options)
}

// NewMemTest opens a new in-memory database that is closed with the test
func NewMemTest(t testing.TB) *DB {
	t.Helper()
	memDB, err := NewMem()
	if err != nil {
		t.Fatalf("create in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if err := memDB.Close(); err != nil {
			t.Errorf("close in-memory db: %v", err)
		}
	})
	return memDB
}

func newPebble(path string, options *pebble.Options) (*DB, error) {
	pDB, err := pebble.Open(path, options)
	if err != nil {
		return nil, err
	}
	return &DB{pebble: pDB, listener: &db.SelectiveListener{}}, nil
}

// WithListener registers an EventListener
func (d *DB) WithListener(listener db.EventListener) *DB {
	d.listener = listener
	return d
}

func (d *DB) Has(key []byte) (bool, error) {
	err := d.Get(key, func([]byte) error { return nil })
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (d *DB) Get(key []byte, cb func(value []byte) error) (err error) {
	start := time.Now()
	defer func() { d.listener.OnIO(false, time.Since(start)) }()

	val, closer, err := d.pebble.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return db.ErrKeyNotFound
		}
		return err
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return cb(val)
}

func (d *DB) Put(key, value []byte) error {
	if len(key) == 0 {
		return errors.New("empty key")
	}
	start := time.Now()
	defer func() { d.listener.OnIO(true, time.Since(start)) }()
	return d.pebble.Set(key, value, pebble.Sync)
}

func (d *DB) Delete(key []byte) error {
	start := time.Now()
	defer func() { d.listener.OnIO(true, time.Since(start)) }()
	return d.pebble.Delete(key, pebble.Sync)
}

// Impl returns the underlying *pebble.DB
func (d *DB) Impl() any {
	return d.pebble
}

func (d *DB) Close() error {
	return d.pebble.Close()
}

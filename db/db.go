package db

import (
	"errors"
	"io"
	"time"
)

var ErrKeyNotFound = errors.New("key not found")

// Represents a data store that can read from the database
type KeyValueReader interface {
	// Checks if a key exists in the data store
	Has(key []byte) (bool, error)
	// Retrieves a value for a given key if it exists. The value is only
	// valid inside cb.
	Get(key []byte, cb func(value []byte) error) error
}

// Represents a data store that can write to the database
type KeyValueWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	// Returns the underlying database
	Impl() any
	io.Closer
}

type EventListener interface {
	OnIO(write bool, duration time.Duration)
}

type SelectiveListener struct {
	OnIOCb func(write bool, duration time.Duration)
}

func (l *SelectiveListener) OnIO(write bool, duration time.Duration) {
	if l.OnIOCb != nil {
		l.OnIOCb(write, duration)
	}
}

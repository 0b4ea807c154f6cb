package pebble

import (
	"github.com/cockroachdb/pebble"
)

const (
	megabyte = 1 << 20
	// minCacheSizeMB is the minimum amount of memory in megabytes to allocate
	// to pebble read and write caching. This is also pebble's default value.
	minCacheSizeMB = 8
)

type Option = func(*pebble.Options)

func WithCacheSize(cacheSizeMB uint) Option {
	cacheSizeMB = max(cacheSizeMB, minCacheSizeMB)
	return func(opts *pebble.Options) {
		opts.Cache = pebble.NewCache(int64(cacheSizeMB * megabyte))
	}
}

func WithMaxOpenFiles(maxOpenFiles int) Option {
	return func(opts *pebble.Options) {
		opts.MaxOpenFiles = maxOpenFiles
	}
}

// WithLogger routes pebble's own logging, e.g. to a utils.ZapLogger.
func WithLogger(logger pebble.Logger) Option {
	return func(opts *pebble.Options) {
		opts.Logger = logger
	}
}

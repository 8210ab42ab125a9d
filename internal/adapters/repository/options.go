// Package repository is the entity repository: record validation, dataset
// loading and snapshot storage.
package repository

import (
	"github.com/okian/raidtier/pkg/logger"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLenientStats substitutes default base stats for missing ones and
// flags the entity as estimated. Off by default: missing stats are passed
// through and rejected by the engine.
func WithLenientStats(enabled bool) LoaderOption {
	return func(l *Loader) { l.lenient = enabled }
}

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// StoreOption configures a store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger logger.Logger
}

func newStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithStoreLogger sets the store's logger.
func WithStoreLogger(lg logger.Logger) StoreOption {
	return func(o *storeOptions) {
		if lg != nil {
			o.logger = lg
		}
	}
}

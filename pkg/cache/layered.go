package cache

import (
	"context"
	"fmt"
	"time"
)

// LayeredCache implements a two-level cache: memory in front of a shared
// backend.
type LayeredCache struct {
	mem    *MemoryCache
	remote Service
}

// NewLayeredCache puts mem in front of remote.
func NewLayeredCache(mem *MemoryCache, remote Service) *LayeredCache {
	return &LayeredCache{mem: mem, remote: remote}
}

// Set writes memory first, then the backend. A backend failure is returned
// but the memory entry stays, so later reads in this process still hit.
func (lc *LayeredCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := lc.mem.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return fmt.Errorf("remote set %s: %w", key, err)
	}
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.remote.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, dest, 0)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.mem.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.remote.Exists(ctx, keys...)
}

// Close closes both layers.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.remote.Close()
}

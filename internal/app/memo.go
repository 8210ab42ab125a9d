package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/raidtier/internal/domain/ranking"
	"github.com/okian/raidtier/pkg/cache"
	"github.com/okian/raidtier/pkg/logger"
)

// viewMemo stores ranking views in a cache.Service. Cache failures only
// cost a recompute, so they are logged and reported as misses.
type viewMemo struct {
	cache  cache.Service
	ttl    time.Duration
	logger logger.Logger
}

func (m *viewMemo) Get(ctx context.Context, key string) (*ranking.View, bool) {
	v, err := cache.GetTyped[ranking.View](ctx, m.cache, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			m.logger.Warn(ctx, "view cache get failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	return &v, true
}

func (m *viewMemo) Set(ctx context.Context, key string, v *ranking.View) {
	if err := m.cache.Set(ctx, key, v, m.ttl); err != nil {
		m.logger.Warn(ctx, "view cache set failed", logger.String("key", key), logger.Error(err))
	}
}

package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/ranking"
	"github.com/okian/raidtier/pkg/logger"
)

// Store holds the current dataset snapshot. Snapshots are immutable;
// Replace swaps in a new one.
type Store interface {
	// Snapshot returns the current dataset. Returns ErrNoDataset before
	// the first Replace.
	Snapshot(ctx context.Context) (*model.Dataset, error)

	// Replace stores ds as the current snapshot.
	Replace(ctx context.Context, ds *model.Dataset) error

	// Entity returns one entity from the current snapshot.
	// Returns ErrNotFound if the id is unknown.
	Entity(ctx context.Context, speciesID string) (model.Entity, error)

	// Count returns the number of entities in the current snapshot.
	Count(ctx context.Context) int

	Close() error
}

// MemoryStore keeps the snapshot in process.
type MemoryStore struct {
	mu      sync.RWMutex
	ds      *model.Dataset
	version uint64
	logger  logger.Logger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	o := newStoreOptions(opts)
	return &MemoryStore{logger: o.logger}
}

func (s *MemoryStore) Snapshot(_ context.Context) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	return s.ds, nil
}

func (s *MemoryStore) Replace(ctx context.Context, ds *model.Dataset) error {
	if ds == nil {
		return fmt.Errorf("replace: %w", ErrNoDataset)
	}
	version := ranking.DatasetHash(ds)

	s.mu.Lock()
	s.ds = ds
	s.version = version
	s.mu.Unlock()

	s.logger.Info(ctx, "snapshot replaced",
		logger.Int("entities", len(ds.Entities)),
		logger.Int("moves", len(ds.Moves)),
		logger.String("version", fmt.Sprintf("%016x", version)))
	return nil
}

// Version returns the content hash of the current snapshot, or zero.
func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *MemoryStore) Entity(ctx context.Context, speciesID string) (model.Entity, error) {
	ds, err := s.Snapshot(ctx)
	if err != nil {
		return model.Entity{}, err
	}
	if e, ok := ds.Entity(NormalizeID(speciesID)); ok {
		return e, nil
	}
	return model.Entity{}, fmt.Errorf("%w: %s", ErrNotFound, speciesID)
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return 0
	}
	return len(s.ds.Entities)
}

func (s *MemoryStore) Close() error { return nil }

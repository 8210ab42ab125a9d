// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/raidtier/internal/adapters/http/api"
	workerpool "github.com/okian/raidtier/internal/adapters/mq/worker"
	"github.com/okian/raidtier/internal/adapters/repository"
	"github.com/okian/raidtier/internal/config"
	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/family"
	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/ranking"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/pkg/cache"
	"github.com/okian/raidtier/pkg/logger"
	"github.com/okian/raidtier/pkg/metrics"
)

// ErrNotStarted is returned by queries issued before Start. It wraps
// api.ErrUnavailable so handlers answer 503.
var ErrNotStarted = fmt.Errorf("%w: service not started", api.ErrUnavailable)

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	store      repository.Store
	loader     *repository.Loader
	aggregator *ranking.Aggregator
	workerPool *workerpool.Pool
	viewCache  cache.Service
	memCache   *cache.MemoryCache

	// Family index of the current snapshot, rebuilt when the snapshot changes.
	familyMu sync.Mutex
	familyDS *model.Dataset
	families *family.Index

	// Gauge sampler, running between Start and Stop.
	refreshCancel context.CancelFunc
	refreshDone   chan struct{}

	// State
	started   bool
	startedAt time.Time

	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager shared by every component.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStore injects a dataset store instead of the one chosen by config.
func WithStore(st repository.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithCache injects the view cache instead of the one chosen by config.
func WithCache(c cache.Service) Option {
	return func(s *Service) { s.viewCache = c }
}

// New constructs a new Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:     config.New(),
		logger:  logger.Nop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components and loads the configured dataset.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting ranking service...")

	calc, err := newCalculator(s.cfg, s.logger)
	if err != nil {
		return err
	}

	s.workerPool = workerpool.NewPool(s.cfg.WorkerCount,
		workerpool.WithName("ranking"),
		workerpool.WithLogger(s.logger),
		workerpool.WithMetrics(s.metrics),
		workerpool.WithQueueSize(s.cfg.WorkerQueueSize),
	)
	s.workerPool.Start(ctx)

	if s.viewCache == nil {
		s.viewCache = s.newCache(ctx)
	}

	s.aggregator, err = ranking.New(
		ranking.WithCalculator(calc),
		ranking.WithClasses(s.cfg.NumClasses, s.cfg.TierLabels),
		ranking.WithRunner(s.workerPool),
		ranking.WithMemo(&viewMemo{cache: s.viewCache, ttl: s.cfg.CacheTTL, logger: s.logger}),
		ranking.WithLogger(s.logger.Named("ranking")),
		ranking.WithMetrics(s.metrics),
	)
	if err != nil {
		s.shutdown(ctx)
		return err
	}

	if s.store == nil {
		s.store, err = s.newStore(ctx)
		if err != nil {
			s.shutdown(ctx)
			return err
		}
	}

	s.loader = repository.NewLoader(
		repository.WithLenientStats(s.cfg.SubstituteMissingStats),
		repository.WithLoaderLogger(s.logger.Named("loader")),
	)
	if s.cfg.DatasetPath != "" {
		if _, err := s.loadFile(ctx, s.cfg.DatasetPath); err != nil {
			s.shutdown(ctx)
			return err
		}
	}

	s.started = true
	s.startedAt = time.Now()
	s.startRefresh(ctx)
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("classes", s.cfg.NumClasses),
		logger.String("chart", s.cfg.ChartScale),
		logger.String("weather", s.cfg.Weather),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping ranking service...")
	s.stopRefresh()
	s.shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

func (s *Service) shutdown(ctx context.Context) {
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}
	if s.viewCache != nil {
		_ = s.viewCache.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	s.viewCache, s.memCache, s.store = nil, nil, nil
}

// startRefresh samples the store and the worker queue into gauges every
// metrics refresh interval. The sampler holds its own references and never
// takes s.mu, so Stop can wait for it while holding the lock.
func (s *Service) startRefresh(ctx context.Context) {
	refreshCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.refreshCancel, s.refreshDone = cancel, done

	store, pool := s.store, s.workerPool
	interval := s.metrics.RefreshInterval()
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				s.metrics.UpdateEntities(store.Count(refreshCtx))
				s.metrics.UpdateWorkerCount(pool.Size())
				s.metrics.UpdateQueueDepth(pool.QueueDepth())
			}
		}
	}()
}

func (s *Service) stopRefresh() {
	if s.refreshCancel == nil {
		return
	}
	s.refreshCancel()
	<-s.refreshDone
	s.refreshCancel, s.refreshDone = nil, nil
}

func newCalculator(cfg *config.Config, lg logger.Logger) (*battle.Calculator, error) {
	scale, err := typechart.ScaleByName(cfg.ChartScale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	weather, err := battle.ParseWeather(cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return battle.NewCalculator(
		battle.WithChart(typechart.NewChart(scale)),
		battle.WithEnemyDPS(cfg.EnemyDPS),
		battle.WithRelobby(cfg.RelobbySeconds),
		battle.WithReferenceDefense(cfg.ReferenceDefense),
		battle.WithWeather(weather),
		battle.WithLogger(lg.Named("battle")),
	), nil
}

// newCache builds the in-process view cache, layered over Redis when an
// address is configured. An unreachable Redis degrades to memory only.
func (s *Service) newCache(ctx context.Context) cache.Service {
	s.memCache = cache.NewMemoryCache(
		cache.WithMemoryMaxSize(s.cfg.CacheSize),
		cache.WithMemoryTTL(s.cfg.CacheTTL),
	)
	if s.cfg.RedisAddr == "" {
		return s.memCache
	}
	remote, err := cache.NewRedisCache(ctx, cache.WithRedisAddr(s.cfg.RedisAddr))
	if err != nil {
		s.logger.Warn(ctx, "redis unavailable, using memory cache only",
			logger.String("addr", s.cfg.RedisAddr), logger.Error(err))
		return s.memCache
	}
	s.logger.Info(ctx, "view cache layered over redis", logger.String("addr", s.cfg.RedisAddr))
	return cache.NewLayeredCache(s.memCache, remote)
}

func (s *Service) newStore(ctx context.Context) (repository.Store, error) {
	if s.cfg.SQLitePath == "" {
		s.logger.Info(ctx, "using memory store")
		return repository.NewMemoryStore(repository.WithStoreLogger(s.logger.Named("store"))), nil
	}
	st := repository.NewSQLiteStore(s.cfg.SQLitePath, repository.WithStoreLogger(s.logger.Named("store")))
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s.logger.Info(ctx, "using sqlite store", logger.String("path", s.cfg.SQLitePath))
	if ds, err := st.Snapshot(ctx); err == nil {
		s.metrics.UpdateDataset(len(ds.Entities), len(ds.Moves))
	}
	return st, nil
}

// LoadDataset reads a JSON or YAML dataset file and makes it the current
// snapshot.
func (s *Service) LoadDataset(ctx context.Context, path string) (*repository.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.loadFile(ctx, path)
}

func (s *Service) loadFile(ctx context.Context, path string) (*repository.Report, error) {
	ds, report, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.replace(ctx, ds); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "dataset loaded",
		logger.String("path", path),
		logger.Int("entities", report.Entities),
		logger.Int("moves", report.Moves),
		logger.Int("rejected", len(report.Rejected)),
		logger.Int("estimated", len(report.Estimated)),
	)
	return report, nil
}

// Replace makes ds the current snapshot.
func (s *Service) Replace(ctx context.Context, ds *model.Dataset) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.replace(ctx, ds)
}

func (s *Service) replace(ctx context.Context, ds *model.Dataset) error {
	if err := s.store.Replace(ctx, ds); err != nil {
		return err
	}
	s.metrics.UpdateDataset(len(ds.Entities), len(ds.Moves))
	return nil
}

// snapshot returns the aggregator and the current dataset together.
func (s *Service) snapshot(ctx context.Context) (*ranking.Aggregator, *model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.aggregator, ds, nil
}

// RankOverall ranks the current snapshot by overall performance.
func (s *Service) RankOverall(ctx context.Context) (*ranking.View, error) {
	agg, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.RankOverall(ctx, ds)
}

// RankByType ranks the attackers of one type.
func (s *Service) RankByType(ctx context.Context, attack typechart.Type) (*ranking.View, error) {
	agg, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.RankByType(ctx, ds, attack)
}

// RankCounters ranks the best attackers against a defender typing.
func (s *Service) RankCounters(ctx context.Context, defenders ...typechart.Type) (*ranking.View, error) {
	agg, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.RankCounters(ctx, ds, defenders...)
}

// RankPVP ranks the current snapshot by league scores.
func (s *Service) RankPVP(ctx context.Context) (*ranking.View, error) {
	agg, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.RankPVP(ctx, ds)
}

// Performance evaluates one entity against defenders.
func (s *Service) Performance(ctx context.Context, speciesID string, defenders []typechart.Type) (*battle.Performance, error) {
	agg, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return agg.Performance(ctx, ds, repository.NormalizeID(speciesID), defenders)
}

// Entity returns one entity of the current snapshot as stored.
func (s *Service) Entity(ctx context.Context, speciesID string) (*model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	e, err := s.store.Entity(ctx, speciesID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Matchup describes one type's strengths and weaknesses on the configured
// chart.
func (s *Service) Matchup(_ context.Context, t typechart.Type) (*typechart.Matchup, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", typechart.ErrUnknownType, uint8(t))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	m := s.aggregator.Calculator().Chart().Matchup(t)
	return &m, nil
}

// Families summarizes every family of the current snapshot in family
// order.
func (s *Service) Families(ctx context.Context) ([]family.FamilyStats, error) {
	_, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := s.familyIndex(ds)
	out := make([]family.FamilyStats, 0, idx.Len())
	for _, f := range idx.Families() {
		st, _ := idx.StatsFor(f.ID)
		out = append(out, st)
	}
	return out, nil
}

// Family returns the evolution family of one entity.
func (s *Service) Family(ctx context.Context, speciesID string) (*api.FamilyResponse, error) {
	_, ds, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := s.familyIndex(ds)
	id := repository.NormalizeID(speciesID)

	info, ok := idx.Info(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, speciesID)
	}
	f, _ := idx.Family(info.FamilyID)
	st, _ := idx.StatsFor(info.FamilyID)
	return &api.FamilyResponse{
		SpeciesID: id,
		Info:      info,
		Family:    f,
		Stats:     st,
		Chain:     idx.Chain(id),
		Variants:  idx.Variants(id),
	}, nil
}

func (s *Service) familyIndex(ds *model.Dataset) *family.Index {
	s.familyMu.Lock()
	defer s.familyMu.Unlock()
	if s.familyDS != ds || s.families == nil {
		s.families = family.Build(ds.Entities)
		s.familyDS = ds
	}
	return s.families
}

// versioned is implemented by stores that track a snapshot content hash.
type versioned interface {
	Version() uint64
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	stats := map[string]any{
		"started":    started,
		"numClasses": s.cfg.NumClasses,
		"tierLabels": s.cfg.TierLabels,
		"chartScale": s.cfg.ChartScale,
		"weather":    s.cfg.Weather,
	}
	if started {
		stats["uptime"] = time.Since(s.startedAt).String()
		stats["workerCount"] = s.workerPool.Size()
		stats["queueDepth"] = s.workerPool.QueueDepth()
		stats["queueCapacity"] = s.workerPool.QueueCapacity()
		stats["storedEntities"] = s.store.Count(ctx)
		if v, ok := s.store.(versioned); ok && v.Version() != 0 {
			stats["datasetVersion"] = fmt.Sprintf("%016x", v.Version())
		}
		if s.memCache != nil {
			stats["cachedViews"] = s.memCache.Len()
		}
	}
	s.mu.RUnlock()

	if !started {
		return stats
	}
	_, ds, err := s.snapshot(ctx)
	if err != nil {
		stats["dataset"] = err.Error()
		return stats
	}
	stats["entities"] = len(ds.Entities)
	stats["moves"] = len(ds.Moves)
	stats["families"] = s.familyIndex(ds).Summary()

	s.metrics.UpdateDataset(len(ds.Entities), len(ds.Moves))
	s.metrics.UpdateWorkerCount(stats["workerCount"].(int))
	return stats
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/pkg/logger"
)

// SQLiteStore persists the snapshot in SQLite. Entities keep their load
// order; each row holds the JSON payload of one record.
type SQLiteStore struct {
	path   string
	logger logger.Logger

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store for path. Call Init before use.
func NewSQLiteStore(path string, opts ...StoreOption) *SQLiteStore {
	o := newStoreOptions(opts)
	return &SQLiteStore{path: path, logger: o.logger}
}

// Init opens the database and creates the schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS moves (
			id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Replace rewrites both tables in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, ds *model.Dataset) error {
	if ds == nil {
		return fmt.Errorf("replace: %w", ErrNoDataset)
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM moves`); err != nil {
		return err
	}
	for i, e := range ds.Entities {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entity %s: %w", e.SpeciesID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entities (id, position, payload)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				position = excluded.position,
				payload = excluded.payload
		`, e.SpeciesID, i, payload); err != nil {
			return err
		}
	}
	for id, m := range ds.Moves {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode move %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO moves (id, payload) VALUES (?, ?)`, id, payload); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info(ctx, "snapshot persisted",
		logger.String("path", s.path),
		logger.Int("entities", len(ds.Entities)),
		logger.Int("moves", len(ds.Moves)))
	return nil
}

// Snapshot reads the stored dataset.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*model.Dataset, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{Moves: map[string]model.Move{}}

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM entities ORDER BY position`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			id      string
			payload []byte
			e       model.Entity
		)
		if err := rows.Scan(&id, &payload); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal(payload, &e); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode entity %s: %w", id, err)
		}
		ds.Entities = append(ds.Entities, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT id, payload FROM moves`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id      string
			payload []byte
			m       model.Move
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("decode move %s: %w", id, err)
		}
		ds.Moves[id] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ds.Entities) == 0 && len(ds.Moves) == 0 {
		return nil, ErrNoDataset
	}
	return ds, nil
}

// Entity reads one entity.
func (s *SQLiteStore) Entity(ctx context.Context, speciesID string) (model.Entity, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Entity{}, err
	}

	var payload []byte
	id := NormalizeID(speciesID)
	err = db.QueryRowContext(ctx, `SELECT payload FROM entities WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entity{}, fmt.Errorf("%w: %s", ErrNotFound, speciesID)
		}
		return model.Entity{}, err
	}

	var e model.Entity
	if err := json.Unmarshal(payload, &e); err != nil {
		return model.Entity{}, fmt.Errorf("decode entity %s: %w", id, err)
	}
	return e, nil
}

// Count returns the stored entity count, or zero on error.
func (s *SQLiteStore) Count(ctx context.Context) int {
	db, err := s.getDB()
	if err != nil {
		return 0
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&n); err != nil {
		return 0
	}
	return n
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return s.db, nil
}

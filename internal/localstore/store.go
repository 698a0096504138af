// Package localstore keeps the guest plan and the session token in a local
// SQLite database.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store is a single-table key/value store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates the database file and its parent directory if needed.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	logger = common.OrNop(logger)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state db: %w", err)
	}
	logger.Debug("localstore.open", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Put writes value under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key; a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// LoadGuestPlan returns the stored guest plan or nil. An unreadable record is
// logged and treated as absent.
func (s *Store) LoadGuestPlan(ctx context.Context) (*entity.StudyPlan, error) {
	raw, ok, err := s.Get(ctx, constants.GuestPlanKey)
	if err != nil || !ok {
		return nil, err
	}
	var p entity.StudyPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("localstore.guest_plan.corrupt", zap.Error(err))
		return nil, nil
	}
	p.EnsureMaps()
	if entity.MigrateLegacyKeys(&p) {
		s.logger.Info("localstore.guest_plan.migrated", zap.String("plan_id", p.ID))
	}
	return &p, nil
}

// SaveGuestPlan replaces the stored guest plan.
func (s *Store) SaveGuestPlan(ctx context.Context, p entity.StudyPlan) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode guest plan: %w", err)
	}
	return s.Put(ctx, constants.GuestPlanKey, string(b))
}

// ClearGuestPlan removes the stored guest plan.
func (s *Store) ClearGuestPlan(ctx context.Context) error {
	return s.Delete(ctx, constants.GuestPlanKey)
}

// LoadToken returns the stored session token or "".
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, constants.AuthTokenKey)
	return v, err
}

// SaveToken stores the session token.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.Put(ctx, constants.AuthTokenKey, token)
}

// ClearToken forgets the session token.
func (s *Store) ClearToken(ctx context.Context) error {
	return s.Delete(ctx, constants.AuthTokenKey)
}

package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id    UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DB, logger *zap.Logger) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	common.OrNop(logger).Info("db.migrate.ok", zap.Int("statements", len(migrations)))
	return nil
}

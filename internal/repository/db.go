package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Open creates a pgx pool from cfg and checks it can reach the server.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger = common.OrNop(logger)
	logger.Info("db.connect.start", zap.Int32("max_conns", cfg.MaxConns))
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.connect.parse_failed", zap.Error(err))
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "editald"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("db.connect.failed", zap.Error(err))
		return nil, err
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		logger.Error("db.connect.ping_failed", zap.Error(err))
		return nil, err
	}

	logger.Info("db.connect.ok")
	return pool, nil
}

// Close closes the pool gracefully.
func Close(pool *pgxpool.Pool, logger *zap.Logger) {
	if pool == nil {
		return
	}
	pool.Close()
	common.OrNop(logger).Info("db.closed")
}

// HealthCheck pings the pool, bounded by timeout when positive.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *zap.Logger) error {
	common.OrNop(logger).Debug("db.ping")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	return pool.Ping(ctx)
}

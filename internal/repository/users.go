package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

// User is an account row.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository interface {
	// Create inserts the user together with an empty profile document.
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type userRepository struct {
	db     DB
	logger *zap.Logger
}

func NewUserRepository(db DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: common.OrNop(logger)}
}

func (r *userRepository) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	email = strings.TrimSpace(email)
	doc, err := json.Marshal(entity.NewUserProfile(email))
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u := &User{ID: uuid.New(), Email: email, PasswordHash: passwordHash}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewAppError("EMAIL_TAKEN", "Este e-mail já está em uso.", common.ErrConflict)
		}
		r.logger.Error("repository.users.create_failed", zap.Error(err))
		return nil, fmt.Errorf("%w: insert user: %w", common.ErrDatabase, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id, document) VALUES ($1, $2)`, u.ID, doc); err != nil {
		return nil, fmt.Errorf("%w: insert profile: %w", common.ErrDatabase, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select user: %w", common.ErrDatabase, err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

// ProfileRepository stores one UserProfile document per user as JSONB.
type ProfileRepository interface {
	// Get returns nil, nil when the user has no stored document.
	Get(ctx context.Context, userID string) (*entity.UserProfile, error)
	Put(ctx context.Context, userID string, profile entity.UserProfile) error
}

type profileRepository struct {
	db     DB
	logger *zap.Logger
}

func NewProfileRepository(db DB, logger *zap.Logger) ProfileRepository {
	return &profileRepository{db: db, logger: common.OrNop(logger)}
}

func validUserID(id string) error {
	return common.NewValidator().Field("user_id", id, common.UUID).Err()
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*entity.UserProfile, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM profiles WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select profile: %w", common.ErrDatabase, err)
	}
	var p entity.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		r.logger.Warn("repository.profiles.corrupt", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return &p, nil
}

func (r *profileRepository) Put(ctx context.Context, userID string, profile entity.UserProfile) error {
	if err := validUserID(userID); err != nil {
		return err
	}
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO profiles (user_id, document, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		userID, doc,
	)
	if err != nil {
		r.logger.Error("repository.profiles.put_failed", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: upsert profile: %w", common.ErrDatabase, err)
	}
	r.logger.Debug("repository.profiles.put", zap.String("user_id", userID), zap.Int("plans", len(profile.Plans)), zap.Int("bytes", len(doc)))
	return nil
}

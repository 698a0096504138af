// Package auth registers users, checks credentials and manages bearer
// sessions for the profile API.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/metrics"
	"github.com/joseph-ayodele/edital-planner/internal/repository"
)

const (
	minPassword     = 6
	msgBadLogin     = "E-mail ou senha inválidos."
	msgUnauthorized = "Sessão inválida ou expirada. Faça login novamente."
)

// Result is returned by Register and Login.
type Result struct {
	Token string
	Email string
}

type Service struct {
	users  repository.UserRepository
	tokens TokenStore
	cost   int
	logger *zap.Logger
}

func NewService(users repository.UserRepository, tokens TokenStore, bcryptCost int, logger *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, cost: bcryptCost, logger: common.OrNop(logger)}
}

func (s *Service) Register(ctx context.Context, email, password string) (res Result, err error) {
	defer func() { metrics.AuthAttemptsTotal.WithLabelValues("register", metrics.Result(err)).Inc() }()

	email = strings.TrimSpace(email)
	if err := common.NewValidator().
		Field("email", email, common.Required, common.Email).
		Field("password", password, common.Required, common.MinLength(minPassword)).
		Err(); err != nil {
		return Result{}, err
	}
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return Result{}, common.WrapError(err, "hash password")
	}
	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("auth.register.ok", zap.String("user_id", u.ID.String()))
	return s.issue(ctx, Identity{UserID: u.ID.String(), Email: u.Email})
}

func (s *Service) Login(ctx context.Context, email, password string) (res Result, err error) {
	defer func() { metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.Result(err)).Inc() }()

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return Result{}, badLogin()
	}
	if err != nil {
		return Result{}, err
	}
	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		s.logger.Error("auth.login.bad_hash", zap.String("user_id", u.ID.String()), zap.Error(err))
		return Result{}, badLogin()
	}
	if !ok {
		return Result{}, badLogin()
	}
	return s.issue(ctx, Identity{UserID: u.ID.String(), Email: u.Email})
}

func (s *Service) Logout(ctx context.Context, token string) (err error) {
	defer func() { metrics.AuthAttemptsTotal.WithLabelValues("logout", metrics.Result(err)).Inc() }()
	return s.tokens.Revoke(ctx, token)
}

// Authenticate resolves a bearer token.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	id, err := s.tokens.Resolve(ctx, token)
	if errors.Is(err, ErrTokenUnknown) {
		return Identity{}, common.NewAppError(common.CodeAuth, msgUnauthorized, common.ErrUnauthorized)
	}
	return id, err
}

func (s *Service) issue(ctx context.Context, id Identity) (Result, error) {
	token, err := s.tokens.Issue(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return Result{Token: token, Email: id.Email}, nil
}

func badLogin() error {
	return common.NewAppError(common.CodeAuth, msgBadLogin, common.ErrUnauthorized)
}

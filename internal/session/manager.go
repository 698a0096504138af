// Package session owns login, registration and logout, and the switch
// between guest and authenticated plan storage.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/apiclient"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

// TokenStore keeps the bearer token between runs.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// GuestStore keeps the single guest plan between runs.
type GuestStore interface {
	LoadGuestPlan(ctx context.Context) (*entity.StudyPlan, error)
	SaveGuestPlan(ctx context.Context, plan entity.StudyPlan) error
	ClearGuestPlan(ctx context.Context) error
}

// ProfileAPI is the remote profile service.
type ProfileAPI interface {
	Login(ctx context.Context, email, password string) (apiclient.AuthResult, error)
	Register(ctx context.Context, email, password string) (apiclient.AuthResult, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, token string) (*entity.UserProfile, error)
	SaveProfile(ctx context.Context, token string, profile entity.UserProfile) error
}

const (
	msgLoginNoProfile    = "Login bem-sucedido, mas não foi possível carregar o perfil."
	msgRegisterNoProfile = "Registro bem-sucedido, mas não foi possível carregar o perfil."
	msgCredentials       = "Por favor, preencha e-mail e senha."
)

// Manager holds the live session. Only one of guest plan and profile is live
// at a time; the inactive one is never written.
type Manager struct {
	mu     sync.Mutex
	state  State
	tokens TokenStore
	guests GuestStore
	api    ProfileAPI
	logger *zap.Logger
}

// NewManager starts in Anonymous state with no plan; call Restore to load
// persisted state.
func NewManager(tokens TokenStore, guests GuestStore, api ProfileAPI, logger *zap.Logger) *Manager {
	return &Manager{
		state:  Anonymous{},
		tokens: tokens,
		guests: guests,
		api:    api,
		logger: common.OrNop(logger),
	}
}

// State returns a deep copy of the live session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// User returns the logged-in user, or nil for guests.
func (m *Manager) User() *entity.User {
	if a, ok := m.State().(Authenticated); ok {
		u := a.Profile.User
		return &u
	}
	return nil
}

// Restore loads the persisted session: a stored token whose profile loads
// makes the session Authenticated; otherwise the token is cleared and the
// guest plan is loaded.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.tokens.LoadToken(ctx)
	if err != nil {
		return common.WrapError(err, "load token")
	}
	if token != "" {
		prof, err := m.api.GetProfile(ctx, token)
		if err == nil && prof != nil {
			m.set(Authenticated{Token: token, Profile: *prof})
			m.logger.Info("session.restore.authenticated", zap.String("email", prof.User.Email))
			return nil
		}
		if common.IsCancelled(err) {
			return err
		}
		m.logger.Warn("session.restore.profile_failed", zap.Error(err))
		if cErr := m.tokens.ClearToken(ctx); cErr != nil {
			m.logger.Warn("session.restore.clear_token_failed", zap.Error(cErr))
		}
	}
	return m.loadGuest(ctx)
}

// Login authenticates, stores the token and loads the profile. The in-memory
// guest plan is dropped; the stored one is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, email, password, m.api.Login, msgLoginNoProfile, "login")
}

// Register creates the account and then behaves like Login.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, email, password, m.api.Register, msgRegisterNoProfile, "register")
}

type authFunc func(ctx context.Context, email, password string) (apiclient.AuthResult, error)

func (m *Manager) authenticate(ctx context.Context, email, password string, call authFunc, noProfile, op string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return common.InputError(msgCredentials)
	}
	res, err := call(ctx, email, password)
	if err != nil {
		m.logger.Info("session."+op+".failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if err := m.tokens.SaveToken(ctx, res.Token); err != nil {
		return common.WrapError(err, "save token")
	}
	prof, err := m.api.GetProfile(ctx, res.Token)
	if err != nil || prof == nil {
		if cErr := m.tokens.ClearToken(ctx); cErr != nil {
			m.logger.Warn("session."+op+".clear_token_failed", zap.Error(cErr))
		}
		cause := err
		if cause == nil {
			cause = common.ErrNotFound
		}
		return common.NewAppError(common.CodeAuth, noProfile, errors.Join(common.ErrTransport, cause))
	}
	m.set(Authenticated{Token: res.Token, Profile: *prof})
	m.logger.Info("session."+op+".ok", zap.String("email", email), zap.Int("plans", len(prof.Plans)))
	return nil
}

// Logout revokes the token server side (best effort), forgets it locally and
// reloads the stored guest plan.
func (m *Manager) Logout(ctx context.Context) error {
	if a, ok := m.State().(Authenticated); ok {
		if err := m.api.Logout(ctx, a.Token); err != nil {
			m.logger.Warn("session.logout.revoke_failed", zap.Error(err))
		}
	}
	if err := m.tokens.ClearToken(ctx); err != nil {
		return common.WrapError(err, "clear token")
	}
	m.logger.Info("session.logout.ok")
	return m.loadGuest(ctx)
}

// ContinueAsGuest switches to Anonymous and loads the stored guest plan. A
// stored token is kept, so the next Restore signs the user back in.
func (m *Manager) ContinueAsGuest(ctx context.Context) error {
	return m.loadGuest(ctx)
}

func (m *Manager) loadGuest(ctx context.Context) error {
	plan, err := m.guests.LoadGuestPlan(ctx)
	if err != nil {
		return common.WrapError(err, "load guest plan")
	}
	m.set(Anonymous{Plan: plan})
	return nil
}

// Persist writes next to its durable home: the guest store for Anonymous,
// the profile API for Authenticated.
func (m *Manager) Persist(ctx context.Context, next State) error {
	switch s := next.(type) {
	case Anonymous:
		if s.Plan == nil {
			return m.guests.ClearGuestPlan(ctx)
		}
		return m.guests.SaveGuestPlan(ctx, *s.Plan)
	case Authenticated:
		return m.api.SaveProfile(ctx, s.Token, s.Profile)
	}
	return common.ErrSessionChanged
}

// Commit replaces the in-memory session with next. It fails with
// ErrSessionChanged when the session was switched since next was derived.
func (m *Manager) Commit(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !sameSession(m.state, next) {
		return common.NewAppError(common.CodeSession, "A sessão mudou durante a operação. Tente novamente.", common.ErrSessionChanged)
	}
	m.state = next.clone()
	return nil
}

func (m *Manager) set(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Package sessiontest provides in-memory session dependencies for tests.
package sessiontest

import (
	"context"
	"errors"
	"sync"

	"github.com/joseph-ayodele/edital-planner/internal/apiclient"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

// Tokens is an in-memory session.TokenStore.
type Tokens struct {
	mu    sync.Mutex
	Token string
}

func (t *Tokens) LoadToken(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Token, nil
}

func (t *Tokens) SaveToken(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Token = token
	return nil
}

func (t *Tokens) ClearToken(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Token = ""
	return nil
}

// Guests is an in-memory session.GuestStore. Set Fail to make writes fail.
type Guests struct {
	mu     sync.Mutex
	Plan   *entity.StudyPlan
	Fail   error
	Writes int
}

func (g *Guests) LoadGuestPlan(context.Context) (*entity.StudyPlan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Plan == nil {
		return nil, nil
	}
	p := g.Plan.Clone()
	return &p, nil
}

func (g *Guests) SaveGuestPlan(_ context.Context, plan entity.StudyPlan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Fail != nil {
		return g.Fail
	}
	g.Writes++
	p := plan.Clone()
	g.Plan = &p
	return nil
}

func (g *Guests) ClearGuestPlan(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Fail != nil {
		return g.Fail
	}
	g.Writes++
	g.Plan = nil
	return nil
}

// API is an in-memory profile service keyed by email.
type API struct {
	mu        sync.Mutex
	Passwords map[string]string
	Profiles  map[string]entity.UserProfile
	tokens    map[string]string
	Fail      error // returned by SaveProfile when set
	NoProfile bool  // GetProfile returns nil when set
	Saves     int
	Revoked   []string
}

// NewAPI returns an API with one registered user.
func NewAPI(email, password string) *API {
	return &API{
		Passwords: map[string]string{email: password},
		Profiles:  map[string]entity.UserProfile{email: entity.NewUserProfile(email)},
		tokens:    map[string]string{},
	}
}

var errBadCredentials = common.NewAppError(common.CodeAuth, "E-mail ou senha inválidos.", common.ErrUnauthorized)

func (a *API) Login(_ context.Context, email, password string) (apiclient.AuthResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if pw, ok := a.Passwords[email]; !ok || pw != password {
		return apiclient.AuthResult{}, errBadCredentials
	}
	return a.issue(email), nil
}

func (a *API) Register(_ context.Context, email, password string) (apiclient.AuthResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.Passwords[email]; ok {
		return apiclient.AuthResult{}, common.NewAppError(common.CodeAuth, "Este e-mail já está cadastrado.", common.ErrConflict)
	}
	a.Passwords[email] = password
	a.Profiles[email] = entity.NewUserProfile(email)
	return a.issue(email), nil
}

func (a *API) issue(email string) apiclient.AuthResult {
	tok := "tok-" + email + "-" + string(rune('a'+len(a.tokens)))
	a.tokens[tok] = email
	return apiclient.AuthResult{Token: tok, User: entity.User{Email: email}}
}

func (a *API) Logout(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.tokens, token)
	a.Revoked = append(a.Revoked, token)
	return nil
}

func (a *API) GetProfile(_ context.Context, token string) (*entity.UserProfile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	email, ok := a.tokens[token]
	if !ok {
		return nil, common.NewAppError(common.CodeAuth, "Sessão inválida.", common.ErrUnauthorized)
	}
	if a.NoProfile {
		return nil, nil
	}
	p := a.Profiles[email].Clone()
	p.Normalize()
	return &p, nil
}

func (a *API) SaveProfile(_ context.Context, token string, profile entity.UserProfile) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Fail != nil {
		return a.Fail
	}
	email, ok := a.tokens[token]
	if !ok {
		return errors.New("unknown token")
	}
	a.Saves++
	a.Profiles[email] = profile.Clone()
	return nil
}

// Stored returns the server copy of email's profile.
func (a *API) Stored(email string) entity.UserProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Profiles[email].Clone()
}

// Issue logs email in without a password and returns the token.
func (a *API) Issue(email string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.issue(email).Token
}

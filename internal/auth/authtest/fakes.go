// Package authtest provides in-memory auth and repository dependencies for
// server tests.
package authtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/edital-planner/internal/auth"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/repository"
)

// Users is an in-memory repository.UserRepository that also seeds an empty
// profile in Profiles, like the postgres implementation does.
type Users struct {
	mu       sync.Mutex
	byEmail  map[string]*repository.User
	Profiles *Profiles
}

func NewUsers(profiles *Profiles) *Users {
	return &Users{byEmail: map[string]*repository.User{}, Profiles: profiles}
}

func (u *Users) Create(ctx context.Context, email, hash string) (*repository.User, error) {
	u.mu.Lock()
	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := u.byEmail[key]; ok {
		u.mu.Unlock()
		return nil, common.NewAppError("EMAIL_TAKEN", "Este e-mail já está em uso.", common.ErrConflict)
	}
	user := &repository.User{ID: uuid.New(), Email: strings.TrimSpace(email), PasswordHash: hash, CreatedAt: time.Now()}
	u.byEmail[key] = user
	u.mu.Unlock()
	if u.Profiles != nil {
		if err := u.Profiles.Put(ctx, user.ID.String(), entity.NewUserProfile(user.Email)); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

// Profiles is an in-memory repository.ProfileRepository.
type Profiles struct {
	mu   sync.Mutex
	docs map[string]entity.UserProfile
	fail error
}

func NewProfiles() *Profiles {
	return &Profiles{docs: map[string]entity.UserProfile{}}
}

// SetFail makes subsequent writes return err.
func (p *Profiles) SetFail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

func (p *Profiles) Get(_ context.Context, userID string) (*entity.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, ok := p.docs[userID]
	if !ok {
		return nil, nil
	}
	cp := doc.Clone()
	return &cp, nil
}

func (p *Profiles) Put(_ context.Context, userID string, profile entity.UserProfile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.docs[userID] = profile.Clone()
	return nil
}

// Tokens is an in-memory auth.TokenStore issuing sequential tokens.
type Tokens struct {
	mu   sync.Mutex
	next int
	ids  map[string]auth.Identity
}

func NewTokens() *Tokens {
	return &Tokens{ids: map[string]auth.Identity{}}
}

func (t *Tokens) Issue(_ context.Context, id auth.Identity) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	token := fmt.Sprintf("tok-%d", t.next)
	t.ids[token] = id
	return token, nil
}

func (t *Tokens) Resolve(_ context.Context, token string) (auth.Identity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[token]
	if !ok {
		return auth.Identity{}, auth.ErrTokenUnknown
	}
	return id, nil
}

func (t *Tokens) Revoke(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ids, token)
	return nil
}

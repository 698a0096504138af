// Package server exposes the profile API over HTTP and the health service
// over gRPC.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/auth"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/repository"
)

// maxBody bounds request bodies; profile documents carry whole editais.
const maxBody = 8 << 20

// Authenticator is the part of auth.Service the handlers need.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (auth.Result, error)
	Login(ctx context.Context, email, password string) (auth.Result, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// HealthFunc reports whether the backing stores are reachable.
type HealthFunc func(ctx context.Context) error

type Server struct {
	auth     Authenticator
	profiles repository.ProfileRepository
	health   HealthFunc
	timeout  time.Duration
	logger   *zap.Logger
}

func New(a Authenticator, profiles repository.ProfileRepository, health HealthFunc, timeout time.Duration, logger *zap.Logger) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{auth: a, profiles: profiles, health: health, timeout: timeout, logger: common.OrNop(logger)}
}

// Router builds the chi router. Routes live under /api; /healthz sits at
// the root.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.bearer)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/profile", s.handleGetProfile)
			r.Post("/profile", s.handleSaveProfile)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("server.health.failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, message{Message: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, message{Message: "ok"})
}

type authResponse struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

func toAuthResponse(res auth.Result) authResponse {
	return authResponse{Token: res.Token, User: entity.User{Email: res.Email}}
}

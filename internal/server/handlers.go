package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
	"github.com/joseph-ayodele/edital-planner/internal/metrics"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Register(r.Context(), in.Email, in.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), tokenFrom(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetProfile returns the stored document, or JSON null when the user
// has none.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := identity(r.Context())
	p, err := s.profiles.Get(r.Context(), id.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if p != nil {
		p.User.Email = id.Email
		if n := p.Normalize(); n > 0 {
			s.logger.Info("server.profile.migrated", zap.String("user_id", id.UserID), zap.Int("plans", n))
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSaveProfile replaces the document wholesale. The account e-mail
// always wins over the one in the body.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	id := identity(r.Context())
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		s.fail(w, r, common.InputError("Não foi possível ler o corpo da requisição."))
		return
	}
	if len(raw) > maxBody {
		s.fail(w, r, common.InputError("Perfil grande demais."))
		return
	}
	if err := llm.ValidateProfileJSON(raw); err != nil {
		s.fail(w, r, common.NewAppError(common.CodeInvalidInput, "Perfil inválido.", errors.Join(common.ErrUserInputInvalid, err)))
		return
	}
	var p entity.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.fail(w, r, common.InputError("Perfil inválido."))
		return
	}
	p.User.Email = id.Email
	p.Normalize()

	err = s.profiles.Put(r.Context(), id.UserID, p)
	metrics.ProfileSavesTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	metrics.ProfileBytes.Observe(float64(len(raw)))
	w.WriteHeader(http.StatusNoContent)
}

type message struct {
	Message string `json:"message"`
}

func decode(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(out); err != nil {
		return common.InputError("Corpo da requisição inválido.")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps err onto a status and a {message} body. Internal failures are
// logged and never leak their cause.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	msg := common.DisplayMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("server.request.failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", common.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		msg = "Erro interno do servidor."
	}
	writeJSON(w, status, message{Message: msg})
}

func tokenFrom(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

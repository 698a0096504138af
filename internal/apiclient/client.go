// Package apiclient talks to the remote profile API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

const msgNetwork = "Ocorreu um erro na rede."

// APIError is a non-2xx reply. Message is the server text when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("profile api status %d: %s", e.Status, e.Message)
}

// AuthResult is the body of a successful login or register.
type AuthResult struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client is a thin JSON client; the bearer token is passed per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New returns a client for baseURL (for example http://localhost:3001/api).
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient, logger: common.OrNop(logger)}
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{email, password}, &out)
	return out, err
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", "", credentials{email, password}, &out)
	return out, err
}

// Logout asks the server to revoke token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// GetProfile returns the full profile, or nil when the server has none.
func (c *Client) GetProfile(ctx context.Context, token string) (*entity.UserProfile, error) {
	var out *entity.UserProfile
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, err
	}
	if out != nil {
		if n := out.Normalize(); n > 0 {
			c.logger.Info("apiclient.profile.migrated", zap.Int("plans", n))
		}
	}
	return out, nil
}

// SaveProfile replaces the stored profile wholesale.
func (c *Client) SaveProfile(ctx context.Context, token string, profile entity.UserProfile) error {
	return c.do(ctx, http.MethodPost, "/profile", token, profile, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body, out any) error {
	start := time.Now()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return common.NewAppError(common.CodeCancelled, "", errors.Join(common.ErrCancelled, err))
		}
		c.logger.Warn("apiclient.request.failed", zap.String("endpoint", endpoint), zap.Error(err))
		return common.TransportError(msgNetwork, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("apiclient.response_body_close_error", zap.Error(err))
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.TransportError(msgNetwork, err)
	}
	c.logger.Debug("apiclient.response",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return common.TransportError(msgNetwork, fmt.Errorf("decode %s: %w", endpoint, err))
	}
	return nil
}

func statusError(status int, raw []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	msg := msgNetwork
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.Message
		if msg == "" {
			msg = fmt.Sprintf("Erro %d", status)
		}
	}
	apiErr := &APIError{Status: status, Message: msg}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return common.NewAppError(common.CodeAuth, msg, fmt.Errorf("%w: %w", common.ErrUnauthorized, apiErr))
	}
	return common.NewAppError(common.CodeTransport, msg, fmt.Errorf("%w: %w", common.ErrTransport, apiErr))
}

package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

const (
	msgEmpty     = "A IA retornou uma resposta vazia. Tente novamente com um conteúdo diferente."
	msgTransport = "Falha ao processar o edital. Verifique sua chave de API e conexão com a internet."
)

// Client builds the extraction prompt and issues exactly one Generate call.
type Client struct {
	gen      Generator
	model    string
	jsonMode bool
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithJSONMode asks the backend for a JSON-only response.
func WithJSONMode(on bool) Option { return func(c *Client) { c.jsonMode = on } }

// NewClient wires a Client around gen.
func NewClient(gen Generator, model string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{gen: gen, model: model, logger: common.OrNop(logger)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Extract returns the raw model output for req. It fails with ErrCancelled
// when ctx is cancelled, ErrEmptyResponse on blank output and ErrTransport
// for any other backend failure. There is no retry.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return "", cancelled(err)
	}

	parts := BuildParts(req)
	c.logger.Info("llm.extract.start",
		zap.String("req_id", rid),
		zap.String("model", c.model),
		zap.Int("text_len", len(req.Text)),
		zap.Bool("has_attachment", req.Attachment != nil),
		zap.String("role", req.Role),
		zap.Bool("json_mode", c.jsonMode),
	)

	out, err := c.gen.Generate(ctx, GenerateRequest{Model: c.model, Parts: parts, JSONMode: c.jsonMode})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			c.logger.Info("llm.extract.cancelled", zap.String("req_id", rid), zap.Int64("elapsed_ms", elapsed))
			return "", cancelled(err)
		}
		if errors.Is(err, common.ErrUserInputInvalid) {
			return "", err
		}
		c.logger.Error("llm.extract.transport_error", zap.String("req_id", rid), zap.Error(err), zap.Int64("elapsed_ms", elapsed))
		return "", common.TransportError(msgTransport, err)
	}
	if strings.TrimSpace(out) == "" {
		c.logger.Warn("llm.extract.empty", zap.String("req_id", rid), zap.Int64("elapsed_ms", elapsed))
		return "", common.NewAppError(common.CodeEmpty, msgEmpty, common.ErrEmptyResponse)
	}

	c.logger.Info("llm.extract.ok", zap.String("req_id", rid), zap.Int("bytes", len(out)), zap.Int64("elapsed_ms", elapsed))
	return out, nil
}

func cancelled(cause error) error {
	return common.NewAppError(common.CodeCancelled, "", errors.Join(common.ErrCancelled, cause))
}

// Package gemini implements llm.Generator on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
)

// Config for the Gemini backend.
type Config struct {
	APIKey      string
	Temperature float32
}

// Generator calls models.generateContent.
type Generator struct {
	models contentGenerator
	cfg    Config
	logger *zap.Logger
}

// contentGenerator is the slice of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// New creates a Generator backed by the Gemini API.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Generator{models: client.Models, cfg: cfg, logger: common.OrNop(logger)}, nil
}

// Generate sends the ordered parts as one user turn and returns the text.
func (g *Generator) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsBinary() {
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}

	model := req.Model
	if model == "" {
		model = constants.DefaultGeminiModel
	}
	temp := g.cfg.Temperature
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if req.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("gemini generate: %w", ctxErr)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		g.logger.Warn("llm.gemini.blocked", zap.String("reason", string(fb.BlockReason)))
	}
	return resp.Text(), nil
}

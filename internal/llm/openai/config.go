package openai

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

// Config for the OpenAI chat completions backend.
type Config struct {
	APIKey      string
	BaseURL     string        // default https://api.openai.com/v1
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout; 0 means none
}

// Client implements llm.Generator over chat/completions.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        common.OrNop(logger),
	}
}

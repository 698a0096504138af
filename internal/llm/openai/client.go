package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
)

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompt parts as a single user message. Images travel as
// data URLs; PDFs are not accepted by chat/completions and are rejected
// before any request.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	content := make([]map[string]any, 0, len(req.Parts))
	for _, p := range req.Parts {
		if !p.IsBinary() {
			content = append(content, map[string]any{"type": "text", "text": p.Text})
			continue
		}
		if !strings.HasPrefix(p.MIMEType, "image/") || p.MIMEType == "image/heic" || p.MIMEType == "image/heif" {
			return "", common.InputError("O provedor OpenAI aceita apenas imagens PNG, JPEG, WEBP ou GIF; use o Gemini para PDFs.")
		}
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": dataURL(p.MIMEType, p.Data)},
		})
	}

	model := req.Model
	if model == "" {
		model = constants.DefaultOpenAIModel
	}
	body := map[string]any{
		"model":       model,
		"temperature": c.cfg.Temperature,
		"messages":    []map[string]any{{"role": "user", "content": content}},
	}
	if req.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}, c.log)
	if err != nil {
		var se *llm.StatusError
		if errors.As(err, &se) {
			var apiErr apiErrorResponse
			if json.Unmarshal(se.Body, &apiErr) == nil && apiErr.Error.Message != "" {
				return "", fmt.Errorf("openai status %d: %s", se.Status, apiErr.Error.Message)
			}
		}
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.openai.decode_error", zap.Error(err), zap.Int("raw_bytes", len(raw)))
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", nil
	}
	return cc.Choices[0].Message.Content, nil
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

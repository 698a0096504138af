// Package pdftext turns PDF attachments into plain text with poppler's
// pdftotext, for generative backends that cannot read PDFs directly.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

// Config selects the converter binary.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

// Result is the text of a converted document.
type Result struct {
	Text  string
	Pages int
}

// Converter runs pdftotext on in-memory PDFs.
type Converter struct {
	cfg    Config
	runner Runner
	logger *zap.Logger
}

// New returns a Converter using the real binary.
func New(cfg Config, logger *zap.Logger) *Converter {
	logger = common.OrNop(logger)
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Converter{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Convert writes data to a temp file and extracts its text layer. Scanned
// PDFs without a text layer yield an input error.
func (c *Converter) Convert(ctx context.Context, data []byte) (Result, error) {
	dir, err := os.MkdirTemp("", "edital-pdf-*")
	if err != nil {
		return Result{}, fmt.Errorf("pdftext: temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("pdftext.cleanup_failed", zap.String("dir", dir), zap.Error(err))
		}
	}()

	in := filepath.Join(dir, "edital.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return Result{}, fmt.Errorf("pdftext: write: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <in> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if c.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", c.cfg.MaxPages))
	}
	args = append(args, in, "-")

	out, errb, err := c.runner.Run(ctx, c.cfg.Pdftotext, args...)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("pdftext: %s: %w: %s", c.cfg.Pdftotext, err, strings.TrimSpace(string(errb)))
	}

	text := string(out)
	res := Result{Text: strings.TrimSpace(text), Pages: 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")}
	if res.Text == "" {
		return Result{}, common.InputError("O PDF não contém texto selecionável. Envie uma imagem ou cole o texto do edital.")
	}
	c.logger.Info("pdftext.convert.ok", zap.Int("pages", res.Pages), zap.Int("chars", len(res.Text)))
	return res, nil
}

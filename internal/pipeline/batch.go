package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
)

// FileResult is the outcome of one file of a directory run.
type FileResult struct {
	Path         string
	PlanID       string
	PlanName     string
	Deduplicated bool
	Err          error
}

// DirStats aggregates a directory run.
type DirStats struct {
	Scanned      int
	Matched      int
	Succeeded    int
	Deduplicated int
	Failed       int
}

// ProcessDir extracts every edital file under root, in lexical order, one at
// a time. Files with identical content are processed once. A failing file
// does not stop the walk; cancellation does.
func (p *Processor) ProcessDir(ctx context.Context, root, role string, skipHidden bool) ([]FileResult, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, common.InputError("Informe um diretório.")
	}
	if err := common.NewValidator().Field("cargo", role, common.Required).Err(); err != nil {
		return nil, stats, err
	}

	var results []FileResult
	seen := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matches(path) {
			return nil
		}
		stats.Matched++

		sum, err := hashFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err})
			stats.Failed++
			return nil
		}
		if first, dup := seen[sum]; dup {
			p.logger.Info("pipeline.dir.duplicate", zap.String("path", path), zap.String("same_as", first))
			results = append(results, FileResult{Path: path, Deduplicated: true})
			stats.Deduplicated++
			return nil
		}
		seen[sum] = path

		req, err := RequestFromFile(path, role)
		if err == nil {
			plan, perr := p.Process(ctx, req)
			if perr == nil {
				results = append(results, FileResult{Path: path, PlanID: plan.ID, PlanName: plan.Name})
				stats.Succeeded++
				return nil
			}
			err = perr
		}
		if common.IsCancelled(err) {
			return err
		}
		results = append(results, FileResult{Path: path, Err: err})
		stats.Failed++
		return nil
	})
	p.logger.Info("pipeline.dir.done",
		zap.String("root", root),
		zap.Int("matched", stats.Matched),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || common.IsCancelled(err) {
			return results, stats, common.NewAppError(common.CodeCancelled, "", errors.Join(common.ErrCancelled, err))
		}
		return results, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return results, stats, nil
}

func matches(path string) bool {
	return constants.IsTextPath(path) || constants.MIMEForPath(path) != ""
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func hashFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

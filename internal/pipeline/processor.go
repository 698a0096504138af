// Package pipeline runs one extraction: validate the input, call the model,
// parse its answer and store the resulting plan.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
	"github.com/joseph-ayodele/edital-planner/internal/pdftext"
)

// PlanCreator stores a freshly extracted edital as the active plan.
type PlanCreator interface {
	Create(ctx context.Context, edital entity.Edital) (entity.StudyPlan, error)
}

// PDFConverter turns a PDF into plain text.
type PDFConverter interface {
	Convert(ctx context.Context, data []byte) (pdftext.Result, error)
}

// Processor coordinates extraction, parsing and plan creation.
type Processor struct {
	extractor llm.Extractor
	parser    *llm.Parser
	plans     PlanCreator
	pdf       PDFConverter
	logger    *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithPDFText converts PDF attachments to text before extraction. Use it for
// backends that only accept images.
func WithPDFText(c PDFConverter) Option { return func(p *Processor) { p.pdf = c } }

// NewProcessor wires a Processor.
func NewProcessor(extractor llm.Extractor, plans PlanCreator, logger *zap.Logger, opts ...Option) *Processor {
	logger = common.OrNop(logger)
	p := &Processor{
		extractor: extractor,
		parser:    llm.NewParser(logger),
		plans:     plans,
		logger:    logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process extracts req into a new active plan. Any failure aborts before the
// plan store is touched. A cancelled run returns an error for which
// common.DisplayMessage is empty.
func (p *Processor) Process(ctx context.Context, req llm.ExtractRequest) (entity.StudyPlan, error) {
	start := time.Now()
	if err := llm.ValidateInput(req); err != nil {
		return entity.StudyPlan{}, err
	}

	req, err := p.prepare(ctx, req)
	if err != nil {
		return entity.StudyPlan{}, p.fail("prepare", err)
	}

	raw, err := p.extractor.Extract(ctx, req)
	if err != nil {
		return entity.StudyPlan{}, p.fail("extract", err)
	}

	edital, err := p.parser.Parse(raw)
	if err != nil {
		return entity.StudyPlan{}, p.fail("parse", err)
	}

	// the model may finish just as the user cancels; nothing is stored then
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return entity.StudyPlan{}, p.fail("parse", common.NewAppError(common.CodeCancelled, "", errors.Join(common.ErrCancelled, ctxErr)))
	}

	plan, err := p.plans.Create(ctx, edital)
	if err != nil {
		return entity.StudyPlan{}, p.fail("store", err)
	}
	p.logger.Info("pipeline.process.ok",
		zap.String("plan_id", plan.ID),
		zap.String("title", plan.Edital.DisplayTitle()),
		zap.Int("disciplines", len(plan.Edital.Disciplines)),
		zap.Int("topics", plan.Edital.TopicCount()),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return plan, nil
}

func (p *Processor) prepare(ctx context.Context, req llm.ExtractRequest) (llm.ExtractRequest, error) {
	if p.pdf == nil || req.Attachment == nil || req.Attachment.MIMEType != constants.MIMEPDF {
		return req, nil
	}
	res, err := p.pdf.Convert(ctx, req.Attachment.Data)
	if err != nil {
		if common.IsCancelled(err) {
			return req, common.NewAppError(common.CodeCancelled, "", err)
		}
		return req, err
	}
	p.logger.Info("pipeline.pdf_text.ok", zap.String("file", req.Attachment.Name), zap.Int("pages", res.Pages))
	return llm.ExtractRequest{Text: res.Text, Role: req.Role}, nil
}

func (p *Processor) fail(stage string, err error) error {
	if common.IsCancelled(err) {
		p.logger.Info("pipeline.process.cancelled", zap.String("stage", stage))
		return err
	}
	p.logger.Warn("pipeline.process.failed", zap.String("stage", stage), zap.Error(err))
	return err
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/apiclient"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/export"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
	"github.com/joseph-ayodele/edital-planner/internal/llm/gemini"
	"github.com/joseph-ayodele/edital-planner/internal/llm/openai"
	"github.com/joseph-ayodele/edital-planner/internal/localstore"
	"github.com/joseph-ayodele/edital-planner/internal/pdftext"
	"github.com/joseph-ayodele/edital-planner/internal/pipeline"
	"github.com/joseph-ayodele/edital-planner/internal/plans"
	"github.com/joseph-ayodele/edital-planner/internal/session"
)

// generatorFactory builds the model backend for cfg. Tests replace it.
type generatorFactory func(ctx context.Context, cfg common.LLMConfig, logger *zap.Logger) (llm.Generator, constants.Provider, error)

// app is the wiring shared by every command of one invocation.
type app struct {
	cfg      *common.ClientConfig
	logger   *zap.Logger
	out      io.Writer
	local    *localstore.Store
	sess     *session.Manager
	plans    *plans.Store
	exporter *export.Exporter
	newGen   generatorFactory
	http     *http.Client
}

type options struct {
	configPath string
	guest      bool
	verbose    bool
}

func (a *app) open(ctx context.Context, opts options) error {
	cfg, err := common.LoadClientConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if opts.verbose {
		if a.logger, err = common.NewLogger("dev"); err != nil {
			return err
		}
	} else if a.logger == nil {
		a.logger = zap.NewNop()
	}

	if a.local, err = localstore.Open(ctx, cfg.StateDB, a.logger); err != nil {
		return err
	}
	api := apiclient.New(cfg.APIURL, a.http, a.logger)
	a.sess = session.NewManager(a.local, a.local, api, a.logger)
	if opts.guest {
		err = a.sess.ContinueAsGuest(ctx)
	} else {
		err = a.sess.Restore(ctx)
	}
	if err != nil {
		return err
	}
	a.plans = plans.New(a.sess, plans.ParsePolicy(cfg.WritePolicy), a.logger)
	a.exporter = export.New(a.logger)
	return nil
}

func (a *app) close() {
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			a.logger.Warn("edital.localstore.close_failed", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// processor wires the extraction pipeline for the configured provider. The
// openai backend reads PDFs as text, so it gets the pdftotext converter.
func (a *app) processor(ctx context.Context) (*pipeline.Processor, error) {
	gen, provider, err := a.newGen(ctx, a.cfg.LLM, a.logger)
	if err != nil {
		return nil, err
	}
	model := a.cfg.LLM.Model
	var opts []pipeline.Option
	switch provider {
	case constants.ProviderOpenAI:
		if model == "" {
			model = constants.DefaultOpenAIModel
		}
		opts = append(opts, pipeline.WithPDFText(pdftext.New(pdftext.Config{}, a.logger)))
	default:
		if model == "" {
			model = constants.DefaultGeminiModel
		}
	}
	client := llm.NewClient(gen, model, a.logger, llm.WithJSONMode(a.cfg.LLM.JSONMode))
	return pipeline.NewProcessor(client, a.plans, a.logger, opts...), nil
}

func defaultGenerator(ctx context.Context, cfg common.LLMConfig, logger *zap.Logger) (llm.Generator, constants.Provider, error) {
	c := common.ClientConfig{LLM: cfg}
	if err := c.ValidateLLM(); err != nil {
		return nil, "", err
	}
	provider, _ := constants.CanonicalProvider(cfg.Provider)
	if provider == constants.ProviderOpenAI {
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIURL,
			Temperature: cfg.Temperature,
		}, logger), provider, nil
	}
	gen, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Temperature: cfg.Temperature}, logger)
	if err != nil {
		return nil, "", common.TransportError("Não foi possível iniciar o cliente do modelo.", err)
	}
	return gen, provider, nil
}

// active returns the plan being edited or the no-active-plan error.
func (a *app) active() (entity.StudyPlan, error) {
	p, ok := a.plans.Active()
	if !ok {
		return entity.StudyPlan{}, common.NewAppError(common.CodeNoActive, "Nenhum plano de estudos ativo. Use \"edital extract\" para criar um.", common.ErrNoActivePlan)
	}
	return p, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

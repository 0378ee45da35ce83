// Package app wires configured collaborators for the commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/config"
	"github.com/abhisek/mockprep/internal/history"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/speech"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/telemetry"
)

// App holds the long-lived dependencies of one command invocation.
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	Store     *store.Store
	Questions *question.Bank
	Identity  identity.Provider
	Telemetry telemetry.Recorder

	// Samples is nil when no LLM provider is configured.
	Samples sample.Fetcher
}

// Open validates cfg and builds the store, question bank, LLM-backed
// sample fetcher and telemetry recorder. A missing LLM provider is not an
// error; sample answers are then unavailable.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	bank, err := cfg.QuestionBank()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Questions: bank,
		Identity:  identity.NewStatic(cfg.User.ID, cfg.User.Email),
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM,
		llm.WithEventRepo(st.EventRepo()),
		llm.WithLogger(log),
		llm.WithMockFallback(sample.OfflineAnswer),
	)
	if err != nil {
		st.Close()
		return nil, err
	}
	if provider != nil {
		a.Samples = sample.NewLLMFetcher(provider, cfg.Sample)
		log.Debug("sample answers enabled",
			logger.AIFields(cfg.LLM.Provider, provider.ModelID())...)
	} else {
		log.Debug("no LLM provider configured, sample answers unavailable")
	}

	rec, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
		rec = telemetry.NewNoOp()
	}
	a.Telemetry = rec
	return a, nil
}

// SessionOptions returns controller options for an interview. Speech
// capabilities are supplied by the caller's environment.
func (a *App) SessionOptions(d speech.Dictation, s speech.Speaker) session.Options {
	return session.Options{
		Questions:     a.Questions,
		Store:         a.Store.AssessmentRepo(),
		Identity:      a.Identity,
		Samples:       a.Samples,
		SampleTimeout: a.Config.Sample.Timeout,
		Dictation:     d,
		Speaker:       s,
		Scorer:        scoring.New(a.Config.ScoringFlow()),
		Telemetry:     a.Telemetry,
		Logger:        a.Log,
	}
}

// History returns the history service over the store.
func (a *App) History() *history.Service {
	return history.NewService(a.Store.AssessmentRepo(), a.Samples, a.Config.Sample.Timeout, a.Log)
}

// Close flushes telemetry and closes the store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Telemetry.Close(ctx), a.Store.Close())
}

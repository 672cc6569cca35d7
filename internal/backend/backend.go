// Package backend assembles the analysis.Client selected by configuration,
// wrapped with call logging and tracing.
package backend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/analyzer"
	"github.com/abhisek/resumebot/internal/catalog"
	"github.com/abhisek/resumebot/internal/config"
	"github.com/abhisek/resumebot/internal/llm"
	"github.com/abhisek/resumebot/internal/store"
)

// Deps are the optional collaborators shared by every backend.
type Deps struct {
	// Calls receives one record per remote call. Nil disables the audit log.
	Calls store.CallRepo

	// Tracer opens a span per call. Nil disables tracing.
	Tracer trace.Tracer

	Logger *zap.Logger

	// Rand seeds the local backend. Nil means a time-seeded source.
	Rand rand.Source
}

// New builds the client named by cfg.Analysis.Backend and wraps it as
// caller → tracing → logging → backend.
func New(ctx context.Context, cfg config.Config, deps Deps) (analysis.Client, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	var (
		base analysis.Client
		err  error
	)
	switch cfg.Analysis.Backend {
	case config.BackendHTTP:
		base = analysis.NewHTTPClient(cfg.Analysis.BaseURL, analysis.WithTimeout(cfg.Analysis.Timeout))
	case config.BackendLocal, config.BackendLLM:
		base, err = NewEngine(ctx, cfg.Analysis.Backend, cfg, deps)
	default:
		err = fmt.Errorf("unknown analysis backend %q", cfg.Analysis.Backend)
	}
	if err != nil {
		return nil, err
	}

	return wrap(base, cfg.Analysis.Backend, deps), nil
}

// NewEngine builds an in-process engine, "local" or "llm", without the
// logging and tracing wrappers. The reference service serves one of these.
func NewEngine(ctx context.Context, name string, cfg config.Config, deps Deps) (analysis.Client, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	switch name {
	case config.BackendLocal:
		cat := catalog.Default()
		if cfg.Server.Catalog != "" {
			var err error
			if cat, err = catalog.LoadFile(cfg.Server.Catalog); err != nil {
				return nil, err
			}
		}
		src := deps.Rand
		if src == nil {
			seed := uint64(time.Now().UnixNano())
			src = rand.NewPCG(seed, seed>>32)
		}
		return catalog.NewClient(cat, src), nil

	case config.BackendLLM:
		provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), deps.Logger.Named("llm"))
		if err != nil {
			return nil, err
		}
		return analyzer.New(provider, analyzer.DefaultConfig(), deps.Logger.Named("analyzer")), nil
	}
	return nil, fmt.Errorf("unknown analysis engine %q (want local or llm)", name)
}

func wrap(c analysis.Client, backend string, deps Deps) analysis.Client {
	if deps.Calls != nil {
		c = analysis.WithLogging(c, deps.Calls, backend, deps.Logger.Named("analysis"))
	}
	if deps.Tracer != nil {
		c = analysis.WithTracing(c, deps.Tracer)
	}
	return c
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/backend"
	"github.com/abhisek/resumebot/internal/config"
	"github.com/abhisek/resumebot/internal/logging"
	"github.com/abhisek/resumebot/internal/store"
)

// env bundles what most commands need. Close releases it in reverse order.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *store.Store
	tracing *backend.Tracing
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DB = db
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Analysis.Backend = b
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openEnv loads config, builds the logger, opens tracing, and opens the
// store when withStore is set.
func openEnv(cmd *cobra.Command, withStore bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger}

	e.tracing, err = backend.NewTracing(cfg.Tracing.File)
	if err != nil {
		e.Close()
		return nil, err
	}

	if withStore {
		e.store, err = openStore(cfg)
		if err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath := cfg.DB
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		dbPath = p
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// deps returns the backend collaborators wired to this env.
func (e *env) deps() backend.Deps {
	d := backend.Deps{Logger: e.logger}
	if e.store != nil {
		d.Calls = e.store.Calls()
	}
	if e.tracing != nil {
		d.Tracer = e.tracing.Tracer
	}
	return d
}

// client builds the configured analysis client with audit and tracing.
func (e *env) client(ctx context.Context) (analysis.Client, error) {
	c, err := backend.New(ctx, e.cfg, e.deps())
	if err != nil {
		return nil, fmt.Errorf("build analysis backend: %w", err)
	}
	return c, nil
}

func (e *env) Close() {
	if e.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.tracing.Shutdown(ctx); err != nil {
			e.logger.Warn("flush traces", zap.Error(err))
		}
		cancel()
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("close store", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

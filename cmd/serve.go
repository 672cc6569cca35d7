package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
	"github.com/abhisek/resumebot/internal/backend"
	"github.com/abhisek/resumebot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference analysis service",
	Long:  "Serve scan_resume, generate_test, and evaluate_test over HTTP using the local catalog or an LLM engine.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		cfg := e.cfg
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
			cfg.Server.Engine = engine
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := backend.NewEngine(ctx, cfg.Server.Engine, cfg, e.deps())
		if err != nil {
			return err
		}
		engine = analysis.WithTracing(engine, e.tracing.Tracer)

		srv := server.New(engine,
			server.WithLogger(e.logger),
			server.WithVersion(serviceVersion()),
			server.WithCacheTTL(cfg.Server.CacheTTL),
		)
		e.logger.Info("analysis engine ready",
			zap.String("engine", cfg.Server.Engine),
			zap.Duration("cache_ttl", cfg.Server.CacheTTL))

		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("engine", "", "Engine: local or llm (overrides server.engine)")
}

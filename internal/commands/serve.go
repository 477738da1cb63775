package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/ai-scheduler/internal/app"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *Options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduler web page",
		Long: `Serve the single-page scheduler.

Examples:
  # Serve on the configured port (default 8080)
  ai-scheduler serve

  # Override the port
  ai-scheduler serve --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, llm, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if port > 0 {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg, logger, llm)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg *app.Config, logger *zap.Logger, llm app.Completer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := app.NewMetrics()
	pipeline := app.NewPipeline(llm, app.NewRenderer(), metrics, logger)
	server, err := app.NewServer(cfg, pipeline, metrics, logger)
	if err != nil {
		return err
	}

	logger.Info("starting ai-scheduler",
		zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
		zap.String("model", cfg.Generator.Model),
		zap.String("generator", cfg.Generator.BaseURL))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

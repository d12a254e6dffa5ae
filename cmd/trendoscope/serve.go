package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/metrics"
	chiTransport "github.com/kailas-cloud/trendoscope/internal/transport/chi"
	"github.com/kailas-cloud/trendoscope/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				return serve(ctx, a, opts.env)
			})
		},
	}
}

func serve(ctx context.Context, a *app, env string) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("Starting trendoscope API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	metrics.Register()

	server := chiTransport.NewServer(chiTransport.Deps{
		Ingest:   a.ingest,
		Search:   a.search,
		Profiles: a.style,
		Generate: a.generate,
		Trends:   a.trends,
		Usage:    a.usage,
		Health:   a.health,
	}, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger, metrics.Middleware())

	sched, err := a.schedule()
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
		go sched.RunNow(trendsJob, a.refreshTrends)
		logger.Info("Trend refresh scheduled", zap.String("cron", cfg.News.RefreshCron))
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

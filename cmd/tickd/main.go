// Command tickd runs the tick engine as a standalone daemon: one store
// backend, the admin HTTP API, and optionally the built-in poller.
//
// Configuration comes from an optional file (-config) overridden by
// TICK_-prefixed environment variables, e.g. TICK_STORE_DRIVER=postgres
// TICK_LISTEN=:9090. Without the poller the daemon only runs jobs when
// POST /v1/scheduler/run is called.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/api"
	"github.com/xraph/tick/engine"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tickd:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("tickd exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg logConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engOpts := []engine.Option{
		engine.WithConfig(tick.Config{
			Environment:     cfg.Environment,
			Concurrency:     cfg.Scheduler.Concurrency,
			LeaseTTL:        cfg.Scheduler.LeaseTTL,
			PollInterval:    cfg.Poller.Interval,
			AlertRetention:  cfg.Scheduler.AlertRetention,
			ShutdownTimeout: cfg.ShutdownTimeout,
		}),
		engine.WithLogger(logger),
	}

	sink, err := buildSink(cfg.Alerts)
	if err != nil {
		return err
	}
	if sink != nil {
		engOpts = append(engOpts, engine.WithSink(sink))
	}

	eng, err := engine.New(s, engOpts...)
	if err != nil {
		return err
	}

	if cfg.Poller.Enabled {
		if err := eng.StartPoller(ctx); err != nil {
			return fmt.Errorf("start poller: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.New(eng).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tickd listening",
			slog.String("addr", cfg.Listen),
			slog.String("store", cfg.Store.Driver),
			slog.String("environment", cfg.Environment),
			slog.Bool("poller", cfg.Poller.Enabled),
		)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case serveErr := <-errCh:
		return fmt.Errorf("http server: %w", serveErr)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	return eng.Close(shutdownCtx)
}

// buildSink assembles the GitHub issue sink when the config names a
// repository; otherwise alert dispatch stays disabled.
func buildSink(cfg alertsConfig) (alert.Sink, error) {
	gh := cfg.GitHub
	if gh.Token == "" || gh.Owner == "" || gh.Repo == "" {
		return nil, nil
	}
	var opts []alert.GitHubOption
	if len(gh.Labels) > 0 {
		opts = append(opts, alert.WithLabels(gh.Labels...))
	}
	return alert.NewGitHubSink(gh.Token, gh.Owner, gh.Repo, opts...)
}

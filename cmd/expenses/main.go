package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/backend"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cli"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/config"
	apphttp "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/http"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/metrics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/services"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/session"
)

const (
	summaryCacheSize = 256
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := backend.NewOpener(logger).Open(initCtx, backendCfg)
	cancelInit()
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	logger.Info("Initialized backend", "backend", cfg.DataBackend, "events", res.Publisher != nil)

	m := metrics.New()
	memo := analytics.NewMemo(summaryCacheSize, cfg.CacheTTL)

	opts := []services.Option{services.WithMetrics(m), services.WithLogger(logger)}
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}
	svc := services.NewExpenseService(res.Store, memo, opts...)

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, session.NewVerifier(cfg.SessionSecret), apphttp.Options{
		CookieName:         cfg.SessionCookie,
		SecureCookies:      cfg.SessionCookieSecure,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Summaries:          memo,
		Metrics:            m,
		Logger:             logger,
	})
	if err != nil {
		_ = svc.Close()
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	logger.Info("Starting expense tracker", "port", cfg.Port, "backend", cfg.DataBackend)

	failed := false
	select {
	case err := <-serveErr:
		logger.Error("Server error", "error", err, "port", cfg.Port)
		failed = true
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	cli.Drain(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	})
	if failed {
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

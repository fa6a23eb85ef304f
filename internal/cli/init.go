// Package cli holds the process bootstrap shared by the server, the mirror
// worker and the operator tools.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/config"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
)

// Bootstrap loads .env (when present), reads the configuration and installs
// the process logger for component. A non-nil validate that fails ends the
// process with status 1.
func Bootstrap(component string, validate func(*config.Config) error) (*config.Config, *applog.Logger) {
	// .env is a local development convenience; deployments set the environment.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg, component)
	if validate != nil {
		if err := validate(cfg); err != nil {
			Fatal(logger, "Configuration validation failed", err)
		}
	}
	return cfg, logger
}

// newLogger builds the process logger and makes it the slog default.
func newLogger(cfg *config.Config, component string) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Level = applog.ParseLevel(cfg.LogLevel)
	lc.JSON = cfg.LogFormat == "json"
	lc.Component = component
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// Fatal logs err and exits with status 1.
func Fatal(logger *applog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{applog.FieldError, err}, args...)...)
	os.Exit(1)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Drain runs cleanup under a fresh deadline of timeout and reports whether it
// finished in time.
func Drain(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cleanup(ctx)
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached", "timeout", timeout.String())
		return false
	}
	logger.Info("Shutdown complete")
	return true
}

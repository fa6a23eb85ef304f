package cli

import (
	"context"
	"testing"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/config"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
)

func TestBootstrapReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9123")
	t.Setenv("LOG_LEVEL", "debug")

	var seen *config.Config
	cfg, logger := Bootstrap(applog.ComponentReport, func(c *config.Config) error {
		seen = c
		return nil
	})
	if cfg.Port != "9123" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if seen != cfg {
		t.Fatal("validate was not called with the loaded config")
	}
	if logger.Component() != applog.ComponentReport {
		t.Fatalf("component = %q", logger.Component())
	}
}

func TestDrain(t *testing.T) {
	logger := applog.Discard()

	ran := false
	if !Drain(logger, time.Second, func(ctx context.Context) { ran = true }) || !ran {
		t.Fatal("fast cleanup should finish in time")
	}

	finished := Drain(logger, 10*time.Millisecond, func(ctx context.Context) { <-ctx.Done() })
	if finished {
		t.Fatal("cleanup that outlives the deadline must report a timeout")
	}
}

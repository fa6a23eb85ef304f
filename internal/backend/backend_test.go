package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/config"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", PostgresDSN: "postgres://x"})
	if err != nil || cfg.Type != PostgresBackend || cfg.PostgresDSN != "postgres://x" {
		t.Fatalf("unexpected conversion %+v err=%v", cfg, err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"memory", Config{Type: MemoryBackend}, nil},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, nil},
		{"sqlite without path", Config{Type: SQLiteBackend}, ErrMissingSetting},
		{"postgres without dsn", Config{Type: PostgresBackend}, ErrMissingSetting},
		{"unknown", Config{Type: "csv"}, ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() err=%v want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	o := NewOpener(nil)

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "expenses.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := o.Open(ctx, cfg)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			defer res.Close()

			if res.Publisher != nil {
				t.Fatalf("publisher must be nil without AMQP_URL")
			}
			in := core.NewExpense{Amount: core.Money{Cents: 100}, Category: "Food", Date: core.NewDate(2025, 1, 1)}
			if _, err := res.Store.CreateExpense(ctx, "u1", in); err != nil {
				t.Fatalf("store not usable: %v", err)
			}
			if err := res.Store.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
		})
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := NewOpener(nil).Open(context.Background(), Config{Type: SQLiteBackend})
	if !errors.Is(err, ErrMissingSetting) {
		t.Fatalf("expected ErrMissingSetting, got %v", err)
	}
}

func TestNames(t *testing.T) {
	got := Names()
	if len(got) != 3 || got[0] != "memory" || got[2] != "postgres" {
		t.Fatalf("unexpected types %v", got)
	}
}

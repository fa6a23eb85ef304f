package backend

import (
	"context"
	"fmt"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/amqp"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/storage"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/storage/memory"
)

// Opener builds backends from Config.
type Opener struct {
	logger *applog.Logger
}

func NewOpener(logger *applog.Logger) *Opener {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Opener{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Open validates cfg, opens the record store and, when AMQP is configured,
// connects the publisher. A broker that cannot be reached only disables
// events; the store is what the app cannot run without.
func (o *Opener) Open(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := o.openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Type, err)
	}
	b := &Backend{Store: store}

	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, o.logger)
		if err != nil {
			o.logger.Warn("AMQP unavailable, continuing without events", applog.FieldError, err)
		} else {
			b.Publisher = client
			o.logger.Info("Publishing expense events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	return b, nil
}

func (o *Opener) openStore(ctx context.Context, cfg Config) (storage.RecordStore, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		o.logger.Info("Opened SQLite store", "db_path", cfg.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		o.logger.Info("Opened Postgres store")
		return repo, nil

	case MemoryBackend:
		if cfg.MemorySeedFile == "" {
			o.logger.Info("Opened empty memory store")
			return memory.New(), nil
		}
		store, err := memory.NewFromFile(cfg.MemorySeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		o.logger.Info("Opened memory store", "seed_file", cfg.MemorySeedFile)
		return store, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownBackend, cfg.Type)
}

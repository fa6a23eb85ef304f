// Package backend turns DATA_BACKEND and friends into an open record store
// and, when AMQP is configured, an event publisher.
package backend

import (
	"errors"
	"fmt"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/services"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/storage"
)

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string { return string(bt) }

// IsValid reports whether bt names a supported backend.
func (bt BackendType) IsValid() bool {
	for _, b := range backends {
		if b.typ == bt {
			return true
		}
	}
	return false
}

// Config selects and parameterizes a backend.
type Config struct {
	Type BackendType

	SQLiteDBPath   string
	PostgresDSN    string
	MemorySeedFile string // empty starts the memory store empty

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Backend is what Open hands back. Publisher is nil when events are off.
type Backend struct {
	Store     storage.RecordStore
	Publisher services.Publisher
}

// Close releases the publisher, then the store.
func (b *Backend) Close() error {
	var errs []error
	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}

package backend

import (
	"errors"
	"fmt"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/config"
)

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrMissingSetting = errors.New("missing backend setting")
)

// backends lists every supported backend with the setting it cannot start
// without. Order is the order shown to operators.
var backends = []struct {
	typ     BackendType
	setting string
	value   func(Config) string
}{
	{MemoryBackend, "", nil},
	{SQLiteBackend, "SQLITE_DB_PATH", func(c Config) string { return c.SQLiteDBPath }},
	{PostgresBackend, "POSTGRES_DSN", func(c Config) string { return c.PostgresDSN }},
}

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:           BackendType(appConfig.DataBackend),
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		PostgresDSN:    appConfig.PostgresDSN,
		MemorySeedFile: appConfig.MemorySeedFile,
		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPQueue:      appConfig.AMQPQueue,
	}
	if !c.Type.IsValid() {
		return Config{}, fmt.Errorf("%w %q, expected one of %v", ErrUnknownBackend, appConfig.DataBackend, Names())
	}
	return c, nil
}

// Validate checks that the selected backend has what it needs to open.
func (c Config) Validate() error {
	for _, b := range backends {
		if b.typ != c.Type {
			continue
		}
		if b.value != nil && b.value(c) == "" {
			return fmt.Errorf("%w: %s backend requires %s", ErrMissingSetting, b.typ, b.setting)
		}
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownBackend, c.Type)
}

// EventsEnabled reports whether record changes are published to AMQP.
func (c Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Names returns the accepted DATA_BACKEND values.
func Names() []string {
	out := make([]string, len(backends))
	for i, b := range backends {
		out[i] = b.typ.String()
	}
	return out
}

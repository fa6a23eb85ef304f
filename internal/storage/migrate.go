package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// dialect binds a database/sql driver name to its migrate driver and the
// directory holding its schema.
type dialect struct {
	name   string
	dir    string
	driver func(*sql.DB) (database.Driver, error)
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		dir:  "migrations/sqlite",
		driver: func(db *sql.DB) (database.Driver, error) {
			return sqlite.WithInstance(db, &sqlite.Config{})
		},
	}
	postgresDialect = dialect{
		name: "postgres",
		dir:  "migrations/postgres",
		driver: func(db *sql.DB) (database.Driver, error) {
			return postgres.WithInstance(db, &postgres.Config{})
		},
	}
)

// migrateUp brings the schema at dsn to the latest embedded version and
// returns that version. It opens its own connection because the migrate
// driver closes the handle it is given.
func migrateUp(d dialect, dsn string) (uint, error) {
	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", d.name, err)
	}
	drv, err := d.driver(db)
	if err != nil {
		db.Close()
		return 0, fmt.Errorf("%s migrate driver: %w", d.name, err)
	}
	src, err := iofs.New(migrationsFS, d.dir)
	if err != nil {
		drv.Close()
		return 0, fmt.Errorf("%s migration source: %w", d.name, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, d.name, drv)
	if err != nil {
		drv.Close()
		return 0, fmt.Errorf("%s migrate: %w", d.name, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("%s migrate up: %w", d.name, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("%s schema version: %w", d.name, err)
	}
	if dirty {
		return version, fmt.Errorf("%s schema version %d is dirty", d.name, version)
	}
	return version, nil
}

// latestVersion is the highest migration shipped for d.
func latestVersion(d dialect) (uint, error) {
	names, err := fs.Glob(migrationsFS, d.dir+"/*.up.sql")
	if err != nil {
		return 0, err
	}
	var latest uint
	for _, n := range names {
		var v uint
		if _, err := fmt.Sscanf(n[len(d.dir)+1:], "%d_", &v); err == nil && v > latest {
			latest = v
		}
	}
	return latest, nil
}

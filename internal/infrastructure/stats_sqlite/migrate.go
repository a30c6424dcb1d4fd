package stats_sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable keeps the history schema version apart from any other
// tool sharing the file.
const migrationsTable = "stats_schema_migrations"

// migrateUp brings the history schema to the newest embedded version and
// returns that version. A schema left dirty by a failed run is an error.
func migrateUp(db *sql.DB) (uint, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("open embedded migrations: %w", err)
	}

	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("stats db migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return 0, fmt.Errorf("stats db migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate stats db: %w", err)
	}

	v, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("stats db schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("stats db schema version %d is dirty", v)
	}

	return v, nil
}

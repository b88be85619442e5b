package postgres

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres migration driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate runs every pending up-migration against postgresURI (spec §6.4's
// schema). Grounded on the teacher's system.SystemStore.executeMigration,
// swapping go-bindata's generated asset table for a go:embed filesystem and
// the sqlite3 driver for postgres.
func Migrate(postgresURI string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %s", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, postgresURI)
	if err != nil {
		return fmt.Errorf("creating migration: %s", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migration up: %s", err)
	}
	return nil
}

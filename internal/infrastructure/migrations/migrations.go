// Package migrations embeds the schema of both SQL backends and applies it
// with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

// Dialects
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up applies every pending migration of dialect to databaseURL.
// SQLite URLs take the form sqlite3://path/to/file.db.
func Up(databaseURL, dialect string) error {
	m, err := newMigrate(databaseURL, dialect)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("dialect", dialect).Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Str("dialect", dialect).Msg("database migrations: applied successfully")
	return nil
}

// Down rolls back the last migration.
func Down(databaseURL, dialect string) error {
	m, err := newMigrate(databaseURL, dialect)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	log.Info().Str("dialect", dialect).Msg("database migrations: rolled back successfully")
	return nil
}

func newMigrate(databaseURL, dialect string) (*migrate.Migrate, error) {
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("unknown migration dialect %q", dialect)
	}

	source, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// Package migrate applies the embedded schema migrations.
package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

const (
	ModeUp   = "up"
	ModeDown = "down"
)

// Run applies all pending migrations (up) or rolls back the latest one
// (down). Having nothing to do is not an error.
func Run(db *sql.DB, mode string) error {
	if mode != ModeUp && mode != ModeDown {
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}

	srcDriver, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return fmt.Errorf("init iofs: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	switch mode {
	case ModeUp:
		err = m.Up()
	case ModeDown:
		err = m.Steps(-1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", mode, err)
	}
	return nil
}

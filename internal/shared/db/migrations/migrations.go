package migrations

import (
	"errors"

	"github.com/bidcraft/engine/internal/shared/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var log = logger.GetLogger()

// Run applies all pending schema migrations against the given database.
func Run(dsn string) error {
	log.Info("Running database migrations")
	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		dsn,
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

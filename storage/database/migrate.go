package database

import (
	"database/sql"
	"embed"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrations embed.FS

var gooseRun = goose.Run // mockable

// Migrate applies every pending migration.
func Migrate(db *sql.DB) error {
	return RunMigrations(db, "up")
}

// RunMigrations runs a goose command (up, down, status, redo, version...) against the embedded migrations.
func RunMigrations(db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err := gooseRun(command, db, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrations: %s", command)
	}
	return nil
}

func pqQuoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

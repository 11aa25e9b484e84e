package database

import (
	"database/sql"
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core"
)

func TestDSN(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		Engine: "postgres", Host: "db", Port: 5432, Name: "classroom", User: "app", Password: "p@ss",
	}}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/classroom?sslmode=require&timezone=utc", dsn(conf.Database.Name, conf))

	conf.Database.DisableTLS = true
	assert.Contains(t, dsn("postgres", conf), "/postgres?sslmode=disable")
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/00001_create_sessions.sql")
}

func TestRunMigrations(t *testing.T) {
	prev := gooseRun
	defer func() { gooseRun = prev }()

	var gotCmd, gotDir string
	var gotArgs []string
	gooseRun = func(command string, _ *sql.DB, dir string, args ...string) error {
		gotCmd, gotDir, gotArgs = command, dir, args
		return nil
	}
	require.NoError(t, RunMigrations(nil, "down-to", "0"))
	assert.Equal(t, "down-to", gotCmd)
	assert.Equal(t, "migrations", gotDir)
	assert.Equal(t, []string{"0"}, gotArgs)

	gooseRun = func(string, *sql.DB, string, ...string) error { return errors.New("no such table") }
	assert.EqualError(t, Migrate(nil), "migrations: up: no such table")
}

func TestPqQuoteIdent(t *testing.T) {
	assert.Equal(t, `"class""room"`, pqQuoteIdent(`class"room`))
}

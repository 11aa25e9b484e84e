package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
	logsvc "github.com/trezcool/classroom/services/logger"
	inmemdb "github.com/trezcool/classroom/storage/database/inmem"
)

var now = time.Date(2024, 8, 20, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// sql.Open does not connect: the DB is never used by the mocked commands
	openDBFunc = func(context.Context, *core.Config) (*sqlx.DB, error) {
		return sqlx.Open("postgres", "postgres://admin@127.0.0.1:1/classroom?sslmode=disable")
	}

	var out bytes.Buffer
	return &commandLine{
		conf:   &core.Config{Database: core.DatabaseConfig{Name: "classroom"}},
		out:    &out,
		logger: logsvc.NewConsoleLogger(&bytes.Buffer{}, false),
		now:    func() time.Time { return now },
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"classroom-admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)
	runTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "purge help", args: []string{"purgesessions", "--help"}, wantErr: errHelp},
	})
}

func Test_commandLine_createdb(t *testing.T) {
	cli, out := setup(t)

	var created string
	createDBFunc = func(_ context.Context, conf *core.Config) error {
		created = conf.Database.Name
		return nil
	}
	runTests(t, cli, out, []cliTest{
		{name: "create", args: []string{"createdb"}, wantOut: `database "classroom" is ready`},
	})
	assert.Equal(t, "classroom", created)

	createDBFunc = func(context.Context, *core.Config) error { return errors.New("pinging database: DB ping timeout") }
	runTests(t, cli, out, []cliTest{
		{name: "unreachable", args: []string{"createdb"}, wantErrStr: "pinging database: DB ping timeout"},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		if db == nil {
			return errors.New("no database")
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runTests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "sessions_index", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})

	openDBFunc = func(context.Context, *core.Config) (*sqlx.DB, error) { return nil, errors.New("DB ping timeout") }
	runTests(t, cli, out, []cliTest{
		{name: "no database", args: []string{"migrate", "up"}, wantErrStr: "DB ping timeout"},
	})
}

func Test_commandLine_purgeSessions(t *testing.T) {
	cli, out := setup(t)

	ctx := context.Background()
	repo := inmemdb.NewSessionRepository(inmemdb.Open())
	newPurgerFunc = func(*sqlx.DB) session.Purger { return repo }

	seed := func() {
		for _, rec := range []session.Record{
			session.NewRecord(now.Add(-3*time.Hour), time.Hour),    // expired 2h ago
			session.NewRecord(now.Add(-90*time.Minute), time.Hour), // expired 30m ago
			session.NewRecord(now, time.Hour),
		} {
			require.NoError(t, repo.Save(ctx, rec))
		}
	}

	seed()
	runTests(t, cli, out, []cliTest{
		{name: "before an hour ago", args: []string{"purgesessions", "--before", now.Add(-time.Hour).Format(time.RFC3339)}, wantOut: "1 expired session(s) deleted"},
		{name: "now", args: []string{"purgesessions"}, wantOut: "1 expired session(s) deleted"},
		{name: "nothing left", args: []string{"purgesessions"}, wantOut: "0 expired session(s) deleted"},
		{name: "bad time", args: []string{"purgesessions", "--before", "yesterday"}, wantErrStr: `invalid --before "yesterday": expected RFC3339`},
	})
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/storage/database"
	sqlxrepos "github.com/trezcool/classroom/storage/database/sqlx"
)

var (
	openDBFunc        = database.Open             // mockable
	createDBFunc      = database.CreateIfNotExist // mockable
	runMigrationsFunc = database.RunMigrations    // mockable
	newPurgerFunc     = newSessionPurger          // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	out    io.Writer
	logger core.Logger
	now    func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createdb - create the portal database if it does not exist")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  purgesessions [--before RFC3339] - delete the sessions that expired before the given time (now by default)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	if cli.now == nil {
		cli.now = time.Now
	}
	ctx := context.Background()

	switch args[1] {
	case "createdb":
		if err := createDBFunc(ctx, cli.conf); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "database %q is ready\n", cli.conf.Database.Name)
		return nil
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.withDB(ctx, func(db *sqlx.DB) error {
			return cli.migrate(db, args[2:])
		})
	case "purgesessions":
		fs := pflag.NewFlagSet("purgesessions", pflag.ContinueOnError)
		fs.SetOutput(cli.out)
		before := fs.String("before", "", "purge sessions that expired before this time (RFC3339)")
		if err := fs.Parse(args[2:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return errHelp
			}
			return err
		}
		at := cli.now()
		if *before != "" {
			var err error
			if at, err = time.Parse(time.RFC3339, *before); err != nil {
				return errors.Errorf("invalid --before %q: expected RFC3339", *before)
			}
		}
		return cli.withDB(ctx, func(db *sqlx.DB) error {
			return cli.purgeSessions(ctx, newPurgerFunc(db), at)
		})
	default:
		cli.printUsage()
		return errHelp
	}
}

func newSessionPurger(db *sqlx.DB) session.Purger {
	return sqlxrepos.NewSessionRepository(db)
}

func (cli *commandLine) withDB(ctx context.Context, fn func(db *sqlx.DB) error) error {
	db, err := openDBFunc(ctx, cli.conf)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			cli.logger.Error("closing database", cErr)
		}
	}()
	return fn(db)
}

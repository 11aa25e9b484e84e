package main

import (
	"github.com/jmoiron/sqlx"
)

func (cli *commandLine) migrate(db *sqlx.DB, args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return runMigrationsFunc(db.DB, args[0], arguments...)
}

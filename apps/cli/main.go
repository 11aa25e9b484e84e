// Command classroom is the terminal client of the classroom portal.
package main

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/services/backend"
	logsvc "github.com/trezcool/classroom/services/logger"
	"github.com/trezcool/classroom/services/notify"
	boltdb "github.com/trezcool/classroom/storage/bolt"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewConsoleLogger(os.Stderr, conf.Debug && conf.TestMode)

	state, err := boltdb.Open(conf.CLI.StatePath, conf.Session.TTL)
	if err != nil {
		logger.Fatal("opening state file", err)
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	cli := commandLine{
		out:        os.Stdout,
		api:        backend.New(backend.Options{BaseURL: conf.Backend.BaseURL, Timeout: conf.Backend.Timeout, UserAgent: "classroom-cli/" + conf.Build}),
		state:      state,
		notifier:   notify.NewConsole(os.Stderr),
		logger:     logger,
		validate:   validate,
		translator: translator,
		now:        time.Now,
	}
	err = cli.run(os.Args)
	if cErr := state.Close(); cErr != nil {
		logger.Error("closing state file", cErr)
	}
	if err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}

// Command classroom-admin runs maintenance tasks on the portal's session database.
package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	logsvc "github.com/trezcool/classroom/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewConsoleLogger(os.Stderr, conf.Debug)

	cli := commandLine{
		conf:   conf,
		out:    os.Stdout,
		logger: logger,
	}
	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

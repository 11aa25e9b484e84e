// Package logsvc provides the core.Logger implementations.
package logsvc

import (
	"log"
	"os"

	"github.com/trezcool/classroom/core"
)

// New returns the rollbar logger when a token is configured outside debug mode, a console logger otherwise.
func New(conf *core.Config) core.Logger {
	if conf.RollbarToken != "" && !conf.Debug {
		l := NewRollbarLogger(log.New(os.Stderr, "", log.LstdFlags), conf)
		l.Enable(!conf.TestMode)
		return l
	}
	return NewConsoleLogger(os.Stderr, conf.Debug)
}

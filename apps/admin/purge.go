package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/session"
)

func (cli *commandLine) purgeSessions(ctx context.Context, purger session.Purger, before time.Time) error {
	n, err := purger.PurgeExpired(ctx, before)
	if err != nil {
		return errors.Wrap(err, "purging sessions")
	}
	fmt.Fprintf(cli.out, "%d expired session(s) deleted\n", n)
	return nil
}

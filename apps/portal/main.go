package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	echoportal "github.com/trezcool/classroom/apps/portal/echo"
	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/services/backend"
	logsvc "github.com/trezcool/classroom/services/logger"
	"github.com/trezcool/classroom/services/metrics"
	"github.com/trezcool/classroom/storage/database"
	inmemdb "github.com/trezcool/classroom/storage/database/inmem"
	sqlxrepos "github.com/trezcool/classroom/storage/database/sqlx"
	redisstore "github.com/trezcool/classroom/storage/redis"
)

const purgeInterval = 10 * time.Minute

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	flags := pflag.NewFlagSet("portal", pflag.ExitOnError)
	flags.StringVar(&conf.Portal.Address, "addr", conf.Portal.Address, "address to listen on")
	flags.StringVar(&conf.Portal.SessionStore, "session-store", conf.Portal.SessionStore, "session store: memory, redis or postgres")
	flags.StringVar(&conf.Backend.BaseURL, "backend", conf.Backend.BaseURL, "base URL of the classroom API")
	_ = flags.Parse(os.Args[1:])

	logger := logsvc.New(conf)
	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	mtrcs := metrics.New()
	client := backend.New(backend.Options{
		BaseURL:   conf.Backend.BaseURL,
		Timeout:   conf.Backend.Timeout,
		UserAgent: conf.AppName + "/" + conf.Build,
		Debug:     conf.Debug && conf.TestMode,
		Observer:  mtrcs.ObserveBackend,
	})

	ctx := context.Background()
	sessions, closeSessions, err := openSessions(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s session store: %v", conf.Portal.SessionStore, err), err)
	}
	defer func() {
		if err = closeSessions.Close(); err != nil {
			logger.Error("closing session store", err)
		}
	}()

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	if purger, ok := sessions.(session.Purger); ok {
		go purgeSessions(purgeCtx, purger, logger)
	}

	// =========================================================================
	// Start Portal

	server := echoportal.NewServer(
		echoportal.Options{
			Address:        conf.Portal.Address,
			AppName:        conf.AppName,
			CookieName:     conf.Portal.CookieName,
			SecretKey:      conf.SecretKey,
			SecureCookie:   conf.Env == "PROD" || conf.Env == "QA",
			SessionTTL:     conf.Session.TTL,
			Debug:          conf.Debug,
			DisableRecover: conf.Debug || conf.TestMode,
			DisableReqLogs: conf.Portal.DisableReqLogs,
		},
		echoportal.Deps{
			Logger:     logger,
			Backend:    client,
			Sessions:   sessions,
			Metrics:    mtrcs,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Portal.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSessions returns the session repository selected by `portal.sessionStore`.
func openSessions(ctx context.Context, conf *core.Config) (session.Repository, io.Closer, error) {
	switch conf.Portal.SessionStore {
	case "", "memory":
		return inmemdb.NewSessionRepository(inmemdb.Open()), nopCloser{}, nil
	case "redis":
		client, err := redisstore.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewSessionRepository(client), client, nil
	case "postgres":
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewSessionRepository(db), db, nil
	default:
		return nil, nil, errors.Errorf("unknown session store %q", conf.Portal.SessionStore)
	}
}

func purgeSessions(ctx context.Context, purger session.Purger, logger core.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := purger.PurgeExpired(ctx, now)
			if err != nil {
				logger.Error("purging expired sessions", err)
				continue
			}
			if n > 0 {
				logger.Debug(fmt.Sprintf("purged %d expired sessions", n))
			}
		}
	}
}

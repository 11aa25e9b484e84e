// Package echoportal is the classroom web portal built on echo.
package echoportal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/services/backend"
	"github.com/trezcool/classroom/services/metrics"
)

type (
	Options struct {
		Address        string
		AppName        string
		CookieName     string
		SecretKey      string
		SecureCookie   bool
		SessionTTL     time.Duration
		Debug          bool
		DisableRecover bool
		DisableReqLogs bool
	}

	Deps struct {
		Logger     core.Logger
		Backend    *backend.Client
		Sessions   session.Repository
		Metrics    *metrics.Metrics    // optional
		Validate   *validator.Validate // optional
		Translator ut.Translator
		Now        func() time.Time // defaults to time.Now
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		opts     Options
		deps     Deps
		app      *echo.Echo
		cookies  cookieSigner
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts Options, deps Deps) Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Validate == nil {
		deps.Validate, deps.Translator = core.NewValidator()
		user.InitValidators(deps.Validate, deps.Translator)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.CookieName == "" {
		opts.CookieName = "classroom_session"
	}

	s := &server{
		opts: opts,
		deps: deps,
		app:  echo.New(),
		cookies: cookieSigner{
			name:   opts.CookieName,
			key:    []byte(opts.SecretKey),
			issuer: opts.AppName,
			ttl:    opts.SessionTTL,
			secure: opts.SecureCookie,
		},
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.opts.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(s.metricsMiddleware)
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !s.opts.DisableRecover {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))

	// route level middlewares: a middleware-bearing Group would register its own catch-all
	s.registerAuthRoutes()
	s.registerDashboardRoutes()
	s.app.GET("/leaderboard", s.leaderboard)

	s.app.RouteNotFound("/*", func(echo.Context) error { return errPageNotFound })
}

// metricsMiddleware records the latency of every request by route template.
func (s *server) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}
		req := ctx.Request()
		s.deps.Metrics.ObserveHTTP(req.Method, ctx.Path(), ctx.Response().Status, time.Since(start))
		return nil
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

package echoportal

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/dashboard"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/services/backend"
	"github.com/trezcool/classroom/services/notify"
)

const contextSessionKey = "session"

var errSessionNotFoundInCtx = errors.New("session not found in echo.Context")

// requestSession is the state of one portal visitor for the duration of a request.
type requestSession struct {
	id      string
	storage session.Storage
	store   *session.Store
	notes   *notify.Recorder
	api     *backend.Client
}

func (s *server) newRequestSession(sid string) *requestSession {
	storage := session.Scoped(s.deps.Sessions, sid, s.opts.SessionTTL)
	return &requestSession{
		id:      sid,
		storage: storage,
		store:   session.NewStore(),
		notes:   new(notify.Recorder),
		api:     s.deps.Backend.WithTokens(storage),
	}
}

// sessionMiddleware attaches the session named by the cookie, or an anonymous one.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var sid string
		if c, err := ctx.Cookie(s.cookies.name); err == nil && c.Value != "" {
			if sid, err = s.cookies.parse(c.Value, s.deps.Now()); err != nil {
				s.deps.Logger.Debug("ignoring session cookie", err)
			}
		}
		ctx.Set(contextSessionKey, s.newRequestSession(sid))
		return next(ctx)
	}
}

func getSession(ctx echo.Context) (*requestSession, error) {
	if rs, ok := ctx.Get(contextSessionKey).(*requestSession); ok {
		return rs, nil
	}
	return nil, errSessionNotFoundInCtx
}

// startSession ends the current session (if any) and binds a fresh one to the response cookie.
func (s *server) startSession(ctx echo.Context, token string) (*requestSession, error) {
	if old, err := getSession(ctx); err == nil && old.id != "" {
		if err = old.storage.ClearToken(ctx.Request().Context()); err != nil {
			s.deps.Logger.Warn("ending previous session", err)
		}
	}

	rs := s.newRequestSession(uuid.NewString())
	if err := rs.storage.SetToken(ctx.Request().Context(), token); err != nil {
		return nil, errors.Wrap(err, "saving token")
	}

	now := s.deps.Now()
	value, err := s.cookies.sign(rs.id, now)
	if err != nil {
		return nil, err
	}
	ctx.SetCookie(s.cookies.cookie(value, now))
	ctx.Set(contextSessionKey, rs)
	return rs, nil
}

func (s *server) endSession(ctx echo.Context) {
	ctx.SetCookie(s.cookies.expired())
}

// gateMiddleware resolves the session gate and sends unauthenticated visitors to the login page.
func (s *server) gateMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		rs, err := getSession(ctx)
		if err != nil {
			return err
		}

		gate := session.NewGate(session.GateDeps{
			Store:    rs.store,
			Storage:  rs.storage,
			Fetcher:  rs.api,
			Notifier: rs.notes,
			Logger:   s.deps.Logger,
		})
		decision := gate.Resolve(ctx.Request().Context())
		s.deps.Metrics.CountGateDecision(decision.Outcome.String())

		if decision.Outcome != session.Authorized {
			if backend.IsUnauthorized(decision.Err) {
				// the backend no longer accepts the token
				if err = session.Logout(ctx.Request().Context(), rs.storage); err != nil {
					s.deps.Logger.Warn("clearing rejected session", err)
				}
				s.endSession(ctx)
			}
			// the gate's failure notification travels with the redirect
			ctx.Response().Header().Set(echo.HeaderLocation, decision.RedirectTo)
			return respond(ctx, http.StatusSeeOther, rs, Redirect{RedirectTo: decision.RedirectTo})
		}
		return next(ctx)
	}
}

// sessionUser returns the user the gate authorized.
func sessionUser(rs *requestSession) (user.User, error) {
	usr := rs.store.User()
	if usr == nil {
		return user.User{}, errUnauthorized
	}
	return *usr, nil
}

func (s *server) dashboardDeps(rs *requestSession) dashboard.Deps {
	return dashboard.Deps{
		API:        rs.api,
		Store:      rs.store,
		Storage:    rs.storage,
		Notifier:   rs.notes,
		Validate:   s.deps.Validate,
		Translator: s.deps.Translator,
		Now:        s.deps.Now,
	}
}

// homeOf returns the dashboard of the session user.
func (s *server) homeOf(ctx echo.Context) (dashboard.Dashboard, *requestSession, error) {
	rs, err := getSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	usr, err := sessionUser(rs)
	if err != nil {
		return nil, nil, err
	}
	d, err := dashboard.Home(usr, s.dashboardDeps(rs))
	if err != nil {
		return nil, nil, errors.Wrap(err, "building dashboard")
	}
	return d, rs, nil
}

// dashboardAs returns the session user's dashboard if it is a T, errForbidden otherwise.
func dashboardAs[T dashboard.Dashboard](s *server, ctx echo.Context) (T, *requestSession, error) {
	var zero T
	d, rs, err := s.homeOf(ctx)
	if err != nil {
		return zero, nil, err
	}
	typed, ok := d.(T)
	if !ok {
		return zero, nil, errForbidden
	}
	return typed, rs, nil
}

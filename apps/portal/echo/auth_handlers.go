package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/session"
	"github.com/trezcool/classroom/core/user"
)

const (
	loggedInMsg  = "Logged in successfully"
	registerMsg  = "Account created successfully"
	loggedOutMsg = "Logged out successfully"

	homeRoute = "/"
)

func (s *server) registerAuthRoutes() {
	sess := s.sessionMiddleware
	s.app.POST("/login", s.login, sess)
	s.app.POST("/register", s.register, sess)
	s.app.POST("/logout", s.logout, sess)
}

func (s *server) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := core.CheckValidation(data.Validate(s.deps.Validate), s.deps.Translator); err != nil {
		return err
	}

	rs, err := getSession(ctx)
	if err != nil {
		return err
	}
	token, err := rs.api.LoginUser(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}

	if rs, err = s.startSession(ctx, token); err != nil {
		return err
	}
	rs.notes.Notify(core.Success(loggedInMsg))
	return respond(ctx, http.StatusOK, rs, Redirect{RedirectTo: homeRoute})
}

func (s *server) register(ctx echo.Context) error {
	var data user.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if err := core.CheckValidation(data.Validate(s.deps.Validate), s.deps.Translator); err != nil {
		return err
	}

	rs, err := getSession(ctx)
	if err != nil {
		return err
	}
	token, err := rs.api.RegisterUser(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering")
	}

	if rs, err = s.startSession(ctx, token); err != nil {
		return err
	}
	rs.notes.Notify(core.Success(registerMsg))
	return respond(ctx, http.StatusCreated, rs, Redirect{RedirectTo: homeRoute})
}

func (s *server) logout(ctx echo.Context) error {
	rs, err := getSession(ctx)
	if err != nil {
		return err
	}

	rs.store.DispatchUser(user.LogoutUser{})
	if err = session.Logout(ctx.Request().Context(), rs.storage); err != nil {
		return errors.Wrap(err, "logging out")
	}
	s.endSession(ctx)

	rs.notes.Notify(core.Success(loggedOutMsg))
	return respond(ctx, http.StatusOK, rs, Redirect{RedirectTo: session.LoginRoute})
}

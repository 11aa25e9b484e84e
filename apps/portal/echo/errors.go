package echoportal

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/dashboard"
	"github.com/trezcool/classroom/core/leaderboard"
	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/services/backend"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errPageNotFound = echo.NewHTTPError(http.StatusNotFound, "page not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch cause {
		case dashboard.ErrAssignmentNotFound, dashboard.ErrStudentNotFound:
			code, message = http.StatusNotFound, err.Error()
		case dashboard.ErrInvalidTransition, assignment.ErrUnknownColumn, leaderboard.ErrUnknownColumn:
			code, message = http.StatusBadRequest, err.Error()
		case user.ErrUnknownRole:
			code, message = http.StatusForbidden, err.Error()
		}

		if code == 0 {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
				if code == http.StatusNotFound && origErr.Message == echo.ErrNotFound.Message {
					message = errPageNotFound.Message
				}
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			case *backend.APIError:
				// client errors are the visitor's; anything else is the backend's fault
				code = origErr.StatusCode
				if code < http.StatusBadRequest || code >= http.StatusInternalServerError {
					code = http.StatusBadGateway
				}
				message = origErr.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				args := []interface{}{errors.Wrap(err, msg)}
				if rs, sErr := getSession(ctx); sErr == nil {
					if usr := rs.store.User(); usr != nil {
						args = append(args, *usr)
					}
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

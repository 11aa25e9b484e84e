package echoportal

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/classroom/core"
)

// Response wraps every successful payload with the notifications raised while serving it.
type Response struct {
	Data          interface{}         `json:"data"`
	Notifications []core.Notification `json:"notifications"`
}

// Redirect is the payload of actions after which the visitor should navigate away.
type Redirect struct {
	RedirectTo string `json:"redirectTo"`
}

func respond(ctx echo.Context, code int, rs *requestSession, data interface{}) error {
	notes := []core.Notification{}
	if rs != nil {
		notes = rs.notes.Drain()
	}
	return ctx.JSON(code, Response{Data: data, Notifications: notes})
}

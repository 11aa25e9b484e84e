package echoportal

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/dashboard"
	"github.com/trezcool/classroom/core/teacher"
)

func (s *server) registerDashboardRoutes() {
	sess, gate := s.sessionMiddleware, s.gateMiddleware
	s.app.GET("/", s.home, sess, gate)
	s.app.GET("/me", s.me, sess, gate)

	// teacher
	s.app.POST("/assignments", s.createAssignment, sess, gate)
	s.app.PUT("/assignments/:id", s.editAssignment, sess, gate)
	s.app.GET("/students/:id/report", s.studentReport, sess, gate)

	// student
	s.app.POST("/submissions", s.submit, sess, gate)

	// admin
	s.app.PATCH("/teachers/:id/approve", s.setTeacherStatus(teacher.StatusApproved), sess, gate)
	s.app.PATCH("/teachers/:id/reject", s.setTeacherStatus(teacher.StatusRejected), sess, gate)

	// rejected teacher
	s.app.DELETE("/account", s.deleteAccount, sess, gate)
}

// home renders the dashboard of the session user's role.
func (s *server) home(ctx echo.Context) error {
	d, rs, err := s.homeOf(ctx)
	if err != nil {
		return err
	}

	var f dashboard.Filter
	if err = ctx.Bind(&f); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	if err = d.Load(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	view, err := d.View(f)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rs, view)
}

func (s *server) me(ctx echo.Context) error {
	rs, err := getSession(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rs, rs.store.Snapshot())
}

func (s *server) createAssignment(ctx echo.Context) error {
	d, rs, err := dashboardAs[*dashboard.Teacher](s, ctx)
	if err != nil {
		return err
	}

	var draft assignment.Draft
	if err = ctx.Bind(&draft); err != nil {
		return errors.Wrap(err, "binding to assignment.Draft")
	}
	created, err := d.CreateAssignment(ctx.Request().Context(), draft)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return respond(ctx, http.StatusCreated, rs, created)
}

func (s *server) editAssignment(ctx echo.Context) error {
	d, rs, err := dashboardAs[*dashboard.Teacher](s, ctx)
	if err != nil {
		return err
	}

	var draft assignment.Draft
	if err = ctx.Bind(&draft); err != nil {
		return errors.Wrap(err, "binding to assignment.Draft")
	}
	updated, err := d.EditAssignment(ctx.Request().Context(), ctx.Param("id"), draft)
	if err != nil {
		return errors.Wrap(err, "editing assignment")
	}
	return respond(ctx, http.StatusOK, rs, updated)
}

func (s *server) studentReport(ctx echo.Context) error {
	d, rs, err := dashboardAs[*dashboard.Teacher](s, ctx)
	if err != nil {
		return err
	}
	if err = d.Load(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	report, err := d.Report(ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rs, report)
}

type submitRequest struct {
	AssignmentID string `json:"assignmentId"`
	GitHubLink   string `json:"githubLink"`
}

func (s *server) submit(ctx echo.Context) error {
	d, rs, err := dashboardAs[*dashboard.Student](s, ctx)
	if err != nil {
		return err
	}

	var data submitRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to submitRequest")
	}
	sub, err := d.Submit(ctx.Request().Context(), data.AssignmentID, data.GitHubLink)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return respond(ctx, http.StatusCreated, rs, sub)
}

type teacherStatusResponse struct {
	ID     string         `json:"id"`
	Status teacher.Status `json:"status"`
}

func (s *server) setTeacherStatus(status teacher.Status) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		d, rs, err := dashboardAs[*dashboard.Admin](s, ctx)
		if err != nil {
			return err
		}

		id := ctx.Param("id")
		if err = d.SetStatus(ctx.Request().Context(), id, status); err != nil {
			return errors.Wrapf(err, "setting teacher status to %s", status)
		}
		return respond(ctx, http.StatusOK, rs, teacherStatusResponse{ID: id, Status: status})
	}
}

func (s *server) deleteAccount(ctx echo.Context) error {
	d, rs, err := dashboardAs[*dashboard.Rejected](s, ctx)
	if err != nil {
		return err
	}

	redirectTo, err := d.DeleteAccount(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "deleting account")
	}
	s.endSession(ctx)
	return respond(ctx, http.StatusOK, rs, Redirect{RedirectTo: redirectTo})
}

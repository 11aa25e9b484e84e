package echoportal

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/leaderboard"
)

const (
	scopeDaily   = "daily"
	scopeAllTime = "all-time"
)

type leaderboardQuery struct {
	leaderboard.Query
	Scope string `query:"scope"`
	Date  string `query:"date"`
}

// leaderboard renders a page of the daily (default) or all-time leaderboard.
func (s *server) leaderboard(ctx echo.Context) error {
	var q leaderboardQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to leaderboardQuery")
	}

	var err error
	if q.FilterBy, err = leaderboard.ParseColumn(string(q.FilterBy), leaderboard.ColumnEmail); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "filterBy", Error: err.Error()})
	}
	if q.SortBy != "" {
		if q.SortBy, err = leaderboard.ParseColumn(string(q.SortBy), leaderboard.ColumnRank); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "sortBy", Error: err.Error()})
		}
	}

	api := s.deps.Backend
	reqCtx := ctx.Request().Context()
	var rows []leaderboard.Row

	switch core.CleanString(q.Scope, true) {
	case "", scopeDaily:
		day := s.deps.Now()
		if q.Date != "" {
			if day, err = time.ParseInLocation(leaderboard.DateLayout, q.Date, time.Local); err != nil {
				return core.NewValidationError(err, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
			}
		}
		subs, err := api.GetDateSpecificLeaderboard(reqCtx, day)
		if err != nil {
			return errors.Wrap(err, "fetching daily leaderboard")
		}
		rows = leaderboard.FromSubmissions(subs)
	case scopeAllTime:
		entries, err := api.GetAllTimeLeaderboard(reqCtx)
		if err != nil {
			return errors.Wrap(err, "fetching all-time leaderboard")
		}
		rows = leaderboard.FromAllTime(entries)
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "scope", Error: "scope must be one of daily, all-time"})
	}

	rs, _ := getSession(ctx)
	return respond(ctx, http.StatusOK, rs, leaderboard.Apply(rows, q.Query))
}

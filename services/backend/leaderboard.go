package backend

import (
	"context"
	"time"

	"github.com/trezcool/classroom/core/leaderboard"
	"github.com/trezcool/classroom/core/submission"
)

const (
	routeLeaderboard        = "/api/v1/leaderboard"
	routeAllTimeLeaderboard = "/api/v1/leaderboard/all-time"
)

// GetDateSpecificLeaderboard returns the graded submissions of the local day of `date`.
func (c *Client) GetDateSpecificLeaderboard(ctx context.Context, date time.Time) ([]submission.Submission, error) {
	return getList[submission.Submission](ctx, c, call{
		route: routeLeaderboard,
		query: map[string]string{"date": leaderboard.FormatDate(date.Local())},
	}, "")
}

func (c *Client) GetAllTimeLeaderboard(ctx context.Context) ([]leaderboard.AllTimeEntry, error) {
	return getList[leaderboard.AllTimeEntry](ctx, c, call{route: routeAllTimeLeaderboard}, "")
}

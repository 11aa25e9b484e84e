package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/classroom/core/submission"
)

const (
	routeStudents        = "/api/v1/student"
	routeSubmissions     = "/api/v1/submission"
	routeGradeSubmission = "/api/v1/submission/grade"
)

func (c *Client) GetAllStudents(ctx context.Context) ([]submission.Student, error) {
	return getList[submission.Student](ctx, c, call{route: routeStudents, auth: true}, "unable to fetch all students")
}

func (c *Client) GetAllSubmissions(ctx context.Context) ([]submission.Submission, error) {
	return getList[submission.Submission](ctx, c, call{route: routeSubmissions, auth: true}, "unable to fetch student submissions")
}

// CreateAndGradeSubmission submits a GitHub repository and returns the graded submission.
func (c *Client) CreateAndGradeSubmission(ctx context.Context, draft submission.Draft) (submission.Submission, error) {
	resp, err := c.do(ctx, call{method: http.MethodPost, route: routeGradeSubmission, auth: true, body: draft})
	if err != nil {
		return submission.Submission{}, err
	}
	var sub submission.Submission
	if err = decode(resp.Body(), &sub, ""); err != nil {
		return submission.Submission{}, err
	}
	return sub, nil
}

package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
)

const (
	routeAssignment      = "/api/v1/assignment"
	routeAssignmentByID  = "/api/v1/assignment/{id}"
	routeAssignmentsData = "/api/v1/assignments"
	routeMyAssignments   = "/api/v1/student/assignments"
)

type assignmentPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"dueDate"`
	TotalScore  float64 `json:"totalScore"`
}

func newAssignmentPayload(d assignment.Draft) assignmentPayload {
	p := assignmentPayload{Title: d.Title, Description: d.Description, TotalScore: d.TotalScore}
	if d.DueDate != nil {
		p.DueDate = core.NewTimestamp(*d.DueDate).ISO()
	}
	return p
}

// GetAllAssignments lists the assignments of the current teacher.
func (c *Client) GetAllAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	return getList[assignment.Assignment](ctx, c, call{route: routeAssignment, auth: true}, "")
}

func (c *Client) CreateAssignment(ctx context.Context, draft assignment.Draft) (assignment.Assignment, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  routeAssignment,
		auth:   true,
		body:   newAssignmentPayload(draft),
	})
	if err != nil {
		return assignment.Assignment{}, err
	}
	var a assignment.Assignment
	if err = decode(resp.Body(), &a, ""); err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

// EditAssignment replaces the editable fields of the assignment `a.ID`.
func (c *Client) EditAssignment(ctx context.Context, a assignment.Assignment) error {
	_, err := c.do(ctx, call{
		method: http.MethodPut,
		route:  routeAssignmentByID,
		path:   map[string]string{"id": a.ID},
		auth:   true,
		body:   newAssignmentPayload(a.Draft()),
	})
	return err
}

// GetAssignmentsData returns the raw `data` of the aggregated assignments endpoint.
func (c *Client) GetAssignmentsData(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.do(ctx, call{method: http.MethodGet, route: routeAssignmentsData, auth: true})
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	if err = decode(resp.Body(), &data, ""); err != nil {
		return nil, err
	}
	return data, nil
}

// GetAssignments lists the assignments of the current student along with their progress.
func (c *Client) GetAssignments(ctx context.Context) ([]assignment.StudentAssignment, error) {
	return getList[assignment.StudentAssignment](ctx, c, call{route: routeMyAssignments, auth: true}, "")
}

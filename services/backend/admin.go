package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/classroom/core/teacher"
)

const (
	routeTeacherStatus  = "/api/v1/admin/all-teacher-status"
	routeApproveTeacher = "/api/v1/admin/approve/{id}"
	routeRejectTeacher  = "/api/v1/admin/reject/{id}"
)

func (c *Client) GetAllTeacherStatus(ctx context.Context) ([]teacher.Application, error) {
	return getList[teacher.Application](ctx, c, call{route: routeTeacherStatus, auth: true}, "")
}

func (c *Client) ApproveTeacher(ctx context.Context, id string) error {
	return c.patchTeacher(ctx, routeApproveTeacher, id)
}

func (c *Client) RejectTeacher(ctx context.Context, id string) error {
	return c.patchTeacher(ctx, routeRejectTeacher, id)
}

func (c *Client) patchTeacher(ctx context.Context, route, id string) error {
	_, err := c.do(ctx, call{
		method: http.MethodPatch,
		route:  route,
		path:   map[string]string{"id": id},
		auth:   true,
		body:   struct{}{},
	})
	return err
}

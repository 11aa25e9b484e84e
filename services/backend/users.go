package backend

import (
	"context"
	"net/http"

	"github.com/trezcool/classroom/core/user"
)

const (
	routeRegister = "/api/v1/auth/register"
	routeLogin    = "/api/v1/auth/login"
	routeMe       = "/api/v1/auth/me"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// RegisterUser creates an account and returns its bearer token.
func (c *Client) RegisterUser(ctx context.Context, reg user.Registration) (string, error) {
	resp, err := c.do(ctx, call{method: http.MethodPost, route: routeRegister, body: reg})
	if err != nil {
		return "", err
	}
	var out tokenResponse
	if err = decode(resp.Body(), &out, ""); err != nil {
		return "", err
	}
	return out.Token, nil
}

// LoginUser exchanges credentials for a bearer token.
func (c *Client) LoginUser(ctx context.Context, creds user.Credentials) (string, error) {
	resp, err := c.do(ctx, call{method: http.MethodPost, route: routeLogin, body: creds})
	if err != nil {
		return "", err
	}
	var out tokenResponse
	if err = decode(resp.Body(), &out, ""); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GetCurrentUser returns the user the bearer token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (user.User, error) {
	resp, err := c.do(ctx, call{method: http.MethodGet, route: routeMe, auth: true})
	if err != nil {
		return user.User{}, err
	}
	var usr user.User
	if err = decode(resp.Body(), &usr, ""); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

// DeleteUser deletes the account of the current user.
func (c *Client) DeleteUser(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, route: routeMe, auth: true})
	return err
}

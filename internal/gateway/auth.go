package gateway

import (
	"context"
	"net/http"

	"github.com/nhle/taskboard/internal/model"
)

// SignIn exchanges credentials for a bearer token. A 401 here means bad
// credentials and leaves the session untouched.
func (c *Client) SignIn(ctx context.Context, username, password string) (SignInResponse, error) {
	var resp SignInResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/signin",
		body:      SignInRequest{Username: username, Password: password},
		anonymous: true,
	}, &resp)
	return resp, err
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, in SignUpRequest) (MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/signup",
		body:      in,
		anonymous: true,
	}, &resp)
	return resp, err
}

// CurrentUser returns the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.get(ctx, "/users/me", &u)
	return u, err
}

// ListUsers returns every user visible to the caller.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.get(ctx, "/users", &users)
	return users, err
}

// Ping checks that the backend answers at all. Any HTTP response counts,
// including 401; only transport failures are returned.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/users/me",
		anonymous: true,
	}, nil)
	if err != nil && statusOf(err) == 0 {
		return err
	}
	return nil
}

package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nhle/taskboard/internal/model"
)

// ListProjects returns the projects the caller can access.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := c.get(ctx, "/projects", &projects)
	return projects, err
}

// SearchProjects returns accessible projects whose name matches name.
func (c *Client) SearchProjects(ctx context.Context, name string) ([]model.Project, error) {
	var projects []model.Project
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/projects/search",
		query:  url.Values{"name": {name}},
	}, &projects)
	return projects, err
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id int64) (model.Project, error) {
	var p model.Project
	err := c.get(ctx, idPath("/projects/%d", id), &p)
	return p, err
}

// CreateProject creates a project owned by the caller.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (model.Project, error) {
	var p model.Project
	err := c.post(ctx, "/projects", in, &p)
	return p, err
}

// UpdateProject replaces a project's editable fields.
func (c *Client) UpdateProject(ctx context.Context, id int64, in ProjectInput) (model.Project, error) {
	var p model.Project
	err := c.put(ctx, idPath("/projects/%d", id), in, &p)
	return p, err
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/projects/%d", id))
}

package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nhle/taskboard/internal/model"
)

// ListTasks returns every task the caller can see.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := c.get(ctx, "/tasks", &tasks)
	return tasks, err
}

// ListProjectTasks returns the tasks of one project.
func (c *Client) ListProjectTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	var tasks []model.Task
	err := c.get(ctx, idPath("/tasks/project/%d", projectID), &tasks)
	return tasks, err
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := c.get(ctx, idPath("/tasks/%d", id), &t)
	return t, err
}

// CreateTask creates a task in in.Project.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	var t model.Task
	err := c.post(ctx, "/tasks", in, &t)
	return t, err
}

// UpdateTask replaces a task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskInput) (model.Task, error) {
	var t model.Task
	err := c.put(ctx, idPath("/tasks/%d", id), in, &t)
	return t, err
}

// UpdateTaskStatus sets a task's status and returns the task as stored.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status model.TaskStatus) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   idPath("/tasks/%d/status", id),
		query:  url.Values{"status": {string(status)}},
		body:   struct{}{},
	}, &t)
	return t, err
}

// AssignTask assigns a task to userID, or unassigns it when userID is 0.
func (c *Client) AssignTask(ctx context.Context, id, userID int64) (model.Task, error) {
	body := assignRequest{}
	if userID != 0 {
		body.AssignedUserID = &userID
	}
	var t model.Task
	err := c.put(ctx, idPath("/tasks/%d/assign", id), body, &t)
	return t, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/tasks/%d", id))
}

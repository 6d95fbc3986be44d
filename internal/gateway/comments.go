package gateway

import (
	"context"

	"github.com/nhle/taskboard/internal/model"
)

// ListComments returns a task's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, taskID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := c.get(ctx, idPath("/tasks/%d/comments", taskID), &comments)
	return comments, err
}

// CreateComment adds a comment to a task.
func (c *Client) CreateComment(ctx context.Context, taskID int64, content string) (model.Comment, error) {
	var cm model.Comment
	err := c.post(ctx, idPath("/tasks/%d/comments", taskID), CommentInput{Content: content}, &cm)
	return cm, err
}

// UpdateComment edits a comment's content.
func (c *Client) UpdateComment(ctx context.Context, taskID, commentID int64, content string) (model.Comment, error) {
	var cm model.Comment
	err := c.put(ctx, idPath("/tasks/%d/comments/%d", taskID, commentID), CommentInput{Content: content}, &cm)
	return cm, err
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, taskID, commentID int64) error {
	return c.delete(ctx, idPath("/tasks/%d/comments/%d", taskID, commentID))
}

// ListChecklist returns a task's checklist items.
func (c *Client) ListChecklist(ctx context.Context, taskID int64) ([]model.ChecklistItem, error) {
	var items []model.ChecklistItem
	err := c.get(ctx, idPath("/tasks/%d/checklist", taskID), &items)
	return items, err
}

// CreateChecklistItem appends an item to a task's checklist.
func (c *Client) CreateChecklistItem(ctx context.Context, taskID int64, description string) (model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := c.post(ctx, idPath("/tasks/%d/checklist", taskID), ChecklistItemInput{Description: description}, &item)
	return item, err
}

// UpdateChecklistItem edits an item's description.
func (c *Client) UpdateChecklistItem(ctx context.Context, taskID, itemID int64, description string) (model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := c.put(ctx, idPath("/tasks/%d/checklist/%d", taskID, itemID), ChecklistItemInput{Description: description}, &item)
	return item, err
}

// ToggleChecklistItem flips an item's completed flag.
func (c *Client) ToggleChecklistItem(ctx context.Context, taskID, itemID int64) (model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := c.put(ctx, idPath("/tasks/%d/checklist/%d/toggle", taskID, itemID), struct{}{}, &item)
	return item, err
}

// DeleteChecklistItem removes an item.
func (c *Client) DeleteChecklistItem(ctx context.Context, taskID, itemID int64) error {
	return c.delete(ctx, idPath("/tasks/%d/checklist/%d", taskID, itemID))
}

// ChecklistStats returns a task's checklist totals.
func (c *Client) ChecklistStats(ctx context.Context, taskID int64) (model.ChecklistStats, error) {
	var stats model.ChecklistStats
	err := c.get(ctx, idPath("/tasks/%d/checklist/stats", taskID), &stats)
	return stats, err
}

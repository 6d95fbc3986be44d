package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// ErrNoSnapshot is returned by LoadSnapshot before the first save.
var ErrNoSnapshot = errors.New("no cached snapshot")

// TaskFilter narrows cached task queries. Zero values match everything.
type TaskFilter struct {
	ProjectID  int64
	AssigneeID int64
	Status     *model.TaskStatus
	Query      string
}

// Store keeps the last complete snapshot for offline use.
type Store interface {
	// SaveSnapshot replaces the cached snapshot atomically.
	SaveSnapshot(ctx context.Context, snap board.Snapshot, baseURL string) error

	// LoadSnapshot returns the cached snapshot, in the order it was
	// fetched, and the base URL it came from.
	LoadSnapshot(ctx context.Context) (board.Snapshot, string, error)

	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)

	Close() error
}

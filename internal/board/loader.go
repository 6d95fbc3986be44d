package board

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/model"
)

// Source is the subset of the gateway a full load needs.
type Source interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}

// Snapshot is one complete, consistent fetch of the backend state.
type Snapshot struct {
	Tasks     []model.Task
	Users     []model.User
	Projects  []model.Project
	FetchedAt time.Time
}

// Loader fetches tasks, users and projects as a single unit.
type Loader struct {
	src Source
	now func() time.Time
}

// NewLoader creates a Loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src, now: time.Now}
}

// LoadAll fetches the three collections concurrently. It returns either
// all of them or an error; a partial snapshot is never returned. The
// first failure cancels the remaining requests.
func (l *Loader) LoadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := l.src.ListTasks(gctx)
		if err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		users, err := l.src.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("loading users: %w", err)
		}
		snap.Users = users
		return nil
	})
	g.Go(func() error {
		projects, err := l.src.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("loading projects: %w", err)
		}
		snap.Projects = projects
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snap.FetchedAt = l.now()
	log.WithFields(log.Fields{
		"tasks":    len(snap.Tasks),
		"users":    len(snap.Users),
		"projects": len(snap.Projects),
	}).Debug("full load complete")
	return snap, nil
}

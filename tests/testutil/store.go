// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Snapshot returns a small, fixed snapshot: two users, two projects and
// five tasks, one of them carrying a legacy status label. Times are whole
// seconds in the local zone so they survive a JSON round trip.
func Snapshot(now time.Time) board.Snapshot {
	now = now.Local().Truncate(time.Second)
	ana := model.User{ID: 1, Username: "ana", FullName: "Ana Lima", IsActive: true}
	rui := model.User{ID: 2, Username: "rui", Email: "rui@example.com", IsActive: true}
	site := model.Project{ID: 10, Name: "Site", Status: model.ProjectActive, CreatedBy: &ana}
	app := model.Project{ID: 20, Name: "App", Status: model.ProjectPlanning, CreatedBy: &rui}

	at := func(d time.Duration) model.Timestamp {
		return model.Timestamp{Time: now.Add(d)}
	}
	due := func(d time.Duration) *model.Timestamp {
		ts := at(d)
		return &ts
	}

	return board.Snapshot{
		Users:    []model.User{ana, rui},
		Projects: []model.Project{site, app},
		Tasks: []model.Task{
			{ID: 101, Title: "Layout", Status: model.StatusDone, Priority: model.PriorityHigh, Project: &site, AssignedUser: &ana, CreatedAt: at(-72 * time.Hour)},
			{ID: 102, Title: "Textos", Status: model.StatusInProgress, Priority: model.PriorityMedium, Project: &site, AssignedUser: &ana, DueDate: due(-24 * time.Hour), CreatedAt: at(-48 * time.Hour)},
			{ID: 103, Title: "Contato", Status: "Em Revisão", Priority: model.PriorityUrgent, Project: &site, AssignedUser: &rui, CreatedAt: at(-24 * time.Hour)},
			{ID: 201, Title: "Requisitos", Status: model.StatusBacklog, Priority: model.PriorityLow, Project: &app, DueDate: due(48 * time.Hour), CreatedAt: at(-2 * time.Hour)},
			{ID: 202, Title: "Protótipo", Status: model.StatusReadyToDevelop, Priority: model.PriorityHigh, Project: &app, AssignedUser: &ana, CreatedAt: at(-time.Hour)},
		},
		FetchedAt: now,
	}
}

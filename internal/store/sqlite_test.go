package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func TestLoadSnapshotBeforeSave(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, _, err := s.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	snap := testutil.Snapshot(time.Now())

	require.NoError(t, s.SaveSnapshot(ctx, snap, "http://localhost:8080/api"))

	got, baseURL, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", baseURL)
	assert.True(t, snap.FetchedAt.Equal(got.FetchedAt))
	require.Len(t, got.Tasks, len(snap.Tasks))
	for i := range snap.Tasks {
		assert.Equal(t, snap.Tasks[i].ID, got.Tasks[i].ID)
		assert.Equal(t, snap.Tasks[i].Status, got.Tasks[i].Status)
		assert.Equal(t, snap.Tasks[i].ProjectID(), got.Tasks[i].ProjectID())
		assert.Equal(t, snap.Tasks[i].HasDueDate(), got.Tasks[i].HasDueDate())
	}
	assert.Equal(t, "Ana Lima", got.Users[0].DisplayName())
	assert.Equal(t, []string{"Site", "App"}, []string{got.Projects[0].Name, got.Projects[1].Name})
	assert.True(t, snap.Tasks[1].DueDate.Equal(got.Tasks[1].DueDate.Time))
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	first := testutil.Snapshot(time.Now())
	require.NoError(t, s.SaveSnapshot(ctx, first, ""))

	second := board.Snapshot{
		Tasks:     []model.Task{{ID: 9, Title: "Única", Status: model.StatusBacklog}},
		FetchedAt: time.Now(),
	}
	require.NoError(t, s.SaveSnapshot(ctx, second, ""))

	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, int64(9), got.Tasks[0].ID)
	assert.Empty(t, got.Users)
	assert.Empty(t, got.Projects)
}

func TestSaveSnapshotKeepsDuplicateTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	dup := model.Task{ID: 1, Title: "dup", Status: model.StatusBacklog}

	require.NoError(t, s.SaveSnapshot(ctx, board.Snapshot{Tasks: []model.Task{dup, dup}, FetchedAt: time.Now()}, ""))

	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 2)
}

func TestGetTasksFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSnapshot(ctx, testutil.Snapshot(time.Now()), ""))

	byProject, err := s.GetTasks(ctx, store.TaskFilter{ProjectID: 20})
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	done := model.StatusDone
	byStatus, err := s.GetTasks(ctx, store.TaskFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, int64(101), byStatus[0].ID)

	mine, err := s.GetTasks(ctx, store.TaskFilter{AssigneeID: 1, Query: "Prot"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(202), mine[0].ID)

	all, err := s.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot(ctx, testutil.Snapshot(time.Now()), ""))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 5)
}

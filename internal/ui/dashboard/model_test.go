package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui"
)

type stubLoader struct {
	snap board.Snapshot
	err  error
}

func (s stubLoader) LoadAll(ctx context.Context) (board.Snapshot, error) {
	return s.snap, s.err
}

func snapshot(now time.Time) board.Snapshot {
	me := &model.User{ID: 7}
	past := model.NewTimestamp(now.Add(-48 * time.Hour))
	return board.Snapshot{
		Tasks: []model.Task{
			{ID: 1, Status: model.StatusDone, AssignedUser: me},
			{ID: 2, Status: model.StatusInProgress, AssignedUser: me, DueDate: past},
			{ID: 3, Status: "Em Revisão"},
			{ID: 4, Status: model.StatusBacklog},
		},
		Projects: []model.Project{{ID: 1, Status: model.ProjectActive}, {ID: 2, Status: model.ProjectCompleted}},
	}
}

func newDashboard(l Loader) Model {
	m := New(l, func() int64 { return 7 }, keys.DefaultKeyMap(), 100, 30)
	return m
}

func TestLoadComputesAggregates(t *testing.T) {
	now := time.Now()
	m := newDashboard(stubLoader{snap: snapshot(now)})

	cmd := m.Init()
	m, _ = m.Update(cmd())

	assert.False(t, m.loading)
	assert.Equal(t, 4, m.summary.Total)
	assert.Equal(t, 1, m.summary.Completed)
	assert.Equal(t, 2, m.summary.InProgress)
	assert.Equal(t, 1, m.summary.Pending)
	assert.Equal(t, 1, m.summary.Overdue)
	assert.Equal(t, 2, m.summary.Mine)
	assert.Equal(t, 2, m.projects.Total)
	assert.Equal(t, 1, m.projects.Active)
	assert.Contains(t, m.View(), "25%")
}

func TestStaleLoadIsIgnored(t *testing.T) {
	m := newDashboard(stubLoader{snap: snapshot(time.Now())})

	stale := m.Init()()
	_ = m.Init()
	m, _ = m.Update(stale)

	assert.True(t, m.loading)
	assert.Zero(t, m.summary.Total)
}

func TestLoadErrorIsShown(t *testing.T) {
	m := newDashboard(stubLoader{err: errors.New("connection refused")})

	m, _ = m.Update(m.Init()())
	assert.NotEmpty(t, m.err)
	assert.False(t, m.loading)
}

func TestEnterOpensSelectedTask(t *testing.T) {
	m := newDashboard(stubLoader{})
	m.SetSnapshot(snapshot(time.Now()))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(ui.OpenTaskMsg)
	require.True(t, ok)
	assert.Equal(t, m.mine[0].ID, msg.ID)
}

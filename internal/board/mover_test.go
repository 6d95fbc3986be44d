package board

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

type fakeUpdater struct {
	calls  []model.TaskStatus
	err    error
	status model.TaskStatus
}

func (f *fakeUpdater) UpdateTaskStatus(_ context.Context, id int64, status model.TaskStatus) (model.Task, error) {
	f.calls = append(f.calls, status)
	if f.err != nil {
		return model.Task{}, f.err
	}
	if f.status != "" {
		status = f.status
	}
	return model.Task{ID: id, Status: status}, nil
}

type fakeReloader struct {
	snap  Snapshot
	err   error
	calls int
}

func (f *fakeReloader) LoadAll(context.Context) (Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func seededMover(t *testing.T, up *fakeUpdater, rl *fakeReloader) *Mover {
	t.Helper()
	m := NewMover(DefaultLayout(), up, rl)
	m.Replace([]model.Task{
		task(1, model.StatusBacklog),
		task(2, model.StatusBacklog),
		task(3, model.StatusBacklog),
		task(4, model.StatusInProgress),
	})
	return m
}

func statuses(b Board) map[int64]model.TaskStatus {
	out := map[int64]model.TaskStatus{}
	for _, tk := range b.Flatten() {
		out[tk.ID] = tk.Status
	}
	return out
}

func TestDropReorderWithinColumn(t *testing.T) {
	up := &fakeUpdater{}
	m := seededMover(t, up, &fakeReloader{})
	before := statuses(m.Board())

	b, err := m.Drop(context.Background(), Drop{Source: 0, Target: 0, SourceIndex: 0, TargetIndex: 2, TaskID: 1})
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3, 1}, ids(b.Columns[0].Tasks))
	assert.Equal(t, before, statuses(b))
	assert.Empty(t, up.calls)
	assert.False(t, m.InFlight())
}

func TestDropReorderClampsTargetIndex(t *testing.T) {
	m := seededMover(t, &fakeUpdater{}, &fakeReloader{})

	b, err := m.Drop(context.Background(), Drop{Source: 0, Target: 0, SourceIndex: 2, TargetIndex: -5, TaskID: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids(b.Columns[0].Tasks))

	b, err = m.Drop(context.Background(), Drop{Source: 0, Target: 0, SourceIndex: 0, TargetIndex: 99, TaskID: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(b.Columns[0].Tasks))
}

func TestDropAcrossColumnsAdoptsServerStatus(t *testing.T) {
	up := &fakeUpdater{}
	m := seededMover(t, up, &fakeReloader{})
	before := statuses(m.Board())

	b, err := m.Drop(context.Background(), Drop{Source: 0, Target: 2, SourceIndex: 1, TargetIndex: 0, TaskID: 2})
	require.NoError(t, err)

	assert.Equal(t, []model.TaskStatus{model.StatusInProgress}, up.calls)
	assert.Equal(t, []int64{1, 3}, ids(b.Columns[0].Tasks))
	assert.Equal(t, []int64{2, 4}, ids(b.Columns[2].Tasks))

	after := statuses(b)
	changed := 0
	for id, s := range after {
		if before[id] != s {
			changed++
			assert.Equal(t, int64(2), id)
			assert.Equal(t, model.StatusInProgress, s)
		}
	}
	assert.Equal(t, 1, changed)
}

func TestDropServerReturnsDifferentStatus(t *testing.T) {
	up := &fakeUpdater{status: model.StatusInReview}
	m := seededMover(t, up, &fakeReloader{})

	b, err := m.Drop(context.Background(), Drop{Source: 0, Target: 2, SourceIndex: 0, TargetIndex: 0, TaskID: 1})
	require.NoError(t, err)

	assert.Equal(t, []int64{4}, ids(b.Columns[2].Tasks))
	require.Len(t, b.Columns[3].Tasks, 1)
	assert.Equal(t, model.StatusInReview, b.Columns[3].Tasks[0].Status)
}

func TestDropFailureTriggersFullReload(t *testing.T) {
	up := &fakeUpdater{err: errors.New("boom")}
	rl := &fakeReloader{snap: Snapshot{Tasks: []model.Task{
		task(1, model.StatusBacklog),
		task(2, model.StatusDone),
		task(3, model.StatusBacklog),
		task(4, model.StatusInProgress),
	}}}
	m := seededMover(t, up, rl)

	p, err := m.Apply(Drop{Source: 0, Target: 2, SourceIndex: 0, TargetIndex: 0, TaskID: 1})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []int64{1, 4}, ids(m.Board().Columns[2].Tasks), "optimistic move is visible")
	m.Fail(p)

	b, err := m.Drop(context.Background(), Drop{Source: 2, Target: 4, SourceIndex: 0, TargetIndex: 0, TaskID: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, rl.calls)

	for _, col := range b.Columns {
		for _, tk := range col.Tasks {
			assert.Equal(t, col.Key, tk.Status)
		}
	}
	assert.Equal(t, []int64{1, 3}, ids(b.Columns[0].Tasks))
	assert.Equal(t, []int64{2}, ids(b.Columns[4].Tasks))
	assert.False(t, m.InFlight())
}

func TestDropFailureAndReloadFailure(t *testing.T) {
	up := &fakeUpdater{err: errors.New("update failed")}
	rl := &fakeReloader{err: errors.New("network down")}
	m := seededMover(t, up, rl)

	_, err := m.Drop(context.Background(), Drop{Source: 0, Target: 1, SourceIndex: 0, TargetIndex: 0, TaskID: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "update failed")
	assert.ErrorContains(t, err, "network down")
}

func TestDropValidation(t *testing.T) {
	m := NewMover(Layout{Columns: DefaultColumns(), Unmatched: model.UnmatchedOverflow}, &fakeUpdater{}, &fakeReloader{})
	m.Replace([]model.Task{task(1, model.StatusBacklog), task(2, "LEGACY")})
	before := m.Board()

	cases := []struct {
		name string
		drop Drop
		want error
	}{
		{"overflow target", Drop{Source: 0, Target: 5, SourceIndex: 0, TaskID: 1}, ErrInvalidTarget},
		{"target out of range", Drop{Source: 0, Target: 9, SourceIndex: 0, TaskID: 1}, ErrInvalidTarget},
		{"source out of range", Drop{Source: -1, Target: 1, SourceIndex: 0, TaskID: 1}, ErrInvalidIndex},
		{"index out of range", Drop{Source: 0, Target: 1, SourceIndex: 3, TaskID: 1}, ErrInvalidIndex},
		{"wrong task", Drop{Source: 0, Target: 1, SourceIndex: 0, TaskID: 7}, ErrTaskMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Drop(context.Background(), tc.drop)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, m.Board())
		})
	}
}

func TestDropOutOfOverflowColumn(t *testing.T) {
	up := &fakeUpdater{}
	m := NewMover(Layout{Columns: DefaultColumns(), Unmatched: model.UnmatchedOverflow}, up, &fakeReloader{})
	m.Replace([]model.Task{task(2, "LEGACY")})

	b, err := m.Drop(context.Background(), Drop{Source: 5, Target: 0, SourceIndex: 0, TargetIndex: 0, TaskID: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(b.Columns[0].Tasks))
	assert.Empty(t, b.Columns[5].Tasks)
}

func TestDropReorderWithinOverflowColumn(t *testing.T) {
	up := &fakeUpdater{}
	m := NewMover(Layout{Columns: DefaultColumns(), Unmatched: model.UnmatchedOverflow}, up, &fakeReloader{})
	m.Replace([]model.Task{task(2, "LEGACY"), task(3, "OTHER")})

	b, err := m.Drop(context.Background(), Drop{Source: 5, Target: 5, SourceIndex: 0, TargetIndex: 1, TaskID: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids(b.Columns[5].Tasks))
	assert.Empty(t, up.calls)
	assert.False(t, m.InFlight())
}

func TestSettleReportsOutcome(t *testing.T) {
	up := &fakeUpdater{}
	m := seededMover(t, up, &fakeReloader{})

	p, err := m.Apply(Drop{Source: 0, Target: 2, SourceIndex: 0, TargetIndex: 0, TaskID: 1})
	require.NoError(t, err)
	s, err := m.Settle(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, s.Task)
	assert.Equal(t, model.StatusInProgress, s.Task.Status)
	assert.Nil(t, s.Reload)

	up.err = errors.New("boom")
	rl := &fakeReloader{snap: Snapshot{Tasks: []model.Task{task(1, model.StatusDone)}}}
	m = seededMover(t, up, rl)
	p, err = m.Apply(Drop{Source: 0, Target: 2, SourceIndex: 0, TargetIndex: 0, TaskID: 1})
	require.NoError(t, err)
	s, err = m.Settle(context.Background(), p)
	require.Error(t, err)
	assert.Nil(t, s.Task)
	require.NotNil(t, s.Reload)
	assert.Equal(t, rl.snap.Tasks, s.Reload.Tasks)
	assert.Equal(t, []int64{1}, ids(s.Board.Columns[4].Tasks))
}

func TestApplyRejectsConcurrentMove(t *testing.T) {
	m := seededMover(t, &fakeUpdater{}, &fakeReloader{})

	p, err := m.Apply(Drop{Source: 0, Target: 1, SourceIndex: 0, TaskID: 1})
	require.NoError(t, err)
	assert.True(t, m.InFlight())

	_, err = m.Apply(Drop{Source: 0, Target: 0, SourceIndex: 0, TargetIndex: 1, TaskID: 2})
	assert.ErrorIs(t, err, ErrDropInFlight)

	m.Commit(&Pending{TaskID: 1}, model.Task{Status: model.StatusDone})
	assert.True(t, m.InFlight(), "a stale pending must not finish the current move")

	m.Commit(p, model.Task{ID: 1, Status: model.StatusReadyToDevelop})
	assert.False(t, m.InFlight())
	assert.Equal(t, []int64{1}, ids(m.Board().Columns[1].Tasks))
}

func TestBoardReturnsCopy(t *testing.T) {
	m := seededMover(t, &fakeUpdater{}, &fakeReloader{})

	b := m.Board()
	b.Columns[0].Tasks[0].Status = model.StatusDone
	b.Columns[0].Tasks = nil

	fresh := m.Board()
	assert.Equal(t, model.StatusBacklog, fresh.Columns[0].Tasks[0].Status)
	assert.Len(t, fresh.Columns[0].Tasks, 3)
}

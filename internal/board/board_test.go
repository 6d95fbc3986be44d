package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func task(id int64, status model.TaskStatus) model.Task {
	return model.Task{ID: id, Title: "task", Status: status}
}

func ids(tasks []model.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func columnsFor(keys ...model.TaskStatus) []Column {
	cols := make([]Column, 0, len(keys))
	for i, k := range keys {
		cols = append(cols, Column{Key: k, Title: string(k), Position: i})
	}
	return cols
}

func TestReconcileLegacyAndUnknown(t *testing.T) {
	cols := columnsFor(model.StatusBacklog, model.StatusInProgress)
	tasks := []model.Task{task(1, "Em Progresso"), task(2, "UNKNOWN")}

	b := Reconcile(cols, tasks)

	require.Len(t, b.Columns, 2)
	assert.Empty(t, b.Columns[0].Tasks)
	require.Len(t, b.Columns[1].Tasks, 1)
	assert.Equal(t, int64(1), b.Columns[1].Tasks[0].ID)
	assert.Equal(t, model.StatusInProgress, b.Columns[1].Tasks[0].Status)

	_, _, found := b.Find(2)
	assert.False(t, found)
	assert.Equal(t, []int64{2}, ids(b.Dropped))
}

func TestReconcileOverflowKeepsEveryTaskVisible(t *testing.T) {
	cols := columnsFor(model.StatusBacklog, model.StatusInProgress)
	tasks := []model.Task{task(1, "Em Progresso"), task(2, "UNKNOWN"), task(3, model.StatusDone)}

	b := Reconcile(cols, tasks, WithUnmatched(model.UnmatchedOverflow))

	require.Len(t, b.Columns, 3)
	overflow := b.Columns[2]
	assert.True(t, overflow.IsOverflow())
	assert.Equal(t, OverflowTitle, overflow.Title)
	assert.Equal(t, []int64{2, 3}, ids(overflow.Tasks))
	assert.Empty(t, b.Dropped)
	assert.Equal(t, len(tasks), b.Count())
}

func TestReconcileStablePartition(t *testing.T) {
	tasks := []model.Task{
		task(5, model.StatusDone),
		task(1, model.StatusBacklog),
		task(4, model.StatusDone),
		task(2, model.StatusBacklog),
		task(3, "Concluído"),
	}

	b := Reconcile(DefaultColumns(), tasks)

	assert.Equal(t, []int64{1, 2}, ids(b.Columns[0].Tasks))
	assert.Equal(t, []int64{5, 4, 3}, ids(b.Columns[4].Tasks))
}

func TestReconcileEmptyAndDuplicates(t *testing.T) {
	b := Reconcile(DefaultColumns(), nil)
	require.Len(t, b.Columns, 5)
	for _, col := range b.Columns {
		assert.NotNil(t, col.Tasks)
		assert.Empty(t, col.Tasks)
	}

	dup := []model.Task{task(1, model.StatusBacklog), task(1, model.StatusBacklog)}
	b = Reconcile(DefaultColumns(), dup)
	assert.Len(t, b.Columns[0].Tasks, 2)
}

func TestReconcileClearsPreviousContents(t *testing.T) {
	cols := DefaultColumns()
	cols[0].Tasks = []model.Task{task(99, model.StatusBacklog)}

	b := Reconcile(cols, []model.Task{task(1, model.StatusBacklog)})

	assert.Equal(t, []int64{1}, ids(b.Columns[0].Tasks))
	assert.Equal(t, []int64{99}, ids(cols[0].Tasks), "input columns must not be modified")
}

func TestReconcileEachTaskInAtMostOneColumn(t *testing.T) {
	statuses := []model.TaskStatus{
		model.StatusBacklog, "A Fazer", model.StatusInProgress, "Em Revisão",
		model.StatusDone, "", "garbage", "Backlog",
	}
	var tasks []model.Task
	for i, s := range statuses {
		tasks = append(tasks, task(int64(i+1), s))
	}

	for _, policy := range []string{model.UnmatchedDrop, model.UnmatchedOverflow} {
		b := Reconcile(DefaultColumns(), tasks, WithUnmatched(policy))

		seen := map[int64]int{}
		for _, col := range b.Columns {
			for _, tk := range col.Tasks {
				seen[tk.ID]++
				if !col.IsOverflow() {
					assert.Equal(t, col.Key, tk.Status)
				}
			}
		}
		for _, tk := range tasks {
			count := seen[tk.ID]
			assert.LessOrEqual(t, count, 1, "policy %s task %d", policy, tk.ID)
			if CanonicalStatus(tk.Status).IsKnown() {
				assert.Equal(t, 1, count, "policy %s task %d", policy, tk.ID)
			}
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	tasks := []model.Task{
		task(1, model.StatusDone),
		task(2, "Em Progresso"),
		task(3, model.StatusBacklog),
		task(4, "UNKNOWN"),
		task(5, model.StatusInProgress),
	}

	for _, policy := range []string{model.UnmatchedDrop, model.UnmatchedOverflow} {
		first := Reconcile(DefaultColumns(), tasks, WithUnmatched(policy))
		second := Reconcile(first.Columns, first.Flatten(), WithUnmatched(policy))
		assert.Equal(t, first.Columns, second.Columns, policy)
	}
}

func TestFilterByProject(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Project: &model.Project{ID: 10}},
		{ID: 2, Project: &model.Project{ID: 20}},
		{ID: 3},
	}

	assert.Equal(t, []int64{1, 2, 3}, ids(FilterByProject(tasks, 0)))
	assert.Equal(t, []int64{2}, ids(FilterByProject(tasks, 20)))
	assert.Empty(t, FilterByProject(tasks, 30))
}

func TestLayoutBuild(t *testing.T) {
	layout := DefaultLayout()
	layout.ProjectID = 10
	tasks := []model.Task{
		{ID: 1, Status: model.StatusBacklog, Project: &model.Project{ID: 10}},
		{ID: 2, Status: model.StatusBacklog, Project: &model.Project{ID: 20}},
	}

	b := layout.Build(tasks)

	assert.Equal(t, []int64{1}, ids(b.Flatten()))
	assert.Equal(t, 0, b.ColumnIndex(model.StatusBacklog))
	assert.Equal(t, 4, b.ColumnIndex(model.StatusDone))
	assert.Equal(t, -1, b.ColumnIndex("UNKNOWN"))
}

func TestCanonicalStatus(t *testing.T) {
	assert.Equal(t, model.StatusReadyToDevelop, CanonicalStatus("A Fazer"))
	assert.Equal(t, model.StatusDone, CanonicalStatus("Concluído"))
	assert.Equal(t, model.StatusInReview, CanonicalStatus(model.StatusInReview))
	assert.Equal(t, model.TaskStatus("Arquivado"), CanonicalStatus("Arquivado"))
}

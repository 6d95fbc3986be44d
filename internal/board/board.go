package board

import (
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

// OverflowTitle is the title of the synthetic column that collects tasks
// whose status matches no regular column.
const OverflowTitle = "Outros"

// Column is one kanban bucket. Key is a status key, or empty for the
// overflow column. Task order is display order only.
type Column struct {
	Key      model.TaskStatus
	Title    string
	Position int
	Tasks    []model.Task
}

// IsOverflow reports whether c is the synthetic overflow column.
func (c Column) IsOverflow() bool {
	return c.Key == ""
}

// DefaultColumns returns the five standard columns in lifecycle order.
func DefaultColumns() []Column {
	titles := map[model.TaskStatus]string{
		model.StatusBacklog:        "Backlog",
		model.StatusReadyToDevelop: "A Fazer",
		model.StatusInProgress:     "Em Progresso",
		model.StatusInReview:       "Em Revisão",
		model.StatusDone:           "Concluído",
	}

	cols := make([]Column, 0, len(model.TaskStatuses))
	for i, status := range model.TaskStatuses {
		cols = append(cols, Column{Key: status, Title: titles[status], Position: i})
	}
	return cols
}

// Board is the result of a reconciliation: ordered columns plus the tasks
// that matched none of them when the drop policy is in effect.
type Board struct {
	Columns []Column
	Dropped []model.Task
}

// Option configures Reconcile.
type Option func(*options)

type options struct {
	unmatched string
}

// WithUnmatched selects what happens to tasks whose status matches no
// column: model.UnmatchedDrop or model.UnmatchedOverflow. Unrecognized
// policies fall back to dropping.
func WithUnmatched(policy string) Option {
	return func(o *options) {
		o.unmatched = policy
	}
}

// Reconcile clears every column and refills it from tasks, preserving the
// input order within each column. Each task's status is first passed
// through the legacy compatibility table. The input columns are not
// modified.
func Reconcile(columns []Column, tasks []model.Task, opts ...Option) Board {
	o := options{unmatched: model.UnmatchedDrop}
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]Column, 0, len(columns)+1)
	index := make(map[model.TaskStatus]int, len(columns))
	for _, col := range columns {
		if col.IsOverflow() {
			continue
		}
		col.Tasks = []model.Task{}
		col.Position = len(out)
		if _, dup := index[col.Key]; !dup {
			index[col.Key] = len(out)
		}
		out = append(out, col)
	}

	var unmatched []model.Task
	for _, task := range tasks {
		key := CanonicalStatus(task.Status)
		i, ok := index[key]
		if !ok {
			log.WithFields(log.Fields{
				"task_id": task.ID,
				"status":  task.Status,
			}).Debug("task status matches no column")
			unmatched = append(unmatched, task)
			continue
		}
		task.Status = key
		out[i].Tasks = append(out[i].Tasks, task)
	}

	b := Board{Columns: out}
	if o.unmatched == model.UnmatchedOverflow {
		b.Columns = append(b.Columns, Column{
			Title:    OverflowTitle,
			Position: len(out),
			Tasks:    append([]model.Task{}, unmatched...),
		})
	} else {
		b.Dropped = unmatched
	}
	return b
}

// Flatten returns every task on the board in column order.
func (b Board) Flatten() []model.Task {
	var tasks []model.Task
	for _, col := range b.Columns {
		tasks = append(tasks, col.Tasks...)
	}
	return tasks
}

// Find locates the first task with id. ok is false when no column holds it.
func (b Board) Find(taskID int64) (col, idx int, ok bool) {
	for c, column := range b.Columns {
		for i, task := range column.Tasks {
			if task.ID == taskID {
				return c, i, true
			}
		}
	}
	return -1, -1, false
}

// ColumnIndex returns the position of the column with the given key, or
// -1.
func (b Board) ColumnIndex(key model.TaskStatus) int {
	for i, col := range b.Columns {
		if col.Key == key && !col.IsOverflow() {
			return i
		}
	}
	return -1
}

// Count returns the number of tasks shown on the board.
func (b Board) Count() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Tasks)
	}
	return n
}

// FilterByProject keeps tasks owned by projectID. A projectID of 0 keeps
// everything.
func FilterByProject(tasks []model.Task, projectID int64) []model.Task {
	if projectID == 0 {
		return tasks
	}
	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID() == projectID {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

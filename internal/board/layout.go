package board

import "github.com/nhle/taskboard/internal/model"

// Layout describes how a task list becomes a Board: which columns exist,
// what happens to unmatched tasks and which project is shown.
type Layout struct {
	Columns   []Column
	Unmatched string
	ProjectID int64
}

// DefaultLayout returns the standard five-column layout with the drop
// policy and no project filter.
func DefaultLayout() Layout {
	return Layout{
		Columns:   DefaultColumns(),
		Unmatched: model.UnmatchedDrop,
	}
}

// Build filters tasks by the layout's project and reconciles them into
// the layout's columns.
func (l Layout) Build(tasks []model.Task) Board {
	cols := l.Columns
	if len(cols) == 0 {
		cols = DefaultColumns()
	}
	return Reconcile(cols, FilterByProject(tasks, l.ProjectID), WithUnmatched(l.Unmatched))
}

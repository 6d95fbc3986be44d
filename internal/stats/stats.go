// Package stats derives dashboard and project-detail aggregates from an
// in-memory task list. Every function is pure; the caller supplies "now".
package stats

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// Options scopes a computation. Zero values mean "all projects" and "no
// current user".
type Options struct {
	ProjectID     int64
	CurrentUserID int64
	Now           time.Time
}

// Summary holds task counts for one scope.
type Summary struct {
	Total      int `json:"total" yaml:"total"`
	Completed  int `json:"completed" yaml:"completed"`
	InProgress int `json:"inProgress" yaml:"in_progress"`
	Pending    int `json:"pending" yaml:"pending"`
	Overdue    int `json:"overdue" yaml:"overdue"`
	Mine       int `json:"mine" yaml:"mine"`
}

// CompletionPercentage returns the rounded share of completed tasks.
func (s Summary) CompletionPercentage() int {
	return CompletionPercentage(s.Completed, s.Total)
}

// Compute counts tasks by state. Legacy status labels are mapped to keys
// first. Completed is DONE, InProgress is IN_PROGRESS or IN_REVIEW and
// Pending is everything else.
func Compute(tasks []model.Task, opts Options) Summary {
	var s Summary
	for _, t := range board.FilterByProject(tasks, opts.ProjectID) {
		t.Status = board.CanonicalStatus(t.Status)
		s.Total++
		switch t.Status {
		case model.StatusDone:
			s.Completed++
		case model.StatusInProgress, model.StatusInReview:
			s.InProgress++
		default:
			s.Pending++
		}
		if IsOverdue(t, opts.Now) {
			s.Overdue++
		}
		if opts.CurrentUserID != 0 && t.AssignedUserID() == opts.CurrentUserID {
			s.Mine++
		}
	}
	return s
}

// CompletionPercentage returns round(completed/total*100), or 0 when
// total is 0.
func CompletionPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// IsOverdue reports whether t has a due date strictly before now and is
// not done.
func IsOverdue(t model.Task, now time.Time) bool {
	t.Status = board.CanonicalStatus(t.Status)
	return t.IsOverdue(now)
}

// TopMine returns up to n open tasks assigned to userID, highest priority
// first, then earliest due date. Tasks without a due date sort last.
func TopMine(tasks []model.Task, userID int64, n int) []model.Task {
	var mine []model.Task
	for _, t := range tasks {
		if t.AssignedUserID() == userID && board.CanonicalStatus(t.Status) != model.StatusDone {
			mine = append(mine, t)
		}
	}

	slices.SortStableFunc(mine, func(a, b model.Task) int {
		if d := b.Priority.Rank() - a.Priority.Rank(); d != 0 {
			return d
		}
		switch {
		case a.HasDueDate() && b.HasDueDate():
			return a.DueDate.Compare(b.DueDate.Time)
		case a.HasDueDate():
			return -1
		case b.HasDueDate():
			return 1
		}
		return 0
	})
	return head(mine, n)
}

// Recent returns up to n tasks, newest first.
func Recent(tasks []model.Task, n int) []model.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b model.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	return head(sorted, n)
}

// ProjectCounts summarizes the project list.
type ProjectCounts struct {
	Total  int
	Active int
}

// ProjectSummary counts all and ACTIVE projects.
func ProjectSummary(projects []model.Project) ProjectCounts {
	c := ProjectCounts{Total: len(projects)}
	for _, p := range projects {
		if p.Status == model.ProjectActive {
			c.Active++
		}
	}
	return c
}

// ProjectDuration renders the span between start and end in whole days,
// months (30 days) or years (365 days).
func ProjectDuration(start, end *model.Timestamp) string {
	if !start.Valid() || !end.Valid() {
		return "Duração não definida"
	}

	diff := end.Sub(start.Time)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))

	switch {
	case days == 1:
		return "1 dia"
	case days < 30:
		return fmt.Sprintf("%d dias", days)
	case days < 365:
		months := int(math.Round(float64(days) / 30))
		if months == 1 {
			return "1 mês"
		}
		return fmt.Sprintf("%d meses", months)
	default:
		years := int(math.Round(float64(days) / 365))
		if years == 1 {
			return "1 ano"
		}
		return fmt.Sprintf("%d anos", years)
	}
}

// ProjectMembers returns the users involved in a project: its creator and
// everyone who created or is assigned to one of its tasks. Tasks without
// a project reference are assumed to belong to it. The result keeps the
// order of users.
func ProjectMembers(project model.Project, tasks []model.Task, users []model.User) []model.User {
	ids := map[int64]struct{}{}
	if project.CreatedBy != nil {
		ids[project.CreatedBy.ID] = struct{}{}
	}
	for _, t := range tasks {
		if pid := t.ProjectID(); pid != 0 && pid != project.ID {
			continue
		}
		if t.AssignedUser != nil {
			ids[t.AssignedUser.ID] = struct{}{}
		}
		if t.CreatedBy != nil {
			ids[t.CreatedBy.ID] = struct{}{}
		}
	}

	var members []model.User
	for _, u := range users {
		if _, ok := ids[u.ID]; ok {
			members = append(members, u)
		}
	}
	return members
}

// ChecklistProgress returns the rounded share of completed items, or 0
// for an empty checklist.
func ChecklistProgress(items []model.ChecklistItem) int {
	done := 0
	for _, it := range items {
		if it.IsCompleted {
			done++
		}
	}
	return CompletionPercentage(done, len(items))
}

func head(tasks []model.Task, n int) []model.Task {
	if n >= 0 && len(tasks) > n {
		return tasks[:n]
	}
	return tasks
}

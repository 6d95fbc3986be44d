package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. The backend serializes it
// as the enum key (e.g. "IN_PROGRESS").
type TaskStatus string

// Task status keys, in board order.
const (
	StatusBacklog        TaskStatus = "BACKLOG"
	StatusReadyToDevelop TaskStatus = "READY_TO_DEVELOP"
	StatusInProgress     TaskStatus = "IN_PROGRESS"
	StatusInReview       TaskStatus = "IN_REVIEW"
	StatusDone           TaskStatus = "DONE"
)

// TaskStatuses lists every known status in lifecycle order.
var TaskStatuses = []TaskStatus{
	StatusBacklog,
	StatusReadyToDevelop,
	StatusInProgress,
	StatusInReview,
	StatusDone,
}

// IsKnown reports whether s is one of the TaskStatuses keys.
func (s TaskStatus) IsKnown() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseTaskStatus resolves a user-supplied status key, ignoring case and
// accepting '-' or ' ' in place of '_'.
func ParseTaskStatus(s string) (TaskStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	status := TaskStatus(normalized)
	if !status.IsKnown() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return status, nil
}

// TaskPriority is the urgency of a task.
type TaskPriority string

// Task priority keys, lowest first.
const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// TaskPriorities lists every known priority, lowest first.
var TaskPriorities = []TaskPriority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityUrgent,
}

// Rank orders priorities for sorting: URGENT=4, HIGH=3, MEDIUM=2, LOW=1.
// Unknown priorities rank 0.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task is the client-side copy of a backend task.
type Task struct {
	ID           int64        `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Status       TaskStatus   `json:"status" yaml:"status"`
	Priority     TaskPriority `json:"priority" yaml:"priority"`
	DueDate      *Timestamp   `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	CreatedAt    Timestamp    `json:"createdAt" yaml:"created_at"`
	UpdatedAt    Timestamp    `json:"updatedAt" yaml:"updated_at"`
	Project      *Project     `json:"project,omitempty" yaml:"-"`
	AssignedUser *User        `json:"assignedUser,omitempty" yaml:"-"`
	CreatedBy    *User        `json:"createdBy,omitempty" yaml:"-"`
}

// ProjectID returns the owning project's id, or 0 when unknown.
func (t Task) ProjectID() int64 {
	if t.Project == nil {
		return 0
	}
	return t.Project.ID
}

// AssignedUserID returns the assignee's id, or 0 when unassigned.
func (t Task) AssignedUserID() int64 {
	if t.AssignedUser == nil {
		return 0
	}
	return t.AssignedUser.ID
}

// IsDone reports whether the task is in the terminal state.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// HasDueDate reports whether the task carries a usable due date.
func (t Task) HasDueDate() bool {
	return t.DueDate.Valid()
}

// IsOverdue reports whether the task's due date is strictly before now
// and the task is not done. Tasks without a due date are never overdue.
func (t Task) IsOverdue(now time.Time) bool {
	return t.HasDueDate() && t.DueDate.Before(now) && !t.IsDone()
}

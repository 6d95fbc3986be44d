package model

// Comment is a discussion entry on a task.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
	CreatedBy *User     `json:"createdBy,omitempty"`
}

// ChecklistItem is a sub-entry within a task. Its lifecycle is bound to
// the parent task on the backend.
type ChecklistItem struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   Timestamp  `json:"createdAt"`
	UpdatedAt   Timestamp  `json:"updatedAt"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
	CreatedBy   *User      `json:"createdBy,omitempty"`
	CompletedBy *User      `json:"completedBy,omitempty"`
}

// ChecklistStats is the backend's aggregate for one task's checklist.
type ChecklistStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

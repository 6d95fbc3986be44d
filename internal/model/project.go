package model

// ProjectStatus is the lifecycle state of a project. It is a separate
// enumeration from TaskStatus.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// ProjectStatuses lists every known project status.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning,
	ProjectActive,
	ProjectOnHold,
	ProjectCompleted,
	ProjectCancelled,
}

// Project groups tasks on the backend.
type Project struct {
	ID          int64         `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Status      ProjectStatus `json:"status" yaml:"status"`
	StartDate   *Timestamp    `json:"startDate,omitempty" yaml:"start_date,omitempty"`
	EndDate     *Timestamp    `json:"endDate,omitempty" yaml:"end_date,omitempty"`
	CreatedAt   Timestamp     `json:"createdAt" yaml:"created_at"`
	UpdatedAt   Timestamp     `json:"updatedAt" yaml:"updated_at"`
	CreatedBy   *User         `json:"createdBy,omitempty" yaml:"-"`
}

// User is a backend account.
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	Email     string    `json:"email" yaml:"email"`
	FullName  string    `json:"fullName" yaml:"full_name"`
	IsActive  bool      `json:"isActive" yaml:"active"`
	CreatedAt Timestamp `json:"createdAt" yaml:"-"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/nhle/taskboard/internal/model"
)

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned by a successful sign-in.
type SignInResponse struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// MessageResponse is the backend's generic acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Ref is an id-only reference used in request bodies.
type Ref struct {
	ID int64 `json:"id"`
}

// ProjectInput is the body of project create and update requests.
type ProjectInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      model.ProjectStatus `json:"status,omitempty"`
	StartDate   *model.Timestamp    `json:"startDate,omitempty"`
	EndDate     *model.Timestamp    `json:"endDate,omitempty"`
}

// TaskInput is the body of task create and update requests.
type TaskInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Priority     model.TaskPriority `json:"priority"`
	Status       model.TaskStatus   `json:"status,omitempty"`
	DueDate      *model.Timestamp   `json:"dueDate"`
	Project      *Ref               `json:"project,omitempty"`
	AssignedUser *Ref               `json:"assignedUser"`
}

// assignRequest is the body of PUT /tasks/{id}/assign.
type assignRequest struct {
	AssignedUserID *int64 `json:"assignedUserId"`
}

// CommentInput is the body of comment create and update requests.
type CommentInput struct {
	Content string `json:"content"`
}

// ChecklistItemInput is the body of checklist create and update requests.
type ChecklistItemInput struct {
	Description string `json:"description"`
}

// ChatRequest is the body of POST /ai/chat. Either Message is set, or
// ConfirmAction echoes a previous reply's pending action together with
// Approved.
type ChatRequest struct {
	Message       string          `json:"message,omitempty"`
	ConfirmAction json.RawMessage `json:"confirmAction,omitempty"`
	Approved      *bool           `json:"approved,omitempty"`
}

// ChatResponse is the assistant's reply. PendingAction is opaque to the
// client and must be sent back unchanged to confirm or reject it.
type ChatResponse struct {
	Message       string          `json:"message"`
	PendingAction json.RawMessage `json:"pendingAction,omitempty"`
}

// NeedsConfirmation reports whether the reply proposes an action.
func (r ChatResponse) NeedsConfirmation() bool {
	trimmed := bytes.TrimSpace(r.PendingAction)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskDecodesBackendPayload(t *testing.T) {
	payload := `{
		"id": 7,
		"title": "Write docs",
		"status": "IN_REVIEW",
		"priority": "HIGH",
		"dueDate": "2024-02-01T23:59:59",
		"createdAt": "2024-01-01T09:00:00",
		"updatedAt": "2024-01-02T09:00:00",
		"project": {"id": 3, "name": "Site", "status": "ACTIVE"},
		"assignedUser": {"id": 11, "username": "ana", "fullName": "Ana Lima", "isActive": true},
		"createdBy": {"id": 12, "username": "rui"}
	}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(payload), &task))

	assert.Equal(t, int64(7), task.ID)
	assert.Equal(t, StatusInReview, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, int64(3), task.ProjectID())
	assert.Equal(t, int64(11), task.AssignedUserID())
	assert.Equal(t, "Ana Lima", task.AssignedUser.DisplayName())
	assert.True(t, task.HasDueDate())
}

func TestTaskUnknownStatusDecodes(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "status": "Em Progresso"}`), &task))
	assert.Equal(t, TaskStatus("Em Progresso"), task.Status)
	assert.False(t, task.Status.IsKnown())
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	yesterday := NewTimestamp(now.Add(-24 * time.Hour))

	open := Task{Status: StatusInProgress, DueDate: yesterday}
	done := Task{Status: StatusDone, DueDate: yesterday}
	noDue := Task{Status: StatusBacklog}
	exactlyNow := Task{Status: StatusBacklog, DueDate: NewTimestamp(now)}

	assert.True(t, open.IsOverdue(now))
	assert.False(t, done.IsOverdue(now))
	assert.False(t, noDue.IsOverdue(now))
	assert.False(t, exactlyNow.IsOverdue(now))
}

func TestParseTaskStatus(t *testing.T) {
	got, err := ParseTaskStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got)

	got, err = ParseTaskStatus(" done ")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got)

	_, err = ParseTaskStatus("archived")
	assert.Error(t, err)
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, TaskPriority("SOMEDAY").Rank())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Em Revisão", StatusInReview.Label())
	assert.Equal(t, "CUSTOM", TaskStatus("CUSTOM").Label())
	assert.Equal(t, "Urgente", PriorityUrgent.Label())
	assert.Equal(t, "Média", TaskPriority("").Label())
	assert.Equal(t, "Em Espera", ProjectOnHold.Label())
}

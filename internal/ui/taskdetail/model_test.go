package taskdetail

import (
	"context"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/mockapi"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
	"github.com/nhle/taskboard/internal/ui"
)

func newDetail(t *testing.T) (Model, model.Task) {
	t.Helper()
	srv := mockapi.New()
	srv.AddUser(model.User{Username: "demo", Email: "demo@example.com"}, "demo123")
	p := srv.AddProject(model.Project{Name: "Site", Status: model.ProjectActive})
	task := srv.AddTask(model.Task{
		Title:       "Página inicial",
		Description: "Depende de #42",
		Status:      model.StatusInProgress,
		Priority:    model.PriorityHigh,
		Project:     &p,
	})
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	sess := session.New(nil)
	client := gateway.NewClient(hs.URL+"/api", sess)
	resp, err := client.SignIn(context.Background(), "demo", "demo123")
	require.NoError(t, err)
	require.NoError(t, sess.SetToken(resp.AccessToken))

	return New(client, keys.DefaultKeyMap(), 100, 40), task
}

// run executes cmd and feeds every resulting message back into m.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
	case ui.ChangedMsg, nil:
	default:
		var next tea.Cmd
		m, next = m.Update(msg)
		m = run(t, m, next)
	}
	return m
}

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestOpenLoadsTaskAndReferences(t *testing.T) {
	m, task := newDetail(t)
	m = run(t, m, m.Open(task.ID))

	require.Empty(t, m.err)
	assert.Equal(t, task.ID, m.TaskID())
	assert.Equal(t, "Página inicial", m.task.Title)
	assert.Equal(t, []int64{42}, m.refs)

	view := m.View()
	assert.Contains(t, view, "Página inicial")
	assert.Contains(t, view, "Menciona: #42")
}

func TestAddCommentReloads(t *testing.T) {
	m, task := newDetail(t)
	m = run(t, m, m.Open(task.ID))

	m, _ = m.Update(keyMsg("n"))
	require.True(t, m.Capturing())
	m = typeText(m, "veja também #7")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Capturing())
	m = run(t, m, cmd)

	require.Len(t, m.comments, 1)
	assert.Equal(t, "veja também #7", m.comments[0].Content)
	assert.Equal(t, []int64{42, 7}, m.refs)
}

func TestChecklistAddAndToggle(t *testing.T) {
	m, task := newDetail(t)
	m = run(t, m, m.Open(task.ID))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabChecklist, m.tab)

	m, _ = m.Update(keyMsg("n"))
	m = typeText(m, "Revisar textos")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)
	require.Len(t, m.checklist, 1)
	assert.False(t, m.checklist[0].IsCompleted)

	m, cmd = m.Update(keyMsg("x"))
	m = run(t, m, cmd)
	require.Len(t, m.checklist, 1)
	assert.True(t, m.checklist[0].IsCompleted)
	assert.Contains(t, m.View(), "Checklist 100%")
}

func TestBlankInputIsIgnored(t *testing.T) {
	m, task := newDetail(t)
	m = run(t, m, m.Open(task.ID))

	m, _ = m.Update(keyMsg("n"))
	m = typeText(m, "   ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.comments)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

package mockapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/mockapi"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
)

type fixture struct {
	srv  *mockapi.Server
	sess *session.Session
	gw   *gateway.Client
}

func newFixture(t *testing.T, opts ...mockapi.Option) fixture {
	t.Helper()
	srv := mockapi.New(opts...)
	srv.Seed()
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	sess := session.New(nil)
	return fixture{srv: srv, sess: sess, gw: gateway.NewClient(hs.URL+"/api", sess)}
}

func (f fixture) signIn(t *testing.T) {
	t.Helper()
	resp, err := f.gw.SignIn(context.Background(), "demo", "demo123")
	require.NoError(t, err)
	require.NoError(t, f.sess.SetToken(resp.AccessToken))
}

func TestSignInAndCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.SignIn(ctx, "demo", "wrong")
	require.Error(t, err)
	assert.True(t, gateway.IsUnauthorized(err))

	f.signIn(t)
	me, err := f.gw.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo", me.Username)
	assert.Equal(t, "Usuária Demo", me.DisplayName())
}

func TestSignUpThenSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.SignUp(ctx, gateway.SignUpRequest{Username: "rui", Password: "pw", Email: "rui@example.com"})
	require.NoError(t, err)

	_, err = f.gw.SignUp(ctx, gateway.SignUpRequest{Username: "rui", Password: "pw"})
	assert.True(t, gateway.IsValidation(err))

	_, err = f.gw.SignIn(ctx, "rui", "pw")
	assert.NoError(t, err)
}

func TestRejectedTokenSignsOut(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.SetToken("garbage.token.value"))

	var events []session.EventKind
	f.sess.Subscribe(func(e session.Event) { events = append(events, e.Kind) })

	_, err := f.gw.ListTasks(context.Background())
	require.Error(t, err)

	assert.True(t, gateway.IsUnauthorized(err))
	assert.False(t, f.sess.IsAuthenticated())
	assert.Equal(t, []session.EventKind{session.SignedOut}, events)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	f := newFixture(t, mockapi.WithClock(func() time.Time { return past }))
	f.signIn(t)

	_, err := f.gw.ListProjects(context.Background())
	assert.True(t, gateway.IsUnauthorized(err))
	assert.False(t, f.sess.IsAuthenticated())
}

func TestBoardMoveRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	loader := board.NewLoader(f.gw)
	snap, err := loader.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 5)
	require.Len(t, snap.Users, 2)
	require.Len(t, snap.Projects, 2)

	m := board.NewMover(board.DefaultLayout(), f.gw, loader)
	b := m.Replace(snap.Tasks)
	backlog := b.ColumnIndex(model.StatusBacklog)
	done := b.ColumnIndex(model.StatusDone)
	moved := b.Columns[backlog].Tasks[0]

	b, err = m.Drop(ctx, board.Drop{Source: backlog, Target: done, SourceIndex: 0, TargetIndex: 0, TaskID: moved.ID})
	require.NoError(t, err)
	assert.Empty(t, b.Columns[backlog].Tasks)
	assert.Equal(t, moved.ID, b.Columns[done].Tasks[0].ID)

	stored, err := f.gw.GetTask(ctx, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, stored.Status)
}

func TestFailedMoveReloadsBoard(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()
	f.srv.FailStatusUpdates(http.StatusForbidden)

	loader := board.NewLoader(f.gw)
	snap, err := loader.LoadAll(ctx)
	require.NoError(t, err)

	m := board.NewMover(board.DefaultLayout(), f.gw, loader)
	b := m.Replace(snap.Tasks)
	src := b.ColumnIndex(model.StatusInProgress)
	dst := b.ColumnIndex(model.StatusBacklog)
	moved := b.Columns[src].Tasks[0]

	b, err = m.Drop(ctx, board.Drop{Source: src, Target: dst, SourceIndex: 0, TargetIndex: 0, TaskID: moved.ID})
	require.Error(t, err)
	assert.True(t, gateway.IsForbidden(err))
	assert.True(t, f.sess.IsAuthenticated())

	server := map[int64]model.TaskStatus{}
	for _, tk := range f.srv.Tasks() {
		server[tk.ID] = tk.Status
	}
	for _, col := range b.Columns {
		for _, tk := range col.Tasks {
			assert.Equal(t, server[tk.ID], col.Key, "task %d", tk.ID)
		}
	}
	assert.Equal(t, len(server), b.Count())
}

func TestLegacyAndUnknownStatusesFromBackend(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	project := f.srv.AddProject(model.Project{Name: "Legado"})
	legacy := f.srv.AddTask(model.Task{Title: "antiga", Status: "Em Progresso", Project: &project})
	unknown := f.srv.AddTask(model.Task{Title: "estranha", Status: "UNKNOWN", Project: &project})

	tasks, err := f.gw.ListProjectTasks(context.Background(), project.ID)
	require.NoError(t, err)

	cols := []board.Column{
		{Key: model.StatusBacklog, Title: "Backlog"},
		{Key: model.StatusInProgress, Title: "Em Progresso"},
	}
	b := board.Reconcile(cols, tasks)
	assert.Empty(t, b.Columns[0].Tasks)
	require.Len(t, b.Columns[1].Tasks, 1)
	assert.Equal(t, legacy.ID, b.Columns[1].Tasks[0].ID)
	_, _, found := b.Find(unknown.ID)
	assert.False(t, found)

	b = board.Reconcile(cols, tasks, board.WithUnmatched(model.UnmatchedOverflow))
	c, _, found := b.Find(unknown.ID)
	require.True(t, found)
	assert.True(t, b.Columns[c].IsOverflow())
}

func TestCommentsAndChecklist(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()
	taskID := f.srv.Tasks()[0].ID

	cm, err := f.gw.CreateComment(ctx, taskID, "Primeiro comentário")
	require.NoError(t, err)
	_, err = f.gw.UpdateComment(ctx, taskID, cm.ID, "Editado")
	require.NoError(t, err)
	comments, err := f.gw.ListComments(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Editado", comments[0].Content)
	require.NoError(t, f.gw.DeleteComment(ctx, taskID, cm.ID))

	_, err = f.gw.CreateComment(ctx, taskID, "  ")
	assert.True(t, gateway.IsValidation(err))

	a, err := f.gw.CreateChecklistItem(ctx, taskID, "Rascunho")
	require.NoError(t, err)
	_, err = f.gw.CreateChecklistItem(ctx, taskID, "Revisão")
	require.NoError(t, err)

	toggled, err := f.gw.ToggleChecklistItem(ctx, taskID, a.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
	assert.True(t, toggled.CompletedAt.Valid())

	stats, err := f.gw.ChecklistStats(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, model.ChecklistStats{Total: 2, Completed: 1, Remaining: 1}, stats)

	require.NoError(t, f.gw.DeleteChecklistItem(ctx, taskID, a.ID))
	items, err := f.gw.ListChecklist(ctx, taskID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProjectAndTaskCRUD(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	p, err := f.gw.CreateProject(ctx, gateway.ProjectInput{Name: "Intranet", Status: model.ProjectActive})
	require.NoError(t, err)
	require.NotNil(t, p.CreatedBy)
	assert.Equal(t, "demo", p.CreatedBy.Username)

	found, err := f.gw.SearchProjects(ctx, "intra")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = f.gw.CreateTask(ctx, gateway.TaskInput{Title: "Sem projeto"})
	assert.True(t, gateway.IsValidation(err))

	task, err := f.gw.CreateTask(ctx, gateway.TaskInput{
		Title:        "Mapear páginas",
		Priority:     model.PriorityHigh,
		Project:      &gateway.Ref{ID: p.ID},
		AssignedUser: &gateway.Ref{ID: p.CreatedBy.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusBacklog, task.Status)
	assert.Equal(t, p.ID, task.ProjectID())

	task, err = f.gw.AssignTask(ctx, task.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, task.AssignedUser)

	_, err = f.gw.AssignTask(ctx, task.ID, 999)
	assert.True(t, gateway.IsValidation(err))

	require.NoError(t, f.gw.DeleteProject(ctx, p.ID))
	_, err = f.gw.GetTask(ctx, task.ID)
	assert.True(t, gateway.IsNotFound(err))
}

func TestChatConfirmation(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	resp, err := f.gw.Chat(ctx, "Crie um projeto chamado Portal")
	require.NoError(t, err)
	require.True(t, resp.NeedsConfirmation())

	rejected, err := f.gw.ConfirmAction(ctx, resp.PendingAction, false)
	require.NoError(t, err)
	assert.Contains(t, rejected.Message, "cancelada")

	approved, err := f.gw.ConfirmAction(ctx, resp.PendingAction, true)
	require.NoError(t, err)
	assert.Contains(t, approved.Message, "Portal")

	projects, err := f.gw.SearchProjects(ctx, "Portal")
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

package kanban

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/taskboard/internal/gateway"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui"
)

var priorities = []model.TaskPriority{
	model.PriorityLow,
	model.PriorityMedium,
	model.PriorityHigh,
	model.PriorityUrgent,
}

func (m Model) openForm() (Model, tea.Cmd) {
	if len(m.snap.Projects) == 0 {
		m.err = "Nenhum projeto disponível. Crie um projeto primeiro."
		return m, nil
	}
	*m.fb = formBindings{
		priority:  model.PriorityMedium,
		projectID: m.projectID,
	}
	if m.fb.projectID == 0 {
		m.fb.projectID = m.snap.Projects[0].ID
	}
	m.err = ""
	m.form = m.buildForm()
	m.mode = modeForm
	return m, m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	fb := m.fb

	prioOpts := make([]huh.Option[model.TaskPriority], 0, len(priorities))
	for _, p := range priorities {
		prioOpts = append(prioOpts, huh.NewOption(p.Label(), p))
	}
	projOpts := make([]huh.Option[int64], 0, len(m.snap.Projects))
	for _, p := range m.snap.Projects {
		projOpts = append(projOpts, huh.NewOption(p.Name, p.ID))
	}
	userOpts := []huh.Option[int64]{huh.NewOption("Ninguém", int64(0))}
	for _, u := range m.snap.Users {
		userOpts = append(userOpts, huh.NewOption(u.DisplayName(), u.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Título").
				Value(&fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("o título é obrigatório")
					}
					return nil
				}),
			huh.NewText().
				Title("Descrição").
				Value(&fb.description),
			huh.NewSelect[model.TaskPriority]().
				Title("Prioridade").
				Options(prioOpts...).
				Value(&fb.priority),
			huh.NewSelect[int64]().
				Title("Projeto").
				Options(projOpts...).
				Value(&fb.projectID),
			huh.NewSelect[int64]().
				Title("Responsável").
				Options(userOpts...).
				Value(&fb.assigneeID),
			huh.NewInput().
				Title("Prazo").
				Placeholder("dd/mm/aaaa").
				Value(&fb.dueDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := time.ParseInLocation(ui.DateLayout, strings.TrimSpace(s), time.Local); err != nil {
						return errors.New("use o formato dd/mm/aaaa")
					}
					return nil
				}),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeBoard
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.createTask()
	case huh.StateAborted:
		m.mode = modeBoard
		return m, nil
	}
	return m, cmd
}

// taskInput builds the create request. New tasks always start in the
// backlog.
func (fb formBindings) taskInput() gateway.TaskInput {
	in := gateway.TaskInput{
		Title:       strings.TrimSpace(fb.title),
		Description: strings.TrimSpace(fb.description),
		Priority:    fb.priority,
		Status:      model.StatusBacklog,
		Project:     &gateway.Ref{ID: fb.projectID},
	}
	if fb.assigneeID > 0 {
		in.AssignedUser = &gateway.Ref{ID: fb.assigneeID}
	}
	if due, err := time.ParseInLocation(ui.DateLayout, strings.TrimSpace(fb.dueDate), time.Local); err == nil {
		in.DueDate = model.NewTimestamp(due)
	}
	return in
}

func (m Model) createTask() tea.Cmd {
	creator := m.creator
	ctx := m.scope.Context()
	gen := m.scope.Gen()
	in := m.fb.taskInput()
	return func() tea.Msg {
		_, err := creator.CreateTask(ctx, in)
		return taskCreatedMsg{gen: gen, err: err}
	}
}

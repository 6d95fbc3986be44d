package mockapi

import (
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// AddUser registers a user with a password and returns it with its id.
func (s *Server) AddUser(u model.User, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(u, password)
}

// AddProject stores a project and returns it with its id.
func (s *Server) AddProject(p model.Project) model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addProjectLocked(p)
}

// AddTask stores a task as given, including statuses the API would
// reject, and returns it with its id.
func (s *Server) AddTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTaskLocked(t)
}

// Tasks returns a copy of the stored tasks.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

// FailStatusUpdates makes every status update answer with code. Zero
// restores normal behaviour.
func (s *Server) FailStatusUpdates(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFailure = code
}

func (s *Server) addUserLocked(u model.User, password string) model.User {
	u.ID = s.id()
	u.IsActive = true
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.stamp()
	}
	s.users = append(s.users, u)
	s.passwords[u.Username] = password
	return u
}

func (s *Server) addProjectLocked(p model.Project) model.Project {
	p.ID = s.id()
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	p.CreatedAt = s.stamp()
	p.UpdatedAt = p.CreatedAt
	s.projects = append(s.projects, p)
	return p
}

func (s *Server) addTaskLocked(t model.Task) model.Task {
	t.ID = s.id()
	if t.Status == "" {
		t.Status = model.StatusBacklog
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.stamp()
	}
	t.UpdatedAt = s.stamp()
	s.tasks = append(s.tasks, t)
	return t
}

// Seed fills the server with a demo account (demo / demo123) and a small
// project with tasks in every column.
func (s *Server) Seed() {
	demo := s.AddUser(model.User{Username: "demo", Email: "demo@example.com", FullName: "Usuária Demo"}, "demo123")
	ana := s.AddUser(model.User{Username: "ana", Email: "ana@example.com", FullName: "Ana Lima"}, "ana123")

	now := s.now()
	start := model.NewTimestamp(now.AddDate(0, -1, 0))
	end := model.NewTimestamp(now.AddDate(0, 2, 0))
	site := s.AddProject(model.Project{
		Name:        "Site institucional",
		Description: "Novo site da empresa",
		Status:      model.ProjectActive,
		StartDate:   start,
		EndDate:     end,
		CreatedBy:   &demo,
	})
	app := s.AddProject(model.Project{
		Name:      "App mobile",
		Status:    model.ProjectPlanning,
		CreatedBy: &ana,
	})

	due := func(days int) *model.Timestamp {
		return model.NewTimestamp(now.AddDate(0, 0, days).Truncate(time.Second))
	}
	tasks := []model.Task{
		{Title: "Definir identidade visual", Status: model.StatusDone, Priority: model.PriorityHigh, Project: &site, AssignedUser: &ana, CreatedBy: &demo},
		{Title: "Escrever textos da home", Status: model.StatusInProgress, Priority: model.PriorityMedium, Project: &site, AssignedUser: &demo, CreatedBy: &demo, DueDate: due(-2)},
		{Title: "Revisar formulário de contato", Status: model.StatusInReview, Priority: model.PriorityUrgent, Project: &site, AssignedUser: &demo, CreatedBy: &ana, DueDate: due(3)},
		{Title: "Configurar hospedagem", Status: model.StatusReadyToDevelop, Priority: model.PriorityLow, Project: &site, CreatedBy: &demo},
		{Title: "Levantar requisitos", Status: model.StatusBacklog, Priority: model.PriorityHigh, Project: &app, AssignedUser: &demo, CreatedBy: &ana, DueDate: due(10)},
	}
	for _, t := range tasks {
		s.AddTask(t)
	}
}

package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nhle/taskboard/internal/model"
)

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type ref struct {
	ID int64 `json:"id"`
}

type projectInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      model.ProjectStatus `json:"status"`
	StartDate   *model.Timestamp    `json:"startDate"`
	EndDate     *model.Timestamp    `json:"endDate"`
}

type taskInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Priority     model.TaskPriority `json:"priority"`
	Status       model.TaskStatus   `json:"status"`
	DueDate      *model.Timestamp   `json:"dueDate"`
	Project      *ref               `json:"project"`
	AssignedUser *ref               `json:"assignedUser"`
}

type textInput struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (s *Server) signIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	u, found := s.userByName(req.Username)
	ok := found && s.passwords[req.Username] == req.Password
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
	}

	token, err := s.IssueToken(u.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"tokenType":   "Bearer",
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"roles":       []string{"ROLE_USER"},
	})
}

func (s *Server) signUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Error: Username and password are required!"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.userByName(req.Username); taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Error: Username is already taken!"})
	}
	s.addUserLocked(model.User{Username: req.Username, Email: req.Email, FullName: req.FullName}, req.Password)
	return c.JSON(http.StatusOK, map[string]string{"message": "User registered successfully!"})
}

func (s *Server) listUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.users)
}

func (s *Server) currentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) listProjects(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.projects)
}

func (s *Server) searchProjects(c echo.Context) error {
	name := strings.ToLower(c.QueryParam("name"))
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []model.Project{}
	for _, p := range s.projects {
		if strings.Contains(strings.ToLower(p.Name), name) {
			found = append(found, p)
		}
	}
	return c.JSON(http.StatusOK, found)
}

func (s *Server) projectIndex(id int64) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getProject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.projectIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, s.projects[i])
}

func (s *Server) createProject(c echo.Context) error {
	var in projectInput
	if err := c.Bind(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.addProjectLocked(model.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   &u,
	})
	return c.JSON(http.StatusOK, p)
}

func (s *Server) updateProject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in projectInput
	if err := c.Bind(&in); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.projectIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	p := &s.projects[i]
	if in.Name != "" {
		p.Name = in.Name
	}
	p.Description = in.Description
	if in.Status != "" {
		p.Status = in.Status
	}
	p.StartDate, p.EndDate = in.StartDate, in.EndDate
	p.UpdatedAt = s.stamp()
	return c.JSON(http.StatusOK, *p)
}

func (s *Server) deleteProject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.projectIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ProjectID() != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	return c.NoContent(http.StatusOK)
}

func (s *Server) taskIndex(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) listTasks(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.tasks)
}

func (s *Server) listProjectTasks(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectIndex(id) < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	found := []model.Task{}
	for _, t := range s.tasks {
		if t.ProjectID() == id {
			found = append(found, t)
		}
	}
	return c.JSON(http.StatusOK, found)
}

func (s *Server) getTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, s.tasks[i])
}

func (s *Server) createTask(c echo.Context) error {
	var in taskInput
	if err := c.Bind(&in); err != nil || strings.TrimSpace(in.Title) == "" || in.Project == nil {
		return c.NoContent(http.StatusBadRequest)
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	pi := s.projectIndex(in.Project.ID)
	if pi < 0 {
		return c.NoContent(http.StatusBadRequest)
	}
	t := model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedBy:   &u,
	}
	project := s.projects[pi]
	t.Project = &project
	if in.AssignedUser != nil {
		assignee, ok := s.userByID(in.AssignedUser.ID)
		if !ok {
			return c.String(http.StatusBadRequest, "Assigned user not found")
		}
		t.AssignedUser = &assignee
	}
	return c.JSON(http.StatusOK, s.addTaskLocked(t))
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in taskInput
	if err := c.Bind(&in); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	t := &s.tasks[i]
	if in.Title != "" {
		t.Title = in.Title
	}
	t.Description = in.Description
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	t.DueDate = in.DueDate
	t.UpdatedAt = s.stamp()
	return c.JSON(http.StatusOK, *t)
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.comments, id)
	delete(s.checklist, id)
	return c.NoContent(http.StatusOK)
}

func (s *Server) updateTaskStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	status := model.TaskStatus(c.QueryParam("status"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusFailure != 0 {
		return c.NoContent(s.statusFailure)
	}
	if !status.IsKnown() {
		return c.NoContent(http.StatusBadRequest)
	}
	i := s.taskIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	s.tasks[i].Status = status
	s.tasks[i].UpdatedAt = s.stamp()
	return c.JSON(http.StatusOK, s.tasks[i])
}

func (s *Server) assignTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in struct {
		AssignedUserID *int64 `json:"assignedUserId"`
	}
	if err := c.Bind(&in); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return c.NoContent(http.StatusNotFound)
	}
	if in.AssignedUserID == nil {
		s.tasks[i].AssignedUser = nil
		return c.JSON(http.StatusOK, s.tasks[i])
	}
	u, ok := s.userByID(*in.AssignedUserID)
	if !ok {
		return c.String(http.StatusBadRequest, "Assigned user not found")
	}
	s.tasks[i].AssignedUser = &u
	return c.JSON(http.StatusOK, s.tasks[i])
}

func (s *Server) taskFromPath(c echo.Context) (int64, bool, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return 0, false, err
	}
	return id, s.taskIndex(id) >= 0, nil
}

func (s *Server) listComments(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	out := append([]model.Comment{}, s.comments[id]...)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createComment(c echo.Context) error {
	var in textInput
	if err := c.Bind(&in); err != nil || strings.TrimSpace(in.Content) == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	cm := model.Comment{ID: s.id(), Content: in.Content, CreatedAt: s.stamp(), UpdatedAt: s.stamp(), CreatedBy: &u}
	s.comments[id] = append(s.comments[id], cm)
	return c.JSON(http.StatusOK, cm)
}

func (s *Server) updateComment(c echo.Context) error {
	cid, err := pathID(c, "cid")
	if err != nil {
		return err
	}
	var in textInput
	if err := c.Bind(&in); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	for i := range s.comments[id] {
		cm := &s.comments[id][i]
		if cm.ID != cid {
			continue
		}
		if cm.CreatedBy == nil || cm.CreatedBy.ID != u.ID {
			return c.NoContent(http.StatusForbidden)
		}
		cm.Content = in.Content
		cm.UpdatedAt = s.stamp()
		return c.JSON(http.StatusOK, *cm)
	}
	return c.NoContent(http.StatusNotFound)
}

func (s *Server) deleteComment(c echo.Context) error {
	cid, err := pathID(c, "cid")
	if err != nil {
		return err
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	comments := s.comments[id]
	for i, cm := range comments {
		if cm.ID != cid {
			continue
		}
		if cm.CreatedBy == nil || cm.CreatedBy.ID != u.ID {
			return c.NoContent(http.StatusForbidden)
		}
		s.comments[id] = append(comments[:i], comments[i+1:]...)
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusNotFound)
}

func (s *Server) listChecklist(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	out := append([]model.ChecklistItem{}, s.checklist[id]...)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createChecklistItem(c echo.Context) error {
	var in textInput
	if err := c.Bind(&in); err != nil || strings.TrimSpace(in.Description) == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	item := model.ChecklistItem{ID: s.id(), Description: in.Description, CreatedAt: s.stamp(), UpdatedAt: s.stamp(), CreatedBy: &u}
	s.checklist[id] = append(s.checklist[id], item)
	return c.JSON(http.StatusOK, item)
}

func (s *Server) checklistItem(c echo.Context) (*model.ChecklistItem, error) {
	iid, err := pathID(c, "iid")
	if err != nil {
		return nil, err
	}
	id, _, err := s.taskFromPath(c)
	if err != nil {
		return nil, err
	}
	for i := range s.checklist[id] {
		if s.checklist[id][i].ID == iid {
			return &s.checklist[id][i], nil
		}
	}
	return nil, nil
}

func (s *Server) updateChecklistItem(c echo.Context) error {
	var in textInput
	if err := c.Bind(&in); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.checklistItem(c)
	if err != nil {
		return err
	}
	if item == nil {
		return c.NoContent(http.StatusNotFound)
	}
	item.Description = in.Description
	item.UpdatedAt = s.stamp()
	return c.JSON(http.StatusOK, *item)
}

func (s *Server) toggleChecklistItem(c echo.Context) error {
	u := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.checklistItem(c)
	if err != nil {
		return err
	}
	if item == nil {
		return c.NoContent(http.StatusNotFound)
	}
	item.IsCompleted = !item.IsCompleted
	if item.IsCompleted {
		item.CompletedAt = model.NewTimestamp(s.stamp().Time)
		item.CompletedBy = &u
	} else {
		item.CompletedAt, item.CompletedBy = nil, nil
	}
	item.UpdatedAt = s.stamp()
	return c.JSON(http.StatusOK, *item)
}

func (s *Server) deleteChecklistItem(c echo.Context) error {
	iid, err := pathID(c, "iid")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	items := s.checklist[id]
	for i, item := range items {
		if item.ID == iid {
			s.checklist[id] = append(items[:i], items[i+1:]...)
			return c.NoContent(http.StatusOK)
		}
	}
	return c.NoContent(http.StatusNotFound)
}

func (s *Server) checklistStats(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok, err := s.taskFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	var st model.ChecklistStats
	for _, item := range s.checklist[id] {
		st.Total++
		if item.IsCompleted {
			st.Completed++
		}
	}
	st.Remaining = st.Total - st.Completed
	return c.JSON(http.StatusOK, st)
}

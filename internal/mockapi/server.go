// Package mockapi is an in-memory implementation of the task-tracker REST
// API. It backs the mock-server command and the integration tests.
package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

const userContextKey = "user"

var errBadAuthorization = errors.New("bad auth header")

// Server holds all backend state behind one mutex.
type Server struct {
	mu        sync.Mutex
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
	nextID    int64
	users     []model.User
	passwords map[string]string
	projects  []model.Project
	tasks     []model.Task
	comments  map[int64][]model.Comment
	checklist map[int64][]model.ChecklistItem

	// statusFailure, when non-zero, is returned by every status update.
	statusFailure int

	echo *echo.Echo
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) Option {
	return func(s *Server) {
		s.secret = []byte(secret)
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates an empty server with its routes registered.
func New(opts ...Option) *Server {
	s := &Server{
		secret:    []byte("taskboard-mock-secret"),
		tokenTTL:  24 * time.Hour,
		now:       time.Now,
		passwords: make(map[string]string),
		comments:  make(map[int64][]model.Comment),
		checklist: make(map[int64][]model.ChecklistItem),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			log.WithFields(log.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"request_id": id,
			}).Debug("mock api request")
		},
	}))
	s.register(e)
	s.echo = e
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close stops a server started with Start.
func (s *Server) Close() error {
	return s.echo.Close()
}

func (s *Server) register(e *echo.Echo) {
	e.POST("/api/auth/signin", s.signIn)
	e.POST("/api/auth/signup", s.signUp)

	api := e.Group("/api", s.requireAuth)

	api.GET("/users", s.listUsers)
	api.GET("/users/me", s.currentUser)

	api.GET("/projects", s.listProjects)
	api.GET("/projects/search", s.searchProjects)
	api.POST("/projects", s.createProject)
	api.GET("/projects/:id", s.getProject)
	api.PUT("/projects/:id", s.updateProject)
	api.DELETE("/projects/:id", s.deleteProject)

	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/project/:id", s.listProjectTasks)
	api.GET("/tasks/:id", s.getTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.PUT("/tasks/:id/status", s.updateTaskStatus)
	api.PUT("/tasks/:id/assign", s.assignTask)

	api.GET("/tasks/:id/comments", s.listComments)
	api.POST("/tasks/:id/comments", s.createComment)
	api.PUT("/tasks/:id/comments/:cid", s.updateComment)
	api.DELETE("/tasks/:id/comments/:cid", s.deleteComment)

	api.GET("/tasks/:id/checklist", s.listChecklist)
	api.POST("/tasks/:id/checklist", s.createChecklistItem)
	api.GET("/tasks/:id/checklist/stats", s.checklistStats)
	api.PUT("/tasks/:id/checklist/:iid", s.updateChecklistItem)
	api.PUT("/tasks/:id/checklist/:iid/toggle", s.toggleChecklistItem)
	api.DELETE("/tasks/:id/checklist/:iid", s.deleteChecklistItem)

	api.POST("/ai/chat", s.chat)
}

// IssueToken signs a token for username.
func (s *Server) IssueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return c.String(http.StatusUnauthorized, errBadAuthorization.Error())
		}

		var claims jwt.RegisteredClaims
		_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		})
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		s.mu.Lock()
		u, found := s.userByName(claims.Subject)
		s.mu.Unlock()
		if !found {
			return c.String(http.StatusUnauthorized, "unknown user")
		}
		c.Set(userContextKey, u)
		return next(c)
	}
}

func currentUser(c echo.Context) model.User {
	u, _ := c.Get(userContextKey).(model.User)
	return u
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) stamp() model.Timestamp {
	return model.Timestamp{Time: s.now().Truncate(time.Second)}
}

func (s *Server) userByName(name string) (model.User, bool) {
	for _, u := range s.users {
		if u.Username == name {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *Server) userByID(id int64) (model.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

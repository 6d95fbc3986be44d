package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nhle/taskboard/internal/model"
)

type chatRequest struct {
	Message       string          `json:"message"`
	ConfirmAction json.RawMessage `json:"confirmAction"`
	Approved      *bool           `json:"approved"`
}

type pendingAction struct {
	Type            string `json:"type"`
	OriginalMessage string `json:"originalMessage"`
}

// chat answers a few fixed intents. Requests that would create data come
// back with a pending action that must be confirmed first.
func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if len(req.ConfirmAction) > 0 {
		return s.confirm(c, req)
	}

	msg := strings.ToLower(strings.TrimSpace(req.Message))
	switch {
	case strings.Contains(msg, "crie") && strings.Contains(msg, "projeto"):
		action, _ := json.Marshal(pendingAction{Type: "generic_action", OriginalMessage: req.Message})
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":       "Vou criar o projeto solicitado.\n\n⚠️ Esta ação precisa de confirmação. Deseja continuar?",
			"pendingAction": json.RawMessage(action),
		})
	case strings.Contains(msg, "projetos"):
		s.mu.Lock()
		names := make([]string, 0, len(s.projects))
		for _, p := range s.projects {
			names = append(names, "• "+p.Name)
		}
		s.mu.Unlock()
		if len(names) == 0 {
			return c.JSON(http.StatusOK, map[string]string{"message": "Você ainda não tem projetos."})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Seus projetos:\n" + strings.Join(names, "\n")})
	default:
		return c.JSON(http.StatusOK, map[string]string{"message": "Posso listar seus projetos ou criar um novo projeto."})
	}
}

func (s *Server) confirm(c echo.Context, req chatRequest) error {
	if req.Approved == nil || !*req.Approved {
		return c.JSON(http.StatusOK, map[string]string{"message": "❌ Ação cancelada pelo usuário."})
	}

	var action pendingAction
	if err := json.Unmarshal(req.ConfirmAction, &action); err != nil {
		return c.JSON(http.StatusOK, map[string]string{"message": "❌ Erro ao executar ação: ação inválida"})
	}

	name := projectNameFrom(action.OriginalMessage)
	u := currentUser(c)
	s.mu.Lock()
	p := s.addProjectLocked(model.Project{Name: name, CreatedBy: &u})
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("✅ Projeto \"%s\" criado com sucesso (id %d).", p.Name, p.ID),
	})
}

// projectNameFrom takes the words after "projeto" as the project name.
func projectNameFrom(msg string) string {
	lower := strings.ToLower(msg)
	i := strings.Index(lower, "projeto")
	if i < 0 {
		return "Novo Projeto"
	}
	name := strings.TrimSpace(msg[i+len("projeto"):])
	name = strings.Trim(name, "\"'“” ")
	for _, prefix := range []string{"chamado ", "com nome ", "de nome "} {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			name = strings.TrimSpace(name[len(prefix):])
		}
	}
	name = strings.Trim(name, "\"'“” ")
	if name == "" {
		return "Novo Projeto"
	}
	return name
}

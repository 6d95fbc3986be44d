package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (%d) on %s %s", e.StatusCode, e.Method, e.Path)
	}
	return fmt.Sprintf("api error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

// errorBody covers the JSON shapes the backend uses for error details.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// maxMessageLen caps the error detail kept from a response body, in bytes.
const maxMessageLen = 300

func newAPIError(status int, method, path string, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Message != "":
			msg = eb.Message
		case eb.Error != "":
			msg = eb.Error
		}
	}
	if len(msg) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return &APIError{StatusCode: status, Method: method, Path: path, Message: msg}
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err (or any error in its chain) is a 401.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err (or any error in its chain) is a 403.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsValidation reports whether err (or any error in its chain) is a 400.
func IsValidation(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

// IsNotFound reports whether err (or any error in its chain) is a 404.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnauthorized(err):
		return "Sessão expirada. Faça login novamente"
	case IsForbidden(err):
		return "Você não tem permissão para realizar esta ação"
	case IsValidation(err):
		return "Dados inválidos. Verifique se todos os campos obrigatórios estão preenchidos"
	case IsNotFound(err):
		return "Registro não encontrado"
	case errors.Is(err, context.DeadlineExceeded):
		return "O servidor demorou demais para responder"
	case statusOf(err) >= 500:
		return "Erro no servidor. Tente novamente mais tarde"
	case statusOf(err) == 0:
		return "Não foi possível conectar ao servidor"
	default:
		return fmt.Sprintf("Erro inesperado (%d)", statusOf(err))
	}
}

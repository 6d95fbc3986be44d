package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/gateway"
)

// Texts shown in the conversation.
const (
	Greeting = "Olá! Sou sua assistente de projetos. Posso criar tarefas, " +
		"mover no Kanban e criar projetos. Como posso ajudar?"
	noReply         = "(sem resposta)"
	chatFailed      = "Ocorreu um erro ao falar com a IA."
	actionFailed    = "Erro ao executar ação."
	actionApproved  = "Ação executada!"
	actionCancelled = "Ação cancelada."
)

var (
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("empty message")
	// ErrBusy is returned while a request is outstanding.
	ErrBusy = errors.New("assistant is busy")
	// ErrNoPending is returned by Confirm when nothing awaits approval.
	ErrNoPending = errors.New("no pending action")
)

// Backend is the chat endpoint of the API.
type Backend interface {
	Chat(ctx context.Context, message string) (gateway.ChatResponse, error)
	ConfirmAction(ctx context.Context, action json.RawMessage, approved bool) (gateway.ChatResponse, error)
}

// Reply is the outcome of one exchange. Err carries the underlying
// failure when Text is a fallback message.
type Reply struct {
	Text              string
	NeedsConfirmation bool
	Err               error
}

// Assistant relays messages to the backend assistant and keeps the
// conversation history. Only the most recent proposed action can be
// confirmed; sending a new message discards older proposals.
type Assistant struct {
	backend Backend
	context *ConversationContext

	mu      sync.Mutex
	pending json.RawMessage
	busy    bool
}

// New creates an assistant whose history starts with the greeting.
func New(backend Backend) *Assistant {
	a := &Assistant{
		backend: backend,
		context: NewConversationContext(),
	}
	a.context.AddMessage(RoleAssistant, Greeting, nil)
	return a
}

// Messages returns a copy of the conversation history.
func (a *Assistant) Messages() []Message {
	return a.context.GetMessages()
}

// Pending reports whether an action awaits approval.
func (a *Assistant) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Busy reports whether a request is outstanding.
func (a *Assistant) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Reset clears the conversation history back to the greeting.
func (a *Assistant) Reset() {
	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()

	a.context.Reset()
	a.context.AddMessage(RoleAssistant, Greeting, nil)
}

// Send posts a user message. Backend failures are recorded in the
// history as a fallback reply and returned in Reply.Err.
func (a *Assistant) Send(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	if !a.begin() {
		return Reply{}, ErrBusy
	}
	defer a.end()

	a.clearPending()
	a.context.AddMessage(RoleUser, text, nil)

	resp, err := a.backend.Chat(ctx, text)
	if err != nil {
		log.WithError(err).Warn("assistant chat failed")
		a.context.AddMessage(RoleAssistant, chatFailed, nil)
		return Reply{Text: chatFailed, Err: err}, nil
	}

	reply := resp.Message
	if reply == "" {
		reply = noReply
	}

	if resp.NeedsConfirmation() {
		a.mu.Lock()
		a.pending = resp.PendingAction
		a.mu.Unlock()
		a.context.AddMessage(RoleAssistant, reply, resp.PendingAction)
		return Reply{Text: reply, NeedsConfirmation: true}, nil
	}

	a.context.AddMessage(RoleAssistant, reply, nil)
	return Reply{Text: reply}, nil
}

// Confirm approves or rejects the pending action. The proposal is
// consumed whether or not the backend call succeeds.
func (a *Assistant) Confirm(ctx context.Context, approved bool) (Reply, error) {
	if !a.begin() {
		return Reply{}, ErrBusy
	}
	defer a.end()

	a.mu.Lock()
	action := a.pending
	a.mu.Unlock()
	if action == nil {
		return Reply{}, ErrNoPending
	}
	a.clearPending()

	resp, err := a.backend.ConfirmAction(ctx, action, approved)
	if err != nil {
		log.WithError(err).WithField("approved", approved).Warn("assistant action failed")
		a.context.AddMessage(RoleAssistant, actionFailed, nil)
		return Reply{Text: actionFailed, Err: err}, nil
	}

	reply := resp.Message
	if reply == "" {
		reply = actionCancelled
		if approved {
			reply = actionApproved
		}
	}
	a.context.AddMessage(RoleAssistant, reply, nil)
	return Reply{Text: reply}, nil
}

func (a *Assistant) begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return false
	}
	a.busy = true
	return true
}

func (a *Assistant) end() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
}

func (a *Assistant) clearPending() {
	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()
	a.context.ClearPending()
}

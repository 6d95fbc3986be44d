// Package session holds the signed-in user's bearer token and profile and
// notifies subscribers when either changes.
package session

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

// EventKind identifies a session change.
type EventKind int

const (
	SignedIn EventKind = iota
	UserChanged
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed-in"
	case UserChanged:
		return "user-changed"
	case SignedOut:
		return "signed-out"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to subscribers after the session changes.
type Event struct {
	Kind EventKind
	User *model.User
}

// TokenStore persists the token across runs.
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error
}

// Session is safe for concurrent use. Subscribers are called outside the
// session lock, on the goroutine that made the change.
type Session struct {
	mu     sync.RWMutex
	token  string
	user   *model.User
	store  TokenStore
	subs   map[int]func(Event)
	nextID int
	now    func() time.Time
}

// New creates an empty session. store may be nil for an in-memory session.
func New(store TokenStore) *Session {
	return &Session{
		store: store,
		subs:  make(map[int]func(Event)),
		now:   time.Now,
	}
}

// Restore loads a persisted token. An expired or unreadable token is
// discarded and the session stays signed out.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	token, err := s.store.LoadToken()
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}
	if token == "" {
		return nil
	}

	claims, err := ParseClaims(token)
	if err != nil || claims.Expired(s.now()) {
		log.WithError(err).Info("discarding stored token")
		if delErr := s.store.DeleteToken(); delErr != nil {
			return fmt.Errorf("deleting stale token: %w", delErr)
		}
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// User returns the current user, if known.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// UserID returns the current user's id, or 0 when unknown.
func (s *Session) UserID() int64 {
	u, ok := s.User()
	if !ok {
		return 0
	}
	return u.ID
}

// SetToken stores a freshly issued token, persists it and emits SignedIn.
// The token is held for this run even when persisting fails; that error
// is returned after SignedIn has been emitted.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	var saveErr error
	if s.store != nil {
		if err := s.store.SaveToken(token); err != nil {
			log.WithError(err).Warn("persisting session token")
			saveErr = fmt.Errorf("saving token: %w", err)
		}
	}
	s.publish(Event{Kind: SignedIn})
	return saveErr
}

// SetUser records the signed-in user's profile and emits UserChanged.
func (s *Session) SetUser(u model.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	s.publish(Event{Kind: UserChanged, User: &u})
}

// Clear forgets the token and user, removes the persisted token and emits
// SignedOut. Clearing an empty session emits nothing.
func (s *Session) Clear() {
	s.mu.Lock()
	s.clearLocked()
}

// ClearIf clears the session only while it still holds token. A rejection
// of a token that has since been replaced leaves the new sign-in alone.
func (s *Session) ClearIf(token string) bool {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	return true
}

// clearLocked is called with s.mu held and releases it.
func (s *Session) clearLocked() {
	had := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteToken(); err != nil {
			log.WithError(err).Warn("deleting stored token")
		}
	}
	if had {
		s.publish(Event{Kind: SignedOut})
	}
}

// Subscribe registers fn for session events and returns a function that
// removes it.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) publish(e Event) {
	s.mu.RLock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	log.WithField("event", e.Kind).Debug("session changed")
	for _, fn := range subs {
		fn(e)
	}
}

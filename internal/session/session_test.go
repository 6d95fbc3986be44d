package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

type memStore struct {
	token   string
	deletes int
	saveErr error
}

func (m *memStore) LoadToken() (string, error) { return m.token, nil }

func (m *memStore) SaveToken(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memStore) DeleteToken() error {
	m.token = ""
	m.deletes++
	return nil
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ana",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSessionLifecycleEvents(t *testing.T) {
	store := &memStore{}
	s := New(store)

	var got []EventKind
	unsubscribe := s.Subscribe(func(e Event) { got = append(got, e.Kind) })

	require.NoError(t, s.SetToken("tok"))
	s.SetUser(model.User{ID: 3, Username: "ana"})
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok", store.token)
	assert.Equal(t, int64(3), s.UserID())

	s.Clear()
	assert.False(t, s.IsAuthenticated())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Empty(t, store.token)

	s.Clear()
	assert.Equal(t, []EventKind{SignedIn, UserChanged, SignedOut}, got)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.SetToken("again"))
	assert.Len(t, got, 3)
}

func TestClearIfKeepsNewerToken(t *testing.T) {
	store := &memStore{}
	s := New(store)
	var got []EventKind
	s.Subscribe(func(e Event) { got = append(got, e.Kind) })

	require.NoError(t, s.SetToken("old"))
	require.NoError(t, s.SetToken("fresh"))

	assert.False(t, s.ClearIf("old"))
	assert.Equal(t, "fresh", s.Token())
	assert.Equal(t, "fresh", store.token)
	assert.Equal(t, []EventKind{SignedIn, SignedIn}, got)

	assert.True(t, s.ClearIf("fresh"))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, []EventKind{SignedIn, SignedIn, SignedOut}, got)
}

func TestSetTokenSignsInWhenSaveFails(t *testing.T) {
	store := &memStore{saveErr: errors.New("keyring locked")}
	s := New(store)
	var got []EventKind
	s.Subscribe(func(e Event) { got = append(got, e.Kind) })

	err := s.SetToken("tok")
	require.Error(t, err)
	assert.ErrorContains(t, err, "keyring locked")
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, []EventKind{SignedIn}, got)
}

func TestSessionUserChangedCarriesUser(t *testing.T) {
	s := New(nil)
	var user *model.User
	s.Subscribe(func(e Event) {
		if e.Kind == UserChanged {
			user = e.User
		}
	})

	s.SetUser(model.User{ID: 9, FullName: "Rui Costa"})
	require.NotNil(t, user)
	assert.Equal(t, "Rui Costa", user.DisplayName())
}

func TestRestoreKeepsValidToken(t *testing.T) {
	token := signed(t, time.Now().Add(time.Hour))
	s := New(&memStore{token: token})

	require.NoError(t, s.Restore())
	assert.Equal(t, token, s.Token())
}

func TestRestoreDiscardsExpiredToken(t *testing.T) {
	store := &memStore{token: signed(t, time.Now().Add(-time.Minute))}
	s := New(store)

	require.NoError(t, s.Restore())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, store.deletes)
}

func TestRestoreDiscardsMalformedToken(t *testing.T) {
	store := &memStore{token: "not-a-jwt"}
	s := New(store)

	require.NoError(t, s.Restore())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, store.token)
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c, err := ParseClaims(signed(t, exp))
	require.NoError(t, err)

	assert.Equal(t, "ana", c.Subject)
	assert.True(t, exp.Equal(c.ExpiresAt))
	assert.False(t, c.Expired(exp.Add(-time.Second)))
	assert.True(t, c.Expired(exp))
	assert.False(t, Claims{}.Expired(time.Now()))
}

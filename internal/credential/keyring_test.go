package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("api", "secret"))
	got, err := s.Get("api")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	require.NoError(t, s.Delete("api"))
	require.NoError(t, s.Delete("api"))
	_, err = s.Get("api")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenStore(t *testing.T) {
	ts := NewTokenStore(NewStore(keyring.NewArrayKeyring(nil)))

	token, err := ts.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, ts.SaveToken("abc.def.ghi"))
	token, err = ts.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, ts.DeleteToken())
	token, err = ts.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

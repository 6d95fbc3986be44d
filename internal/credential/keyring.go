package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/taskboard/internal/model"
)

const serviceName = "taskboard"

// TokenKey is the fixed name the session token is stored under.
const TokenKey = "token"

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes credentials in a keyring.
type Store struct {
	ring keyring.Keyring
}

// Open returns a Store backed by the system keyring, falling back to an
// encrypted file under the config directory.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(model.ConfigDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key string, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "taskboard " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Removing a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// TokenStore adapts a Store to hold the single session token.
type TokenStore struct {
	store *Store
}

// NewTokenStore returns a TokenStore keyed by TokenKey.
func NewTokenStore(s *Store) *TokenStore {
	return &TokenStore{store: s}
}

// LoadToken returns the stored token, or "" when none is stored.
func (t *TokenStore) LoadToken() (string, error) {
	token, err := t.store.Get(TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}

// SaveToken persists token.
func (t *TokenStore) SaveToken(token string) error {
	return t.store.Set(TokenKey, token)
}

// DeleteToken removes the stored token.
func (t *TokenStore) DeleteToken() error {
	return t.store.Delete(TokenKey)
}

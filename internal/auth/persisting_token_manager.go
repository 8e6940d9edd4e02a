package auth

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
)

// TokenPersister saves refreshed tokens, for example to a CLI config file.
type TokenPersister interface {
	UpdateToken(key string, token *Token) error
}

// PersistingTokenManager wraps a TokenManager and persists every newly obtained token.
type PersistingTokenManager struct {
	inner     TokenManager
	persister TokenPersister
	key       string
	mutex     sync.Mutex
	lastSaved string
	onError   func(error)
}

// NewPersistingTokenManager creates a token manager that persists tokens under key.
// Persistence failures never fail a request; they are passed to onError, which defaults to printing a warning.
func NewPersistingTokenManager(inner TokenManager, persister TokenPersister, key string, onError func(error)) *PersistingTokenManager {
	if onError == nil {
		onError = func(err error) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
		}
	}

	manager := &PersistingTokenManager{
		inner:     inner,
		persister: persister,
		key:       key,
		onError:   onError,
	}

	if current := inner.Current(); current != nil {
		manager.lastSaved = current.AccessToken
	}

	return manager
}

// GetToken returns a valid access token and persists it if it changed.
func (m *PersistingTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.inner.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a refresh and persists the result.
func (m *PersistingTokenManager) RefreshToken(ctx context.Context) error {
	err := m.inner.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}

	m.persistIfChanged()

	return nil
}

// SetToken sets the token on the wrapped manager without persisting it.
func (m *PersistingTokenManager) SetToken(token, tokenType string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.inner.SetToken(token, tokenType, expiresAt)
	m.lastSaved = token
}

// Current returns the wrapped manager's token.
func (m *PersistingTokenManager) Current() *Token {
	return m.inner.Current()
}

func (m *PersistingTokenManager) persistIfChanged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.inner.Current()
	if current == nil || current.AccessToken == m.lastSaved {
		return
	}

	err := m.persist(current)
	if err != nil {
		m.onError(err)

		return
	}

	m.lastSaved = current.AccessToken
}

func (m *PersistingTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return constants.ErrNoConfigPersister
	}

	err := m.persister.UpdateToken(m.key, token)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}

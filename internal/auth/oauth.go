package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// OAuth2Config holds the credentials used to obtain tokens from an OIDC provider.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	// TokenType of AccessToken. Defaults to Bearer.
	TokenType string
	Scopes    []string

	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// OAuth2TokenManager obtains and refreshes tokens.
//
// Grant precedence: refresh_token (when a refresh token is known), then password,
// then client_credentials. A failed refresh falls through to the next available grant.
//
// Concurrent callers share one token request. A caller whose context ends stops
// waiting; the request itself runs to completion for the others.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	group  singleflight.Group
	mutex  sync.Mutex
}

// NewOAuth2TokenManager creates a token manager. A configured AccessToken is stored as the initial token.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
	}

	if config.AccessToken != "" {
		token := &Token{
			AccessToken:  config.AccessToken,
			TokenType:    tokenTypeOrDefault(config.TokenType),
			RefreshToken: config.RefreshToken,
		}

		if expiresAt, err := ExpiryFromJWT(config.AccessToken); err == nil {
			token.ExpiresAt = expiresAt
		}

		manager.store.Set(token)
	}

	return manager
}

// GetToken returns a valid access token, fetching a new one if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.shared(ctx, "token", func(fetchCtx context.Context) (*Token, error) {
		if current := m.store.Get(); current.Valid() {
			return current, nil
		}

		return m.fetch(fetchCtx)
	})
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken forces a new token to be fetched.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	_, err := m.shared(ctx, "refresh", m.fetch)

	return err
}

// shared runs fn once for all concurrent callers of key and waits for it or for ctx.
func (m *OAuth2TokenManager) shared(ctx context.Context, key string, fn func(context.Context) (*Token, error)) (*Token, error) {
	result := m.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.SharedFetchTimeout)
		defer cancel()

		m.mutex.Lock()
		defer m.mutex.Unlock()

		return fn(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}

		token, _ := res.Val.(*Token)

		return token, nil
	}
}

// SetToken manually sets the access token. An empty tokenType means Bearer.
func (m *OAuth2TokenManager) SetToken(token, tokenType string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		TokenType:    tokenTypeOrDefault(tokenType),
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}

// Current returns a copy of the stored token, or nil if none has been obtained.
func (m *OAuth2TokenManager) Current() *Token {
	return m.store.Get()
}

// fetch runs the first grant that succeeds and stores the result. Callers hold m.mutex.
func (m *OAuth2TokenManager) fetch(ctx context.Context) (*Token, error) {
	if m.config.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.config.HTTPClient)
	}

	previous := m.store.Get()

	refreshToken := m.config.RefreshToken
	if previous != nil && previous.RefreshToken != "" {
		refreshToken = previous.RefreshToken
	}

	hasPassword := m.config.Username != "" && m.config.Password != ""
	hasClientCredentials := m.config.ClientID != "" && m.config.ClientSecret != ""

	if refreshToken == "" && !hasPassword && !hasClientCredentials {
		return nil, constants.ErrNoValidCredentials
	}

	var (
		raw *oauth2.Token
		err error
	)

	if refreshToken != "" {
		raw, err = m.oauth2Config().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
		if err != nil && !hasPassword && !hasClientCredentials {
			return nil, fmt.Errorf("refreshing token: %w", err)
		}
	}

	if raw == nil && hasPassword {
		raw, err = m.oauth2Config().PasswordCredentialsToken(ctx, m.config.Username, m.config.Password)
		if err != nil {
			return nil, fmt.Errorf("password grant: %w", err)
		}
	}

	if raw == nil {
		raw, err = m.clientCredentialsConfig().Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("client credentials grant: %w", err)
		}
	}

	token := convertToken(raw)
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	m.store.Set(token)

	return token, nil
}

func (m *OAuth2TokenManager) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: m.config.TokenURL},
		Scopes:       m.config.Scopes,
	}
}

func (m *OAuth2TokenManager) clientCredentialsConfig() *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		TokenURL:     m.config.TokenURL,
		Scopes:       m.config.Scopes,
	}
}

// convertToken maps an oauth2.Token onto Token, filling the expiry from the JWT when the provider omitted it.
func convertToken(raw *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  raw.AccessToken,
		TokenType:    raw.TokenType,
		RefreshToken: raw.RefreshToken,
		ExpiresAt:    raw.Expiry,
	}

	token.TokenType = tokenTypeOrDefault(token.TokenType)

	if scope, ok := raw.Extra("scope").(string); ok {
		token.Scope = scope
	}

	if idToken, ok := raw.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}

	if token.ExpiresAt.IsZero() {
		if expiresAt, err := ExpiryFromJWT(token.AccessToken); err == nil {
			token.ExpiresAt = expiresAt
		}
	}

	if !token.ExpiresAt.IsZero() {
		token.ExpiresIn = int(time.Until(token.ExpiresAt).Seconds())
	}

	return token
}

func tokenTypeOrDefault(tokenType string) string {
	if tokenType == "" {
		return constants.DefaultTokenType
	}

	return tokenType
}

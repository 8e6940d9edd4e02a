package weaviate

import (
	"sync"
	"time"
)

// Auth is the credential strategy used by a connection. It is one of NoAuth, APIKey or *OIDC.
type Auth interface {
	isAuth()
}

// NoAuth sends no Authorization header.
type NoAuth struct{}

func (NoAuth) isAuth() {}

// APIKey is sent verbatim as the Authorization header value. Include any scheme
// prefix, for example "Bearer my-key", in the key itself.
type APIKey string

func (APIKey) isAuth() {}

// OIDCCredentials describe how to obtain tokens from the OIDC provider.
// A refresh token is tried first, then username/password, then client credentials.
type OIDCCredentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	Scopes       []string

	// TokenURL skips discovery through /.well-known/openid-configuration when set.
	TokenURL string
}

// OIDCToken is the token obtained from the provider.
type OIDCToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	Scope        string    `json:"scope,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// OIDC authenticates with tokens from an OpenID Connect provider.
type OIDC struct {
	Credentials OIDCCredentials

	mutex sync.RWMutex
	token *OIDCToken
}

func (*OIDC) isAuth() {}

// NewOIDC creates OIDC auth. token may be nil; it is obtained on the first request.
func NewOIDC(credentials OIDCCredentials, token *OIDCToken) *OIDC {
	return &OIDC{
		Credentials: credentials,
		token:       token,
	}
}

// Token returns a copy of the current token, or nil before the first successful login.
func (o *OIDC) Token() *OIDCToken {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if o.token == nil {
		return nil
	}

	token := *o.token

	return &token
}

func (o *OIDC) setToken(token *OIDCToken) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.token = token
}

func authEnabled(auth Auth) bool {
	switch auth.(type) {
	case APIKey, *OIDC:
		return true
	default:
		return false
	}
}

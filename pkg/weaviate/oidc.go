package weaviate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gmanninglive/weaviate-client/internal/auth"
	"github.com/gmanninglive/weaviate-client/internal/constants"
	wvhttp "github.com/gmanninglive/weaviate-client/internal/http"
	"golang.org/x/sync/singleflight"
)

// OIDCAuthenticator obtains and refreshes tokens for an *OIDC auth.
// Refresh runs before every request; it returns the stored token while it is still valid.
type OIDCAuthenticator struct {
	oidc      *OIDC
	baseURI   string
	httpDoer  *http.Client
	persister auth.TokenPersister
	key       string
	logger    Logger

	group   singleflight.Group
	mutex   sync.Mutex
	config  *auth.OAuth2Config
	manager auth.TokenManager
}

// NewOIDCAuthenticator creates an authenticator that discovers the token endpoint through baseURI.
func NewOIDCAuthenticator(oidc *OIDC, baseURI string, logger Logger) *OIDCAuthenticator {
	if logger == nil {
		logger = noopLogger{}
	}

	return &OIDCAuthenticator{
		oidc:    oidc,
		baseURI: baseURI,
		logger:  logger,
	}
}

// WithTokenPersister saves every newly obtained token under key.
func (a *OIDCAuthenticator) WithTokenPersister(persister auth.TokenPersister, key string) *OIDCAuthenticator {
	a.persister = persister
	a.key = key

	return a
}

// WithHTTPClient sets the client used for token requests.
func (a *OIDCAuthenticator) WithHTTPClient(client *http.Client) *OIDCAuthenticator {
	a.httpDoer = client

	return a
}

// Refresh returns a valid token, running the credential grant when the stored one has expired.
// Concurrent callers share one refresh. A caller whose ctx ends stops waiting with an
// AuthTokenRequest error wrapping ctx.Err().
func (a *OIDCAuthenticator) Refresh(ctx context.Context) (*OIDCToken, error) {
	result := a.group.DoChan("token", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.SharedFetchTimeout)
		defer cancel()

		return a.refresh(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, &AuthError{Reason: AuthTokenRequest, Err: ctx.Err()}
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}

		token := *res.Val.(*OIDCToken)

		return &token, nil
	}
}

func (a *OIDCAuthenticator) refresh(ctx context.Context) (*OIDCToken, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	manager := a.tokenManager()

	if !manager.Current().Valid() && a.config.TokenURL == "" && canGrant(a.config) {
		err := a.discover(ctx)
		if err != nil {
			return nil, err
		}
	}

	_, err := manager.GetToken(ctx)
	if err != nil {
		if errors.Is(err, constants.ErrNoValidCredentials) {
			return nil, &AuthError{Reason: AuthMissingToken, Err: err}
		}

		return nil, &AuthError{Reason: AuthTokenRequest, Err: err}
	}

	current := manager.Current()
	if current == nil || current.AccessToken == "" {
		return nil, &AuthError{Reason: AuthMissingToken}
	}

	token := &OIDCToken{
		AccessToken:  current.AccessToken,
		TokenType:    current.TokenType,
		ExpiresIn:    current.ExpiresIn,
		Scope:        current.Scope,
		RefreshToken: current.RefreshToken,
		IDToken:      current.IDToken,
		ExpiresAt:    current.ExpiresAt,
	}
	a.oidc.setToken(token)

	return token, nil
}

// Authorization returns the header value for the current token.
func (a *OIDCAuthenticator) Authorization(ctx context.Context) (string, error) {
	token, err := a.Refresh(ctx)
	if err != nil {
		return "", err
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = constants.DefaultTokenType
	}

	return tokenType + " " + token.AccessToken, nil
}

// tokenManager builds the manager on first use. Callers hold a.mutex.
func (a *OIDCAuthenticator) tokenManager() auth.TokenManager {
	if a.manager != nil {
		return a.manager
	}

	credentials := a.oidc.Credentials
	a.config = &auth.OAuth2Config{
		TokenURL:     credentials.TokenURL,
		ClientID:     credentials.ClientID,
		ClientSecret: credentials.ClientSecret,
		Username:     credentials.Username,
		Password:     credentials.Password,
		RefreshToken: credentials.RefreshToken,
		Scopes:       credentials.Scopes,
		HTTPClient:   a.httpDoer,
	}

	existing := a.oidc.Token()
	if existing != nil {
		a.config.AccessToken = existing.AccessToken
		a.config.TokenType = existing.TokenType
		if a.config.RefreshToken == "" {
			a.config.RefreshToken = existing.RefreshToken
		}
	}

	var manager auth.TokenManager = auth.NewOAuth2TokenManager(a.config)

	if existing != nil && !existing.ExpiresAt.IsZero() {
		manager.SetToken(existing.AccessToken, existing.TokenType, existing.ExpiresAt)
	}

	if a.persister != nil {
		manager = auth.NewPersistingTokenManager(manager, a.persister, a.key, func(err error) {
			a.logger.Warn("Failed to persist refreshed token", map[string]interface{}{"error": err.Error()})
		})
	}

	a.manager = manager

	return manager
}

// discover resolves the token endpoint and fills client id and scopes the caller left empty.
func (a *OIDCAuthenticator) discover(ctx context.Context) error {
	provider, err := DiscoverOIDCProvider(ctx, a.baseURI, a.httpDoer)
	if err != nil {
		return err
	}

	if a.config.ClientID == "" {
		a.config.ClientID = provider.ClientID
	}

	if len(a.config.Scopes) == 0 {
		a.config.Scopes = provider.Scopes
	}

	a.config.TokenURL = provider.TokenEndpoint
	a.logger.Debug("Discovered OIDC token endpoint", map[string]interface{}{"token_endpoint": provider.TokenEndpoint})

	return nil
}

// OIDCProvider is the result of token endpoint discovery.
type OIDCProvider struct {
	TokenEndpoint string
	ClientID      string
	Scopes        []string
}

// canGrant reports whether config holds credentials for at least one grant.
func canGrant(config *auth.OAuth2Config) bool {
	return config.RefreshToken != "" ||
		(config.Username != "" && config.Password != "") ||
		(config.ClientID != "" && config.ClientSecret != "")
}

type providerConfiguration struct {
	TokenEndpoint string `json:"token_endpoint"`
}

// DiscoverOIDCProvider reads {baseURI}/.well-known/openid-configuration and then the
// provider document it points at. A nil httpClient uses a short discovery timeout.
func DiscoverOIDCProvider(ctx context.Context, baseURI string, httpClient *http.Client) (*OIDCProvider, error) {
	resp, err := unauthenticatedClient(baseURI, httpClient).Get(ctx, constants.PathOpenIDConfiguration, nil)
	if err != nil {
		return nil, &AuthError{Reason: AuthDiscovery, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &AuthError{Reason: AuthDiscovery, Err: constants.ErrOIDCNotEnabled}
	}

	if resp.StatusCode >= constants.HTTPStatusMultipleChoices {
		return nil, &AuthError{Reason: AuthDiscovery, Err: newStatusError(&Response{StatusCode: resp.StatusCode, Body: resp.Body})}
	}

	var openID OpenIDConfiguration

	err = json.Unmarshal(resp.Body, &openID)
	if err != nil {
		return nil, &AuthError{Reason: AuthDiscovery, Err: fmt.Errorf("parsing openid configuration: %w", err)}
	}

	resp, err = unauthenticatedClient("", httpClient).Get(ctx, openID.Href, nil)
	if err != nil {
		return nil, &AuthError{Reason: AuthDiscovery, Err: err}
	}

	if resp.StatusCode >= constants.HTTPStatusMultipleChoices {
		return nil, &AuthError{Reason: AuthDiscovery, Err: newStatusError(&Response{StatusCode: resp.StatusCode, Body: resp.Body})}
	}

	var provider providerConfiguration

	err = json.Unmarshal(resp.Body, &provider)
	if err != nil {
		return nil, &AuthError{Reason: AuthDiscovery, Err: fmt.Errorf("parsing provider configuration: %w", err)}
	}

	if provider.TokenEndpoint == "" {
		return nil, &AuthError{Reason: AuthDiscovery, Err: constants.ErrNoTokenEndpoint}
	}

	return &OIDCProvider{
		TokenEndpoint: provider.TokenEndpoint,
		ClientID:      openID.ClientID,
		Scopes:        openID.Scopes,
	}, nil
}

func unauthenticatedClient(baseURL string, httpClient *http.Client) *wvhttp.Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	return wvhttp.NewClient(baseURL, nil, wvhttp.WithHTTPClient(httpClient))
}

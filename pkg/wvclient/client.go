package wvclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
)

// Static errors for err113 compliance.
var (
	ErrEndpointRequired  = errors.New("endpoint is required")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
	ErrSkipTLSOnlyInDev  = errors.New("skipTLS is only allowed in development environments")
	ErrVersionUnresolved = errors.New("server version could not be resolved")
)

// New creates a client with automatic OIDC token endpoint discovery.
func New(ctx context.Context, config *weaviate.Config) (*weaviate.Client, error) {
	if config == nil {
		return nil, weaviate.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	scheme, host, err := normalizeEndpoint(config.Endpoint)
	if err != nil {
		return nil, err
	}

	httpClient, err := createHTTPClient(config)
	if err != nil {
		return nil, err
	}

	auth, err := buildAuth(ctx, config, fmt.Sprintf("%s://%s%s", scheme, host, constants.APIVersionPrefix), httpClient)
	if err != nil {
		return nil, err
	}

	builder := weaviate.NewConnectionBuilder(scheme, host).
		WithAuth(auth).
		WithLogger(config.Logger).
		WithDebug(config.Debug).
		WithUserAgent(config.UserAgent).
		WithMetrics(config.Metrics)

	for name, value := range config.Headers {
		builder.WithHeader(name, value)
	}

	if config.RetryMax > 0 {
		waitMin, waitMax := config.RetryWaitMin, config.RetryWaitMax
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		builder.WithRetry(config.RetryMax, waitMin, waitMax)
	}

	if httpClient != nil {
		builder.WithHTTPClient(httpClient)
	}

	if config.Cache != nil {
		cache, err := weaviate.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("creating version cache: %w", err)
		}

		builder.WithVersionCache(cache, config.VersionCacheTTL)
	}

	if config.TokenPersister != nil {
		key := config.TokenPersisterKey
		if key == "" {
			key = config.Endpoint
		}

		builder.WithTokenPersister(config.TokenPersister, key)
	}

	conn, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	client := weaviate.NewClient(conn)

	if config.ResolveVersionOnInit && client.ServerVersion(ctx) == "" {
		return nil, fmt.Errorf("%w at %s", ErrVersionUnresolved, conn.BaseURI())
	}

	return client, nil
}

// normalizeEndpoint splits endpoint into scheme and host. The host keeps any path prefix
// other than a trailing "/v1".
func normalizeEndpoint(endpoint string) (string, string, error) {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	endpoint = strings.TrimSuffix(endpoint, constants.APIVersionPrefix)

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	if parsed.Host == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidEndpoint, endpoint)
	}

	return parsed.Scheme, parsed.Host + strings.TrimSuffix(parsed.Path, "/"), nil
}

// needsOIDC checks if the config carries OIDC credentials.
func needsOIDC(config *weaviate.Config) bool {
	return config.APIKey == "" &&
		(config.AccessToken != "" || config.RefreshToken != "" || config.Username != "" || config.ClientSecret != "")
}

// needsGrant checks if the config can obtain tokens, which requires a token endpoint.
func needsGrant(config *weaviate.Config) bool {
	return config.RefreshToken != "" || (config.Username != "" && config.Password != "") ||
		(config.ClientID != "" && config.ClientSecret != "")
}

func buildAuth(ctx context.Context, config *weaviate.Config, baseURI string, httpClient *http.Client) (weaviate.Auth, error) {
	if config.APIKey != "" {
		return weaviate.APIKey(bearer(config.APIKey)), nil
	}

	if !needsOIDC(config) {
		return weaviate.NoAuth{}, nil
	}

	credentials := weaviate.OIDCCredentials{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
		Scopes:       config.Scopes,
		TokenURL:     config.TokenURL,
	}

	if credentials.TokenURL == "" && needsGrant(config) {
		provider, err := weaviate.DiscoverOIDCProvider(ctx, baseURI, httpClient)
		if err != nil {
			return nil, fmt.Errorf("discovering OIDC token endpoint: %w", err)
		}

		credentials.TokenURL = provider.TokenEndpoint

		if credentials.ClientID == "" {
			credentials.ClientID = provider.ClientID
		}

		if len(credentials.Scopes) == 0 {
			credentials.Scopes = provider.Scopes
		}
	}

	var token *weaviate.OIDCToken
	if config.AccessToken != "" {
		token = &weaviate.OIDCToken{
			AccessToken:  config.AccessToken,
			TokenType:    constants.DefaultTokenType,
			RefreshToken: config.RefreshToken,
			ExpiresAt:    config.AccessTokenExpiresAt,
		}
	}

	return weaviate.NewOIDC(credentials, token), nil
}

// bearer prefixes key with the Bearer scheme unless the caller already did.
func bearer(key string) string {
	prefix := constants.DefaultTokenType + " "
	if len(key) >= len(prefix) && strings.EqualFold(key[:len(prefix)], prefix) {
		return key
	}

	return prefix + key
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("WEAVIATE_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// createHTTPClient returns nil when the default transport will do.
func createHTTPClient(config *weaviate.Config) (*http.Client, error) {
	if config.HTTPTimeout == 0 && !config.SkipTLSVerify {
		return nil, nil //nolint:nilnil // nil selects the default client
	}

	httpClient := &http.Client{
		Timeout: config.HTTPTimeout,
	}

	if config.SkipTLSVerify {
		if !isDevelopmentEnvironment() {
			return nil, fmt.Errorf("%w (set WEAVIATE_DEV_MODE=true)", ErrSkipTLSOnlyInDev)
		}

		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- Protected by development environment check above
		}
	}

	return httpClient, nil
}

// NewWithEndpoint creates a new client with just an endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (*weaviate.Client, error) {
	return New(ctx, &weaviate.Config{
		Endpoint: endpoint,
	})
}

// NewWithAPIKey creates a new client authenticated with an API key.
func NewWithAPIKey(ctx context.Context, endpoint, apiKey string) (*weaviate.Client, error) {
	return New(ctx, &weaviate.Config{
		Endpoint: endpoint,
		APIKey:   apiKey,
	})
}

// NewWithClientCredentials creates a new client using the OIDC client credentials grant.
func NewWithClientCredentials(ctx context.Context, endpoint, clientID, clientSecret string, scopes ...string) (*weaviate.Client, error) {
	return New(ctx, &weaviate.Config{
		Endpoint:     endpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
	})
}

// NewWithPassword creates a new client using the OIDC password grant.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (*weaviate.Client, error) {
	return New(ctx, &weaviate.Config{
		Endpoint: endpoint,
		Username: username,
		Password: password,
	})
}

// NewWithToken creates a new client with an OIDC access token and optional refresh token.
func NewWithToken(ctx context.Context, endpoint, accessToken, refreshToken string) (*weaviate.Client, error) {
	return New(ctx, &weaviate.Config{
		Endpoint:     endpoint,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

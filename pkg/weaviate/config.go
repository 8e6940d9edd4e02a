package weaviate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config represents client configuration for building a weaviate.Client with wvclient.New.
//
// # Authentication precedence
//
//  1. APIKey: sent as "Bearer <APIKey>" on every request. A key that already
//     carries the prefix is sent unchanged.
//  2. AccessToken: used as an OIDC token until it expires. When a RefreshToken,
//     Username/Password or ClientID/ClientSecret is also set, a new token is
//     obtained from the provider after expiry.
//  3. RefreshToken, Username/Password, ClientID/ClientSecret: OIDC grants,
//     tried in that order.
//  4. No credentials: requests are sent without authentication.
//
// # Token URL discovery
//
// If OIDC credentials are set and TokenURL is not provided, wvclient.New reads
// "/v1/.well-known/openid-configuration" from the server and the provider
// document it points at, and uses the provider's token_endpoint.
//
// # Timeouts and retries
//
// Requests are not retried and have no timeout unless configured. Prefer
// context deadlines; HTTPTimeout applies to every request including token
// requests. RetryMax > 0 retries 429, 5xx and connection failures.
type Config struct {
	// Required fields
	// Endpoint: server URL (e.g., "http://localhost:8080"). wvclient.New trims a
	// trailing slash and adds "https://" if no scheme is present. Any "/v1"
	// suffix is removed; the client adds it to every request.
	Endpoint string

	// Authentication options (provide one)
	// APIKey: static API key, bare or already prefixed with "Bearer ".
	APIKey string
	// ClientID: OIDC client ID. Defaults to the clientId advertised by the server.
	ClientID string
	// ClientSecret: OIDC client secret for the client_credentials grant.
	ClientSecret string
	// Username: account username for the password grant.
	Username string
	// Password: account password for the password grant.
	Password string
	// RefreshToken: refresh token used to renew access tokens.
	RefreshToken string
	// AccessToken: an OIDC access token obtained earlier, for example by the CLI login command.
	AccessToken string
	// AccessTokenExpiresAt: expiry of AccessToken. When zero, the expiry is read from
	// the token's exp claim if it is a JWT.
	AccessTokenExpiresAt time.Time
	// TokenURL: full OIDC token endpoint. Discovered from the server when empty.
	TokenURL string
	// Scopes: OIDC scopes. Defaults to the scopes advertised by the server.
	Scopes []string

	// Optional configurations
	// Headers: sent with every request. Never replace Authorization or Content-Type.
	Headers map[string]string
	// HTTPTimeout: per-request timeout. Zero means no timeout.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures. Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and version warnings.
	Logger Logger
	// SkipTLSVerify: if true, TLS verification is skipped, only when
	// WEAVIATE_DEV_MODE is set. Intended for local development.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// Metrics: registers request counters and duration histograms when set.
	Metrics prometheus.Registerer
	// Cache: backend sharing resolved server versions between clients. Nil disables sharing.
	Cache *CacheConfig
	// VersionCacheTTL: how long a resolved version stays in Cache.
	VersionCacheTTL time.Duration
	// ResolveVersionOnInit: when true, wvclient.New fetches /v1/meta so version
	// gated commands do not pay for it on first use.
	ResolveVersionOnInit bool
	// TokenPersister: saves refreshed OIDC tokens under TokenPersisterKey.
	TokenPersister TokenPersister
	// TokenPersisterKey: key passed to TokenPersister. Defaults to Endpoint.
	TokenPersisterKey string
}

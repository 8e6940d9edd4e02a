package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/auth"
	"github.com/gmanninglive/weaviate-client/internal/constants"
	wvhttp "github.com/gmanninglive/weaviate-client/internal/http"
	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionConfig is the immutable configuration of a Connection.
type ConnectionConfig struct {
	Scheme  string
	Host    string
	Headers http.Header
	Auth    Auth
}

// TokenPersister saves OIDC tokens after every refresh, for example to a config file.
type TokenPersister interface {
	SaveToken(key string, token *OIDCToken) error
}

// ConnectionBuilder collects connection settings. Build may be called more than once;
// every call returns an independent Connection.
type ConnectionBuilder struct {
	scheme          string
	host            string
	headers         http.Header
	auth            Auth
	logger          Logger
	debug           bool
	userAgent       string
	retryMax        int
	retryWaitMin    time.Duration
	retryWaitMax    time.Duration
	registerer      prometheus.Registerer
	versionCache    Cache
	versionCacheTTL time.Duration
	httpClient      *http.Client
	persister       TokenPersister
	persisterKey    string
}

// NewConnectionBuilder seeds a builder with scheme ("http" or "https") and host ("localhost:8080").
func NewConnectionBuilder(scheme, host string) *ConnectionBuilder {
	return &ConnectionBuilder{
		scheme:          scheme,
		host:            host,
		headers:         http.Header{},
		auth:            NoAuth{},
		retryMax:        constants.DefaultRetryMax,
		retryWaitMin:    constants.DefaultRetryWaitMin,
		retryWaitMax:    constants.DefaultRetryWaitMax,
		versionCacheTTL: constants.DefaultVersionCacheTTL,
	}
}

// WithHeaders adds default headers sent with every request.
func (b *ConnectionBuilder) WithHeaders(headers http.Header) *ConnectionBuilder {
	for name, values := range headers {
		for _, value := range values {
			b.headers.Add(name, value)
		}
	}

	return b
}

// WithHeader sets one default header.
func (b *ConnectionBuilder) WithHeader(name, value string) *ConnectionBuilder {
	b.headers.Set(name, value)

	return b
}

// WithAuth sets the credential strategy. nil means NoAuth.
func (b *ConnectionBuilder) WithAuth(auth Auth) *ConnectionBuilder {
	if auth == nil {
		auth = NoAuth{}
	}

	b.auth = auth

	return b
}

// WithLogger sets the logger used for debug traces and version warnings.
func (b *ConnectionBuilder) WithLogger(logger Logger) *ConnectionBuilder {
	b.logger = logger

	return b
}

// WithDebug enables request and response tracing through the logger.
func (b *ConnectionBuilder) WithDebug(debug bool) *ConnectionBuilder {
	b.debug = debug

	return b
}

// WithUserAgent overrides the User-Agent header.
func (b *ConnectionBuilder) WithUserAgent(userAgent string) *ConnectionBuilder {
	b.userAgent = userAgent

	return b
}

// WithRetry enables transport retries of 429/5xx responses and connection failures.
func (b *ConnectionBuilder) WithRetry(retryMax int, waitMin, waitMax time.Duration) *ConnectionBuilder {
	b.retryMax = retryMax
	b.retryWaitMin = waitMin
	b.retryWaitMax = waitMax

	return b
}

// WithMetrics registers request metrics on reg.
func (b *ConnectionBuilder) WithMetrics(reg prometheus.Registerer) *ConnectionBuilder {
	b.registerer = reg

	return b
}

// WithVersionCache shares resolved server versions through cache for ttl.
func (b *ConnectionBuilder) WithVersionCache(cache Cache, ttl time.Duration) *ConnectionBuilder {
	b.versionCache = cache
	if ttl > 0 {
		b.versionCacheTTL = ttl
	}

	return b
}

// WithHTTPClient sets the underlying *http.Client, for example to add a timeout.
func (b *ConnectionBuilder) WithHTTPClient(client *http.Client) *ConnectionBuilder {
	b.httpClient = client

	return b
}

// WithTokenPersister saves refreshed OIDC tokens under key.
func (b *ConnectionBuilder) WithTokenPersister(persister TokenPersister, key string) *ConnectionBuilder {
	b.persister = persister
	b.persisterKey = key

	return b
}

// Build validates the settings and creates a Connection. One trailing "/" is trimmed from the host.
func (b *ConnectionBuilder) Build() (*Connection, error) {
	if b.scheme == "" {
		return nil, &UsageError{Field: "scheme", Msg: ErrSchemeRequired.Error()}
	}

	host := strings.TrimSuffix(b.host, "/")
	if host == "" {
		return nil, &UsageError{Field: "host", Msg: ErrHostRequired.Error()}
	}

	logger := b.logger
	if logger == nil {
		logger = noopLogger{}
	}

	connAuth := b.auth
	if oidc, ok := connAuth.(*OIDC); ok {
		connAuth = NewOIDC(oidc.Credentials, oidc.Token())
	}

	config := ConnectionConfig{
		Scheme:  b.scheme,
		Host:    host,
		Headers: b.headers.Clone(),
		Auth:    connAuth,
	}

	baseURI := fmt.Sprintf("%s://%s%s", config.Scheme, config.Host, constants.APIVersionPrefix)

	authorizer, err := b.authorizer(connAuth, baseURI, logger)
	if err != nil {
		return nil, err
	}

	opts := []wvhttp.Option{
		wvhttp.WithHeaders(config.Headers),
		wvhttp.WithLogger(logger),
		wvhttp.WithDebug(b.debug),
		wvhttp.WithRetryConfig(b.retryMax, b.retryWaitMin, b.retryWaitMax),
	}

	if b.userAgent != "" {
		opts = append(opts, wvhttp.WithUserAgent(b.userAgent))
	}

	if b.httpClient != nil {
		opts = append(opts, wvhttp.WithHTTPClient(b.httpClient))
	}

	if b.registerer != nil {
		metrics, err := wvhttp.NewMetrics(b.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}

		opts = append(opts, wvhttp.WithMetrics(metrics))
	}

	return &Connection{
		config:          config,
		client:          &HTTPClient{client: wvhttp.NewClient(baseURI, authorizer, opts...)},
		logger:          logger,
		versionCache:    b.versionCache,
		versionCacheTTL: b.versionCacheTTL,
	}, nil
}

// authorizer maps the auth variant onto an Authorization header value.
func (b *ConnectionBuilder) authorizer(connAuth Auth, baseURI string, logger Logger) (wvhttp.Authorizer, error) {
	switch typed := connAuth.(type) {
	case NoAuth:
		return nil, nil
	case APIKey:
		key := string(typed)

		return wvhttp.AuthorizerFunc(func(context.Context) (string, error) {
			return key, nil
		}), nil
	case *OIDC:
		authenticator := NewOIDCAuthenticator(typed, baseURI, logger).WithHTTPClient(b.httpClient)
		if b.persister != nil {
			authenticator.WithTokenPersister(&tokenPersisterAdapter{persister: b.persister}, b.persisterKey)
		}

		return authenticator, nil
	default:
		return nil, &UsageError{Field: "auth", Msg: fmt.Sprintf("%s: %T", ErrUnsupportedAuth, connAuth)}
	}
}

type tokenPersisterAdapter struct {
	persister TokenPersister
}

func (a *tokenPersisterAdapter) UpdateToken(key string, token *auth.Token) error {
	return a.persister.SaveToken(key, &OIDCToken{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		ExpiresIn:    token.ExpiresIn,
		Scope:        token.Scope,
		RefreshToken: token.RefreshToken,
		IDToken:      token.IDToken,
		ExpiresAt:    token.ExpiresAt,
	})
}

// Connection is a configured transport to one server. It is safe for concurrent use.
type Connection struct {
	config          ConnectionConfig
	client          *HTTPClient
	logger          Logger
	versionCache    Cache
	versionCacheTTL time.Duration

	versionOnce     sync.Once
	versionProvider *DBVersionProvider
}

// Config returns the connection settings. Headers are a copy.
func (c *Connection) Config() ConnectionConfig {
	config := c.config
	config.Headers = c.config.Headers.Clone()

	return config
}

// Client returns the HTTP client bound to this connection.
func (c *Connection) Client() *HTTPClient {
	return c.client
}

// BaseURI returns {scheme}://{host}/v1.
func (c *Connection) BaseURI() string {
	return c.client.BaseURI()
}

// AuthEnabled reports whether requests carry credentials.
func (c *Connection) AuthEnabled() bool {
	return authEnabled(c.config.Auth)
}

// Logger returns the connection's logger.
func (c *Connection) Logger() Logger {
	return c.logger
}

// DBVersionProvider returns the version provider shared by every command on this connection.
func (c *Connection) DBVersionProvider() *DBVersionProvider {
	c.versionOnce.Do(func() {
		c.versionProvider = NewDBVersionProvider(NewMetaGetter(c)).
			WithCache(c.versionCache, c.BaseURI(), c.versionCacheTTL)
	})

	return c.versionProvider
}

// DBVersionSupport answers version-gated capability questions for this connection.
func (c *Connection) DBVersionSupport() *DBVersionSupport {
	return NewDBVersionSupport(c.DBVersionProvider(), c.logger)
}

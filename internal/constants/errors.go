package constants

import "errors"

// Configuration errors.
var (
	ErrNoHostConfigured = errors.New("no host configured, use 'weaviate config set host <host>' or --host")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// Authentication errors.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrNoTokenEndpoint    = errors.New("no token endpoint in OIDC provider configuration")
	ErrOIDCNotEnabled     = errors.New("OIDC is not enabled on the server")
	ErrInvalidJWTFormat   = errors.New("invalid JWT format")
	ErrNoExpirationClaim  = errors.New("no expiration claim found")
	ErrNoConfigPersister  = errors.New("no config persister configured")
)

// Input errors.
var (
	ErrClassFileRequired = errors.New("--file flag is required")
	ErrInvalidHeader     = errors.New("header must be in the form Name=Value")
	ErrQueryRequired     = errors.New("a query argument or --file is required")
	ErrQueryFailed       = errors.New("query returned errors")
)

// Probe errors.
var (
	ErrServerNotLive  = errors.New("server is not live")
	ErrServerNotReady = errors.New("server is not ready")
)

// Request errors.
var (
	ErrEncodeRequestBody = errors.New("failed to encode request body")
)

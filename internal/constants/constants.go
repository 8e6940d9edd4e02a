package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for discovery requests.
	ShortHTTPTimeout = 10 * time.Second

	// SharedFetchTimeout bounds a fetch that concurrent callers wait on together.
	// It outlives any single caller's context.
	SharedFetchTimeout = 60 * time.Second
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the number of retries performed by the transport.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// API paths and headers.
const (
	// APIVersionPrefix is appended to every base URI.
	APIVersionPrefix = "/v1"

	// HeaderAuthorization is the authorization header name.
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the content type header name.
	HeaderContentType = "Content-Type"

	// HeaderAccept is the accept header name.
	HeaderAccept = "Accept"

	// HeaderUserAgent is the user agent header name.
	HeaderUserAgent = "User-Agent"

	// ContentTypeJSON is sent with every request body.
	ContentTypeJSON = "application/json"

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "weaviate-go-client/1.0"

	// DefaultTokenType is used when a token endpoint omits token_type.
	DefaultTokenType = "Bearer"
)

// Endpoint paths relative to the base URI.
const (
	PathMeta                = "/meta"
	PathSchema              = "/schema"
	PathGraphQL             = "/graphql"
	PathObjects             = "/objects"
	PathLive                = "/.well-known/live"
	PathReady               = "/.well-known/ready"
	PathOpenIDConfiguration = "/.well-known/openid-configuration"
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// Version gate thresholds for class-name namespaced endpoints.
const (
	// NamespacedEndpointsMajor is the first major version with namespaced endpoints.
	NamespacedEndpointsMajor = 1

	// NamespacedEndpointsMinor is the first minor version of NamespacedEndpointsMajor with namespaced endpoints.
	NamespacedEndpointsMinor = 14
)

// HTTP status boundaries.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusMultipleChoices is the first non-2xx status.
	HTTPStatusMultipleChoices = 300

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400
)

// Cache defaults.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultVersionCacheTTL is how long a resolved server version stays in a shared cache.
	DefaultVersionCacheTTL = 10 * time.Minute

	// DefaultNATSBucket is the key-value bucket used for shared version caching.
	DefaultNATSBucket = "weaviate_client"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"
)

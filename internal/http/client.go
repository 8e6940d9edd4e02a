package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/hashicorp/go-retryablehttp"
)

// Logger receives request and response traces when debug logging is enabled.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Authorizer produces the Authorization header value for a request.
// An empty value means the request is sent without the header.
type Authorizer interface {
	Authorization(ctx context.Context) (string, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context) (string, error)

// Authorization calls f.
func (f AuthorizerFunc) Authorization(ctx context.Context) (string, error) {
	return f(ctx)
}

// Client sends requests relative to a base URL and returns the raw response.
// Status codes are never interpreted here.
type Client struct {
	baseURL    string
	authorizer Authorizer
	httpClient *retryablehttp.Client
	headers    http.Header
	userAgent  string
	logger     Logger
	debug      bool
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response tracing.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables retries of 429 and 5xx responses and connection failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithUserAgent overrides the default User-Agent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHeaders sets headers sent with every request. They never replace
// Authorization or Content-Type.
func WithHeaders(headers http.Header) Option {
	return func(c *Client) {
		c.headers = headers.Clone()
	}
}

// WithHTTPClient replaces the underlying *http.Client, for example to set a timeout or TLS config.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

// WithMetrics records request counts and durations.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a client for baseURL. authorizer may be nil.
func NewClient(baseURL string, authorizer Authorizer, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient = &http.Client{}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    baseURL,
		authorizer: authorizer,
		httpClient: retryClient,
		headers:    http.Header{},
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the URL every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one HTTP call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is the raw result of a call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestError reports a request that never produced a response.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Do sends req. The returned error is non-nil only when no response was received.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	authorization := ""

	if c.authorizer != nil {
		value, err := c.authorizer.Authorization(ctx)
		if err != nil {
			return nil, err
		}

		authorization = value
	}

	var body []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", constants.ErrEncodeRequestBody, err)
		}

		body = encoded
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, &RequestError{Method: req.Method, URL: fullURL, Err: err}
	}

	httpReq.Header = c.buildHeaders(req, authorization)

	c.logRequest(req.Method, fullURL, body)

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.Method, "error", time.Since(start))

		return nil, &RequestError{Method: req.Method, URL: fullURL, Err: err}
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.observe(req.Method, "error", time.Since(start))

		return nil, &RequestError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	duration := time.Since(start)
	c.metrics.observe(req.Method, strconv.Itoa(httpResp.StatusCode), duration)
	c.logResponse(httpResp.StatusCode, duration, respBody)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// buildHeaders layers library defaults, configured headers, per-request headers,
// then the computed Authorization and Content-Type values.
func (c *Client) buildHeaders(req *Request, authorization string) http.Header {
	headers := http.Header{}
	headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	headers.Set(constants.HeaderUserAgent, c.userAgent)

	for name, values := range c.headers {
		headers.Del(name)

		for _, value := range values {
			headers.Add(name, value)
		}
	}

	for name, value := range req.Headers {
		headers.Set(name, value)
	}

	if authorization != "" {
		headers.Set(constants.HeaderAuthorization, authorization)
	}

	if sendsContentType(req.Method) {
		headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	return headers
}

// sendsContentType reports whether method carries a JSON body slot. Only GET goes without one.
func sendsContentType(method string) bool {
	return method != http.MethodGet
}

func (c *Client) logRequest(method, fullURL string, body []byte) {
	if !c.debug || c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"method": method,
		"url":    fullURL,
	}

	if len(body) > 0 {
		fields["body"] = string(body)
	}

	c.logger.Debug("HTTP Request", fields)
}

func (c *Client) logResponse(statusCode int, duration time.Duration, body []byte) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status":   statusCode,
		"duration": duration.String(),
		"size":     len(body),
	})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request. body may be nil.
func (c *Client) Delete(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
		Body:   body,
	})
}

// Head performs a HEAD request. body may be nil.
func (c *Client) Head(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodHead,
		Path:   path,
		Body:   body,
	})
}

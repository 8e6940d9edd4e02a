package weaviate

import (
	"context"
	"errors"
	"net/http"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	wvhttp "github.com/gmanninglive/weaviate-client/internal/http"
)

// Response is the raw result of an HTTP call. Status codes are left to the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTPClient sends requests to {scheme}://{host}/v1 with the connection's headers and auth.
// It is safe for concurrent use.
type HTTPClient struct {
	client *wvhttp.Client
}

// BaseURI returns the URI every path is appended to.
func (c *HTTPClient) BaseURI() string {
	return c.client.BaseURL()
}

// Get sends a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put sends a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Patch sends a PATCH request with a JSON body.
func (c *HTTPClient) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

// Delete sends a DELETE request. body may be nil.
func (c *HTTPClient) Delete(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, body)
}

// Head sends a HEAD request. body may be nil.
func (c *HTTPClient) Head(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodHead, path, body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	resp, err := c.client.Do(ctx, &wvhttp.Request{
		Method: method,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return nil, c.convertError(method, path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

func (c *HTTPClient) convertError(method, path string, err error) error {
	authErr := &AuthError{}
	if errors.As(err, &authErr) {
		return authErr
	}

	usageErr := &UsageError{}
	if errors.As(err, &usageErr) {
		return usageErr
	}

	if errors.Is(err, constants.ErrEncodeRequestBody) {
		return &UsageError{Field: "body", Msg: err.Error()}
	}

	requestErr := &wvhttp.RequestError{}
	if errors.As(err, &requestErr) {
		return &TransportError{Method: requestErr.Method, URL: requestErr.URL, Err: requestErr.Err}
	}

	return &TransportError{Method: method, URL: c.BaseURI() + path, Err: err}
}

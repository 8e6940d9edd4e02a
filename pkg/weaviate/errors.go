package weaviate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrSchemeRequired       = errors.New("scheme is required")
	ErrHostRequired         = errors.New("host is required")
	ErrClassNameRequired    = errors.New("class name is required")
	ErrObjectIDRequired     = errors.New("object id is required")
	ErrUnsupportedAuth      = errors.New("unsupported auth type")
	ErrConfigRequired       = errors.New("config is required")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrCacheDisabled        = errors.New("cache disabled")
	ErrCacheMiss            = errors.New("cache miss")
)

// TransportError reports a request that failed before a response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that did not match the expected shape.
type DecodeError struct {
	Target string
	Body   []byte
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AuthErrorReason classifies an AuthError.
type AuthErrorReason string

const (
	// AuthMissingToken means no access token was available after a refresh.
	AuthMissingToken AuthErrorReason = "missing_token"

	// AuthTokenRequest means the token endpoint rejected the credential grant.
	AuthTokenRequest AuthErrorReason = "token_request"

	// AuthDiscovery means the token endpoint could not be discovered.
	AuthDiscovery AuthErrorReason = "discovery"
)

// AuthError reports missing or invalid credential material.
type AuthError struct {
	Reason AuthErrorReason
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth error: %s", e.Reason)
	}

	return fmt.Sprintf("auth error: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UsageError reports a caller mistake, such as a required field left unset.
type UsageError struct {
	Field string
	Msg   string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Field == "" {
		return "usage error: " + e.Msg
	}

	return fmt.Sprintf("usage error: %s: %s", e.Field, e.Msg)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Messages   []string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if len(e.Messages) == 0 {
		return fmt.Sprintf("status %d %s", e.StatusCode, text)
	}

	return fmt.Sprintf("status %d %s: %s", e.StatusCode, text, strings.Join(e.Messages, "; "))
}

type errorBody struct {
	Error []struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newStatusError(resp *Response) *StatusError {
	statusErr := &StatusError{StatusCode: resp.StatusCode}

	var body errorBody
	if json.Unmarshal(resp.Body, &body) == nil {
		for _, item := range body.Error {
			if item.Message != "" {
				statusErr.Messages = append(statusErr.Messages, item.Message)
			}
		}
	}

	return statusErr
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, statusCode int) bool {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == statusCode
	}

	return false
}

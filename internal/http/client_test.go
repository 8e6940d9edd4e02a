package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	wvhttp "github.com/gmanninglive/weaviate-client/internal/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoToken = errors.New("no token")

func staticAuthorizer(value string) wvhttp.Authorizer {
	return wvhttp.AuthorizerFunc(func(ctx context.Context) (string, error) {
		return value, nil
	})
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/meta", request.URL.Path)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "weaviate-go-client/1.0", request.Header.Get("User-Agent"))
			assert.Empty(t, request.Header.Get("Content-Type"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"version": "1.19.0"})
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL+"/v1", staticAuthorizer("Bearer test-token"))

		resp, err := client.Do(context.Background(), &wvhttp.Request{
			Method: http.MethodGet,
			Path:   "/meta",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "1.19.0", result["version"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/objects", request.URL.Path)
			assert.Equal(t, "class=Article", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL+"/v1", nil)

		resp, err := client.Get(context.Background(), "/objects", url.Values{"class": []string{"Article"}})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Article", body["class"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil)

		resp, err := client.Post(context.Background(), "/schema", map[string]string{"class": "Article"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("error status is returned as a response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"error":[{"message":"class not found"}]}`))
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/schema/Missing", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":[{"message":"class not found"}]}`, string(resp.Body))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil)

		resp, err := client.Do(context.Background(), &wvhttp.Request{
			Method: http.MethodGet,
			Path:   "/meta",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("default headers never replace computed headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "secret", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Equal(t, "a", request.Header.Get("X-Custom"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		defaults := http.Header{}
		defaults.Set("X-Custom", "a")
		defaults.Set("Authorization", "overridden")
		defaults.Set("Content-Type", "text/plain")

		client := wvhttp.NewClient(server.URL, staticAuthorizer("secret"), wvhttp.WithHeaders(defaults))

		_, err := client.Post(context.Background(), "/schema", map[string]string{})
		require.NoError(t, err)
	})

	t.Run("authorizer failure stops the request", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		authorizer := wvhttp.AuthorizerFunc(func(ctx context.Context) (string, error) {
			return "", errNoToken
		})
		client := wvhttp.NewClient(server.URL, authorizer)

		_, err := client.Get(context.Background(), "/meta", nil)
		require.ErrorIs(t, err, errNoToken)
		assert.Zero(t, calls.Load())
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := wvhttp.NewClient(serverURL, nil)

		_, err := client.Get(context.Background(), "/meta", nil)
		require.Error(t, err)

		requestErr := &wvhttp.RequestError{}
		require.ErrorAs(t, err, &requestErr)
		assert.Equal(t, http.MethodGet, requestErr.Method)
		assert.Equal(t, serverURL+"/meta", requestErr.URL)
	})

	t.Run("unencodable body", func(t *testing.T) {
		t.Parallel()

		client := wvhttp.NewClient("http://localhost:0", nil)

		_, err := client.Post(context.Background(), "/schema", map[string]interface{}{"bad": make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encode request body")
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := wvhttp.NewClient(server.URL, nil, wvhttp.WithLogger(logger), wvhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/meta", nil)
		require.NoError(t, err)

		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

func TestClient_ContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		body     interface{}
		expected string
	}{
		{name: "GET never", method: http.MethodGet, expected: ""},
		{name: "POST without body", method: http.MethodPost, expected: "application/json"},
		{name: "PUT with body", method: http.MethodPut, body: map[string]string{"a": "b"}, expected: "application/json"},
		{name: "PATCH with body", method: http.MethodPatch, body: map[string]string{"a": "b"}, expected: "application/json"},
		{name: "DELETE without body", method: http.MethodDelete, expected: "application/json"},
		{name: "DELETE with body", method: http.MethodDelete, body: map[string]string{"a": "b"}, expected: "application/json"},
		{name: "HEAD without body", method: http.MethodHead, expected: "application/json"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, testCase.expected, request.Header.Get("Content-Type"))
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := wvhttp.NewClient(server.URL, nil)

			resp, err := client.Do(context.Background(), &wvhttp.Request{
				Method: testCase.method,
				Path:   "/test",
				Body:   testCase.body,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*wvhttp.Client, context.Context) (*wvhttp.Response, error)
	}{
		{
			name:   "GET",
			method: http.MethodGet,
			fn: func(c *wvhttp.Client, ctx context.Context) (*wvhttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: http.MethodPost,
			fn: func(c *wvhttp.Client, ctx context.Context) (*wvhttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: http.MethodPut,
			fn: func(c *wvhttp.Client, ctx context.Context) (*wvhttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: http.MethodPatch,
			fn: func(c *wvhttp.Client, ctx context.Context) (*wvhttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: http.MethodDelete,
			fn: func(c *wvhttp.Client, ctx context.Context) (*wvhttp.Response, error) {
				return c.Delete(ctx, "/test", nil)
			},
		},
		{
			name:   "HEAD",
			method: http.MethodHead,
			fn: func(c *wvhttp.Client, ctx context.Context) (*wvhttp.Response, error) {
				return c.Head(ctx, "/test", nil)
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := wvhttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("does not retry by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors when enabled", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil, wvhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil, wvhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := wvhttp.NewClient(server.URL, nil, wvhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/missing" {
			writer.WriteHeader(http.StatusNotFound)

			return
		}

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()

	metrics, err := wvhttp.NewMetrics(registry)
	require.NoError(t, err)

	client := wvhttp.NewClient(server.URL, nil, wvhttp.WithMetrics(metrics))

	_, err = client.Get(context.Background(), "/meta", nil)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/meta", nil)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/missing", nil)
	require.NoError(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.Requests().WithLabelValues("GET", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests().WithLabelValues("GET", "404")), 0)

	reused, err := wvhttp.NewMetrics(registry)
	require.NoError(t, err)
	assert.Same(t, metrics.Requests(), reused.Requests())
}

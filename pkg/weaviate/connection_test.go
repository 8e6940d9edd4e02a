package weaviate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("trailing slash is trimmed", func(t *testing.T) {
		t.Parallel()

		withSlash, err := weaviate.NewConnectionBuilder("http", "localhost:8080/").Build()
		require.NoError(t, err)

		withoutSlash, err := weaviate.NewConnectionBuilder("http", "localhost:8080").Build()
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080/v1", withSlash.BaseURI())
		assert.Equal(t, withoutSlash.BaseURI(), withSlash.BaseURI())
		assert.Equal(t, "localhost:8080", withSlash.Config().Host)
	})

	t.Run("only one trailing slash is trimmed", func(t *testing.T) {
		t.Parallel()

		conn, err := weaviate.NewConnectionBuilder("https", "example.com//").Build()
		require.NoError(t, err)
		assert.Equal(t, "https://example.com//v1", conn.BaseURI())
	})

	t.Run("missing scheme", func(t *testing.T) {
		t.Parallel()

		_, err := weaviate.NewConnectionBuilder("", "localhost:8080").Build()

		usageErr := &weaviate.UsageError{}
		require.ErrorAs(t, err, &usageErr)
		assert.Equal(t, "scheme", usageErr.Field)
	})

	t.Run("missing host", func(t *testing.T) {
		t.Parallel()

		_, err := weaviate.NewConnectionBuilder("http", "/").Build()

		usageErr := &weaviate.UsageError{}
		require.ErrorAs(t, err, &usageErr)
		assert.Equal(t, "host", usageErr.Field)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conn, err := weaviate.NewConnectionBuilder("http", "localhost:8080").Build()
		require.NoError(t, err)

		config := conn.Config()
		assert.Equal(t, weaviate.NoAuth{}, config.Auth)
		assert.Empty(t, config.Headers)
		assert.False(t, conn.AuthEnabled())
	})

	t.Run("builds independent connections", func(t *testing.T) {
		t.Parallel()

		builder := weaviate.NewConnectionBuilder("http", "localhost:8080").
			WithAuth(weaviate.NewOIDC(weaviate.OIDCCredentials{ClientID: "id"}, nil))

		first, err := builder.Build()
		require.NoError(t, err)

		second, err := builder.Build()
		require.NoError(t, err)

		assert.NotSame(t, first.Config().Auth, second.Config().Auth)
		assert.NotSame(t, first.DBVersionProvider(), second.DBVersionProvider())
		assert.Same(t, first.DBVersionProvider(), first.DBVersionProvider())
	})
}

func TestConnection_AuthEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		auth     weaviate.Auth
		expected bool
	}{
		{name: "none", auth: weaviate.NoAuth{}, expected: false},
		{name: "nil", auth: nil, expected: false},
		{name: "api key", auth: weaviate.APIKey("secret"), expected: true},
		{name: "oidc", auth: weaviate.NewOIDC(weaviate.OIDCCredentials{}, nil), expected: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			conn, err := weaviate.NewConnectionBuilder("http", "localhost:8080").WithAuth(testCase.auth).Build()
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, conn.AuthEnabled())
		})
	}
}

func TestHTTPClient_HeaderPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("api key and default headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/meta", request.URL.Path)
			assert.Equal(t, "secret", request.Header.Get("Authorization"))
			assert.Equal(t, "a", request.Header.Get("X-Custom"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := newConnection(t, server, func(builder *weaviate.ConnectionBuilder) {
			builder.WithHeader("X-Custom", "a").
				WithHeader("Authorization", "ignored").
				WithAuth(weaviate.APIKey("secret"))
		})

		resp, err := conn.Client().Get(context.Background(), "/meta")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("post carries content type without default headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Empty(t, request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		conn := newConnection(t, server)

		_, err := conn.Client().Post(context.Background(), "/schema", map[string]string{"class": "A"})
		require.NoError(t, err)
	})

	t.Run("config headers are a copy", func(t *testing.T) {
		t.Parallel()

		headers := http.Header{}
		headers.Set("X-Custom", "a")

		conn, err := weaviate.NewConnectionBuilder("http", "localhost").WithHeaders(headers).Build()
		require.NoError(t, err)

		config := conn.Config()
		config.Headers.Set("X-Custom", "b")
		headers.Set("X-Custom", "c")

		assert.Equal(t, "a", conn.Config().Headers.Get("X-Custom"))
	})
}

func TestHTTPClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		conn := newConnection(t, server)
		server.Close()

		_, err := conn.Client().Get(context.Background(), "/meta")

		transportErr := &weaviate.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.MethodGet, transportErr.Method)
		assert.Equal(t, conn.BaseURI()+"/meta", transportErr.URL)
	})

	t.Run("unencodable body is a usage error", func(t *testing.T) {
		t.Parallel()

		conn, err := weaviate.NewConnectionBuilder("http", "localhost:0").Build()
		require.NoError(t, err)

		_, err = conn.Client().Put(context.Background(), "/objects/x", map[string]interface{}{"fn": func() {}})

		usageErr := &weaviate.UsageError{}
		require.ErrorAs(t, err, &usageErr)
		assert.Equal(t, "body", usageErr.Field)
	})

	t.Run("status is returned without error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		conn := newConnection(t, server)

		resp, err := conn.Client().Patch(context.Background(), "/objects/x", map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

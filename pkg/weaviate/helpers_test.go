package weaviate_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/stretchr/testify/require"
)

// MockLogger records log calls.
type MockLogger struct {
	mutex sync.Mutex
	logs  []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

// Messages returns the messages logged at level.
func (l *MockLogger) Messages(level string) []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var messages []string

	for _, entry := range l.logs {
		if entry["level"] == level {
			messages = append(messages, fmt.Sprint(entry["msg"]))
		}
	}

	return messages
}

func writeJSON(t *testing.T, writer http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if body != nil {
		require.NoError(t, json.NewEncoder(writer).Encode(body))
	}
}

func metaHandler(t *testing.T, version string) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, http.StatusOK, &weaviate.MetaResponse{
			Hostname: "http://[::]:8080",
			Modules:  map[string]weaviate.ModuleInfo{},
			Version:  version,
		})
	}
}

func hostOf(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "http://")
}

func newConnection(t *testing.T, server *httptest.Server, configure ...func(*weaviate.ConnectionBuilder)) *weaviate.Connection {
	t.Helper()

	builder := weaviate.NewConnectionBuilder("http", hostOf(server))
	for _, fn := range configure {
		fn(builder)
	}

	conn, err := builder.Build()
	require.NoError(t, err)

	return conn
}

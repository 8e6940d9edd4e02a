package weaviate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gmanninglive/weaviate-client/internal/constants"
)

// Misc builds server metadata and health commands.
type Misc struct {
	conn *Connection
}

// NewMisc creates the misc facade.
func NewMisc(conn *Connection) *Misc {
	return &Misc{conn: conn}
}

// MetaGetter returns a command fetching /meta.
func (m *Misc) MetaGetter() *MetaGetter {
	return NewMetaGetter(m.conn)
}

// LiveChecker returns a liveness probe.
func (m *Misc) LiveChecker() *LiveChecker {
	return NewLiveChecker(m.conn)
}

// ReadyChecker returns a readiness probe.
func (m *Misc) ReadyChecker() *ReadyChecker {
	return NewReadyChecker(m.conn)
}

// OpenIDConfigurationGetter returns a command fetching the OIDC configuration.
func (m *Misc) OpenIDConfigurationGetter() *OpenIDConfigurationGetter {
	return NewOpenIDConfigurationGetter(m.conn)
}

// MetaGetter fetches server metadata.
type MetaGetter struct {
	conn *Connection
}

// NewMetaGetter creates a MetaGetter.
func NewMetaGetter(conn *Connection) *MetaGetter {
	return &MetaGetter{conn: conn}
}

// Do sends GET /meta.
func (g *MetaGetter) Do(ctx context.Context) (*MetaResponse, error) {
	resp, err := g.conn.Client().Get(ctx, constants.PathMeta)
	if err != nil {
		return nil, fmt.Errorf("getting meta: %w", err)
	}

	return decodeResponse[MetaResponse](resp, "meta")
}

// LiveChecker probes /.well-known/live.
type LiveChecker struct {
	conn *Connection
}

// NewLiveChecker creates a LiveChecker.
func NewLiveChecker(conn *Connection) *LiveChecker {
	return &LiveChecker{conn: conn}
}

// Do reports whether the server is live and reports a version. It never returns an error.
func (c *LiveChecker) Do(ctx context.Context) (bool, error) {
	return probe(ctx, c.conn, constants.PathLive), nil
}

// ReadyChecker probes /.well-known/ready.
type ReadyChecker struct {
	conn *Connection
}

// NewReadyChecker creates a ReadyChecker.
func NewReadyChecker(conn *Connection) *ReadyChecker {
	return &ReadyChecker{conn: conn}
}

// Do reports whether the server is ready and reports a version. It never returns an error.
func (c *ReadyChecker) Do(ctx context.Context) (bool, error) {
	return probe(ctx, c.conn, constants.PathReady), nil
}

func probe(ctx context.Context, conn *Connection, path string) bool {
	resp, err := conn.Client().Get(ctx, path)
	if err != nil {
		conn.Logger().Debug("Health probe failed", map[string]interface{}{"path": path, "error": err.Error()})

		return false
	}

	if resp.StatusCode >= constants.HTTPStatusBadRequest {
		return false
	}

	return conn.DBVersionProvider().Get(ctx) != ""
}

// OpenIDConfigurationGetter fetches the server's OIDC configuration.
type OpenIDConfigurationGetter struct {
	conn *Connection
}

// NewOpenIDConfigurationGetter creates an OpenIDConfigurationGetter.
func NewOpenIDConfigurationGetter(conn *Connection) *OpenIDConfigurationGetter {
	return &OpenIDConfigurationGetter{conn: conn}
}

// Do sends GET /.well-known/openid-configuration. It returns nil, nil when OIDC is not enabled.
func (g *OpenIDConfigurationGetter) Do(ctx context.Context) (*OpenIDConfiguration, error) {
	resp, err := g.conn.Client().Get(ctx, constants.PathOpenIDConfiguration)
	if err != nil {
		return nil, fmt.Errorf("getting openid configuration: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil //nolint:nilnil // OIDC disabled is not an error
	}

	return decodeResponse[OpenIDConfiguration](resp, "openid configuration")
}

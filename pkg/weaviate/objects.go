package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gmanninglive/weaviate-client/internal/constants"
)

// ObjectsPath returns the path of one object, namespaced by class when the server supports it.
// Mismatches between the request and the server version are logged as warnings.
func ObjectsPath(ctx context.Context, support *DBVersionSupport, id, className string) string {
	response := support.SupportsClassNameNamespacedEndpointsFuture(ctx)

	if response.Supports {
		if className == "" {
			response.Warnings.DeprecatedNonClassNameNamespacedEndpointsForObjects()

			return constants.PathObjects + "/" + url.PathEscape(id)
		}

		return constants.PathObjects + "/" + url.PathEscape(className) + "/" + url.PathEscape(id)
	}

	if className != "" {
		response.Warnings.NotSupportedClassNamespacedEndpointsForObjects()
	}

	return constants.PathObjects + "/" + url.PathEscape(id)
}

// ObjectExistenceChecker checks whether an object exists.
type ObjectExistenceChecker struct {
	conn      *Connection
	id        string
	className string
}

// NewObjectExistenceChecker creates a checker for id. className may be empty.
func NewObjectExistenceChecker(conn *Connection, id, className string) *ObjectExistenceChecker {
	return &ObjectExistenceChecker{conn: conn, id: id, className: className}
}

// Do sends HEAD /objects[/{className}]/{id}.
func (c *ObjectExistenceChecker) Do(ctx context.Context) (bool, error) {
	if c.id == "" {
		return false, &UsageError{Field: "id", Msg: ErrObjectIDRequired.Error()}
	}

	path := ObjectsPath(ctx, c.conn.DBVersionSupport(), c.id, c.className)

	resp, err := c.conn.Client().Head(ctx, path, nil)
	if err != nil {
		return false, fmt.Errorf("checking object %s: %w", c.id, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= constants.HTTPStatusOK && resp.StatusCode < constants.HTTPStatusMultipleChoices:
		return true, nil
	default:
		return false, newStatusError(resp)
	}
}

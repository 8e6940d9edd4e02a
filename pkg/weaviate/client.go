package weaviate

import "context"

// Client groups the command facades of one connection.
type Client struct {
	conn *Connection
}

// NewClient creates a client for conn.
func NewClient(conn *Connection) *Client {
	return &Client{conn: conn}
}

// Connection returns the underlying connection.
func (c *Client) Connection() *Connection {
	return c.conn
}

// Misc returns meta and health commands.
func (c *Client) Misc() *Misc {
	return NewMisc(c.conn)
}

// Schema returns schema commands.
func (c *Client) Schema() *SchemaAPI {
	return NewSchemaAPI(c.conn)
}

// GraphQL returns GraphQL commands.
func (c *Client) GraphQL() *GraphQL {
	return NewGraphQL(c.conn)
}

// Objects returns object commands.
func (c *Client) Objects() *Objects {
	return NewObjects(c.conn)
}

// ServerVersion returns the cached server version, or "" when it cannot be resolved.
func (c *Client) ServerVersion(ctx context.Context) string {
	return c.conn.DBVersionProvider().Get(ctx)
}

// Objects builds object commands.
type Objects struct {
	conn *Connection
}

// NewObjects creates the objects facade.
func NewObjects(conn *Connection) *Objects {
	return &Objects{conn: conn}
}

// Checker returns a command checking whether the object exists. className may be empty.
func (o *Objects) Checker(id, className string) *ObjectExistenceChecker {
	return NewObjectExistenceChecker(o.conn, id, className)
}

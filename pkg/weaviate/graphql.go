package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// GraphQL builds GraphQL commands.
type GraphQL struct {
	conn *Connection
}

// NewGraphQL creates the GraphQL facade.
func NewGraphQL(conn *Connection) *GraphQL {
	return &GraphQL{conn: conn}
}

// Get starts a Get query builder.
func (g *GraphQL) Get() *GraphQLGetter {
	return NewGraphQLGetter(g.conn)
}

// Raw returns a command posting query as is.
func (g *GraphQL) Raw(query string) *GraphQLRaw {
	return NewGraphQLRaw(g.conn, query)
}

// NearText is a semantic search argument.
type NearText struct {
	Concepts  []string
	Certainty float64
	Distance  float64
}

func (n *NearText) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.Concepts, validation.Required),
		validation.Field(&n.Certainty, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (n *NearText) argument() string {
	concepts, _ := json.Marshal(n.Concepts)

	parts := []string{"concepts:" + string(concepts)}
	if n.Certainty > 0 {
		parts = append(parts, "certainty:"+strconv.FormatFloat(n.Certainty, 'f', -1, 64))
	}

	if n.Distance > 0 {
		parts = append(parts, "distance:"+strconv.FormatFloat(n.Distance, 'f', -1, 64))
	}

	return "nearText:{" + strings.Join(parts, " ") + "}"
}

// GraphQLGetter builds and runs a {Get{...}} query.
// Configure it fully before calling Do.
type GraphQLGetter struct {
	conn      *Connection
	className string
	fields    []string
	where     string
	nearText  *NearText
	limit     int
	offset    int
	after     string
}

// NewGraphQLGetter creates an empty Get query builder.
func NewGraphQLGetter(conn *Connection) *GraphQLGetter {
	return &GraphQLGetter{conn: conn}
}

// WithClassName sets the class to query.
func (g *GraphQLGetter) WithClassName(className string) *GraphQLGetter {
	g.className = className

	return g
}

// WithFields sets the selection set, e.g. "title", "_additional{id}".
func (g *GraphQLGetter) WithFields(fields ...string) *GraphQLGetter {
	g.fields = append(g.fields, fields...)

	return g
}

// WithWhere sets a where filter written in GraphQL syntax, e.g. `{path:["title"] operator:Equal valueText:"x"}`.
func (g *GraphQLGetter) WithWhere(where string) *GraphQLGetter {
	g.where = where

	return g
}

// WithNearText adds a nearText argument.
func (g *GraphQLGetter) WithNearText(nearText *NearText) *GraphQLGetter {
	g.nearText = nearText

	return g
}

// WithLimit limits the number of results.
func (g *GraphQLGetter) WithLimit(limit int) *GraphQLGetter {
	g.limit = limit

	return g
}

// WithOffset skips results.
func (g *GraphQLGetter) WithOffset(offset int) *GraphQLGetter {
	g.offset = offset

	return g
}

// WithAfter starts the cursor after the object with this id.
func (g *GraphQLGetter) WithAfter(id string) *GraphQLGetter {
	g.after = id

	return g
}

// Validate checks that the query can be built.
func (g *GraphQLGetter) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.className, validation.Required, validation.Match(classNamePattern)),
		validation.Field(&g.fields, validation.Required),
		validation.Field(&g.limit, validation.Min(0)),
		validation.Field(&g.offset, validation.Min(0)),
		validation.Field(&g.nearText),
	)
}

// Query renders the query text.
func (g *GraphQLGetter) Query() (string, error) {
	err := g.Validate()
	if err != nil {
		return "", &UsageError{Field: "graphql", Msg: err.Error()}
	}

	var args []string

	if g.where != "" {
		args = append(args, "where:"+g.where)
	}

	if g.nearText != nil {
		args = append(args, g.nearText.argument())
	}

	if g.limit > 0 {
		args = append(args, "limit:"+strconv.Itoa(g.limit))
	}

	if g.offset > 0 {
		args = append(args, "offset:"+strconv.Itoa(g.offset))
	}

	if g.after != "" {
		args = append(args, "after:"+strconv.Quote(g.after))
	}

	var builder strings.Builder

	builder.WriteString("{Get{")
	builder.WriteString(g.className)

	if len(args) > 0 {
		builder.WriteString("(")
		builder.WriteString(strings.Join(args, ", "))
		builder.WriteString(")")
	}

	builder.WriteString("{")
	builder.WriteString(strings.Join(g.fields, " "))
	builder.WriteString("}}}")

	return builder.String(), nil
}

// Do renders the query and posts it to /graphql.
func (g *GraphQLGetter) Do(ctx context.Context) (*GraphQLResponse, error) {
	query, err := g.Query()
	if err != nil {
		return nil, err
	}

	return postGraphQL(ctx, g.conn, query)
}

// GraphQLRaw posts a caller-written query.
type GraphQLRaw struct {
	conn  *Connection
	query string
}

// NewGraphQLRaw creates a GraphQLRaw.
func NewGraphQLRaw(conn *Connection, query string) *GraphQLRaw {
	return &GraphQLRaw{conn: conn, query: query}
}

// Do posts the query to /graphql.
func (r *GraphQLRaw) Do(ctx context.Context) (*GraphQLResponse, error) {
	if strings.TrimSpace(r.query) == "" {
		return nil, &UsageError{Field: "query", Msg: "cannot be blank"}
	}

	return postGraphQL(ctx, r.conn, r.query)
}

type graphQLRequest struct {
	Query string `json:"query"`
}

func postGraphQL(ctx context.Context, conn *Connection, query string) (*GraphQLResponse, error) {
	resp, err := conn.Client().Post(ctx, constants.PathGraphQL, &graphQLRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("running graphql query: %w", err)
	}

	return decodeResponse[GraphQLResponse](resp, "graphql response")
}

package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	classNamePattern    = regexp.MustCompile(`^[A-Z][_0-9A-Za-z]*$`)
	propertyNamePattern = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)
)

// Validate checks the fields the server requires when creating a class.
func (c *Class) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Class,
			validation.Required,
			validation.Match(classNamePattern).Error("must start with an uppercase letter and contain only letters, digits and underscores"),
		),
		validation.Field(&c.Properties),
	)
}

// Validate checks a property definition.
func (p *Property) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name,
			validation.Required,
			validation.Match(propertyNamePattern),
		),
		validation.Field(&p.DataType, validation.Required),
	)
}

// SchemaAPI builds schema commands.
type SchemaAPI struct {
	conn *Connection
}

// NewSchemaAPI creates the schema facade.
func NewSchemaAPI(conn *Connection) *SchemaAPI {
	return &SchemaAPI{conn: conn}
}

// Getter returns a command fetching the whole schema.
func (s *SchemaAPI) Getter() *SchemaGetter {
	return NewSchemaGetter(s.conn)
}

// ClassCreator returns a command creating class.
func (s *SchemaAPI) ClassCreator(class *Class) *ClassCreator {
	return NewClassCreator(s.conn, class)
}

// ClassGetter returns a command fetching one class.
func (s *SchemaAPI) ClassGetter(className string) *ClassGetter {
	return NewClassGetter(s.conn, className)
}

// ClassDeleter returns a command deleting one class.
func (s *SchemaAPI) ClassDeleter(className string) *ClassDeleter {
	return NewClassDeleter(s.conn, className)
}

// SchemaGetter fetches the schema.
type SchemaGetter struct {
	conn *Connection
}

// NewSchemaGetter creates a SchemaGetter.
func NewSchemaGetter(conn *Connection) *SchemaGetter {
	return &SchemaGetter{conn: conn}
}

// Do sends GET /schema.
func (g *SchemaGetter) Do(ctx context.Context) (*Schema, error) {
	resp, err := g.conn.Client().Get(ctx, constants.PathSchema)
	if err != nil {
		return nil, fmt.Errorf("getting schema: %w", err)
	}

	return decodeResponse[Schema](resp, "schema")
}

// ClassCreator creates a class.
type ClassCreator struct {
	conn  *Connection
	class Class
}

// NewClassCreator creates a ClassCreator. The class is copied.
func NewClassCreator(conn *Connection, class *Class) *ClassCreator {
	creator := &ClassCreator{conn: conn}
	if class != nil {
		creator.class = *class
	}

	return creator
}

// Do validates the class and sends POST /schema. It returns the class as stored by the server.
func (c *ClassCreator) Do(ctx context.Context) (*Class, error) {
	err := c.class.Validate()
	if err != nil {
		return nil, &UsageError{Field: "class", Msg: err.Error()}
	}

	resp, err := c.conn.Client().Post(ctx, constants.PathSchema, &c.class)
	if err != nil {
		return nil, fmt.Errorf("creating class %s: %w", c.class.Class, err)
	}

	return decodeResponse[Class](resp, "class")
}

// ClassGetter fetches one class.
type ClassGetter struct {
	conn      *Connection
	className string
}

// NewClassGetter creates a ClassGetter.
func NewClassGetter(conn *Connection, className string) *ClassGetter {
	return &ClassGetter{conn: conn, className: className}
}

// Do sends GET /schema/{className}.
func (g *ClassGetter) Do(ctx context.Context) (*Class, error) {
	if g.className == "" {
		return nil, &UsageError{Field: "className", Msg: ErrClassNameRequired.Error()}
	}

	resp, err := g.conn.Client().Get(ctx, constants.PathSchema+"/"+url.PathEscape(g.className))
	if err != nil {
		return nil, fmt.Errorf("getting class %s: %w", g.className, err)
	}

	return decodeResponse[Class](resp, "class")
}

// ClassDeleter deletes one class and all its objects.
type ClassDeleter struct {
	conn      *Connection
	className string
}

// NewClassDeleter creates a ClassDeleter.
func NewClassDeleter(conn *Connection, className string) *ClassDeleter {
	return &ClassDeleter{conn: conn, className: className}
}

// Do sends DELETE /schema/{className}. It returns true when the class was deleted.
func (d *ClassDeleter) Do(ctx context.Context) (bool, error) {
	if d.className == "" {
		return false, &UsageError{Field: "className", Msg: ErrClassNameRequired.Error()}
	}

	resp, err := d.conn.Client().Delete(ctx, constants.PathSchema+"/"+url.PathEscape(d.className), nil)
	if err != nil {
		return false, fmt.Errorf("deleting class %s: %w", d.className, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return false, newStatusError(resp)
	}

	return true, nil
}

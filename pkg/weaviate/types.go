package weaviate

import "encoding/json"

// MetaResponse is returned by GET /meta.
type MetaResponse struct {
	Hostname string                `json:"hostname"`
	Modules  map[string]ModuleInfo `json:"modules"`
	Version  string                `json:"version"`
}

// ModuleInfo describes one enabled module.
type ModuleInfo struct {
	Version   string `json:"version"`
	WordCount int32  `json:"wordCount"`
}

// OpenIDConfiguration is returned by GET /.well-known/openid-configuration.
type OpenIDConfiguration struct {
	// Href points at the provider's own discovery document.
	Href     string   `json:"href"`
	ClientID string   `json:"clientId"`
	Scopes   []string `json:"scopes,omitempty"`
}

// Schema is the full database schema.
type Schema struct {
	Classes    []*Class `json:"classes"`
	Maintainer *string  `json:"maintainer"`
	Name       *string  `json:"name"`
}

// Class is a collection definition.
type Class struct {
	Class               string                 `json:"class"`
	Description         string                 `json:"description,omitempty"`
	Vectorizer          string                 `json:"vectorizer,omitempty"`
	VectorIndexType     string                 `json:"vectorIndexType,omitempty"`
	VectorIndexConfig   map[string]interface{} `json:"vectorIndexConfig,omitempty"`
	ModuleConfig        map[string]interface{} `json:"moduleConfig,omitempty"`
	Properties          []*Property            `json:"properties,omitempty"`
	InvertedIndexConfig map[string]interface{} `json:"invertedIndexConfig,omitempty"`
	ShardingConfig      map[string]interface{} `json:"shardingConfig,omitempty"`
	ReplicationConfig   map[string]interface{} `json:"replicationConfig,omitempty"`
	MultiTenancyConfig  map[string]interface{} `json:"multiTenancyConfig,omitempty"`
}

// Property is a class property.
type Property struct {
	Name            string                 `json:"name"`
	DataType        []string               `json:"dataType"`
	Description     string                 `json:"description,omitempty"`
	Tokenization    string                 `json:"tokenization,omitempty"`
	IndexFilterable *bool                  `json:"indexFilterable,omitempty"`
	IndexSearchable *bool                  `json:"indexSearchable,omitempty"`
	ModuleConfig    map[string]interface{} `json:"moduleConfig,omitempty"`
}

// GraphQLResponse is returned by POST /graphql.
type GraphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data,omitempty"`
	Errors []GraphQLError             `json:"errors,omitempty"`
}

// GraphQLError is one entry of a GraphQL error list.
type GraphQLError struct {
	Message   string                 `json:"message"`
	Path      []interface{}          `json:"path,omitempty"`
	Locations []GraphQLErrorLocation `json:"locations,omitempty"`
}

// GraphQLErrorLocation points into the query text.
type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

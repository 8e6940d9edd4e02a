package weaviate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphQLGetter_Query(t *testing.T) {
	t.Parallel()

	conn, err := weaviate.NewConnectionBuilder("http", "localhost:8080").Build()
	require.NoError(t, err)

	tests := []struct {
		name     string
		build    func(*weaviate.GraphQLGetter) *weaviate.GraphQLGetter
		expected string
	}{
		{
			name: "fields only",
			build: func(g *weaviate.GraphQLGetter) *weaviate.GraphQLGetter {
				return g.WithClassName("Article").WithFields("title", "url")
			},
			expected: "{Get{Article{title url}}}",
		},
		{
			name: "limit and offset",
			build: func(g *weaviate.GraphQLGetter) *weaviate.GraphQLGetter {
				return g.WithClassName("Article").WithFields("title").WithLimit(10).WithOffset(5)
			},
			expected: "{Get{Article(limit:10, offset:5){title}}}",
		},
		{
			name: "where filter",
			build: func(g *weaviate.GraphQLGetter) *weaviate.GraphQLGetter {
				return g.WithClassName("Article").
					WithFields("title").
					WithWhere(`{path:["wordCount"] operator:GreaterThan valueInt:1000}`)
			},
			expected: `{Get{Article(where:{path:["wordCount"] operator:GreaterThan valueInt:1000}){title}}}`,
		},
		{
			name: "near text and cursor",
			build: func(g *weaviate.GraphQLGetter) *weaviate.GraphQLGetter {
				return g.WithClassName("Article").
					WithFields("title", "_additional{id}").
					WithNearText(&weaviate.NearText{Concepts: []string{"fashion", "music"}, Certainty: 0.7}).
					WithAfter("00000000-0000-0000-0000-000000000001")
			},
			expected: `{Get{Article(nearText:{concepts:["fashion","music"] certainty:0.7}, ` +
				`after:"00000000-0000-0000-0000-000000000001"){title _additional{id}}}}`,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			query, err := testCase.build(weaviate.NewGraphQLGetter(conn)).Query()
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, query)
		})
	}
}

func TestGraphQLGetter_Validation(t *testing.T) {
	t.Parallel()

	conn, err := weaviate.NewConnectionBuilder("http", "localhost:8080").Build()
	require.NoError(t, err)

	tests := []struct {
		name   string
		getter *weaviate.GraphQLGetter
	}{
		{name: "missing class", getter: weaviate.NewGraphQLGetter(conn).WithFields("title")},
		{name: "missing fields", getter: weaviate.NewGraphQLGetter(conn).WithClassName("Article")},
		{name: "class name breaking out of the query", getter: weaviate.NewGraphQLGetter(conn).WithClassName("A}{x").WithFields("title")},
		{name: "lowercase class name", getter: weaviate.NewGraphQLGetter(conn).WithClassName("article").WithFields("title")},
		{name: "negative limit", getter: weaviate.NewGraphQLGetter(conn).WithClassName("Article").WithFields("title").WithLimit(-1)},
		{name: "empty concepts", getter: weaviate.NewGraphQLGetter(conn).
			WithClassName("Article").WithFields("title").WithNearText(&weaviate.NearText{})},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := testCase.getter.Do(context.Background())

			usageErr := &weaviate.UsageError{}
			require.ErrorAs(t, err, &usageErr)
			assert.Equal(t, "graphql", usageErr.Field)
		})
	}
}

func TestGraphQL_Do(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/v1/graphql", request.URL.Path)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

		var body map[string]string

		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))

		if body["query"] == "{Get{Missing{title}}}" {
			writeJSON(t, writer, http.StatusOK, map[string]interface{}{
				"errors": []map[string]interface{}{{"message": "Cannot query field \"Missing\" on type \"GetObjectsObj\"."}},
			})

			return
		}

		assert.Equal(t, "{Get{Article{title}}}", body["query"])
		writeJSON(t, writer, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{"Article": []map[string]string{{"title": "Hello"}}},
			},
		})
	}))
	defer server.Close()

	graphQL := weaviate.NewGraphQL(newConnection(t, server))

	resp, err := graphQL.Get().WithClassName("Article").WithFields("title").Do(context.Background())
	require.NoError(t, err)
	require.Contains(t, resp.Data, "Get")
	assert.JSONEq(t, `{"Article":[{"title":"Hello"}]}`, string(resp.Data["Get"]))
	assert.Empty(t, resp.Errors)

	resp, err = graphQL.Raw("{Get{Missing{title}}}").Do(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "Missing")

	_, err = graphQL.Raw("  ").Do(context.Background())

	usageErr := &weaviate.UsageError{}
	require.ErrorAs(t, err, &usageErr)
}

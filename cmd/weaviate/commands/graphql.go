package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewGraphQLCommand creates the graphql command group.
func NewGraphQLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "graphql",
		Aliases: []string{"gql"},
		Short:   "Run GraphQL queries",
		Long:    "Query objects with Get or send a raw GraphQL query",
	}

	cmd.AddCommand(newGraphQLGetCommand())
	cmd.AddCommand(newGraphQLRawCommand())

	return cmd
}

func newGraphQLGetCommand() *cobra.Command {
	var (
		fields    []string
		where     string
		concepts  []string
		certainty float64
		limit     int
		offset    int
		after     string
	)

	cmd := &cobra.Command{
		Use:   "get CLASS_NAME",
		Short: "Query objects of a class",
		Long:  "Build and run a {Get{...}} query for one class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			getter := client.GraphQL().Get().
				WithClassName(args[0]).
				WithFields(fields...).
				WithWhere(where).
				WithLimit(limit).
				WithOffset(offset).
				WithAfter(after)

			if len(concepts) > 0 {
				getter.WithNearText(&weaviate.NearText{Concepts: concepts, Certainty: certainty})
			}

			resp, err := getter.Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to run query: %w", err)
			}

			return renderGraphQL(cmd, resp, func(data map[string]interface{}) error {
				return displayObjectsTable(cmd, data, args[0], fields)
			})
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return (comma separated)")
	cmd.Flags().StringVar(&where, "where", "", "where filter in GraphQL syntax")
	cmd.Flags().StringSliceVar(&concepts, "near-text", nil, "nearText concepts (comma separated)")
	cmd.Flags().Float64Var(&certainty, "certainty", 0, "minimum nearText certainty between 0 and 1")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of objects")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of objects to skip")
	cmd.Flags().StringVar(&after, "after", "", "return objects after this object id")

	return cmd
}

func newGraphQLRawCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "raw [QUERY]",
		Short: "Run a raw GraphQL query",
		Long:  "Send a GraphQL query given as an argument or read from a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := rawQuery(args, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			resp, err := client.GraphQL().Raw(query).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to run query: %w", err)
			}

			return renderGraphQL(cmd, resp, func(data map[string]interface{}) error {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(data)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file containing the query")

	return cmd
}

func rawQuery(args []string, file string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	if file == "" {
		return "", constants.ErrQueryRequired
	}

	// file is supplied by the user running the CLI
	// #nosec G304
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}

	return string(data), nil
}

type graphQLOutput struct {
	Data   map[string]interface{}  `json:"data,omitempty"   yaml:"data,omitempty"`
	Errors []weaviate.GraphQLError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// renderGraphQL decodes the raw data so that every output format sees plain values.
// Query errors are printed and returned after any partial data.
func renderGraphQL(cmd *cobra.Command, resp *weaviate.GraphQLResponse, table func(map[string]interface{}) error) error {
	output := graphQLOutput{Errors: resp.Errors}

	if len(resp.Data) > 0 {
		output.Data = make(map[string]interface{}, len(resp.Data))

		for key, raw := range resp.Data {
			var value interface{}

			err := json.Unmarshal(raw, &value)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}

			output.Data[key] = value
		}
	}

	err := renderOutput(cmd.OutOrStdout(), output, func() error {
		if output.Data == nil {
			return nil
		}

		return table(output.Data)
	})
	if err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, queryErr := range resp.Errors {
			messages = append(messages, queryErr.Message)
		}

		return fmt.Errorf("%w: %s", constants.ErrQueryFailed, strings.Join(messages, "; "))
	}

	return nil
}

func displayObjectsTable(cmd *cobra.Command, data map[string]interface{}, className string, fields []string) error {
	get, _ := data["Get"].(map[string]interface{})
	objects, _ := get[className].([]interface{})

	if len(objects) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No objects found")

		return nil
	}

	header := make([]interface{}, 0, len(fields))
	for _, field := range fields {
		header = append(header, field)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header(header...)

	for _, item := range objects {
		object, _ := item.(map[string]interface{})

		row := make([]string, 0, len(fields))
		for _, field := range fields {
			row = append(row, formatCell(object[field]))
		}

		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatCell(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(data)
	default:
		return fmt.Sprint(typed)
	}
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"classes"},
		Short:   "Manage the database schema",
		Long:    "List, create, inspect and delete classes",
	}

	cmd.AddCommand(newSchemaGetCommand())
	cmd.AddCommand(newSchemaCreateClassCommand())
	cmd.AddCommand(newSchemaGetClassCommand())
	cmd.AddCommand(newSchemaDeleteClassCommand())

	return cmd
}

func newSchemaGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Display the schema",
		Long:  "Display every class in the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			schema, err := client.Schema().Getter().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get schema: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), schema, func() error {
				if len(schema.Classes) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No classes found")

					return nil
				}

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Class", "Vectorizer", "Properties", "Description")

				for _, class := range schema.Classes {
					_ = table.Append(
						class.Class,
						formatConfigValue(class.Vectorizer),
						strconv.Itoa(len(class.Properties)),
						class.Description,
					)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

func newSchemaCreateClassCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create-class",
		Short: "Create a class",
		Long:  "Create a class from a JSON or YAML definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return constants.ErrClassFileRequired
			}

			class, err := readClassFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			created, err := client.Schema().ClassCreator(class).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to create class: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), created, func() error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Class %s created\n", created.Class)

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "class definition file (JSON or YAML)")

	return cmd
}

func newSchemaGetClassCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-class CLASS_NAME",
		Short: "Display a class",
		Long:  "Display a class and its properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			class, err := client.Schema().ClassGetter(args[0]).Do(ctx)
			if err != nil {
				if weaviate.IsNotFound(err) {
					return fmt.Errorf("class '%s' not found: %w", args[0], err)
				}

				return fmt.Errorf("failed to get class: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), class, func() error {
				return displayClassTable(cmd, class)
			})
		},
	}
}

func newSchemaDeleteClassCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-class CLASS_NAME",
		Short: "Delete a class",
		Long:  "Delete a class and every object it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			deleted, err := client.Schema().ClassDeleter(args[0]).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to delete class: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), map[string]bool{"deleted": deleted}, func() error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Class %s deleted\n", args[0])

				return err
			})
		},
	}
}

func displayClassTable(cmd *cobra.Command, class *weaviate.Class) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Property", "Data Type", "Tokenization", "Description")

	for _, property := range class.Properties {
		_ = table.Append(
			property.Name,
			strings.Join(property.DataType, ", "),
			formatConfigValue(property.Tokenization),
			property.Description,
		)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Class: %s\nVectorizer: %s\n", class.Class, formatConfigValue(class.Vectorizer))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// readClassFile decodes a class definition. YAML files are converted to JSON first so that
// the class's JSON field names apply to both formats.
func readClassFile(path string) (*weaviate.Class, error) {
	// path is supplied by the user running the CLI
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var raw map[string]interface{}

		err = yaml.Unmarshal(data, &raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse class file: %w", err)
		}

		data, err = json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert class file: %w", err)
		}
	}

	class := &weaviate.Class{}

	err = json.Unmarshal(data, class)
	if err != nil {
		return nil, fmt.Errorf("failed to parse class file: %w", err)
	}

	return class, nil
}

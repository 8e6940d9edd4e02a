package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewMetaCommand creates the meta command.
func NewMetaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "Display server metadata",
		Long:  "Display the server hostname, version and enabled modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			meta, err := client.Misc().MetaGetter().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get server metadata: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), meta, func() error {
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Property", "Value")

				_ = table.Append("Hostname", meta.Hostname)
				_ = table.Append("Version", meta.Version)

				modules := make([]string, 0, len(meta.Modules))
				for name, module := range meta.Modules {
					modules = append(modules, fmt.Sprintf("%s (%s)", name, formatConfigValue(module.Version)))
				}

				sort.Strings(modules)

				if len(modules) == 0 {
					modules = append(modules, constants.NotAvailable)
				}

				_ = table.Append("Modules", strings.Join(modules, "\n"))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

// NewLiveCommand creates the live command.
func NewLiveCommand() *cobra.Command {
	return newProbeCommand("live", "Check that the server is live", constants.ErrServerNotLive)
}

// NewReadyCommand creates the ready command.
func NewReadyCommand() *cobra.Command {
	return newProbeCommand("ready", "Check that the server is ready to serve requests", constants.ErrServerNotReady)
}

func newProbeCommand(name, short string, failure error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Long:  short + ". Exits non-zero when the probe fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			var ok bool

			if name == "live" {
				ok, err = client.Misc().LiveChecker().Do(ctx)
			} else {
				ok, err = client.Misc().ReadyChecker().Do(ctx)
			}

			if err != nil {
				return err
			}

			result := map[string]bool{name: ok}

			err = renderOutput(cmd.OutOrStdout(), result, func() error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", cases.Title(language.English).String(name), ok)

				return err
			})
			if err != nil {
				return err
			}

			if !ok {
				return failure
			}

			return nil
		},
	}
}

// NewOpenIDCommand creates the openid command.
func NewOpenIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "openid",
		Short: "Display the server's OpenID configuration",
		Long:  "Display the OIDC provider the server delegates authentication to",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := newClient(ctx)
			if err != nil {
				return err
			}

			openID, err := client.Misc().OpenIDConfigurationGetter().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get OpenID configuration: %w", err)
			}

			if openID == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "OIDC is not configured on this server")

				return nil
			}

			return renderOutput(cmd.OutOrStdout(), openID, func() error {
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Property", "Value")

				_ = table.Append("Provider", openID.Href)
				_ = table.Append("Client ID", formatConfigValue(openID.ClientID))
				_ = table.Append("Scopes", formatConfigValue(strings.Join(openID.Scopes, ", ")))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/gmanninglive/weaviate-client/pkg/wvclient"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username     string
		password     string
		clientID     string
		clientSecret string
		tokenURL     string
		scopes       []string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a server with OIDC",
		Long: `Obtain an OIDC token for the configured server and store it in the config file.

Uses the client credentials grant when --client-id and --client-secret are given,
the password grant otherwise. The token endpoint is discovered from the server
unless --token-url is set. Passwords are never stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := configFilePath()

			stored, err := loadConfig(path)
			if err != nil {
				return err
			}

			config, err := effectiveConfig(stored)
			if err != nil {
				return err
			}

			wvConfig := clientConfig(config, path)
			wvConfig.APIKey = ""
			wvConfig.AccessToken = ""
			wvConfig.RefreshToken = ""
			wvConfig.ClientID = firstNonEmpty(clientID, config.ClientID)
			wvConfig.TokenURL = firstNonEmpty(tokenURL, config.TokenURL)

			if len(scopes) > 0 {
				wvConfig.Scopes = scopes
			}

			if clientSecret != "" {
				wvConfig.ClientSecret = clientSecret
			} else {
				wvConfig.ClientSecret = ""
				wvConfig.Username = firstNonEmpty(username, config.Username)

				reader := bufio.NewReader(cmd.InOrStdin())

				if wvConfig.Username == "" {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), "Username: ")
					line, _ := reader.ReadString('\n')
					wvConfig.Username = strings.TrimSpace(line)
				}

				if password == "" {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")

					password, err = readPassword(reader)
					if err != nil {
						return err
					}

					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}

				wvConfig.Password = password
			}

			client, err := wvclient.New(ctx, wvConfig)
			if err != nil {
				return err
			}

			meta, err := client.Misc().MetaGetter().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to log in: %w", err)
			}

			// The token persister has written the new token; reload before adding the session details.
			updated, err := loadConfig(path)
			if err != nil {
				return err
			}

			updated.Scheme = config.Scheme
			updated.Host = config.Host
			updated.APIKey = ""
			updated.Username = wvConfig.Username
			updated.ClientSecret = wvConfig.ClientSecret

			if oidc, ok := client.Connection().Config().Auth.(*weaviate.OIDC); ok {
				updated.ClientID = oidc.Credentials.ClientID
				updated.TokenURL = oidc.Credentials.TokenURL
				updated.Scopes = oidc.Credentials.Scopes
			}

			err = saveConfig(path, updated)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully logged in to %s://%s\n", config.Scheme, config.Host)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Server version: %s\n", meta.Version)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for the password grant")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for the password grant")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OIDC client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OIDC client secret for the client credentials grant")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "OIDC token endpoint (discovered when empty)")
	cmd.Flags().StringSliceVar(&scopes, "scopes", nil, "OIDC scopes (comma separated)")

	return cmd
}

// readPassword reads without echo from a terminal and falls back to a plain line otherwise.
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int

	if term.IsTerminal(fd) {
		bytePassword, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(bytePassword), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out from the server",
		Long:  "Remove stored tokens from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath()

			config, err := loadConfig(path)
			if err != nil {
				return err
			}

			config.Token = ""
			config.RefreshToken = ""
			config.TokenExpiresAt = nil
			config.LastRefreshed = nil
			config.Username = ""

			err = saveConfig(path, config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}

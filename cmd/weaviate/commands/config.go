package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".weaviate"
	configFileName = "config.yml"
	configSetArgs  = 2
)

// Config represents the CLI configuration file.
type Config struct {
	Scheme  string            `json:"scheme,omitempty"  yaml:"scheme,omitempty"`
	Host    string            `json:"host,omitempty"    yaml:"host,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Output  string            `json:"output,omitempty"  yaml:"output,omitempty"`

	APIKey       string   `json:"api_key,omitempty"       yaml:"api_key,omitempty"`
	ClientID     string   `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	Username     string   `json:"username,omitempty"      yaml:"username,omitempty"`
	TokenURL     string   `json:"token_url,omitempty"     yaml:"token_url,omitempty"`
	Scopes       []string `json:"scopes,omitempty"      yaml:"scopes,omitempty"`

	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(configFilePath())
			if err != nil {
				return err
			}

			masked := maskConfig(config)
			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(masked)
			default:
				return displayConfigTable(out, masked)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Headers are set with the key header.NAME.",
		Args:  cobra.ExactArgs(configSetArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath()

			config, err := loadConfig(path)
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfig(path, config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath()

			config, err := loadConfig(path)
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfig(path, config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// configFilePath returns the file viper read, the --config flag, or ~/.weaviate/config.yml.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}

	if flagged := viper.GetString("config"); flagged != "" {
		return flagged
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}

	return filepath.Join(home, configDirName, configFileName)
}

// loadConfig reads the configuration file. A missing file is an empty configuration.
func loadConfig(path string) (*Config, error) {
	// path is the user's own config file
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}

		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

func saveConfig(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setConfigValue(config *Config, key, value string) error {
	if name, ok := strings.CutPrefix(key, "header."); ok && name != "" {
		if value == "" {
			delete(config.Headers, name)

			return nil
		}

		if config.Headers == nil {
			config.Headers = make(map[string]string)
		}

		config.Headers[name] = value

		return nil
	}

	switch key {
	case "scheme":
		config.Scheme = value
	case "host":
		config.Host = value
	case "output":
		config.Output = value
	case "api_key":
		config.APIKey = value
	case "client_id":
		config.ClientID = value
	case "client_secret":
		config.ClientSecret = value
	case "username":
		config.Username = value
	case "token_url":
		config.TokenURL = value
	case "scopes":
		config.Scopes = splitList(value)
	case "token":
		config.Token = value
		config.TokenExpiresAt = nil
	case "refresh_token":
		config.RefreshToken = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// maskConfig returns a copy of config with credentials replaced by a placeholder.
func maskConfig(config *Config) *Config {
	masked := *config

	for _, field := range []*string{&masked.APIKey, &masked.ClientSecret, &masked.Token, &masked.RefreshToken} {
		if *field != "" {
			*field = constants.MaskedSecret
		}
	}

	return &masked
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Scheme", formatConfigValue(config.Scheme)})
	_ = table.Append([]string{"Host", formatConfigValue(config.Host)})
	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"API Key", formatConfigValue(config.APIKey)})
	_ = table.Append([]string{"Client ID", formatConfigValue(config.ClientID)})
	_ = table.Append([]string{"Username", formatConfigValue(config.Username)})
	_ = table.Append([]string{"Token URL", formatConfigValue(config.TokenURL)})
	_ = table.Append([]string{"Token", formatConfigValue(config.Token)})

	if config.TokenExpiresAt != nil {
		_ = table.Append([]string{"Token Expires", config.TokenExpiresAt.Format(time.RFC3339)})
	}

	names := make([]string, 0, len(config.Headers))
	for name := range config.Headers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_ = table.Append([]string{"Header " + name, config.Headers[name]})
	}

	_ = table.Append([]string{"Config File", configFilePath()})
	_ = table.Append([]string{"Verbose", strconv.FormatBool(viper.GetBool("verbose"))})

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

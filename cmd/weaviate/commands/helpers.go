package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
	"github.com/gmanninglive/weaviate-client/pkg/wvclient"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultScheme = "http"

// effectiveConfig layers flags and environment variables over the config file.
func effectiveConfig(config *Config) (*Config, error) {
	merged := *config
	merged.Scheme = firstNonEmpty(viper.GetString("scheme"), config.Scheme, defaultScheme)
	merged.Host = firstNonEmpty(viper.GetString("host"), config.Host)
	merged.APIKey = firstNonEmpty(viper.GetString("api_key"), config.APIKey)

	flagHeaders, err := parseHeaders(viper.GetStringSlice("header"))
	if err != nil {
		return nil, err
	}

	merged.Headers = make(map[string]string, len(config.Headers)+len(flagHeaders))
	for name, value := range config.Headers {
		merged.Headers[name] = value
	}

	for name, value := range flagHeaders {
		merged.Headers[name] = value
	}

	if merged.Host == "" {
		return nil, constants.ErrNoHostConfigured
	}

	return &merged, nil
}

// clientConfig maps CLI settings onto a library configuration. Passwords are never stored,
// so stored sessions continue through the refresh token.
func clientConfig(config *Config, path string) *weaviate.Config {
	wvConfig := &weaviate.Config{
		Endpoint:          config.Scheme + "://" + config.Host,
		APIKey:            config.APIKey,
		ClientID:          config.ClientID,
		ClientSecret:      config.ClientSecret,
		RefreshToken:      config.RefreshToken,
		AccessToken:       config.Token,
		TokenURL:          config.TokenURL,
		Scopes:            config.Scopes,
		Headers:           config.Headers,
		Debug:             viper.GetBool("verbose"),
		Logger:            weaviate.NewZapLogger(newLogger()),
		SkipTLSVerify:     viper.GetBool("skip_ssl_validation"),
		HTTPTimeout:       constants.DefaultHTTPTimeout,
		TokenPersister:    NewConfigPersister(path),
		TokenPersisterKey: config.Host,
	}

	if config.TokenExpiresAt != nil {
		wvConfig.AccessTokenExpiresAt = *config.TokenExpiresAt
	}

	return wvConfig
}

func newClient(ctx context.Context) (*weaviate.Client, error) {
	path := configFilePath()

	stored, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	config, err := effectiveConfig(stored)
	if err != nil {
		return nil, err
	}

	client, err := wvclient.New(ctx, clientConfig(config, path))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func newLogger() *zap.Logger {
	if !viper.GetBool("verbose") {
		return zap.NewNop()
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}

	return logger
}

func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))

	for _, value := range values {
		name, headerValue, ok := strings.Cut(value, "=")

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, value)
		}

		headers[name] = strings.TrimSpace(headerValue)
	}

	return headers, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

// renderOutput writes value as JSON or YAML when requested and calls table otherwise.
func renderOutput(out io.Writer, value interface{}, table func() error) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(value)
	default:
		return table()
	}
}

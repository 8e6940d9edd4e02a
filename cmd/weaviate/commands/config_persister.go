package commands

import (
	"sync"
	"time"

	"github.com/gmanninglive/weaviate-client/pkg/weaviate"
)

// ConfigPersister writes refreshed OIDC tokens back to the CLI configuration file.
type ConfigPersister struct {
	path  string
	mutex sync.Mutex
}

// NewConfigPersister creates a persister for the config file at path.
func NewConfigPersister(path string) *ConfigPersister {
	return &ConfigPersister{path: path}
}

// SaveToken stores token in the config file. The key is ignored: the file holds one server.
func (p *ConfigPersister) SaveToken(_ string, token *weaviate.OIDCToken) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig(p.path)
	if err != nil {
		return err
	}

	config.Token = token.AccessToken
	config.TokenExpiresAt = nil

	if !token.ExpiresAt.IsZero() {
		expiresAt := token.ExpiresAt
		config.TokenExpiresAt = &expiresAt
	}

	if token.RefreshToken != "" {
		config.RefreshToken = token.RefreshToken
	}

	now := time.Now()
	config.LastRefreshed = &now

	return saveConfig(p.path, config)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Data catalog configuration

catalog:
  organization_id: ACME
  domain_id: default
  context_broker_url: http://localhost:1026

registry:
  # url: defaults to catalog.context_broker_url
  # tenant: NGSILD-Tenant header value
  timeout: 10s

sqlite:
  path: catalog.db

server:
  addr: ":8080"
  shutdown_timeout: 10s

log:
  level: info
  development: false

discovery:
  enabled: false
  embedder:
    provider: openai
    model: text-embedding-3-small
    # api_key: your-api-key (or set OPENAI_API_KEY env var)
  qdrant:
    host: localhost
    port: 6334
    collection: datacatalog_products
    # api_key: your-api-key (for Qdrant Cloud)
`

// WriteDefault creates the .datacatalog directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	configDir := ConfigDir(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, DefaultConfigFile), data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if a datacatalog config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

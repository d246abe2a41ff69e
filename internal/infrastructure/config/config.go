// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/datacatalog/internal/domain/entities"
)

const (
	// DefaultConfigDir is the directory name for datacatalog configuration.
	DefaultConfigDir = ".datacatalog"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config dir.
	DefaultDatabaseFile = "catalog.db"
)

// Config holds static configuration (read-only after load).
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Registry  RegistryConfig  `yaml:"registry"`
	SQLite    SQLiteConfig    `yaml:"sqlite,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`
}

// CatalogConfig identifies the catalog deployment.
type CatalogConfig struct {
	OrganizationID string `yaml:"organization_id"`
	DomainID       string `yaml:"domain_id"`
	// ContextBrokerURL is the public endpoint data consumers use; it is
	// recorded on the context broker descriptor and every distribution.
	ContextBrokerURL string `yaml:"context_broker_url"`
}

// RegistryConfig holds configuration for the remote NGSI-LD registry.
type RegistryConfig struct {
	// URL defaults to Catalog.ContextBrokerURL when empty.
	URL     string        `yaml:"url,omitempty"`
	Tenant  string        `yaml:"tenant,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// SQLiteConfig holds configuration for the snapshot database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths are
	// resolved against the config directory.
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// DiscoveryConfig holds configuration for the optional semantic index.
type DiscoveryConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint, e.g. for a proxy.
	BaseURL  string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	UseTLS     bool   `yaml:"use_tls,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			DomainID: "default",
		},
		Registry: RegistryConfig{
			Timeout: 10 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: DefaultDatabaseFile,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Discovery: DiscoveryConfig{
			Embedder: EmbedderConfig{
				Provider: "openai",
				Model:    "text-embedding-3-small",
			},
			Qdrant: QdrantConfig{
				Host:       "localhost",
				Port:       6334,
				Collection: "datacatalog_products",
			},
		},
	}
}

// Load loads configuration from the .datacatalog directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'datacatalog init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(basePath, data)
}

// Parse decodes YAML on top of the defaults, applies environment overrides
// and validates the result.
func Parse(basePath string, data []byte) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.resolve(basePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	overrides := []struct {
		env    string
		target *string
	}{
		{"CONTEXT_BROKER_URL", &c.Catalog.ContextBrokerURL},
		{"ORGANIZATION_ID", &c.Catalog.OrganizationID},
		{"DOMAIN_ID", &c.Catalog.DomainID},
		{"REGISTRY_URL", &c.Registry.URL},
		{"REGISTRY_TENANT", &c.Registry.Tenant},
		{"SQLITE_PATH", &c.SQLite.Path},
		{"HTTP_ADDR", &c.Server.Addr},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}

	if v := os.Getenv("DISCOVERY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing DISCOVERY_ENABLED: %w", err)
		}
		c.Discovery.Enabled = enabled
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Discovery.Embedder.APIKey == "" {
		c.Discovery.Embedder.APIKey = key
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Discovery.Qdrant.APIKey == "" {
		c.Discovery.Qdrant.APIKey = key
	}
	return nil
}

// resolve fills derived values.
func (c *Config) resolve(basePath string) {
	if c.Registry.URL == "" {
		c.Registry.URL = c.Catalog.ContextBrokerURL
	}
	c.Registry.URL = strings.TrimRight(c.Registry.URL, "/")

	if c.SQLite.Path != "" && c.SQLite.Path != ":memory:" && !filepath.IsAbs(c.SQLite.Path) {
		c.SQLite.Path = filepath.Join(ConfigDir(basePath), c.SQLite.Path)
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var missing []string
	if c.Catalog.OrganizationID == "" {
		missing = append(missing, "catalog.organization_id (ORGANIZATION_ID)")
	}
	if c.Catalog.DomainID == "" {
		missing = append(missing, "catalog.domain_id (DOMAIN_ID)")
	}
	if c.Catalog.ContextBrokerURL == "" {
		missing = append(missing, "catalog.context_broker_url (CONTEXT_BROKER_URL)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	if !entities.IsIRI(c.Catalog.ContextBrokerURL) {
		return fmt.Errorf("catalog.context_broker_url %q is not a valid absolute URL", c.Catalog.ContextBrokerURL)
	}
	return nil
}

// ConfigDir returns the path to the .datacatalog config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

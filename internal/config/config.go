// Package config loads the bridge configuration from TOML files and
// N8N_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/joshua-mo-143/n8n-mcp/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	N8N     N8NConfig            `toml:"n8n"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// N8NConfig holds the connection settings for the remote n8n instance.
// APIKey and BaseURL are required; Username/Password are reserved for
// basic-auth setups and are not used by any current call path.
type N8NConfig struct {
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Timeout  string `toml:"timeout"`
}

// GetTimeout parses and returns the request timeout duration.
func (c *N8NConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "n8n-mcp",
			Port: "4280",
		},
		N8N: N8NConfig{
			Timeout: "300s",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/n8n-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// A missing file is not an error; the defaults plus env overrides apply.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			// File not found, use defaults
		} else {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies N8N_* environment variable overrides to config.
// N8N_API_KEY, N8N_BASE_URL, N8N_USER and N8N_PASSWORD match the variables
// the n8n docs use for API access.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("N8N_API_KEY"); key != "" {
		cfg.N8N.APIKey = key
	}
	if url := os.Getenv("N8N_BASE_URL"); url != "" {
		cfg.N8N.BaseURL = url
	}
	if user := os.Getenv("N8N_USER"); user != "" {
		cfg.N8N.Username = user
	}
	if pass := os.Getenv("N8N_PASSWORD"); pass != "" {
		cfg.N8N.Password = pass
	}
	if port := os.Getenv("N8N_MCP_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if level := os.Getenv("N8N_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks that the required connection settings are present.
// Called once at startup; a failure aborts construction of the bridge.
func (c *Config) Validate() error {
	if c.N8N.BaseURL == "" {
		return fmt.Errorf("n8n base URL is required (set N8N_BASE_URL or [n8n] base_url)")
	}
	if c.N8N.APIKey == "" {
		return fmt.Errorf("n8n API key is required (set N8N_API_KEY or [n8n] api_key)")
	}
	return nil
}

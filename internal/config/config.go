package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/free-apis-mcp/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Catalog CatalogConfig        `toml:"catalog"`
	Proxy   ProxyConfig          `toml:"proxy"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name      string `toml:"name"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Transport string `toml:"transport"` // "stdio" or "http"
}

// CatalogConfig locates the API catalog file.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// ProxyConfig controls outbound API calls.
type ProxyConfig struct {
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxTextChars      int    `toml:"max_text_chars"`
	MaxErrorBodyChars int    `toml:"max_error_body_chars"`
	MaxResponseBytes  int64  `toml:"max_response_bytes"`
	UserAgent         string `toml:"user_agent"`
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FREEAPIS_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("FREEAPIS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FREEAPIS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if transport := os.Getenv("FREEAPIS_TRANSPORT"); transport != "" {
		config.Server.Transport = transport
	}
	if path := os.Getenv("FREEAPIS_CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}
	if timeout := os.Getenv("FREEAPIS_PROXY_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Proxy.TimeoutSeconds = t
		}
	}
	if ua := os.Getenv("FREEAPIS_USER_AGENT"); ua != "" {
		config.Proxy.UserAgent = ua
	}
	if level := os.Getenv("FREEAPIS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, catalogPath string, port int, stdio bool) {
	if catalogPath != "" {
		config.Catalog.Path = catalogPath
	}
	if port > 0 {
		config.Server.Port = port
	}
	if stdio {
		config.Server.Transport = "stdio"
	}
}

// Validate reports every mandatory field that is missing or invalid.
func (c *Config) Validate() []string {
	var issues []string
	if strings.TrimSpace(c.Catalog.Path) == "" {
		issues = append(issues, "catalog.path is required (FREEAPIS_CATALOG_PATH or -catalog)")
	}
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		issues = append(issues, fmt.Sprintf("server.transport must be \"stdio\" or \"http\", got %q", c.Server.Transport))
	}
	if c.Server.Transport == "http" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Proxy.TimeoutSeconds <= 0 {
		issues = append(issues, fmt.Sprintf("proxy.timeout_seconds must be positive, got %d", c.Proxy.TimeoutSeconds))
	}
	if c.Proxy.MaxTextChars <= 0 {
		issues = append(issues, "proxy.max_text_chars must be positive")
	}
	if c.Proxy.MaxErrorBodyChars <= 0 {
		issues = append(issues, "proxy.max_error_body_chars must be positive")
	}
	if c.Proxy.MaxResponseBytes <= 0 {
		issues = append(issues, "proxy.max_response_bytes must be positive")
	}
	return issues
}

// IsStdio reports whether the server speaks MCP over stdin/stdout.
func (c *Config) IsStdio() bool {
	return c.Server.Transport == "stdio"
}

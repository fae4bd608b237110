package config

import "github.com/bobmcallan/free-apis-mcp/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "free-apis",
			Host:      "localhost",
			Port:      4250,
			Transport: "stdio",
		},
		Catalog: CatalogConfig{
			Path: "apis.json",
		},
		Proxy: ProxyConfig{
			TimeoutSeconds:    10,
			MaxTextChars:      5000,
			MaxErrorBodyChars: 500,
			MaxResponseBytes:  10 << 20,
			UserAgent:         "free-apis-mcp/" + Version,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console"},
			FilePath:   "logs/free-apis-mcp.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

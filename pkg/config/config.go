// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the server configuration through viper. Precedence is
// CLI flag over environment variable (KDBX_ prefix) over optional config file
// over built-in default; flags are bound by the command layer, everything
// else happens here.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stacklok/kdbx-mcp/pkg/embeddings"
	"github.com/stacklok/kdbx-mcp/pkg/kdb"
)

// Transport names the supported MCP transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Defaults for the server surface.
const (
	DefaultServerName = "kdbx-mcp"
	DefaultTransport  = TransportStdio
	DefaultHTTPHost   = "127.0.0.1"
	DefaultHTTPPort   = 8080
)

// Viper keys. Dots and dashes map to underscores in the environment, so
// db.host is KDBX_DB_HOST and server.port is KDBX_SERVER_PORT.
const (
	KeyConfigFile = "config"

	KeyDBHost             = "db.host"
	KeyDBPort             = "db.port"
	KeyDBUsername         = "db.username"
	KeyDBPassword         = "db.password"
	KeyDBTLS              = "db.tls"
	KeyDBConnectTimeout   = "db.connect-timeout"
	KeyDBRetryCount       = "db.retry-count"
	KeyDBMetric           = "db.metric"
	KeyDBDefaultK         = "db.default-k"
	KeyDBEmbeddingsConfig = "db.embeddings-config"

	KeyServerName        = "server.name"
	KeyServerTransport   = "server.transport"
	KeyServerHost        = "server.host"
	KeyServerPort        = "server.port"
	KeyServerSQLGuidance = "server.sql-guidance"

	KeyOpenAIBaseURL = "embeddings.openai-base-url"
	KeyOpenAIAPIKey  = "embeddings.openai-api-key"
	KeyOllamaBaseURL = "embeddings.ollama-base-url"
)

// ServerConfig is the MCP-facing configuration surface.
type ServerConfig struct {
	Name      string
	Transport string
	Host      string
	Port      int

	// SQLGuidancePath optionally points at a markdown file served by the SQL
	// guidance resource in place of the built-in text.
	SQLGuidancePath string
}

// Config is the full process configuration, immutable after Load.
type Config struct {
	DB         kdb.Config
	Server     ServerConfig
	Embeddings embeddings.Config
}

// SetDefaults registers the built-in defaults on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBHost, kdb.DefaultHost)
	v.SetDefault(KeyDBPort, kdb.DefaultPort)
	v.SetDefault(KeyDBTLS, false)
	v.SetDefault(KeyDBConnectTimeout, int(kdb.DefaultConnectTimeout/time.Second))
	v.SetDefault(KeyDBRetryCount, kdb.DefaultRetryCount)
	v.SetDefault(KeyDBMetric, kdb.DefaultMetric)
	v.SetDefault(KeyDBDefaultK, kdb.DefaultK)

	v.SetDefault(KeyServerName, DefaultServerName)
	v.SetDefault(KeyServerTransport, DefaultTransport)
	v.SetDefault(KeyServerHost, DefaultHTTPHost)
	v.SetDefault(KeyServerPort, DefaultHTTPPort)

	v.SetDefault(KeyOpenAIBaseURL, embeddings.DefaultOpenAIBaseURL)
	v.SetDefault(KeyOllamaBaseURL, embeddings.DefaultOllamaBaseURL)
}

// BindEnv wires the KDBX_ environment prefix on the given viper instance.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("KDBX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load assembles the configuration from the given viper instance. The
// instance is expected to carry flag bindings already; Load adds defaults,
// the environment, and the optional config file, then validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	BindEnv(v)

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		DB: kdb.Config{
			Host:                 v.GetString(KeyDBHost),
			Port:                 v.GetInt(KeyDBPort),
			Username:             v.GetString(KeyDBUsername),
			Password:             v.GetString(KeyDBPassword),
			UseTLS:               v.GetBool(KeyDBTLS),
			ConnectTimeout:       time.Duration(v.GetInt(KeyDBConnectTimeout)) * time.Second,
			RetryCount:           v.GetInt(KeyDBRetryCount),
			Metric:               v.GetString(KeyDBMetric),
			DefaultK:             v.GetInt(KeyDBDefaultK),
			EmbeddingsConfigPath: v.GetString(KeyDBEmbeddingsConfig),
		},
		Server: ServerConfig{
			Name:            v.GetString(KeyServerName),
			Transport:       v.GetString(KeyServerTransport),
			Host:            v.GetString(KeyServerHost),
			Port:            v.GetInt(KeyServerPort),
			SQLGuidancePath: v.GetString(KeyServerSQLGuidance),
		},
		Embeddings: embeddings.Config{
			OpenAIBaseURL: v.GetString(KeyOpenAIBaseURL),
			OpenAIAPIKey:  v.GetString(KeyOpenAIAPIKey),
			OllamaBaseURL: v.GetString(KeyOllamaBaseURL),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the assembled configuration and fills database defaults.
func (c *Config) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}

	switch c.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport %q (supported: %s, %s)",
			c.Server.Transport, TransportStdio, TransportStreamableHTTP)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

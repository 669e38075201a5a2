// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5000, cfg.DB.Port)
	assert.Equal(t, 30*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, 2, cfg.DB.RetryCount)
	assert.Equal(t, "CS", cfg.DB.Metric)
	assert.Equal(t, 5, cfg.DB.DefaultK)

	assert.Equal(t, DefaultServerName, cfg.Server.Name)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, DefaultHTTPHost, cfg.Server.Host)
	assert.Equal(t, DefaultHTTPPort, cfg.Server.Port)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("KDBX_DB_HOST", "kdb.internal")
	t.Setenv("KDBX_DB_PORT", "6001")
	t.Setenv("KDBX_SERVER_TRANSPORT", "streamable-http")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "kdb.internal", cfg.DB.Host)
	assert.Equal(t, 6001, cfg.DB.Port)
	assert.Equal(t, TransportStreamableHTTP, cfg.Server.Transport)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("KDBX_DB_HOST", "from-env")

	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "Database host")
	require.NoError(t, v.BindPFlag(KeyDBHost, flags.Lookup("host")))
	require.NoError(t, flags.Parse([]string{"--host", "from-flag"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.DB.Host)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  host: file-host
  default-k: 9
server:
  transport: streamable-http
  port: 9090
`), 0o600))

	v := viper.New()
	v.Set(KeyConfigFile, path)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "file-host", cfg.DB.Host)
	assert.Equal(t, 9, cfg.DB.DefaultK)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadMissingConfigFile(t *testing.T) {
	v := viper.New()
	v.Set(KeyConfigFile, "/nonexistent/config.yaml")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	t.Setenv("KDBX_SERVER_TRANSPORT", "sse")

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())
}

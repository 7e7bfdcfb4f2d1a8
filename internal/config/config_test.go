package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminAddr = "0x00000000000000000000000000000000000000ad"

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swapd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithFile(t *testing.T) {
	path := writeConfigFile(t, `
[engine]
fee_admin = "`+adminAddr+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.ListenAddr)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, DefaultFeeBps, cfg.Engine.DefaultFeeBps)
	assert.Equal(t, DefaultMaxHops, cfg.Engine.MaxHops)
	assert.Equal(t, adminAddr, cfg.Engine.FeeAdmin)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfigFile(t, `
[server]
listen_addr = "0.0.0.0"
port = 9000

[storage]
data_dir = "/var/lib/swapd"

[engine]
fee_admin = "`+adminAddr+`"
default_fee_bps = 5
max_hops = 4
routers = ["0x00000000000000000000000000000000000000ee"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	assert.Equal(t, "/var/lib/swapd", cfg.Storage.DataDir)
	assert.Equal(t, 5, cfg.Engine.DefaultFeeBps)
	assert.Equal(t, 4, cfg.Engine.MaxHops)
	require.Len(t, cfg.RouterAddresses(), 1)
	assert.False(t, cfg.RouterAddresses()[0].IsZero())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{
				ListenAddr:      "127.0.0.1",
				Port:            DefaultPort,
				ReadTimeoutSec:  DefaultReadTimeout,
				WriteTimeoutSec: DefaultWriteTimeout,
				ShutdownGrace:   DefaultShutdownGrace,
			},
			Storage: StorageConfig{DataDir: "data"},
			Engine: EngineConfig{
				FeeAdmin:      adminAddr,
				DefaultFeeBps: DefaultFeeBps,
				MaxHops:       DefaultMaxHops,
			},
		}
	}

	require.NoError(t, Validate(base()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeoutSec = 0 }},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }},
		{"missing fee admin", func(c *Config) { c.Engine.FeeAdmin = "" }},
		{"malformed fee admin", func(c *Config) { c.Engine.FeeAdmin = "0x1234" }},
		{"zero fee admin", func(c *Config) {
			c.Engine.FeeAdmin = "0x0000000000000000000000000000000000000000"
		}},
		{"fee above pool cap", func(c *Config) { c.Engine.DefaultFeeBps = 101 }},
		{"negative fee", func(c *Config) { c.Engine.DefaultFeeBps = -1 }},
		{"zero max hops", func(c *Config) { c.Engine.MaxHops = 0 }},
		{"excessive max hops", func(c *Config) { c.Engine.MaxHops = 100 }},
		{"malformed router", func(c *Config) { c.Engine.Routers = []string{"nope"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SWAPD_SERVER_PORT", "8111")

	path := writeConfigFile(t, `
[engine]
fee_admin = "`+adminAddr+`"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8111, cfg.Server.Port)
}

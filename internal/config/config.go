// Package config holds the daemon configuration: defaults, file and
// environment loading, and validation.
package config

import (
	"fmt"
	"time"
)

// Config is the complete swapd configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`

	configPath string
}

// ServerConfig covers the HTTP JSON-RPC and websocket listener.
type ServerConfig struct {
	ListenAddr      string `toml:"listen_addr" mapstructure:"listen_addr"`
	Port            int    `toml:"port" mapstructure:"port"`
	ReadTimeoutSec  int    `toml:"read_timeout_sec" mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `toml:"write_timeout_sec" mapstructure:"write_timeout_sec"`
	ShutdownGrace   int    `toml:"shutdown_grace_sec" mapstructure:"shutdown_grace_sec"`
}

// StorageConfig covers the snapshot store.
type StorageConfig struct {
	DataDir string `toml:"data_dir" mapstructure:"data_dir"`
}

// EngineConfig covers the exchange engine.
type EngineConfig struct {
	// FeeAdmin is the address holding fee authority over new pools.
	FeeAdmin string `toml:"fee_admin" mapstructure:"fee_admin"`
	// DefaultFeeBps is applied to pools created without an explicit rate.
	// Bounded by the per-pool cap so pool creation can never fail on it.
	DefaultFeeBps int `toml:"default_fee_bps" mapstructure:"default_fee_bps"`
	// MaxHops bounds best-route path search.
	MaxHops int `toml:"max_hops" mapstructure:"max_hops"`
	// Routers are addresses pre-authorized for reserve-level execution.
	Routers []string `toml:"routers" mapstructure:"routers"`
}

// ListenAddress is the host:port the server binds.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.ListenAddr, c.Server.Port)
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSec) * time.Second
}

// ShutdownGrace returns how long a graceful shutdown may take.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Server.ShutdownGrace) * time.Second
}

// Path returns the config file this configuration was loaded from, or empty
// when running on defaults and environment only.
func (c *Config) Path() string { return c.configPath }

package config

import (
	"fmt"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/types"
)

const maxHopsCeiling = 8

// Validate checks the configuration for values the daemon cannot start with.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if cfg.Server.ReadTimeoutSec <= 0 || cfg.Server.WriteTimeoutSec <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if cfg.Server.ShutdownGrace <= 0 {
		return fmt.Errorf("server.shutdown_grace_sec must be positive")
	}

	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}

	if cfg.Engine.FeeAdmin == "" {
		return fmt.Errorf("engine.fee_admin is required")
	}
	admin, err := types.ParseAddress(cfg.Engine.FeeAdmin)
	if err != nil {
		return fmt.Errorf("engine.fee_admin: %w", err)
	}
	if admin.IsZero() {
		return fmt.Errorf("engine.fee_admin must not be the zero address")
	}

	// Pools created with the default rate inherit it directly, so the
	// default must fit the per-pool cap.
	if cfg.Engine.DefaultFeeBps < 0 || cfg.Engine.DefaultFeeBps > amm.MaxPoolFeeBps {
		return fmt.Errorf("engine.default_fee_bps %d exceeds the pool cap of %d", cfg.Engine.DefaultFeeBps, amm.MaxPoolFeeBps)
	}
	if cfg.Engine.MaxHops < 1 || cfg.Engine.MaxHops > maxHopsCeiling {
		return fmt.Errorf("engine.max_hops %d out of range [1, %d]", cfg.Engine.MaxHops, maxHopsCeiling)
	}

	for _, router := range cfg.Engine.Routers {
		addr, err := types.ParseAddress(router)
		if err != nil {
			return fmt.Errorf("engine.routers entry %q: %w", router, err)
		}
		if addr.IsZero() {
			return fmt.Errorf("engine.routers must not contain the zero address")
		}
	}
	return nil
}

// FeeAdminAddress returns the parsed fee admin. Call after Validate.
func (c *Config) FeeAdminAddress() types.Address {
	return types.MustParseAddress(c.Engine.FeeAdmin)
}

// RouterAddresses returns the parsed pre-authorized routers. Call after
// Validate.
func (c *Config) RouterAddresses() []types.Address {
	out := make([]types.Address, len(c.Engine.Routers))
	for i, router := range c.Engine.Routers {
		out[i] = types.MustParseAddress(router)
	}
	return out
}

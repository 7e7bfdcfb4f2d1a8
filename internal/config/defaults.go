package config

import "github.com/spf13/viper"

// Default engine bounds. The fee default matches the common 0.3% rate; the
// hop bound keeps route enumeration small on dense pool graphs.
const (
	DefaultPort          = 7450
	DefaultFeeBps        = 30
	DefaultMaxHops       = 3
	DefaultReadTimeout   = 30
	DefaultWriteTimeout  = 30
	DefaultShutdownGrace = 10
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", "127.0.0.1")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout_sec", DefaultReadTimeout)
	v.SetDefault("server.write_timeout_sec", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_grace_sec", DefaultShutdownGrace)

	v.SetDefault("storage.data_dir", "data")

	v.SetDefault("engine.fee_admin", "")
	v.SetDefault("engine.default_fee_bps", DefaultFeeBps)
	v.SetDefault("engine.max_hops", DefaultMaxHops)
	v.SetDefault("engine.routers", []string{})
}

package rpc

import (
	"time"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/escrow"
	"github.com/kerlouan/goswapd/internal/core/router"
)

// ServerVersion is reported by server_info.
const ServerVersion = "0.3.0"

// Services bundles the engine components the RPC surface reads from.
type Services struct {
	Factory *amm.Factory
	Router  *router.Router
	Escrow  *escrow.Escrow

	// MaxHops bounds best_route queries.
	MaxHops int

	startedAt time.Time
}

// NewServices wires the query surface over the given engine components.
func NewServices(factory *amm.Factory, rt *router.Router, esc *escrow.Escrow, maxHops int) *Services {
	return &Services{
		Factory:   factory,
		Router:    rt,
		Escrow:    esc,
		MaxHops:   maxHops,
		startedAt: time.Now(),
	}
}

// Uptime is the time since the services were wired.
func (s *Services) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/kerlouan/goswapd/internal/config"
	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/escrow"
	"github.com/kerlouan/goswapd/internal/core/ledger"
	"github.com/kerlouan/goswapd/internal/core/router"
	"github.com/kerlouan/goswapd/internal/core/types"
	"github.com/kerlouan/goswapd/internal/events"
	"github.com/kerlouan/goswapd/internal/rpc"
	"github.com/kerlouan/goswapd/internal/storage/statestore"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// engineRouterAddr is the identity the in-process router executes under.
// It must stay authorized on the factory for reserve-level execution.
var engineRouterAddr = types.MustParseAddress("0x0000000000000000000000000000000000000010")

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the swapd server",
	Long: `Start the goswapd server which provides:
- HTTP JSON-RPC API endpoints
- WebSocket server for real-time event subscriptions
- Health check endpoint

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store, err := statestore.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	tokens := ledger.NewMemoryLedger()
	bus := events.NewBus()
	factory := amm.NewFactory(cfg.FeeAdminAddress(), uint16(cfg.Engine.DefaultFeeBps), tokens, bus)
	esc := escrow.New(tokens, bus)

	if err := statestore.Restore(store, factory, esc); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	if verbose {
		log.Printf("cli: restored %d pools and %d deals from %s", factory.PoolCount(), len(esc.Deals()), cfg.Storage.DataDir)
	}

	admin := cfg.FeeAdminAddress()
	if err := factory.AuthorizeRouter(admin, engineRouterAddr); err != nil {
		return fmt.Errorf("authorize router: %w", err)
	}
	for _, addr := range cfg.RouterAddresses() {
		if err := factory.AuthorizeRouter(admin, addr); err != nil {
			return fmt.Errorf("authorize router %s: %w", addr, err)
		}
	}

	rt, err := router.New(engineRouterAddr, factory, tokens, bus)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	// Checkpointing and event publishing both ride the synchronous bus,
	// so snapshots land before any subscriber observes the event.
	statestore.NewCheckpointer(store, factory, esc).Attach(bus)

	wsServer := rpc.NewWebSocketServer()
	rpc.NewEventPublisher(wsServer).Attach(bus)

	services := rpc.NewServices(factory, rt, esc, cfg.Engine.MaxHops)
	rpcServer := rpc.NewServer(services)

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	mux.Handle("/ws", wsServer)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"goswapd"}`))
	})

	httpServer := &http.Server{
		Addr:         cfg.ListenAddress(),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	if !quiet {
		fmt.Printf("Starting goswapd %s\n", rpc.ServerVersion)
		if cfg.Path() != "" {
			fmt.Printf("  - Configuration: %s\n", cfg.Path())
		}
		fmt.Printf("  - HTTP JSON-RPC: http://%s/\n", cfg.ListenAddress())
		fmt.Printf("  - WebSocket:     ws://%s/ws\n", cfg.ListenAddress())
		fmt.Printf("  - Health Check:  http://%s/health\n", cfg.ListenAddress())
		fmt.Printf("  - State store:   %s\n", cfg.Storage.DataDir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if !quiet {
			fmt.Println("Shutting down...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
		defer cancel()
		wsServer.Shutdown()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return store.Close()
}

package cli

import (
	"fmt"
	"os"

	"github.com/kerlouan/goswapd/internal/rpc"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swapd",
	Short: "goswapd - constant-product exchange daemon",
	Long: `goswapd runs an in-process token exchange engine: constant-product
liquidity pools with basis-point swap fees, a multi-hop router with
best-route search, and a buyer/seller escrow. State snapshots persist
across restarts and an HTTP JSON-RPC plus WebSocket API exposes the
engine.`,
	Version: rpc.ServerVersion,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

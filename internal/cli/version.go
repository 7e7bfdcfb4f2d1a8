package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and engine parameters",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("goswapd version %s\n", rootCmd.Version)
		fmt.Printf("Go version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					fmt.Printf("Build revision: %s\n", setting.Value)
				}
			}
		}
		fmt.Printf("Engine parameters:\n")
		fmt.Printf("  - initial deposit ratio: 1:%d\n", amm.InitialRatio)
		fmt.Printf("  - pool fee cap: %d bps\n", amm.MaxPoolFeeBps)
		fmt.Printf("  - fee denominator: %d\n", amm.FeeDenominator)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

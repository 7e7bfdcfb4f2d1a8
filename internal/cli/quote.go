package cli

import (
	"fmt"
	"math/big"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/spf13/cobra"
)

var (
	// Quote flags
	quoteReserveIn  string
	quoteReserveOut string
	quoteAmountIn   string
	quoteFeeBps     uint16
)

// quoteCmd computes a constant-product swap quote offline, without a
// running server or any pool state.
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute a swap quote from raw reserves",
	Long: `Compute the output amount a single constant-product swap would
produce for the given reserves, input amount and fee rate. The math is
identical to what a live pool applies, so quotes match execution.`,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteReserveIn, "reserve-in", "", "reserve of the input token")
	quoteCmd.Flags().StringVar(&quoteReserveOut, "reserve-out", "", "reserve of the output token")
	quoteCmd.Flags().StringVar(&quoteAmountIn, "amount-in", "", "input amount to quote")
	quoteCmd.Flags().Uint16Var(&quoteFeeBps, "fee-bps", 0, "swap fee in basis points")
}

func runQuote(cmd *cobra.Command, args []string) error {
	reserveIn, err := parsePositive("reserve-in", quoteReserveIn)
	if err != nil {
		return err
	}
	reserveOut, err := parsePositive("reserve-out", quoteReserveOut)
	if err != nil {
		return err
	}
	amountIn, err := parsePositive("amount-in", quoteAmountIn)
	if err != nil {
		return err
	}
	if quoteFeeBps > amm.MaxPoolFeeBps {
		return fmt.Errorf("fee-bps %d exceeds the pool cap of %d", quoteFeeBps, amm.MaxPoolFeeBps)
	}

	out, fee := amm.AmountOut(reserveIn, reserveOut, amountIn, quoteFeeBps)
	fmt.Printf("amount_out: %s\n", out)
	fmt.Printf("fee:        %s\n", fee)
	return nil
}

func parsePositive(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("--%s: %q is not a decimal integer", name, value)
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("--%s must be positive", name)
	}
	return n, nil
}

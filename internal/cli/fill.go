package cli

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quernali/goDexOrder/internal/config"
	"github.com/quernali/goDexOrder/internal/core/tx"
	"github.com/quernali/goDexOrder/internal/core/tx/swap"
)

var fillCmd = &cobra.Command{
	Use:   "fill txhash#index=amount ...",
	Short: "Build a batched order-fill transaction",
	Long: `Build the constraint set filling one or more orders. Each argument
names an order UTxO and the offered amount to take from it; an amount equal
to the remaining offer consumes the order completely.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		reqs := make([]swap.FillRequest, len(args))
		for i, arg := range args {
			refStr, amountStr, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected txhash#index=amount, got %q", arg)
			}
			ref, err := config.ParseOutRef(refStr)
			if err != nil {
				return err
			}
			amount, ok := new(big.Int).SetString(amountStr, 10)
			if !ok {
				return fmt.Errorf("bad fill amount %q", amountStr)
			}
			reqs[i] = swap.FillRequest{Ref: ref, Amount: amount}
		}

		rec := tx.NewRecorder()
		fees, err := swap.Fill(cmd.Context(), e.chain, rec, e.contracts, reqs, time.Now().UnixMilli())
		if err != nil {
			return err
		}

		e.log.WithField("orders", len(reqs)).Info("fill built")
		return printJSON(buildResult{Fees: fees, Constraints: rec})
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/quernali/goDexOrder/internal/config"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/tx"
	"github.com/quernali/goDexOrder/internal/core/tx/swap"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel txhash#index ...",
	Short: "Build an order-cancellation transaction",
	Long: `Build the constraint set cancelling one or more orders. Each order's
remaining value returns to its owner, less the fee retained for fills already
served; every owner must sign the resulting transaction.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		refs := make([]chain.OutRef, len(args))
		for i, arg := range args {
			ref, err := config.ParseOutRef(arg)
			if err != nil {
				return err
			}
			refs[i] = ref
		}

		rec := tx.NewRecorder()
		if err := swap.Cancel(cmd.Context(), e.chain, rec, e.contracts, refs); err != nil {
			return err
		}

		e.log.WithField("orders", len(refs)).Info("cancellation built")
		return printJSON(struct {
			Constraints *tx.Recorder `json:"constraints"`
		}{rec})
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

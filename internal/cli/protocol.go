package cli

import (
	"github.com/spf13/cobra"

	"github.com/quernali/goDexOrder/internal/core/order"
	"github.com/quernali/goDexOrder/internal/core/tx/swap"
)

var protocolCmd = &cobra.Command{
	Use:   "protocol",
	Short: "Show the on-chain protocol fee configuration",
	Long: `Fetch the protocol-configuration UTxO identified by its NFT and print
the decoded fee schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		cfg, utxo, err := swap.FetchConfig(cmd.Context(), e.chain, e.contracts)
		if err != nil {
			return err
		}

		feeAddr, err := cfg.FeeAddr.Bech32(e.cfg.NetworkID())
		if err != nil {
			return err
		}
		return printJSON(struct {
			Location   string       `json:"location"`
			FeeAddress string       `json:"fee_address"`
			Config     order.Config `json:"config"`
		}{
			Location:   utxo.Ref.String(),
			FeeAddress: feeAddr,
			Config:     cfg,
		})
	},
}

func init() {
	rootCmd.AddCommand(protocolCmd)
}

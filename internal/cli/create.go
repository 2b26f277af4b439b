package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quernali/goDexOrder/internal/config"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/order"
	"github.com/quernali/goDexOrder/internal/core/rational"
	"github.com/quernali/goDexOrder/internal/core/tx"
	"github.com/quernali/goDexOrder/internal/core/tx/swap"
	"github.com/quernali/goDexOrder/internal/core/value"
)

var (
	createOwner       string
	createSeed        string
	createOfferUnit   string
	createOfferAmount string
	createAskedUnit   string
	createPrice       string
	createStart       int64
	createEnd         int64
	createInline      bool
	createStakeHash   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Build an order-placement transaction",
	Long: `Build the constraint set placing a new limit order: the seed UTxO is
consumed, the tracking token is minted, and the offered amount plus fees and
deposit are locked at the order address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		owner, _, err := chain.ParseAddress(createOwner)
		if err != nil {
			return err
		}
		seedRef, err := config.ParseOutRef(createSeed)
		if err != nil {
			return fmt.Errorf("--seed: %w", err)
		}
		offerAmount, ok := new(big.Int).SetString(createOfferAmount, 10)
		if !ok {
			return fmt.Errorf("--offer-amount: not a number: %q", createOfferAmount)
		}
		price, err := parseRatio(createPrice)
		if err != nil {
			return fmt.Errorf("--price: %w", err)
		}

		params := order.CreateParams{
			Owner:       owner,
			OfferAmount: offerAmount,
			OfferedUnit: value.Unit(createOfferUnit),
			AskedUnit:   value.Unit(createAskedUnit),
			Price:       price,
		}
		if createStart != 0 {
			params.Start = &createStart
		}
		if createEnd != 0 {
			params.End = &createEnd
		}
		opts := swap.CreateOptions{InlineDatum: createInline}
		if createStakeHash != "" {
			opts.StakeCredential = &chain.Credential{Kind: chain.KeyCredential, Hash: createStakeHash}
		}

		seeds, err := e.chain.UTxOsByOutRefs(ctx, []chain.OutRef{seedRef})
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return fmt.Errorf("seed utxo %s not found", seedRef)
		}

		rec := tx.NewRecorder()
		fees, err := swap.Create(ctx, e.chain, rec, e.contracts, seeds[0], params, opts)
		if err != nil {
			return err
		}

		e.log.WithField("seed", seedRef.String()).Info("order placement built")
		return printJSON(buildResult{Fees: fees, Constraints: rec})
	},
}

// buildResult is the JSON document printed for every built transaction.
type buildResult struct {
	Fees        swap.Fees    `json:"fees"`
	Constraints *tx.Recorder `json:"constraints"`
}

// parseRatio parses a "numerator/denominator" fraction.
func parseRatio(s string) (rational.Rational, error) {
	numStr, denStr, ok := strings.Cut(s, "/")
	if !ok {
		return rational.Rational{}, fmt.Errorf("expected num/den, got %q", s)
	}
	num, ok := new(big.Int).SetString(numStr, 10)
	if !ok {
		return rational.Rational{}, fmt.Errorf("bad numerator %q", numStr)
	}
	den, ok := new(big.Int).SetString(denStr, 10)
	if !ok {
		return rational.Rational{}, fmt.Errorf("bad denominator %q", denStr)
	}
	return rational.Rational{Num: num, Den: den}, nil
}

func init() {
	createCmd.Flags().StringVar(&createOwner, "owner", "", "owner payment address (bech32)")
	createCmd.Flags().StringVar(&createSeed, "seed", "", "seed utxo reference (txhash#index)")
	createCmd.Flags().StringVar(&createOfferUnit, "offer-unit", string(value.Lovelace), "offered asset unit")
	createCmd.Flags().StringVar(&createOfferAmount, "offer-amount", "", "offered amount")
	createCmd.Flags().StringVar(&createAskedUnit, "asked-unit", string(value.Lovelace), "asked asset unit")
	createCmd.Flags().StringVar(&createPrice, "price", "", "asked per offered price as num/den")
	createCmd.Flags().Int64Var(&createStart, "start", 0, "fill window start, POSIX milliseconds (0 = open)")
	createCmd.Flags().Int64Var(&createEnd, "end", 0, "fill window end, POSIX milliseconds (0 = open)")
	createCmd.Flags().BoolVar(&createInline, "inline-datum", false, "carry the order datum inline instead of by hash")
	createCmd.Flags().StringVar(&createStakeHash, "stake-key", "", "staking key hash to mangle into the order address")

	for _, f := range []string{"owner", "seed", "offer-amount", "price"} {
		_ = createCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(createCmd)
}

package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/order"
	"github.com/quernali/goDexOrder/internal/core/tx"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// Fees is the protocol fee breakdown reported back to the caller of a
// create or fill: the flat lovelace charge plus the percentage charge by
// asset.
type Fees struct {
	FlatLovelace *big.Int    `json:"flat_lovelace"`
	Percent      value.Value `json:"percent"`
}

// CreateOptions tune order placement.
type CreateOptions struct {
	// InlineDatum selects inline datum carriage instead of a datum hash.
	InlineDatum bool
	// StakeCredential, when set, mangles the order address: payment part
	// of the validator, staking part as given.
	StakeCredential *chain.Credential
}

// Create appends the constraints of a new order placement to b: consume the
// seed UTxO, mint the tracking token named after it, and lock the offer plus
// fees and deposit at the order address. The seed UTxO must belong to the
// owner's wallet; its reference seeds the token name.
func Create(ctx context.Context, q ChainQuery, b tx.Builder, contracts Contracts, seed chain.UTxO, p order.CreateParams, opts CreateOptions) (Fees, error) {
	cfg, cfgUTxO, err := FetchConfig(ctx, q, contracts)
	if err != nil {
		return Fees{}, err
	}

	datum, err := order.NewDatum(p, cfg, seed.Ref)
	if err != nil {
		return Fees{}, err
	}

	mintRefs, err := contracts.referenceUTxOs(ctx, q, contracts.MintPolicyRef)
	if err != nil {
		return Fees{}, err
	}

	nftUnit := contracts.nftUnit(datum)
	mintRedeemer, err := order.MintRedeemer(seed.Ref)
	if err != nil {
		return Fees{}, fmt.Errorf("mint redeemer: %w", err)
	}

	// Locked value: the tracking token, the offer plus the maker
	// percentage fee in the offered asset, and the deposit plus the
	// maker flat fee in lovelace. Merging collapses the units when the
	// offered asset is lovelace itself.
	offerPlusFee := new(big.Int).Add(datum.OfferedAmount, datum.ContainedFee.OfferedTokens)
	deposit := new(big.Int).Add(cfg.MinDeposit, cfg.MakerFeeFlat)
	locked := value.New(nftUnit, big.NewInt(1)).
		Merge(value.New(datum.OfferedAsset.Unit(), offerPlusFee)).
		Merge(value.New(value.Lovelace, deposit))

	datumData, err := datum.ToData()
	if err != nil {
		return Fees{}, fmt.Errorf("encode order datum: %w", err)
	}
	carried := tx.HashDatum(datumData)
	if opts.InlineDatum {
		carried = tx.InlineDatum(datumData)
	}

	b.CollectFrom(seed, nil)
	b.MintAsset(nftUnit, big.NewInt(1), mintRedeemer)
	b.ReadFrom(cfgUTxO)
	b.ReadFrom(mintRefs...)
	b.PayTo(contracts.orderAddress(opts.StakeCredential), carried, locked)

	return Fees{
		FlatLovelace: new(big.Int).Set(cfg.MakerFeeFlat),
		Percent:      value.New(datum.OfferedAsset.Unit(), datum.ContainedFee.OfferedTokens),
	}, nil
}

package order

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quernali/goDexOrder/internal/core/value"
)

func placedOrderValue(t *testing.T, d Datum, cfg Config) value.Value {
	t.Helper()
	nftUnit := value.AssetClass{PolicyID: testNFTPolicy, AssetName: d.NFTName}.Unit()
	locked := new(big.Int).Add(d.OfferedOriginalAmount, d.ContainedFee.OfferedTokens)
	deposit := new(big.Int).Add(cfg.MinDeposit, cfg.MakerFeeFlat)
	return value.New(nftUnit, big.NewInt(1)).
		Merge(value.New(d.OfferedAsset.Unit(), locked)).
		Merge(value.New(value.Lovelace, deposit))
}

func TestExpectedPaymentCancelUntouched(t *testing.T) {
	cfg := testConfig()
	d, err := NewDatum(testParams(), cfg, seedRef)
	require.NoError(t, err)
	orderValue := placedOrderValue(t, d, cfg)

	got := ExpectedPayment(orderValue, d, testNFTPolicy, false)

	// Everything except the tracking token, the remaining offer and the
	// contained fee: here that is exactly the min deposit.
	assert.Equal(t, int64(2_100_000), got.Amount(value.Lovelace).Int64())
	assert.Len(t, got, 1)
}

// Conservation: in == out + nft + offered remainder + contained fee (cancel),
// and in + payment == out + nft + offered remainder + fee (complete fill).
func TestExpectedPaymentConservation(t *testing.T) {
	cfg := testConfig()
	d, err := NewDatum(testParams(), cfg, seedRef)
	require.NoError(t, err)
	orderValue := placedOrderValue(t, d, cfg)
	nftUnit := value.AssetClass{PolicyID: testNFTPolicy, AssetName: d.NFTName}.Unit()

	for _, completeFill := range []bool{false, true} {
		out := ExpectedPayment(orderValue, d, testNFTPolicy, completeFill)

		reassembled := out.
			Merge(value.New(nftUnit, big.NewInt(1))).
			Merge(value.New(d.OfferedAsset.Unit(), d.OfferedAmount)).
			Merge(d.ContainedFee.Value(d.OfferedAsset, d.AskedAsset))

		in := orderValue
		if completeFill {
			in = in.Merge(d.PaymentValueFor(d.OfferedAmount))
		}
		require.True(t, reassembled.Equal(in),
			"conservation violated (complete=%v): %s != %s", completeFill, reassembled, in)
	}
}

func TestExpectedPaymentCompleteFill(t *testing.T) {
	cfg := testConfig()
	d, err := NewDatum(testParams(), cfg, seedRef)
	require.NoError(t, err)
	orderValue := placedOrderValue(t, d, cfg)

	got := ExpectedPayment(orderValue, d, testNFTPolicy, true)

	// Owner receives the asked payment for the full 10M offer plus the
	// min deposit; the offered principal and fees leave the output.
	assert.Equal(t, int64(1_000_000), got.Amount(askedUnit).Int64())
	assert.Equal(t, int64(2_100_000), got.Amount(value.Lovelace).Int64())
}

func TestExpectedPaymentAfterPartialFill(t *testing.T) {
	cfg := testConfig()
	d, err := NewDatum(testParams(), cfg, seedRef)
	require.NoError(t, err)

	// Simulate the on-chain state after a folded single-order half fill.
	folded := ContainedFee{
		Lovelaces:     big.NewInt(1_000_000),
		OfferedTokens: new(big.Int),
		AskedTokens:   big.NewInt(1500),
	}
	half := d.ApplyPartialFill(big.NewInt(5_000_000), &folded)
	orderValue := placedOrderValue(t, d, cfg).
		Merge(d.PaymentValueFor(big.NewInt(5_000_000))).
		Merge(value.FromInt64(value.Lovelace, -5_000_000)).
		Merge(value.FromInt64(value.Lovelace, 1_000_000)).
		Merge(value.FromInt64(askedUnit, 1500))

	got := ExpectedPayment(orderValue, half, testNFTPolicy, false)

	// Deposit plus the contained payment accrued so far, minus retained
	// asked-token fees.
	assert.Equal(t, int64(2_100_000), got.Amount(value.Lovelace).Int64())
	assert.Equal(t, int64(500_000), got.Amount(askedUnit).Int64())
}

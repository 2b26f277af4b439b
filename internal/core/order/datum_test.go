package order

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/rational"
	"github.com/quernali/goDexOrder/internal/core/value"
)

const (
	ownerKeyHash  = "af21fa93ded7a12960b09bd1bc95d007f90513be8977ca40c97582d7"
	askedUnit     = value.Unit("642c1f7bf79ca48c0f97239fcb2f3b42b92f2548184ab394e1e1e5035465737431")
	testNFTPolicy = "fae686ea8f21d567841d703dea4d4221c2af071a6f2b433ff07c0af2"
)

var seedRef = chain.OutRef{
	TxHash:      "a289a5738885a41bdaadee7683c63cd1ee3564770718f4f00bfb46187a417f01",
	OutputIndex: 0,
}

func testConfig() Config {
	return Config{
		Signatories:    []string{ownerKeyHash},
		ReqSignatories: 1,
		NFTSymbol:      testNFTPolicy,
		FeeAddr:        chain.KeyAddress(ownerKeyHash),
		MakerFeeFlat:   big.NewInt(1_000_000),
		MakerFeeRatio:  rational.New(3, 1000),
		TakerFee:       big.NewInt(1_000_000),
		MinDeposit:     big.NewInt(2_100_000),
	}
}

func testParams() CreateParams {
	return CreateParams{
		Owner:       chain.KeyAddress(ownerKeyHash),
		OfferAmount: big.NewInt(10_000_000),
		OfferedUnit: value.Lovelace,
		AskedUnit:   askedUnit,
		Price:       rational.New(1, 10),
	}
}

func TestNewDatum(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	// Maker percentage fee: floor(10_000_000 * 3/1000) = 30_000.
	assert.Equal(t, int64(30_000), d.ContainedFee.OfferedTokens.Int64())
	assert.Equal(t, int64(1_000_000), d.ContainedFee.Lovelaces.Int64())
	assert.Equal(t, int64(0), d.ContainedFee.AskedTokens.Int64())

	assert.Equal(t, int64(10_000_000), d.OfferedOriginalAmount.Int64())
	assert.Equal(t, int64(10_000_000), d.OfferedAmount.Int64())
	assert.Equal(t, int64(0), d.PartialFills)
	assert.Equal(t, int64(0), d.ContainedPayment.Int64())
	assert.Equal(t, ownerKeyHash, d.OwnerKey)
	assert.Equal(t, int64(1_000_000), d.MakerLovelaceFlatFee.Int64())
	assert.Equal(t, int64(1_000_000), d.TakerLovelaceFlatFee.Int64())

	wantName, err := chain.TrackingTokenName(seedRef)
	require.NoError(t, err)
	assert.Equal(t, wantName, d.NFTName)
}

func TestNewDatumValidation(t *testing.T) {
	start := int64(2000)
	end := int64(1000)

	tests := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"zero offer", func(p *CreateParams) { p.OfferAmount = big.NewInt(0) }},
		{"negative offer", func(p *CreateParams) { p.OfferAmount = big.NewInt(-1) }},
		{"zero price numerator", func(p *CreateParams) { p.Price = rational.New(0, 10) }},
		{"zero price denominator", func(p *CreateParams) { p.Price = rational.New(1, 0) }},
		{"same assets", func(p *CreateParams) { p.AskedUnit = p.OfferedUnit }},
		{"end before start", func(p *CreateParams) { p.Start, p.End = &start, &end }},
		{"script owner", func(p *CreateParams) {
			p.Owner = chain.ScriptAddress(ownerKeyHash, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			_, err := NewDatum(p, testConfig(), seedRef)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOrderParameters)
		})
	}
}

func TestNewDatumAllowsEqualStartEnd(t *testing.T) {
	ts := int64(5000)
	p := testParams()
	p.Start, p.End = &ts, &ts
	_, err := NewDatum(p, testConfig(), seedRef)
	assert.NoError(t, err)
}

func TestPaymentForRoundsUp(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	// ceil(5_000_000 * 1/10) = 500_000
	assert.Equal(t, int64(500_000), d.PaymentFor(big.NewInt(5_000_000)).Int64())
	// ceil(1 * 1/10) = 1
	assert.Equal(t, int64(1), d.PaymentFor(big.NewInt(1)).Int64())
}

func TestApplyPartialFill(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	folded := ContainedFee{
		Lovelaces:     big.NewInt(1_000_000),
		OfferedTokens: new(big.Int),
		AskedTokens:   big.NewInt(1500),
	}
	next := d.ApplyPartialFill(big.NewInt(5_000_000), &folded)

	assert.Equal(t, int64(5_000_000), next.OfferedAmount.Int64())
	assert.Equal(t, int64(10_000_000), next.OfferedOriginalAmount.Int64())
	assert.Equal(t, int64(1), next.PartialFills)
	assert.Equal(t, int64(500_000), next.ContainedPayment.Int64())
	assert.Equal(t, int64(2_000_000), next.ContainedFee.Lovelaces.Int64())
	assert.Equal(t, int64(1500), next.ContainedFee.AskedTokens.Int64())

	// Aggregated path: no folded fee, contained fee untouched.
	agg := d.ApplyPartialFill(big.NewInt(5_000_000), nil)
	assert.True(t, agg.ContainedFee.Equal(d.ContainedFee))
	assert.Equal(t, int64(1), agg.PartialFills)
}

func TestRetainedFeeOnCancel(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	// Untouched order: full refund, no fee line item.
	_, owes := d.RetainedFeeOnCancel()
	assert.False(t, owes)

	// Half filled: half the maker percent fee is retained.
	half := d.ApplyPartialFill(big.NewInt(5_000_000), nil)
	retained, owes := half.RetainedFeeOnCancel()
	require.True(t, owes)
	assert.Equal(t, int64(15_000), retained.OfferedTokens.Int64())
	assert.Equal(t, int64(1_000_000), retained.Lovelaces.Int64())
}

// refund <= contained fee always, equality only for untouched orders.
func TestMakerFeeRefundMonotonic(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	fills := []int64{1, 3, 1_234_567, 5_000_000, 9_999_999}
	remaining := d
	for _, f := range fills {
		if remaining.OfferedAmount.Cmp(big.NewInt(f)) < 0 {
			break
		}
		remaining = remaining.ApplyPartialFill(big.NewInt(f), nil)
		refund := remaining.MakerFeeRefund()
		require.True(t, refund.Cmp(remaining.ContainedFee.OfferedTokens) <= 0)
		require.True(t, refund.Cmp(d.ContainedFee.OfferedTokens) < 0,
			"after a fill the refund must be strictly below the full fee")
	}

	// fillCount == 0: the pro-rata formula degenerates to a full refund.
	assert.Equal(t, d.ContainedFee.OfferedTokens, d.MakerFeeRefund())
}

func TestContainedFeeValueMergesLovelaceOffer(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	// Offered asset is lovelace, so flat fee and percent fee share a unit.
	v := d.ContainedFee.Value(d.OfferedAsset, d.AskedAsset)
	assert.Equal(t, int64(1_030_000), v.Amount(value.Lovelace).Int64())
	_, hasAsked := v[askedUnit]
	assert.False(t, hasAsked)
}

func TestZeroContainedFee(t *testing.T) {
	assert.True(t, ZeroContainedFee().IsZero())
	f := ContainedFee{Lovelaces: big.NewInt(1), OfferedTokens: new(big.Int), AskedTokens: new(big.Int)}
	assert.False(t, f.IsZero())
	assert.True(t, f.Add(ZeroContainedFee()).Equal(f))
}

package order

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quernali/goDexOrder/internal/codec/plutus"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// Redeemer constructor indices are part of the on-chain contract.
func TestActionEncodings(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		hex    string
	}{
		{name: "cancel", action: Cancel{}, hex: "d87980"},
		{name: "partial fill", action: PartialFill{Amount: big.NewInt(1)}, hex: "d87a9f01ff"},
		{name: "complete fill", action: CompleteFill{}, hex: "d87b80"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plutus.EncodeHex(tt.action.Data())
			require.NoError(t, err)
			assert.Equal(t, tt.hex, got)
		})
	}
}

func TestMintBurnRedeemers(t *testing.T) {
	mint, err := MintRedeemer(seedRef)
	require.NoError(t, err)
	c, err := plutus.AsConstr(mint, 0)
	require.NoError(t, err)
	require.Len(t, c.Fields, 1)
	ref, err := OutRefFromData(c.Fields[0])
	require.NoError(t, err)
	assert.Equal(t, seedRef, ref)

	burnHex, err := plutus.EncodeHex(BurnRedeemer())
	require.NoError(t, err)
	assert.Equal(t, "d87a80", burnHex)
}

func TestDatumRoundTrip(t *testing.T) {
	start := int64(1700000000000)
	end := int64(1700000600000)
	stake := chain.Credential{Kind: chain.KeyCredential, Hash: ownerKeyHash}

	p := testParams()
	p.Owner.Stake = &stake
	p.Start, p.End = &start, &end

	d, err := NewDatum(p, testConfig(), seedRef)
	require.NoError(t, err)
	d = d.ApplyPartialFill(big.NewInt(2_500_000), &ContainedFee{
		Lovelaces:     big.NewInt(1_000_000),
		OfferedTokens: new(big.Int),
		AskedTokens:   big.NewInt(750),
	})

	data, err := d.ToData()
	require.NoError(t, err)
	enc, err := plutus.Encode(data)
	require.NoError(t, err)
	dec, err := plutus.Decode(enc)
	require.NoError(t, err)
	got, err := DatumFromData(dec)
	require.NoError(t, err)

	assert.Equal(t, d.OwnerKey, got.OwnerKey)
	assert.Equal(t, d.OwnerAddr, got.OwnerAddr)
	assert.Equal(t, d.OfferedAsset, got.OfferedAsset)
	assert.Equal(t, 0, d.OfferedOriginalAmount.Cmp(got.OfferedOriginalAmount))
	assert.Equal(t, 0, d.OfferedAmount.Cmp(got.OfferedAmount))
	assert.Equal(t, d.AskedAsset, got.AskedAsset)
	assert.Equal(t, 0, d.Price.Num.Cmp(got.Price.Num))
	assert.Equal(t, 0, d.Price.Den.Cmp(got.Price.Den))
	assert.Equal(t, d.NFTName, got.NFTName)
	assert.Equal(t, *d.Start, *got.Start)
	assert.Equal(t, *d.End, *got.End)
	assert.Equal(t, d.PartialFills, got.PartialFills)
	assert.True(t, d.ContainedFee.Equal(got.ContainedFee))
	assert.Equal(t, 0, d.ContainedPayment.Cmp(got.ContainedPayment))
}

func TestDatumRoundTripNoWindow(t *testing.T) {
	d, err := NewDatum(testParams(), testConfig(), seedRef)
	require.NoError(t, err)

	data, err := d.ToData()
	require.NoError(t, err)
	enc, err := plutus.Encode(data)
	require.NoError(t, err)
	dec, err := plutus.Decode(enc)
	require.NoError(t, err)
	got, err := DatumFromData(dec)
	require.NoError(t, err)

	assert.Nil(t, got.Start)
	assert.Nil(t, got.End)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := testConfig()
	data, err := cfg.ToData()
	require.NoError(t, err)
	enc, err := plutus.Encode(data)
	require.NoError(t, err)
	dec, err := plutus.Decode(enc)
	require.NoError(t, err)
	got, err := ConfigFromData(dec)
	require.NoError(t, err)

	assert.Equal(t, cfg.Signatories, got.Signatories)
	assert.Equal(t, cfg.ReqSignatories, got.ReqSignatories)
	assert.Equal(t, cfg.NFTSymbol, got.NFTSymbol)
	assert.Equal(t, cfg.FeeAddr, got.FeeAddr)
	assert.Equal(t, 0, cfg.MakerFeeFlat.Cmp(got.MakerFeeFlat))
	assert.Equal(t, 0, cfg.TakerFee.Cmp(got.TakerFee))
	assert.Equal(t, 0, cfg.MinDeposit.Cmp(got.MinDeposit))
}

func TestValueRoundTrip(t *testing.T) {
	v := value.FromInt64(value.Lovelace, 3_100_000).
		Merge(value.FromInt64(askedUnit, 1500)).
		Merge(value.FromInt64(value.Unit(testNFTPolicy+"aa"), 2))

	data, err := ValueToData(v)
	require.NoError(t, err)
	enc, err := plutus.Encode(data)
	require.NoError(t, err)
	dec, err := plutus.Decode(enc)
	require.NoError(t, err)
	got, err := ValueFromData(dec)
	require.NoError(t, err)

	assert.True(t, v.Equal(got), "%s != %s", v, got)
}

func TestFeeOutputToData(t *testing.T) {
	fee := value.FromInt64(value.Lovelace, 1_000_000)
	f := FeeOutput{
		MentionedFees: []MentionedFee{{Ref: seedRef, Fee: fee}},
		ReservedValue: value.Value{},
	}
	data, err := f.ToData()
	require.NoError(t, err)
	c, err := plutus.AsConstr(data, 0)
	require.NoError(t, err)
	require.Len(t, c.Fields, 3)

	m, err := plutus.AsMap(c.Fields[0])
	require.NoError(t, err)
	require.Len(t, m, 1)
	ref, err := OutRefFromData(m[0].Key)
	require.NoError(t, err)
	assert.Equal(t, seedRef, ref)

	spent, err := plutus.AsConstr(c.Fields[2], 1)
	require.NoError(t, err)
	assert.Empty(t, spent.Fields)
}

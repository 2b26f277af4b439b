// Package order models the persistent on-chain record of a partially
// fillable limit order and the pure transformations applied to it over its
// lifetime: creation, partial fills and cancellation. Everything here is
// deterministic value arithmetic; transaction assembly lives in
// internal/core/tx/order.
package order

import (
	"fmt"
	"math/big"

	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/rational"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// ContainedFee is the portion of an order UTxO's value earmarked as protocol
// fee rather than owner principal. All three fields are non-negative in a
// well-formed order.
type ContainedFee struct {
	Lovelaces     *big.Int
	OfferedTokens *big.Int
	AskedTokens   *big.Int
}

// ZeroContainedFee returns an all-zero contained fee.
func ZeroContainedFee() ContainedFee {
	return ContainedFee{
		Lovelaces:     new(big.Int),
		OfferedTokens: new(big.Int),
		AskedTokens:   new(big.Int),
	}
}

// Add returns the fieldwise sum of two contained fees.
func (f ContainedFee) Add(other ContainedFee) ContainedFee {
	return ContainedFee{
		Lovelaces:     new(big.Int).Add(f.Lovelaces, other.Lovelaces),
		OfferedTokens: new(big.Int).Add(f.OfferedTokens, other.OfferedTokens),
		AskedTokens:   new(big.Int).Add(f.AskedTokens, other.AskedTokens),
	}
}

// Equal reports fieldwise equality.
func (f ContainedFee) Equal(other ContainedFee) bool {
	return f.Lovelaces.Cmp(other.Lovelaces) == 0 &&
		f.OfferedTokens.Cmp(other.OfferedTokens) == 0 &&
		f.AskedTokens.Cmp(other.AskedTokens) == 0
}

// IsZero reports whether no fee is contained at all.
func (f ContainedFee) IsZero() bool {
	return f.Equal(ZeroContainedFee())
}

// Value maps the contained fee onto concrete assets: lovelace, the order's
// offered asset and its asked asset. Merging handles the case where the
// offered or asked asset is itself lovelace.
func (f ContainedFee) Value(offered, asked value.AssetClass) value.Value {
	return value.New(value.Lovelace, f.Lovelaces).
		Merge(value.New(offered.Unit(), f.OfferedTokens)).
		Merge(value.New(asked.Unit(), f.AskedTokens))
}

// Datum is the persistent record attached to an order UTxO.
type Datum struct {
	// OwnerKey is the payment key hash used for mandatory-signer
	// enforcement on cancel; OwnerAddr is the refund destination.
	OwnerKey  string
	OwnerAddr chain.Address

	OfferedAsset          value.AssetClass
	OfferedOriginalAmount *big.Int
	OfferedAmount         *big.Int
	AskedAsset            value.AssetClass

	// Price is the asked-per-offered exchange rate, immutable.
	Price rational.Rational

	// NFTName is the tracking-token name derived from the seed input at
	// creation; it acts as the order's primary key.
	NFTName string

	// Start and End are optional fill-window bounds in POSIX milliseconds.
	Start *int64
	End   *int64

	// PartialFills counts fill transactions that did not fully consume
	// the order.
	PartialFills int64

	// Fee schedule snapshot taken from the protocol configuration at
	// creation; later config changes do not affect existing orders.
	MakerLovelaceFlatFee *big.Int
	TakerLovelaceFlatFee *big.Int

	ContainedFee     ContainedFee
	ContainedPayment *big.Int
}

// Config is the protocol fee-configuration record read from the config UTxO.
// The signatory fields gate the configuration-update path and are opaque to
// this layer.
type Config struct {
	Signatories    []string
	ReqSignatories int64
	NFTSymbol      string
	FeeAddr        chain.Address
	MakerFeeFlat   *big.Int
	MakerFeeRatio  rational.Rational
	TakerFee       *big.Int
	MinDeposit     *big.Int
}

// FeeOutput is the aggregated per-transaction protocol fee record, produced
// at most once per transaction as a single output to the fee-collector
// address. MentionedFees keeps insertion order for deterministic encoding.
type FeeOutput struct {
	MentionedFees []MentionedFee
	ReservedValue value.Value
	SpentRef      *chain.OutRef
}

// MentionedFee attributes a fee portion to the consumed order it was
// released from.
type MentionedFee struct {
	Ref chain.OutRef
	Fee value.Value
}

// CreateParams are the caller-supplied inputs to order placement.
type CreateParams struct {
	Owner       chain.Address
	OfferAmount *big.Int
	OfferedUnit value.Unit
	AskedUnit   value.Unit
	Price       rational.Rational
	// Start and End optionally bound the fill window (POSIX ms).
	Start *int64
	End   *int64
}

// NewDatum validates the creation parameters and derives the initial datum
// against the current protocol configuration. The contained fee starts at
// the maker flat fee plus the percentage fee on the offered amount; the
// tracking-token name comes from the seed input reference.
func NewDatum(p CreateParams, cfg Config, seedRef chain.OutRef) (Datum, error) {
	if p.OfferAmount == nil || p.OfferAmount.Sign() <= 0 {
		return Datum{}, fmt.Errorf("%w: offer amount must be positive", ErrInvalidOrderParameters)
	}
	if !p.Price.IsPositive() {
		return Datum{}, fmt.Errorf("%w: price numerator and denominator must be positive", ErrInvalidOrderParameters)
	}
	if p.OfferedUnit == p.AskedUnit {
		return Datum{}, fmt.Errorf("%w: offered and asked assets must be different", ErrInvalidOrderParameters)
	}
	if p.Start != nil && p.End != nil && *p.End < *p.Start {
		return Datum{}, fmt.Errorf("%w: end time cannot be earlier than start time", ErrInvalidOrderParameters)
	}
	if p.Owner.Payment.Kind != chain.KeyCredential {
		return Datum{}, fmt.Errorf("%w: owner must be a key address", ErrInvalidOrderParameters)
	}

	nftName, err := chain.TrackingTokenName(seedRef)
	if err != nil {
		return Datum{}, fmt.Errorf("%w: %v", ErrInvalidOrderParameters, err)
	}

	makerPercentFee := cfg.MakerFeeRatio.FloorMul(p.OfferAmount)
	return Datum{
		OwnerKey:              p.Owner.Payment.Hash,
		OwnerAddr:             p.Owner,
		OfferedAsset:          value.AssetClassFromUnit(p.OfferedUnit),
		OfferedOriginalAmount: new(big.Int).Set(p.OfferAmount),
		OfferedAmount:         new(big.Int).Set(p.OfferAmount),
		AskedAsset:            value.AssetClassFromUnit(p.AskedUnit),
		Price:                 p.Price,
		NFTName:               nftName,
		Start:                 p.Start,
		End:                   p.End,
		PartialFills:          0,
		MakerLovelaceFlatFee:  new(big.Int).Set(cfg.MakerFeeFlat),
		TakerLovelaceFlatFee:  new(big.Int).Set(cfg.TakerFee),
		ContainedFee: ContainedFee{
			Lovelaces:     new(big.Int).Set(cfg.MakerFeeFlat),
			OfferedTokens: makerPercentFee,
			AskedTokens:   new(big.Int),
		},
		ContainedPayment: new(big.Int),
	}, nil
}

// PaymentFor computes the asked-asset amount owed for filling the given
// offered amount: ceil(amount * price), rounded toward the protocol.
func (d Datum) PaymentFor(amount *big.Int) *big.Int {
	return d.Price.CeilMul(amount)
}

// PaymentValueFor is PaymentFor as a single-asset value.
func (d Datum) PaymentValueFor(amount *big.Int) value.Value {
	return value.New(d.AskedAsset.Unit(), d.PaymentFor(amount))
}

// ApplyPartialFill returns the datum of the continuing order after a partial
// fill. foldedFee is non-nil only on the single-order no-fee-output path; in
// the aggregated path the taker fee is diverted to the fee output and the
// contained fee stays unchanged for this fill.
func (d Datum) ApplyPartialFill(fillAmount *big.Int, foldedFee *ContainedFee) Datum {
	next := d
	next.OfferedAmount = new(big.Int).Sub(d.OfferedAmount, fillAmount)
	next.PartialFills = d.PartialFills + 1
	next.ContainedPayment = new(big.Int).Add(d.ContainedPayment, d.PaymentFor(fillAmount))
	if foldedFee != nil {
		next.ContainedFee = d.ContainedFee.Add(*foldedFee)
	}
	return next
}

// MakerFeeRefund computes the pro-rata maker percentage fee returned on
// cancellation: fee proportional to the never-filled remainder is refunded,
// the rest stays with the protocol.
func (d Datum) MakerFeeRefund() *big.Int {
	num := new(big.Int).Mul(d.OfferedAmount, d.ContainedFee.OfferedTokens)
	return num.Quo(num, d.OfferedOriginalAmount)
}

// RetainedFeeOnCancel returns the contained-fee share kept by the protocol
// when this order is cancelled. The second result is false for orders that
// owe nothing at all: untouched orders (no partial fill ever happened)
// refund their entire contained fee, and zero contained fees have nothing to
// retain; neither produces a fee-collector line item.
func (d Datum) RetainedFeeOnCancel() (ContainedFee, bool) {
	if d.PartialFills == 0 || d.ContainedFee.IsZero() {
		return ZeroContainedFee(), false
	}
	retained := ContainedFee{
		Lovelaces:     new(big.Int).Set(d.ContainedFee.Lovelaces),
		OfferedTokens: new(big.Int).Sub(d.ContainedFee.OfferedTokens, d.MakerFeeRefund()),
		AskedTokens:   new(big.Int).Set(d.ContainedFee.AskedTokens),
	}
	return retained, true
}

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

// validFromBufferMs is the forward buffer added to the intersected lower
// validity bound so the transaction clears slot-boundary skew on the ledger
// clock.
const validFromBufferMs = 30_000

// FillRequest asks for a fill of Amount against the order at Ref.
type FillRequest struct {
	Ref    chain.OutRef
	Amount *big.Int
}

// feeOutputRequired decides, once per batch, whether fees are emitted as an
// aggregated fee output or folded into the single continuing order. A
// completely filled order vanishes and its fee needs an explicit output;
// multiple continuing orders cannot jointly own one shared fee line. Only a
// lone partially-filled order carries its own fee forward.
func feeOutputRequired(anyComplete bool, batchSize int) bool {
	return anyComplete || batchSize > 1
}

// fillPlan is one validated order fill.
type fillPlan struct {
	rec      record
	amount   *big.Int
	complete bool
	// payment is the asked-asset amount owed for this fill.
	payment *big.Int
	// percentFee is the taker percentage fee charged on payment.
	percentFee *big.Int
}

// Fill appends the constraints of a batched fill to b. The caller supplies
// exact fill amounts per order reference; validation is exhaustive over the
// whole batch before any constraint is appended, and any failure aborts the
// batch as a whole.
func Fill(ctx context.Context, q ChainQuery, b tx.Builder, contracts Contracts, reqs []FillRequest, nowMs int64) (Fees, error) {
	if len(reqs) == 0 {
		return Fees{}, fmt.Errorf("%w: empty fill batch", order.ErrUnresolvedReference)
	}

	refs := make([]chain.OutRef, len(reqs))
	seen := make(map[chain.OutRef]struct{}, len(reqs))
	for i, r := range reqs {
		if _, dup := seen[r.Ref]; dup {
			return Fees{}, fmt.Errorf("%w: %s", order.ErrDuplicateFillReference, r.Ref)
		}
		seen[r.Ref] = struct{}{}
		refs[i] = r.Ref
	}
	records, err := resolveOrders(ctx, q, refs)
	if err != nil {
		return Fees{}, err
	}

	cfg, cfgUTxO, err := FetchConfig(ctx, q, contracts)
	if err != nil {
		return Fees{}, err
	}
	scriptRefs, err := contracts.referenceUTxOs(ctx, q, contracts.MintPolicyRef, contracts.ValidatorRef)
	if err != nil {
		return Fees{}, err
	}

	// Validate the whole batch before constructing anything.
	plans := make([]fillPlan, len(records))
	anyComplete := false
	for i, rec := range records {
		amt := reqs[i].Amount
		if amt == nil || amt.Sign() <= 0 {
			return Fees{}, fmt.Errorf("%w: order %s", order.ErrZeroFillAmount, rec.utxo.Ref)
		}
		if amt.Cmp(rec.datum.OfferedAmount) > 0 {
			return Fees{}, fmt.Errorf("%w: order %s offers %s, requested %s",
				order.ErrOverFillAmount, rec.utxo.Ref, rec.datum.OfferedAmount, amt)
		}
		if rec.datum.Start != nil && nowMs < *rec.datum.Start {
			return Fees{}, fmt.Errorf("%w: order %s not fillable before %d",
				order.ErrInvalidFillWindow, rec.utxo.Ref, *rec.datum.Start)
		}
		if rec.datum.End != nil && nowMs > *rec.datum.End {
			return Fees{}, fmt.Errorf("%w: order %s expired at %d",
				order.ErrInvalidFillWindow, rec.utxo.Ref, *rec.datum.End)
		}
		payment := rec.datum.PaymentFor(amt)
		plans[i] = fillPlan{
			rec:        rec,
			amount:     amt,
			complete:   amt.Cmp(rec.datum.OfferedAmount) == 0,
			payment:    payment,
			percentFee: cfg.MakerFeeRatio.FloorMul(payment),
		}
		anyComplete = anyComplete || plans[i].complete
	}

	aggregate := feeOutputRequired(anyComplete, len(plans))

	// Transaction-wide taker charges: one flat fee, sized by the most
	// demanding order, plus the percentage fees accumulated by asset.
	maxTakerFlat := new(big.Int)
	percentFees := value.Value{}
	for _, p := range plans {
		if p.rec.datum.TakerLovelaceFlatFee.Cmp(maxTakerFlat) > 0 {
			maxTakerFlat = new(big.Int).Set(p.rec.datum.TakerLovelaceFlatFee)
		}
		percentFees = percentFees.Merge(value.New(p.rec.datum.AskedAsset.Unit(), p.percentFee))
	}

	released := value.Value{}
	var mentioned []order.MentionedFee

	for _, p := range plans {
		d := p.rec.datum
		if p.complete {
			b.CollectFrom(p.rec.utxo, order.CompleteFill{}.Data())
			b.MintAsset(contracts.nftUnit(d), big.NewInt(-1), order.BurnRedeemer())

			refData, err := order.OutRefToData(p.rec.utxo.Ref)
			if err != nil {
				return Fees{}, err
			}
			payout := order.ExpectedPayment(p.rec.utxo.Value, d, contracts.MintPolicyID, true)
			b.PayTo(d.OwnerAddr, tx.InlineDatum(refData), payout)

			// A vanished order's accrued fee moves to the fee
			// output, attributed to its reference.
			feeValue := d.ContainedFee.Value(d.OfferedAsset, d.AskedAsset)
			if !feeValue.IsEmpty() {
				released = released.Merge(feeValue)
				mentioned = append(mentioned, order.MentionedFee{Ref: p.rec.utxo.Ref, Fee: feeValue})
			}
			continue
		}

		b.CollectFrom(p.rec.utxo, order.PartialFill{Amount: p.amount}.Data())

		// Folded path only: the lone continuing order absorbs the
		// taker fee into its contained fee and its value.
		var folded *order.ContainedFee
		deltaValue := value.New(d.AskedAsset.Unit(), p.payment).
			Merge(value.New(d.OfferedAsset.Unit(), p.amount).Negate())
		if !aggregate {
			folded = &order.ContainedFee{
				Lovelaces:     new(big.Int).Set(d.TakerLovelaceFlatFee),
				OfferedTokens: new(big.Int),
				AskedTokens:   new(big.Int).Set(p.percentFee),
			}
			deltaValue = deltaValue.Merge(folded.Value(d.OfferedAsset, d.AskedAsset))
		}

		next := d.ApplyPartialFill(p.amount, folded)
		nextData, err := next.ToData()
		if err != nil {
			return Fees{}, fmt.Errorf("encode continuing datum: %w", err)
		}
		carried := tx.InlineDatum(nextData)
		if p.rec.utxo.DatumHash != "" {
			carried = tx.HashDatum(nextData)
		}
		b.PayTo(p.rec.utxo.Address, carried, p.rec.utxo.Value.Merge(deltaValue))
	}

	if aggregate {
		feeValue := released.
			Merge(value.New(value.Lovelace, maxTakerFlat)).
			Merge(percentFees)
		if !feeValue.IsEmpty() {
			feeDatum, err := order.FeeOutput{
				MentionedFees: mentioned,
				ReservedValue: value.Value{},
			}.ToData()
			if err != nil {
				return Fees{}, fmt.Errorf("encode fee output datum: %w", err)
			}
			b.PayTo(cfg.FeeAddr, tx.HashDatum(feeDatum), feeValue)
		}
	}

	b.ReadFrom(scriptRefs...)
	b.ReadFrom(cfgUTxO)
	applyValidityWindow(b, plans)

	return Fees{FlatLovelace: maxTakerFlat, Percent: percentFees}, nil
}

// applyValidityWindow intersects the orders' fill windows: the tightest
// lower bound (plus the slot buffer) and the tightest upper bound.
func applyValidityWindow(b tx.Builder, plans []fillPlan) {
	var lower, upper *int64
	for _, p := range plans {
		if s := p.rec.datum.Start; s != nil && (lower == nil || *s > *lower) {
			lower = s
		}
		if e := p.rec.datum.End; e != nil && (upper == nil || *e < *upper) {
			upper = e
		}
	}
	if lower != nil {
		from := *lower + validFromBufferMs
		if upper != nil && from > *upper {
			from = *lower
		}
		b.ValidFrom(from)
	}
	if upper != nil {
		b.ValidTo(*upper)
	}
}

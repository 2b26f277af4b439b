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

// Cancel appends the constraints cancelling the orders at refs to b.
// Duplicate references are collapsed before resolution. Each order pays its
// remaining value back to its owner, less the fee retained for fills already
// served; retained fees for the whole batch settle into a single fee output.
// Every owner key is required as a transaction signer.
func Cancel(ctx context.Context, q ChainQuery, b tx.Builder, contracts Contracts, refs []chain.OutRef) error {
	seen := make(map[chain.OutRef]struct{}, len(refs))
	unique := refs[:0:0]
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		unique = append(unique, ref)
	}
	if len(unique) == 0 {
		return fmt.Errorf("%w: empty cancel batch", order.ErrUnresolvedReference)
	}

	records, err := resolveOrders(ctx, q, unique)
	if err != nil {
		return err
	}

	cfg, cfgUTxO, err := FetchConfig(ctx, q, contracts)
	if err != nil {
		return err
	}
	scriptRefs, err := contracts.referenceUTxOs(ctx, q, contracts.MintPolicyRef, contracts.ValidatorRef)
	if err != nil {
		return err
	}

	retained := value.Value{}
	var mentioned []order.MentionedFee
	signers := make(map[string]struct{})

	for _, rec := range records {
		d := rec.datum

		b.CollectFrom(rec.utxo, order.Cancel{}.Data())
		b.MintAsset(contracts.nftUnit(d), big.NewInt(-1), order.BurnRedeemer())

		refData, err := order.OutRefToData(rec.utxo.Ref)
		if err != nil {
			return err
		}
		payout := order.ExpectedPayment(rec.utxo.Value, d, contracts.MintPolicyID, false)
		b.PayTo(d.OwnerAddr, tx.InlineDatum(refData), payout)

		// An untouched order surrenders no fee; a partially served one
		// keeps the pro-rata share of its maker fee.
		if kept, ok := d.RetainedFeeOnCancel(); ok {
			keptValue := kept.Value(d.OfferedAsset, d.AskedAsset)
			retained = retained.Merge(keptValue)
			mentioned = append(mentioned, order.MentionedFee{Ref: rec.utxo.Ref, Fee: keptValue})
		}

		if _, ok := signers[d.OwnerKey]; !ok {
			signers[d.OwnerKey] = struct{}{}
			b.AddSignerKey(d.OwnerKey)
		}
	}

	if !retained.IsEmpty() {
		feeDatum, err := order.FeeOutput{MentionedFees: mentioned, ReservedValue: value.Value{}}.ToData()
		if err != nil {
			return fmt.Errorf("encode fee output datum: %w", err)
		}
		b.PayTo(cfg.FeeAddr, tx.HashDatum(feeDatum), retained)
	}

	b.ReadFrom(scriptRefs...)
	b.ReadFrom(cfgUTxO)
	return nil
}

// Package swap assembles the three transactions of the partial-order
// lifecycle against the swap validator and its tracking-token minting
// policy: placement, batched fills and batched cancellations. All value and
// fee arithmetic is delegated to internal/core/order; this package drives it
// across a batch, enforces the cross-order invariants and appends the
// resulting constraints to a tx.Builder.
package swap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/quernali/goDexOrder/internal/codec/plutus"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/order"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// Contracts are the per-network deployment constants of the swap scripts.
type Contracts struct {
	// MintPolicyID is the hash of the tracking-token minting policy.
	MintPolicyID string
	// ValidatorHash is the payment credential of order addresses.
	ValidatorHash string
	// ConfigNFTUnit identifies the protocol-configuration UTxO.
	ConfigNFTUnit value.Unit
	// ValidatorRef and MintPolicyRef locate the reference-script UTxOs.
	ValidatorRef  chain.OutRef
	MintPolicyRef chain.OutRef
}

// ChainQuery is the read-only ledger-state access the assemblers need. The
// concrete implementation lives in internal/provider; tests use fakes.
type ChainQuery interface {
	// UTxOsByOutRefs resolves output references to their current UTxOs.
	// A reference that no longer exists is simply absent from the result.
	UTxOsByOutRefs(ctx context.Context, refs []chain.OutRef) ([]chain.UTxO, error)
	// UTxOByUnit finds the unique UTxO holding the given asset.
	UTxOByUnit(ctx context.Context, unit value.Unit) (chain.UTxO, error)
	// DatumByHash resolves a datum hash to the hex-encoded datum.
	DatumByHash(ctx context.Context, hash string) (string, error)
}

// FetchConfig locates the protocol-configuration UTxO by its identifying NFT
// and decodes its datum. The returned UTxO is attached to transactions as a
// reference input.
func FetchConfig(ctx context.Context, q ChainQuery, contracts Contracts) (order.Config, chain.UTxO, error) {
	utxo, err := q.UTxOByUnit(ctx, contracts.ConfigNFTUnit)
	if err != nil {
		return order.Config{}, chain.UTxO{}, fmt.Errorf("locate config utxo: %w", err)
	}
	datumHex, err := resolveDatum(ctx, q, utxo)
	if err != nil {
		return order.Config{}, chain.UTxO{}, err
	}
	data, err := plutus.DecodeHex(datumHex)
	if err != nil {
		return order.Config{}, chain.UTxO{}, fmt.Errorf("decode config datum: %w", err)
	}
	cfg, err := order.ConfigFromData(data)
	if err != nil {
		return order.Config{}, chain.UTxO{}, fmt.Errorf("parse config datum: %w", err)
	}
	return cfg, utxo, nil
}

// record pairs a resolved order UTxO with its decoded datum.
type record struct {
	utxo  chain.UTxO
	datum order.Datum
}

// resolveDatum returns the hex datum of a UTxO, fetching the preimage by
// hash when it is not carried inline.
func resolveDatum(ctx context.Context, q ChainQuery, utxo chain.UTxO) (string, error) {
	if utxo.Datum != "" {
		return utxo.Datum, nil
	}
	if utxo.DatumHash == "" {
		return "", fmt.Errorf("%w: utxo %s", order.ErrMissingDatum, utxo.Ref)
	}
	datum, err := q.DatumByHash(ctx, utxo.DatumHash)
	if err != nil {
		return "", fmt.Errorf("resolve datum %s for %s: %w", utxo.DatumHash, utxo.Ref, err)
	}
	if datum == "" {
		return "", fmt.Errorf("%w: utxo %s", order.ErrMissingDatum, utxo.Ref)
	}
	return datum, nil
}

// resolveOrders fetches the referenced order UTxOs and their datums. Any
// missing reference aborts the whole batch; datum preimages are resolved
// concurrently.
func resolveOrders(ctx context.Context, q ChainQuery, refs []chain.OutRef) ([]record, error) {
	utxos, err := q.UTxOsByOutRefs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("fetch order utxos: %w", err)
	}
	byRef := make(map[chain.OutRef]chain.UTxO, len(utxos))
	for _, u := range utxos {
		byRef[u.Ref] = u
	}

	records := make([]record, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		utxo, ok := byRef[ref]
		if !ok {
			return nil, fmt.Errorf("%w: order %s no longer exists", order.ErrUnresolvedReference, ref)
		}
		records[i].utxo = utxo
		i, utxo := i, utxo
		g.Go(func() error {
			datumHex, err := resolveDatum(gctx, q, utxo)
			if err != nil {
				return err
			}
			data, err := plutus.DecodeHex(datumHex)
			if err != nil {
				return fmt.Errorf("decode datum of %s: %w", utxo.Ref, err)
			}
			datum, err := order.DatumFromData(data)
			if err != nil {
				return fmt.Errorf("parse datum of %s: %w", utxo.Ref, err)
			}
			records[i].datum = datum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// nftUnit is the full tracking-token unit of an order.
func (c Contracts) nftUnit(d order.Datum) value.Unit {
	return value.AssetClass{PolicyID: c.MintPolicyID, AssetName: d.NFTName}.Unit()
}

// orderAddress is the script address orders live at, optionally mangled
// with a caller-supplied staking credential.
func (c Contracts) orderAddress(stake *chain.Credential) chain.Address {
	return chain.ScriptAddress(c.ValidatorHash, stake)
}

// referenceUTxOs resolves the deployment reference-script UTxOs.
func (c Contracts) referenceUTxOs(ctx context.Context, q ChainQuery, refs ...chain.OutRef) ([]chain.UTxO, error) {
	utxos, err := q.UTxOsByOutRefs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("fetch reference scripts: %w", err)
	}
	if len(utxos) != len(refs) {
		return nil, fmt.Errorf("%w: reference script utxo missing", order.ErrUnresolvedReference)
	}
	return utxos, nil
}

// Package tx defines the append-only transaction-builder contract the order
// assemblers target. The real builder (wallet stack: coin selection,
// balancing, signing, submission) is an external collaborator; the core only
// ever appends constraints and never inspects builder state.
package tx

import (
	"math/big"

	"github.com/quernali/goDexOrder/internal/codec/plutus"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// DatumKind selects how a produced output carries its datum.
type DatumKind int

const (
	// DatumInline embeds the datum in the output.
	DatumInline DatumKind = iota
	// DatumHash stores only the hash on the output, with the preimage
	// supplied in the transaction witness set.
	DatumHash
)

// Datum pairs a structured record with its carrying mode.
type Datum struct {
	Kind DatumKind
	Data plutus.Data
}

// InlineDatum wraps d for inline carriage.
func InlineDatum(d plutus.Data) *Datum {
	return &Datum{Kind: DatumInline, Data: d}
}

// HashDatum wraps d for hashed carriage.
func HashDatum(d plutus.Data) *Datum {
	return &Datum{Kind: DatumHash, Data: d}
}

// Builder is the narrow constraint-append interface consumed by the order
// assemblers. Implementations must treat every call as purely additive.
type Builder interface {
	// CollectFrom consumes an input, authorized by the given redeemer
	// when the input sits at a script address.
	CollectFrom(in chain.UTxO, redeemer plutus.Data)
	// MintAsset mints (positive) or burns (negative) a quantity of the
	// given unit under the authority of the redeemer.
	MintAsset(unit value.Unit, amount *big.Int, redeemer plutus.Data)
	// PayTo produces an output at addr carrying v and an optional datum.
	PayTo(addr chain.Address, datum *Datum, v value.Value)
	// ReadFrom adds read-only reference inputs.
	ReadFrom(refs ...chain.UTxO)
	// AddSignerKey requires a signature by the given key hash.
	AddSignerKey(keyHash string)
	// ValidFrom and ValidTo bound the transaction validity interval
	// (POSIX ms).
	ValidFrom(ms int64)
	ValidTo(ms int64)
}

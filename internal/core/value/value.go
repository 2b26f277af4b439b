// Package value models multi-asset ledger values as sparse signed multisets.
// A Value maps asset units to quantities; entries that reach exactly zero are
// dropped so that a merged value never carries dust entries the ledger would
// reject or charge for.
package value

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Unit identifies an asset as the concatenation of its policy id and asset
// name, both hex encoded. The ledger's native unit is the distinguished
// string "lovelace".
type Unit string

// Lovelace is the native unit of the ledger.
const Lovelace Unit = "lovelace"

// policyIDHexLen is the length of a hex-encoded minting policy id (28 bytes).
const policyIDHexLen = 56

// AssetClass is the (policy id, asset name) pair behind a Unit. The empty
// policy id denotes lovelace.
type AssetClass struct {
	PolicyID  string
	AssetName string
}

// Unit returns the flat unit string for the asset class.
func (ac AssetClass) Unit() Unit {
	if ac.PolicyID == "" {
		return Lovelace
	}
	return Unit(ac.PolicyID + ac.AssetName)
}

// AssetClassFromUnit splits a unit back into its asset class.
func AssetClassFromUnit(u Unit) AssetClass {
	if u == Lovelace || u == "" {
		return AssetClass{}
	}
	s := string(u)
	if len(s) <= policyIDHexLen {
		return AssetClass{PolicyID: s}
	}
	return AssetClass{PolicyID: s[:policyIDHexLen], AssetName: s[policyIDHexLen:]}
}

// Value is a sparse mapping from asset unit to signed quantity.
// The zero value (nil map) is the empty value.
type Value map[Unit]*big.Int

// New returns a value holding a single asset quantity. A zero amount yields
// the empty value.
func New(u Unit, amount *big.Int) Value {
	if amount == nil || amount.Sign() == 0 {
		return Value{}
	}
	return Value{u: new(big.Int).Set(amount)}
}

// FromInt64 is a convenience constructor for tests and fixed fees.
func FromInt64(u Unit, amount int64) Value {
	return New(u, big.NewInt(amount))
}

// Amount returns the quantity of u, zero if absent. The result is a copy.
func (v Value) Amount(u Unit) *big.Int {
	if q, ok := v[u]; ok {
		return new(big.Int).Set(q)
	}
	return new(big.Int)
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	out := make(Value, len(v))
	for u, q := range v {
		out[u] = new(big.Int).Set(q)
	}
	return out
}

// Merge returns the pointwise sum of v and other. Entries summing to exactly
// zero are dropped. Merge is commutative and associative and never mutates
// its operands.
func (v Value) Merge(other Value) Value {
	out := v.Clone()
	for u, q := range other {
		if cur, ok := out[u]; ok {
			cur.Add(cur, q)
			if cur.Sign() == 0 {
				delete(out, u)
			}
		} else if q.Sign() != 0 {
			out[u] = new(big.Int).Set(q)
		}
	}
	return out
}

// Negate returns the value with every quantity sign-flipped.
func (v Value) Negate() Value {
	out := make(Value, len(v))
	for u, q := range v {
		out[u] = new(big.Int).Neg(q)
	}
	return out
}

// IsEmpty reports whether the value has no entries.
func (v Value) IsEmpty() bool {
	return len(v) == 0
}

// Equal reports pointwise equality. Both values are assumed to be in normal
// form (no zero entries), which every constructor and Merge guarantee.
func (v Value) Equal(other Value) bool {
	if len(v) != len(other) {
		return false
	}
	for u, q := range v {
		oq, ok := other[u]
		if !ok || q.Cmp(oq) != 0 {
			return false
		}
	}
	return true
}

// Units returns the units present, sorted, lovelace first.
func (v Value) Units() []Unit {
	units := make([]Unit, 0, len(v))
	for u := range v {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i] == Lovelace {
			return true
		}
		if units[j] == Lovelace {
			return false
		}
		return units[i] < units[j]
	})
	return units
}

func (v Value) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, u := range v.Units() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", u, v[u])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Package rational implements the exact fraction arithmetic used for order
// prices and protocol fee ratios. All operations are integer-exact; the two
// rounding directions (ceiling for payments owed, floor for fees taken) are
// part of the on-chain contract and must not be changed.
package rational

import (
	"fmt"
	"math/big"
)

// Rational is a fraction of two arbitrary-precision integers. Prices and fee
// ratios are expected to have positive numerator and denominator; this is
// enforced at order-creation time, not by the type itself.
type Rational struct {
	Num *big.Int
	Den *big.Int
}

// New returns the rational num/den.
func New(num, den int64) Rational {
	return Rational{Num: big.NewInt(num), Den: big.NewInt(den)}
}

// NewFromBig returns the rational num/den, copying both operands.
func NewFromBig(num, den *big.Int) Rational {
	return Rational{Num: new(big.Int).Set(num), Den: new(big.Int).Set(den)}
}

// IsPositive reports whether both numerator and denominator are positive.
func (r Rational) IsPositive() bool {
	return r.Num != nil && r.Den != nil && r.Num.Sign() > 0 && r.Den.Sign() > 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%s/%s", r.Num, r.Den)
}

// CeilMul computes ceil(amount * r), rounding toward the protocol's favor.
// This is the payment owed for a fill: the smallest integer n such that
// n * r.Den >= amount * r.Num.
func (r Rational) CeilMul(amount *big.Int) *big.Int {
	num := new(big.Int).Mul(amount, r.Num)
	// ceil(a/b) = floor((a + b - 1) / b) for positive b
	num.Add(num, r.Den)
	num.Sub(num, bigOne)
	return floorDiv(num, r.Den)
}

// FloorMul computes floor(amount * r). Percentage fees round down: the fee
// taken is never more than the ratio implies.
func (r Rational) FloorMul(amount *big.Int) *big.Int {
	num := new(big.Int).Mul(amount, r.Num)
	return floorDiv(num, r.Den)
}

var bigOne = big.NewInt(1)

// floorDiv returns floor(a / b) for positive b.
func floorDiv(a, b *big.Int) *big.Int {
	q, m := new(big.Int).QuoRem(a, b, new(big.Int))
	// big.Int.QuoRem truncates toward zero; correct downward for negative a.
	if m.Sign() < 0 {
		q.Sub(q, bigOne)
	}
	return q
}

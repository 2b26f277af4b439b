package order

import (
	"math/big"

	"github.com/quernali/goDexOrder/internal/core/value"
)

// ExpectedPayment computes the exact value paid to the order owner when the
// order is consumed:
//
//	out = in + payment-owed (complete fill only) - tracking token
//	    - remaining offered amount - contained fee
//
// The subtracted offered remainder and contained fee are settled elsewhere in
// the transaction (continuing output, fee output or wallet change); this
// function is pure so value conservation can be checked independently of how
// the transaction is later balanced.
func ExpectedPayment(orderValue value.Value, d Datum, nftPolicyID string, completeFill bool) value.Value {
	nftUnit := value.AssetClass{PolicyID: nftPolicyID, AssetName: d.NFTName}.Unit()
	toSubtract := value.New(nftUnit, big.NewInt(1)).
		Merge(value.New(d.OfferedAsset.Unit(), d.OfferedAmount)).
		Merge(d.ContainedFee.Value(d.OfferedAsset, d.AskedAsset))

	out := orderValue
	if completeFill {
		out = out.Merge(d.PaymentValueFor(d.OfferedAmount))
	}
	return out.Merge(toSubtract.Negate())
}

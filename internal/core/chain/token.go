package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// TrackingTokenName derives the unique tracking-token name for an order from
// the seed output reference consumed at creation: the SHA-256 digest of the
// output index byte followed by the transaction hash bytes. The minting
// policy recomputes the same digest on chain, so the output index must fit in
// a single byte.
func TrackingTokenName(ref OutRef) (string, error) {
	if ref.OutputIndex > 255 {
		return "", fmt.Errorf("output index %d out of byte range (0-255)", ref.OutputIndex)
	}
	txHash, err := hex.DecodeString(ref.TxHash)
	if err != nil {
		return "", fmt.Errorf("decode tx hash: %w", err)
	}
	preimage := append([]byte{byte(ref.OutputIndex)}, txHash...)
	digest := sha256.Sum256(preimage)
	return hex.EncodeToString(digest[:]), nil
}

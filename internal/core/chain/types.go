// Package chain holds the ledger-facing primitive types shared by the order
// core: output references, UTxO handles and structured addresses. Addresses
// are credential pairs internally; ParseAddress and Address.Bech32 convert
// to and from the bech32 wire form.
package chain

import (
	"fmt"

	"github.com/quernali/goDexOrder/internal/core/value"
)

// OutRef identifies a transaction output by transaction hash (hex) and index.
type OutRef struct {
	TxHash      string `json:"tx_hash"`
	OutputIndex uint32 `json:"output_index"`
}

func (r OutRef) String() string {
	return fmt.Sprintf("%s#%d", r.TxHash, r.OutputIndex)
}

// CredentialKind discriminates key hashes from script hashes.
type CredentialKind int

const (
	KeyCredential CredentialKind = iota
	ScriptCredential
)

// Credential is a payment or staking credential: a 28-byte hash (hex) tagged
// with its kind.
type Credential struct {
	Kind CredentialKind `json:"kind"`
	Hash string         `json:"hash"`
}

// Address is a structured ledger address: a payment credential plus an
// optional inline staking credential. Pointer addresses are not supported.
type Address struct {
	Payment Credential  `json:"payment"`
	Stake   *Credential `json:"stake,omitempty"`
}

// KeyAddress returns an address paying to a public key hash.
func KeyAddress(keyHash string) Address {
	return Address{Payment: Credential{Kind: KeyCredential, Hash: keyHash}}
}

// ScriptAddress returns an address paying to a script hash, optionally
// staked by the given credential ("mangled" order addresses).
func ScriptAddress(scriptHash string, stake *Credential) Address {
	return Address{Payment: Credential{Kind: ScriptCredential, Hash: scriptHash}, Stake: stake}
}

// UTxO is a resolved unspent output: its reference, owning address, value and
// attached datum. Datum is the hex-encoded plutus data when known inline (or
// already resolved); DatumHash is set when only the hash is on chain.
type UTxO struct {
	Ref       OutRef      `json:"ref"`
	Address   Address     `json:"address"`
	Value     value.Value `json:"value"`
	Datum     string      `json:"datum,omitempty"`
	DatumHash string      `json:"datum_hash,omitempty"`
}

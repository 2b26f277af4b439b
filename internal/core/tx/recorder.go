package tx

import (
	"math/big"

	"github.com/quernali/goDexOrder/internal/codec/plutus"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// Recorder is a Builder that records every appended constraint. It backs the
// CLI's dry-run output and the assembler tests; a wallet stack replays the
// recorded constraints against its own transaction builder.
type Recorder struct {
	Inputs      []Input      `json:"inputs"`
	Mints       []Mint       `json:"mints"`
	Outputs     []Output     `json:"outputs"`
	References  []chain.UTxO `json:"references"`
	SignerKeys  []string     `json:"signer_keys"`
	ValidFromMs *int64       `json:"valid_from_ms,omitempty"`
	ValidToMs   *int64       `json:"valid_to_ms,omitempty"`
}

// Input is a consumed UTxO with its authorization redeemer.
type Input struct {
	UTxO     chain.UTxO `json:"utxo"`
	Redeemer string     `json:"redeemer,omitempty"`
}

// Mint is a signed token quantity with its policy redeemer.
type Mint struct {
	Unit     value.Unit `json:"unit"`
	Amount   *big.Int   `json:"amount"`
	Redeemer string     `json:"redeemer,omitempty"`
}

// Output is a produced output; Datum is the hex-encoded record when present.
type Output struct {
	Address   chain.Address `json:"address"`
	Value     value.Value   `json:"value"`
	Datum     string        `json:"datum,omitempty"`
	DatumKind string        `json:"datum_kind,omitempty"`
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func encodeOrEmpty(d plutus.Data) string {
	if d == nil {
		return ""
	}
	s, err := plutus.EncodeHex(d)
	if err != nil {
		return ""
	}
	return s
}

// CollectFrom implements Builder.
func (r *Recorder) CollectFrom(in chain.UTxO, redeemer plutus.Data) {
	r.Inputs = append(r.Inputs, Input{UTxO: in, Redeemer: encodeOrEmpty(redeemer)})
}

// MintAsset implements Builder.
func (r *Recorder) MintAsset(unit value.Unit, amount *big.Int, redeemer plutus.Data) {
	r.Mints = append(r.Mints, Mint{Unit: unit, Amount: new(big.Int).Set(amount), Redeemer: encodeOrEmpty(redeemer)})
}

// PayTo implements Builder.
func (r *Recorder) PayTo(addr chain.Address, datum *Datum, v value.Value) {
	out := Output{Address: addr, Value: v.Clone()}
	if datum != nil {
		out.Datum = encodeOrEmpty(datum.Data)
		if datum.Kind == DatumInline {
			out.DatumKind = "inline"
		} else {
			out.DatumKind = "hash"
		}
	}
	r.Outputs = append(r.Outputs, out)
}

// ReadFrom implements Builder.
func (r *Recorder) ReadFrom(refs ...chain.UTxO) {
	r.References = append(r.References, refs...)
}

// AddSignerKey implements Builder.
func (r *Recorder) AddSignerKey(keyHash string) {
	r.SignerKeys = append(r.SignerKeys, keyHash)
}

// ValidFrom implements Builder.
func (r *Recorder) ValidFrom(ms int64) {
	r.ValidFromMs = &ms
}

// ValidTo implements Builder.
func (r *Recorder) ValidTo(ms int64) {
	r.ValidToMs = &ms
}

// TotalOutputValue sums all produced outputs, useful for conservation checks.
func (r *Recorder) TotalOutputValue() value.Value {
	total := value.Value{}
	for _, o := range r.Outputs {
		total = total.Merge(o.Value)
	}
	return total
}

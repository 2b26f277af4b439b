package order

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/quernali/goDexOrder/internal/codec/plutus"
	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/rational"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// Constructor indices of the order redeemer variants. Pinned by the on-chain
// validator; the tests hold the exact encodings.
const (
	redeemerCancelIndex       = 0
	redeemerPartialFillIndex  = 1
	redeemerCompleteFillIndex = 2
)

// Action is the closed union of order redeemers: cancel, partial fill with
// its amount, complete fill.
type Action interface {
	isAction()
	Data() plutus.Data
}

// Cancel authorizes consuming the order for a refund.
type Cancel struct{}

// PartialFill authorizes consuming the order while filling Amount of it.
type PartialFill struct {
	Amount *big.Int
}

// CompleteFill authorizes consuming the order by filling all of it.
type CompleteFill struct{}

func (Cancel) isAction()       {}
func (PartialFill) isAction()  {}
func (CompleteFill) isAction() {}

// Data returns the redeemer's plutus encoding.
func (Cancel) Data() plutus.Data { return plutus.NewConstr(redeemerCancelIndex) }

func (a PartialFill) Data() plutus.Data {
	return plutus.NewConstr(redeemerPartialFillIndex, plutus.NewIntBig(a.Amount))
}

func (CompleteFill) Data() plutus.Data { return plutus.NewConstr(redeemerCompleteFillIndex) }

// MintRedeemer is the tracking-token policy redeemer for minting: the seed
// output reference the token name commits to.
func MintRedeemer(ref chain.OutRef) (plutus.Data, error) {
	refData, err := OutRefToData(ref)
	if err != nil {
		return nil, err
	}
	return plutus.NewConstr(0, refData), nil
}

// BurnRedeemer is the tracking-token policy redeemer for burning.
func BurnRedeemer() plutus.Data {
	return plutus.NewConstr(1)
}

func bytesField(s string) (plutus.Data, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex field %q: %w", s, err)
	}
	return plutus.Bytes(b), nil
}

func hexField(d plutus.Data) (string, error) {
	b, err := plutus.AsBytes(d)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// AssetClassToData encodes an asset class as Constr 0 [policy, name].
func AssetClassToData(ac value.AssetClass) (plutus.Data, error) {
	policy, err := bytesField(ac.PolicyID)
	if err != nil {
		return nil, err
	}
	name, err := bytesField(ac.AssetName)
	if err != nil {
		return nil, err
	}
	return plutus.NewConstr(0, policy, name), nil
}

func assetClassFromData(d plutus.Data) (value.AssetClass, error) {
	c, err := plutus.AsConstr(d, 0)
	if err != nil {
		return value.AssetClass{}, err
	}
	if len(c.Fields) != 2 {
		return value.AssetClass{}, fmt.Errorf("asset class needs 2 fields, got %d", len(c.Fields))
	}
	policy, err := hexField(c.Fields[0])
	if err != nil {
		return value.AssetClass{}, err
	}
	name, err := hexField(c.Fields[1])
	if err != nil {
		return value.AssetClass{}, err
	}
	return value.AssetClass{PolicyID: policy, AssetName: name}, nil
}

func rationalToData(r rational.Rational) plutus.Data {
	return plutus.NewConstr(0, plutus.NewIntBig(r.Num), plutus.NewIntBig(r.Den))
}

func rationalFromData(d plutus.Data) (rational.Rational, error) {
	c, err := plutus.AsConstr(d, 0)
	if err != nil {
		return rational.Rational{}, err
	}
	if len(c.Fields) != 2 {
		return rational.Rational{}, fmt.Errorf("rational needs 2 fields, got %d", len(c.Fields))
	}
	num, err := plutus.AsInt(c.Fields[0])
	if err != nil {
		return rational.Rational{}, err
	}
	den, err := plutus.AsInt(c.Fields[1])
	if err != nil {
		return rational.Rational{}, err
	}
	return rational.NewFromBig(num, den), nil
}

func credentialToData(c chain.Credential) (plutus.Data, error) {
	h, err := bytesField(c.Hash)
	if err != nil {
		return nil, err
	}
	if c.Kind == chain.ScriptCredential {
		return plutus.NewConstr(1, h), nil
	}
	return plutus.NewConstr(0, h), nil
}

func credentialFromData(d plutus.Data) (chain.Credential, error) {
	c, err := plutus.AsAnyConstr(d)
	if err != nil {
		return chain.Credential{}, err
	}
	if c.Index > 1 || len(c.Fields) != 1 {
		return chain.Credential{}, fmt.Errorf("malformed credential constructor %d/%d fields", c.Index, len(c.Fields))
	}
	h, err := hexField(c.Fields[0])
	if err != nil {
		return chain.Credential{}, err
	}
	kind := chain.KeyCredential
	if c.Index == 1 {
		kind = chain.ScriptCredential
	}
	return chain.Credential{Kind: kind, Hash: h}, nil
}

// AddressToData encodes a structured address: Constr 0 [payment credential,
// optional inline staking credential]. Pointer staking references are not
// produced by this layer.
func AddressToData(a chain.Address) (plutus.Data, error) {
	payment, err := credentialToData(a.Payment)
	if err != nil {
		return nil, err
	}
	stake := plutus.NewConstr(1) // Nothing
	if a.Stake != nil {
		cred, err := credentialToData(*a.Stake)
		if err != nil {
			return nil, err
		}
		// Just (Inline cred)
		stake = plutus.NewConstr(0, plutus.NewConstr(0, cred))
	}
	return plutus.NewConstr(0, payment, stake), nil
}

// AddressFromData decodes a structured address, rejecting pointer staking
// references.
func AddressFromData(d plutus.Data) (chain.Address, error) {
	c, err := plutus.AsConstr(d, 0)
	if err != nil {
		return chain.Address{}, err
	}
	if len(c.Fields) != 2 {
		return chain.Address{}, fmt.Errorf("address needs 2 fields, got %d", len(c.Fields))
	}
	payment, err := credentialFromData(c.Fields[0])
	if err != nil {
		return chain.Address{}, fmt.Errorf("payment credential: %w", err)
	}
	addr := chain.Address{Payment: payment}

	stakeOpt, err := plutus.AsAnyConstr(c.Fields[1])
	if err != nil {
		return chain.Address{}, fmt.Errorf("stake credential: %w", err)
	}
	if stakeOpt.Index == 1 {
		return addr, nil
	}
	if stakeOpt.Index != 0 || len(stakeOpt.Fields) != 1 {
		return chain.Address{}, fmt.Errorf("malformed optional stake credential")
	}
	inline, err := plutus.AsAnyConstr(stakeOpt.Fields[0])
	if err != nil {
		return chain.Address{}, err
	}
	if inline.Index != 0 || len(inline.Fields) != 1 {
		return chain.Address{}, fmt.Errorf("pointer stake references are not supported")
	}
	cred, err := credentialFromData(inline.Fields[0])
	if err != nil {
		return chain.Address{}, err
	}
	addr.Stake = &cred
	return addr, nil
}

// OutRefToData encodes an output reference: Constr 0 [Constr 0 [tx hash],
// output index].
func OutRefToData(ref chain.OutRef) (plutus.Data, error) {
	h, err := bytesField(ref.TxHash)
	if err != nil {
		return nil, err
	}
	return plutus.NewConstr(0, plutus.NewConstr(0, h), plutus.NewInt(int64(ref.OutputIndex))), nil
}

// OutRefFromData decodes an output reference.
func OutRefFromData(d plutus.Data) (chain.OutRef, error) {
	c, err := plutus.AsConstr(d, 0)
	if err != nil {
		return chain.OutRef{}, err
	}
	if len(c.Fields) != 2 {
		return chain.OutRef{}, fmt.Errorf("output reference needs 2 fields, got %d", len(c.Fields))
	}
	txid, err := plutus.AsConstr(c.Fields[0], 0)
	if err != nil {
		return chain.OutRef{}, err
	}
	if len(txid.Fields) != 1 {
		return chain.OutRef{}, fmt.Errorf("tx id needs 1 field, got %d", len(txid.Fields))
	}
	h, err := hexField(txid.Fields[0])
	if err != nil {
		return chain.OutRef{}, err
	}
	idx, err := plutus.AsInt(c.Fields[1])
	if err != nil {
		return chain.OutRef{}, err
	}
	return chain.OutRef{TxHash: h, OutputIndex: uint32(idx.Uint64())}, nil
}

func optionalTimeToData(t *int64) plutus.Data {
	if t == nil {
		return plutus.NewConstr(1)
	}
	return plutus.NewConstr(0, plutus.NewInt(*t))
}

func optionalTimeFromData(d plutus.Data) (*int64, error) {
	c, err := plutus.AsAnyConstr(d)
	if err != nil {
		return nil, err
	}
	switch c.Index {
	case 0:
		if len(c.Fields) != 1 {
			return nil, fmt.Errorf("optional time needs 1 field, got %d", len(c.Fields))
		}
		v, err := plutus.AsInt(c.Fields[0])
		if err != nil {
			return nil, err
		}
		t := v.Int64()
		return &t, nil
	case 1:
		return nil, nil
	default:
		return nil, fmt.Errorf("malformed optional time constructor %d", c.Index)
	}
}

func containedFeeToData(f ContainedFee) plutus.Data {
	return plutus.NewConstr(0,
		plutus.NewIntBig(f.Lovelaces),
		plutus.NewIntBig(f.OfferedTokens),
		plutus.NewIntBig(f.AskedTokens),
	)
}

func containedFeeFromData(d plutus.Data) (ContainedFee, error) {
	c, err := plutus.AsConstr(d, 0)
	if err != nil {
		return ContainedFee{}, err
	}
	if len(c.Fields) != 3 {
		return ContainedFee{}, fmt.Errorf("contained fee needs 3 fields, got %d", len(c.Fields))
	}
	lov, err := plutus.AsInt(c.Fields[0])
	if err != nil {
		return ContainedFee{}, err
	}
	off, err := plutus.AsInt(c.Fields[1])
	if err != nil {
		return ContainedFee{}, err
	}
	ask, err := plutus.AsInt(c.Fields[2])
	if err != nil {
		return ContainedFee{}, err
	}
	return ContainedFee{Lovelaces: lov, OfferedTokens: off, AskedTokens: ask}, nil
}

// ToData encodes the order datum with the exact field order the validator
// expects.
func (d Datum) ToData() (plutus.Data, error) {
	ownerKey, err := bytesField(d.OwnerKey)
	if err != nil {
		return nil, err
	}
	ownerAddr, err := AddressToData(d.OwnerAddr)
	if err != nil {
		return nil, err
	}
	offered, err := AssetClassToData(d.OfferedAsset)
	if err != nil {
		return nil, err
	}
	asked, err := AssetClassToData(d.AskedAsset)
	if err != nil {
		return nil, err
	}
	nft, err := bytesField(d.NFTName)
	if err != nil {
		return nil, err
	}
	return plutus.NewConstr(0,
		ownerKey,
		ownerAddr,
		offered,
		plutus.NewIntBig(d.OfferedOriginalAmount),
		plutus.NewIntBig(d.OfferedAmount),
		asked,
		rationalToData(d.Price),
		nft,
		optionalTimeToData(d.Start),
		optionalTimeToData(d.End),
		plutus.NewInt(d.PartialFills),
		plutus.NewIntBig(d.MakerLovelaceFlatFee),
		plutus.NewIntBig(d.TakerLovelaceFlatFee),
		containedFeeToData(d.ContainedFee),
		plutus.NewIntBig(d.ContainedPayment),
	), nil
}

// DatumFromData decodes an order datum.
func DatumFromData(data plutus.Data) (Datum, error) {
	c, err := plutus.AsConstr(data, 0)
	if err != nil {
		return Datum{}, err
	}
	if len(c.Fields) != 15 {
		return Datum{}, fmt.Errorf("order datum needs 15 fields, got %d", len(c.Fields))
	}
	var d Datum
	if d.OwnerKey, err = hexField(c.Fields[0]); err != nil {
		return Datum{}, fmt.Errorf("owner key: %w", err)
	}
	if d.OwnerAddr, err = AddressFromData(c.Fields[1]); err != nil {
		return Datum{}, fmt.Errorf("owner address: %w", err)
	}
	if d.OfferedAsset, err = assetClassFromData(c.Fields[2]); err != nil {
		return Datum{}, fmt.Errorf("offered asset: %w", err)
	}
	if d.OfferedOriginalAmount, err = plutus.AsInt(c.Fields[3]); err != nil {
		return Datum{}, fmt.Errorf("offered original amount: %w", err)
	}
	if d.OfferedAmount, err = plutus.AsInt(c.Fields[4]); err != nil {
		return Datum{}, fmt.Errorf("offered amount: %w", err)
	}
	if d.AskedAsset, err = assetClassFromData(c.Fields[5]); err != nil {
		return Datum{}, fmt.Errorf("asked asset: %w", err)
	}
	if d.Price, err = rationalFromData(c.Fields[6]); err != nil {
		return Datum{}, fmt.Errorf("price: %w", err)
	}
	if d.NFTName, err = hexField(c.Fields[7]); err != nil {
		return Datum{}, fmt.Errorf("nft name: %w", err)
	}
	if d.Start, err = optionalTimeFromData(c.Fields[8]); err != nil {
		return Datum{}, fmt.Errorf("start: %w", err)
	}
	if d.End, err = optionalTimeFromData(c.Fields[9]); err != nil {
		return Datum{}, fmt.Errorf("end: %w", err)
	}
	fills, err := plutus.AsInt(c.Fields[10])
	if err != nil {
		return Datum{}, fmt.Errorf("partial fills: %w", err)
	}
	d.PartialFills = fills.Int64()
	if d.MakerLovelaceFlatFee, err = plutus.AsInt(c.Fields[11]); err != nil {
		return Datum{}, fmt.Errorf("maker flat fee: %w", err)
	}
	if d.TakerLovelaceFlatFee, err = plutus.AsInt(c.Fields[12]); err != nil {
		return Datum{}, fmt.Errorf("taker flat fee: %w", err)
	}
	if d.ContainedFee, err = containedFeeFromData(c.Fields[13]); err != nil {
		return Datum{}, fmt.Errorf("contained fee: %w", err)
	}
	if d.ContainedPayment, err = plutus.AsInt(c.Fields[14]); err != nil {
		return Datum{}, fmt.Errorf("contained payment: %w", err)
	}
	return d, nil
}

// ConfigFromData decodes the protocol configuration datum.
func ConfigFromData(data plutus.Data) (Config, error) {
	c, err := plutus.AsConstr(data, 0)
	if err != nil {
		return Config{}, err
	}
	if len(c.Fields) != 8 {
		return Config{}, fmt.Errorf("config datum needs 8 fields, got %d", len(c.Fields))
	}
	var cfg Config
	sigs, err := plutus.AsList(c.Fields[0])
	if err != nil {
		return Config{}, fmt.Errorf("signatories: %w", err)
	}
	for _, s := range sigs {
		h, err := hexField(s)
		if err != nil {
			return Config{}, fmt.Errorf("signatory: %w", err)
		}
		cfg.Signatories = append(cfg.Signatories, h)
	}
	req, err := plutus.AsInt(c.Fields[1])
	if err != nil {
		return Config{}, fmt.Errorf("required signatories: %w", err)
	}
	cfg.ReqSignatories = req.Int64()
	if cfg.NFTSymbol, err = hexField(c.Fields[2]); err != nil {
		return Config{}, fmt.Errorf("nft symbol: %w", err)
	}
	if cfg.FeeAddr, err = AddressFromData(c.Fields[3]); err != nil {
		return Config{}, fmt.Errorf("fee address: %w", err)
	}
	if cfg.MakerFeeFlat, err = plutus.AsInt(c.Fields[4]); err != nil {
		return Config{}, fmt.Errorf("maker flat fee: %w", err)
	}
	if cfg.MakerFeeRatio, err = rationalFromData(c.Fields[5]); err != nil {
		return Config{}, fmt.Errorf("maker fee ratio: %w", err)
	}
	if cfg.TakerFee, err = plutus.AsInt(c.Fields[6]); err != nil {
		return Config{}, fmt.Errorf("taker fee: %w", err)
	}
	if cfg.MinDeposit, err = plutus.AsInt(c.Fields[7]); err != nil {
		return Config{}, fmt.Errorf("min deposit: %w", err)
	}
	return cfg, nil
}

// ToData encodes the protocol configuration datum.
func (cfg Config) ToData() (plutus.Data, error) {
	sigs := plutus.List{}
	for _, s := range cfg.Signatories {
		b, err := bytesField(s)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, b)
	}
	symbol, err := bytesField(cfg.NFTSymbol)
	if err != nil {
		return nil, err
	}
	feeAddr, err := AddressToData(cfg.FeeAddr)
	if err != nil {
		return nil, err
	}
	return plutus.NewConstr(0,
		sigs,
		plutus.NewInt(cfg.ReqSignatories),
		symbol,
		feeAddr,
		plutus.NewIntBig(cfg.MakerFeeFlat),
		rationalToData(cfg.MakerFeeRatio),
		plutus.NewIntBig(cfg.TakerFee),
		plutus.NewIntBig(cfg.MinDeposit),
	), nil
}

// ValueToData encodes a value as the nested policy -> name -> quantity map.
// Policies and names are emitted in sorted order; lovelace, when present,
// leads under the empty policy.
func ValueToData(v value.Value) (plutus.Data, error) {
	type nameAmount struct {
		name   string
		amount *big.Int
	}
	byPolicy := map[string][]nameAmount{}
	for _, u := range v.Units() {
		ac := value.AssetClassFromUnit(u)
		byPolicy[ac.PolicyID] = append(byPolicy[ac.PolicyID], nameAmount{name: ac.AssetName, amount: v[u]})
	}

	var out plutus.Map
	appendPolicy := func(policy string) error {
		entries, ok := byPolicy[policy]
		if !ok {
			return nil
		}
		policyKey, err := bytesField(policy)
		if err != nil {
			return err
		}
		var inner plutus.Map
		for _, e := range entries {
			nameKey, err := bytesField(e.name)
			if err != nil {
				return err
			}
			inner = append(inner, plutus.Pair{Key: nameKey, Val: plutus.NewIntBig(e.amount)})
		}
		out = append(out, plutus.Pair{Key: policyKey, Val: inner})
		return nil
	}

	// Units() sorts lovelace first then lexicographically, so policies
	// arrive sorted and names within one policy arrive sorted.
	seen := map[string]bool{}
	for _, u := range v.Units() {
		policy := value.AssetClassFromUnit(u).PolicyID
		if seen[policy] {
			continue
		}
		seen[policy] = true
		if err := appendPolicy(policy); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ValueFromData decodes the nested value map.
func ValueFromData(d plutus.Data) (value.Value, error) {
	m, err := plutus.AsMap(d)
	if err != nil {
		return nil, err
	}
	out := value.Value{}
	for _, p := range m {
		policy, err := hexField(p.Key)
		if err != nil {
			return nil, err
		}
		inner, err := plutus.AsMap(p.Val)
		if err != nil {
			return nil, err
		}
		for _, e := range inner {
			name, err := hexField(e.Key)
			if err != nil {
				return nil, err
			}
			amt, err := plutus.AsInt(e.Val)
			if err != nil {
				return nil, err
			}
			u := value.AssetClass{PolicyID: policy, AssetName: name}.Unit()
			out = out.Merge(value.New(u, amt))
		}
	}
	return out, nil
}

// ToData encodes the aggregated fee-output datum.
func (f FeeOutput) ToData() (plutus.Data, error) {
	var fees plutus.Map
	for _, mf := range f.MentionedFees {
		ref, err := OutRefToData(mf.Ref)
		if err != nil {
			return nil, err
		}
		fee, err := ValueToData(mf.Fee)
		if err != nil {
			return nil, err
		}
		fees = append(fees, plutus.Pair{Key: ref, Val: fee})
	}
	reserved, err := ValueToData(f.ReservedValue)
	if err != nil {
		return nil, err
	}
	spent := plutus.NewConstr(1) // Nothing
	if f.SpentRef != nil {
		ref, err := OutRefToData(*f.SpentRef)
		if err != nil {
			return nil, err
		}
		spent = plutus.NewConstr(0, ref)
	}
	return plutus.NewConstr(0, fees, reserved, spent), nil
}

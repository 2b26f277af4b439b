package plutus

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Decode parses a single canonical CBOR plutus-data item. Trailing bytes are
// an error: every datum and redeemer is a single item.
func Decode(b []byte) (Data, error) {
	p := &parser{buf: b}
	d, err := p.item()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.buf) {
		return nil, fmt.Errorf("trailing bytes after data item at offset %d", p.pos)
	}
	return d, nil
}

// DecodeHex parses a hex-encoded plutus-data item.
func DecodeHex(s string) (Data, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return Decode(b)
}

type parser struct {
	buf []byte
	pos int
}

func (p *parser) byte() (byte, error) {
	if p.pos >= len(p.buf) {
		return 0, fmt.Errorf("unexpected end of input at offset %d", p.pos)
	}
	b := p.buf[p.pos]
	p.pos++
	return b, nil
}

func (p *parser) take(n int) ([]byte, error) {
	if p.pos+n > len(p.buf) {
		return nil, fmt.Errorf("unexpected end of input: need %d bytes at offset %d", n, p.pos)
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// head reads a CBOR item head, returning the major type, the argument value
// and whether the length is indefinite.
func (p *parser) head() (major byte, arg uint64, indefinite bool, err error) {
	b, err := p.byte()
	if err != nil {
		return 0, 0, false, err
	}
	major = b >> 5
	info := b & 0x1f
	switch {
	case info < 24:
		return major, uint64(info), false, nil
	case info == 24:
		v, err := p.take(1)
		if err != nil {
			return 0, 0, false, err
		}
		return major, uint64(v[0]), false, nil
	case info == 25:
		v, err := p.take(2)
		if err != nil {
			return 0, 0, false, err
		}
		return major, uint64(v[0])<<8 | uint64(v[1]), false, nil
	case info == 26:
		v, err := p.take(4)
		if err != nil {
			return 0, 0, false, err
		}
		arg = 0
		for _, b := range v {
			arg = arg<<8 | uint64(b)
		}
		return major, arg, false, nil
	case info == 27:
		v, err := p.take(8)
		if err != nil {
			return 0, 0, false, err
		}
		arg = 0
		for _, b := range v {
			arg = arg<<8 | uint64(b)
		}
		return major, arg, false, nil
	case info == indefiniteInfo:
		return major, 0, true, nil
	default:
		return 0, 0, false, fmt.Errorf("reserved additional info %d at offset %d", info, p.pos-1)
	}
}

func (p *parser) item() (Data, error) {
	major, arg, indefinite, err := p.head()
	if err != nil {
		return nil, err
	}
	switch major {
	case majorUnsigned:
		return Int{V: new(big.Int).SetUint64(arg)}, nil
	case majorNegative:
		v := new(big.Int).SetUint64(arg)
		v.Neg(v)
		v.Sub(v, big.NewInt(1))
		return Int{V: v}, nil
	case majorBytes:
		return p.bytesBody(arg, indefinite)
	case majorArray:
		items, err := p.arrayBody(arg, indefinite)
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case majorMap:
		return p.mapBody(arg, indefinite)
	case majorTag:
		return p.tagged(arg)
	default:
		return nil, fmt.Errorf("unsupported major type %d", major)
	}
}

func (p *parser) bytesBody(arg uint64, indefinite bool) (Data, error) {
	if !indefinite {
		b, err := p.take(int(arg))
		if err != nil {
			return nil, err
		}
		out := make([]byte, arg)
		copy(out, b)
		return Bytes(out), nil
	}
	var out []byte
	for {
		if p.pos < len(p.buf) && p.buf[p.pos] == breakByte {
			p.pos++
			return Bytes(out), nil
		}
		major, n, chunkIndef, err := p.head()
		if err != nil {
			return nil, err
		}
		if major != majorBytes || chunkIndef {
			return nil, fmt.Errorf("invalid chunk in indefinite byte string")
		}
		chunk, err := p.take(int(n))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}

func (p *parser) arrayBody(arg uint64, indefinite bool) ([]Data, error) {
	var items []Data
	if indefinite {
		for {
			if p.pos < len(p.buf) && p.buf[p.pos] == breakByte {
				p.pos++
				return items, nil
			}
			d, err := p.item()
			if err != nil {
				return nil, err
			}
			items = append(items, d)
		}
	}
	for i := uint64(0); i < arg; i++ {
		d, err := p.item()
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

func (p *parser) mapBody(arg uint64, indefinite bool) (Data, error) {
	var m Map
	entry := func() error {
		k, err := p.item()
		if err != nil {
			return err
		}
		v, err := p.item()
		if err != nil {
			return err
		}
		m = append(m, Pair{Key: k, Val: v})
		return nil
	}
	if indefinite {
		for {
			if p.pos < len(p.buf) && p.buf[p.pos] == breakByte {
				p.pos++
				return m, nil
			}
			if err := entry(); err != nil {
				return nil, err
			}
		}
	}
	for i := uint64(0); i < arg; i++ {
		if err := entry(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (p *parser) tagged(tag uint64) (Data, error) {
	switch {
	case tag >= tagConstrBase && tag <= tagConstrBase+maxCompactConstr:
		fields, err := p.fieldList()
		if err != nil {
			return nil, err
		}
		return Constr{Index: tag - tagConstrBase, Fields: fields}, nil
	case tag >= tagConstrExtBase && tag <= tagConstrExtBase+maxExtendedConstr-maxCompactConstr-1:
		fields, err := p.fieldList()
		if err != nil {
			return nil, err
		}
		return Constr{Index: tag - tagConstrExtBase + maxCompactConstr + 1, Fields: fields}, nil
	case tag == tagConstrGeneral:
		major, arg, indefinite, err := p.head()
		if err != nil {
			return nil, err
		}
		if major != majorArray {
			return nil, fmt.Errorf("general constructor tag must wrap an array")
		}
		items, err := p.arrayBody(arg, indefinite)
		if err != nil {
			return nil, err
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("general constructor needs [index, fields], got %d items", len(items))
		}
		idx, err := AsInt(items[0])
		if err != nil {
			return nil, fmt.Errorf("general constructor index: %w", err)
		}
		fields, err := AsList(items[1])
		if err != nil {
			return nil, fmt.Errorf("general constructor fields: %w", err)
		}
		return Constr{Index: idx.Uint64(), Fields: fields}, nil
	case tag == tagPositiveBignum:
		b, err := p.bignumBytes()
		if err != nil {
			return nil, err
		}
		return Int{V: new(big.Int).SetBytes(b)}, nil
	case tag == tagNegativeBignum:
		b, err := p.bignumBytes()
		if err != nil {
			return nil, err
		}
		v := new(big.Int).SetBytes(b)
		v.Neg(v)
		v.Sub(v, big.NewInt(1))
		return Int{V: v}, nil
	default:
		return nil, fmt.Errorf("unsupported tag %d", tag)
	}
}

func (p *parser) fieldList() ([]Data, error) {
	major, arg, indefinite, err := p.head()
	if err != nil {
		return nil, err
	}
	if major != majorArray {
		return nil, fmt.Errorf("constructor fields must be an array, got major %d", major)
	}
	return p.arrayBody(arg, indefinite)
}

func (p *parser) bignumBytes() ([]byte, error) {
	major, arg, indefinite, err := p.head()
	if err != nil {
		return nil, err
	}
	if major != majorBytes {
		return nil, fmt.Errorf("bignum body must be a byte string")
	}
	d, err := p.bytesBody(arg, indefinite)
	if err != nil {
		return nil, err
	}
	return []byte(d.(Bytes)), nil
}

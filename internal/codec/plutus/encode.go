package plutus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CBOR major types.
const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
)

const (
	indefiniteInfo = 31
	breakByte      = 0xff

	// Constructor index tag ranges per the ledger's data encoding:
	// indices 0-6 map to tags 121-127, 7-127 to 1280-1400, anything
	// larger uses the general tag 102 form.
	tagConstrBase     = 121
	tagConstrExtBase  = 1280
	tagConstrGeneral  = 102
	tagPositiveBignum = 2
	tagNegativeBignum = 3
	maxCompactConstr  = 6
	maxExtendedConstr = 127
	maxDefiniteChunk  = 64
)

// Encode serializes d to its canonical CBOR byte form.
func Encode(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeHex serializes d and hex-encodes the result.
func EncodeHex(d Data) (string, error) {
	b, err := Encode(d)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func encode(buf *bytes.Buffer, d Data) error {
	switch v := d.(type) {
	case Constr:
		return encodeConstr(buf, v)
	case Int:
		return encodeInt(buf, v.V)
	case Bytes:
		encodeBytes(buf, v)
		return nil
	case List:
		return encodeList(buf, v)
	case Map:
		return encodeMap(buf, v)
	default:
		return fmt.Errorf("unknown data kind %T", d)
	}
}

func encodeConstr(buf *bytes.Buffer, c Constr) error {
	switch {
	case c.Index <= maxCompactConstr:
		writeHead(buf, majorTag, tagConstrBase+c.Index)
		return encodeFields(buf, c.Fields)
	case c.Index <= maxExtendedConstr:
		writeHead(buf, majorTag, tagConstrExtBase+c.Index-maxCompactConstr-1)
		return encodeFields(buf, c.Fields)
	default:
		writeHead(buf, majorTag, tagConstrGeneral)
		writeHead(buf, majorArray, 2)
		writeHead(buf, majorUnsigned, c.Index)
		return encodeFields(buf, c.Fields)
	}
}

// encodeFields writes a constructor field list: definite empty array for no
// fields, indefinite-length array otherwise. The asymmetry is required by
// the validator-side decoders.
func encodeFields(buf *bytes.Buffer, fields []Data) error {
	if len(fields) == 0 {
		writeHead(buf, majorArray, 0)
		return nil
	}
	buf.WriteByte(majorArray<<5 | indefiniteInfo)
	for _, f := range fields {
		if err := encode(buf, f); err != nil {
			return err
		}
	}
	buf.WriteByte(breakByte)
	return nil
}

func encodeList(buf *bytes.Buffer, l List) error {
	return encodeFields(buf, l)
}

func encodeMap(buf *bytes.Buffer, m Map) error {
	writeHead(buf, majorMap, uint64(len(m)))
	for _, p := range m {
		if err := encode(buf, p.Key); err != nil {
			return err
		}
		if err := encode(buf, p.Val); err != nil {
			return err
		}
	}
	return nil
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

func encodeInt(buf *bytes.Buffer, v *big.Int) error {
	if v == nil {
		return fmt.Errorf("nil integer")
	}
	if v.Sign() >= 0 {
		if v.Cmp(maxUint64) <= 0 {
			writeHead(buf, majorUnsigned, v.Uint64())
			return nil
		}
		writeHead(buf, majorTag, tagPositiveBignum)
		encodeBytes(buf, v.Bytes())
		return nil
	}
	// Negative: CBOR encodes n where the value is -1-n.
	n := new(big.Int).Neg(v)
	n.Sub(n, big.NewInt(1))
	if n.Cmp(maxUint64) <= 0 {
		writeHead(buf, majorNegative, n.Uint64())
		return nil
	}
	writeHead(buf, majorTag, tagNegativeBignum)
	encodeBytes(buf, n.Bytes())
	return nil
}

// encodeBytes writes a byte string, chunking into an indefinite-length
// string of 64-byte pieces past the chunk limit (the ledger's bounded-bytes
// convention).
func encodeBytes(buf *bytes.Buffer, b []byte) {
	if len(b) <= maxDefiniteChunk {
		writeHead(buf, majorBytes, uint64(len(b)))
		buf.Write(b)
		return
	}
	buf.WriteByte(majorBytes<<5 | indefiniteInfo)
	for len(b) > 0 {
		n := len(b)
		if n > maxDefiniteChunk {
			n = maxDefiniteChunk
		}
		writeHead(buf, majorBytes, uint64(n))
		buf.Write(b[:n])
		b = b[n:]
	}
	buf.WriteByte(breakByte)
}

func writeHead(buf *bytes.Buffer, major byte, n uint64) {
	switch {
	case n < 24:
		buf.WriteByte(major<<5 | byte(n))
	case n <= 0xff:
		buf.WriteByte(major<<5 | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(major<<5 | 25)
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	case n <= 0xffffffff:
		buf.WriteByte(major<<5 | 26)
		for shift := 24; shift >= 0; shift -= 8 {
			buf.WriteByte(byte(n >> shift))
		}
	default:
		buf.WriteByte(major<<5 | 27)
		for shift := 56; shift >= 0; shift -= 8 {
			buf.WriteByte(byte(n >> shift))
		}
	}
}

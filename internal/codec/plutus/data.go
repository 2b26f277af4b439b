// Package plutus implements the structured-record ("plutus data") model and
// its canonical CBOR encoding. The consuming on-chain validators require
// byte-identical encodings, so the encoder pins the exact conventions of the
// chain's serialization libraries: constructor tags 121+i / 1280+(i-7) / 102,
// indefinite-length arrays for non-empty constructor fields and lists but
// definite length for empty ones, definite-length maps, and bignum tags past
// the 64-bit range.
package plutus

import (
	"fmt"
	"math/big"
)

// Data is a closed union over the five plutus data shapes: constructor
// application, integer, byte string, list and map.
type Data interface {
	isData()
}

// Constr is a tagged constructor application.
type Constr struct {
	Index  uint64
	Fields []Data
}

// Int is an arbitrary-precision integer.
type Int struct {
	V *big.Int
}

// Bytes is a raw byte string.
type Bytes []byte

// List is an ordered sequence.
type List []Data

// Pair is a single map entry. Maps preserve insertion order; the on-chain
// encoding is order-sensitive.
type Pair struct {
	Key Data
	Val Data
}

// Map is an ordered sequence of key/value pairs.
type Map []Pair

func (Constr) isData() {}
func (Int) isData()    {}
func (Bytes) isData()  {}
func (List) isData()   {}
func (Map) isData()    {}

// NewConstr builds a constructor application.
func NewConstr(index uint64, fields ...Data) Constr {
	return Constr{Index: index, Fields: fields}
}

// NewInt wraps an int64.
func NewInt(v int64) Int {
	return Int{V: big.NewInt(v)}
}

// NewIntBig wraps a big integer, copying it.
func NewIntBig(v *big.Int) Int {
	return Int{V: new(big.Int).Set(v)}
}

// AsConstr asserts that d is a constructor with the given index.
func AsConstr(d Data, index uint64) (Constr, error) {
	c, ok := d.(Constr)
	if !ok {
		return Constr{}, fmt.Errorf("expected constructor, got %T", d)
	}
	if c.Index != index {
		return Constr{}, fmt.Errorf("expected constructor %d, got %d", index, c.Index)
	}
	return c, nil
}

// AsAnyConstr asserts that d is a constructor of any index.
func AsAnyConstr(d Data) (Constr, error) {
	c, ok := d.(Constr)
	if !ok {
		return Constr{}, fmt.Errorf("expected constructor, got %T", d)
	}
	return c, nil
}

// AsInt asserts that d is an integer and returns a copy of its value.
func AsInt(d Data) (*big.Int, error) {
	i, ok := d.(Int)
	if !ok {
		return nil, fmt.Errorf("expected integer, got %T", d)
	}
	return new(big.Int).Set(i.V), nil
}

// AsBytes asserts that d is a byte string.
func AsBytes(d Data) ([]byte, error) {
	b, ok := d.(Bytes)
	if !ok {
		return nil, fmt.Errorf("expected bytes, got %T", d)
	}
	return b, nil
}

// AsList asserts that d is a list.
func AsList(d Data) (List, error) {
	l, ok := d.(List)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", d)
	}
	return l, nil
}

// AsMap asserts that d is a map.
func AsMap(d Data) (Map, error) {
	m, ok := d.(Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %T", d)
	}
	return m, nil
}

// Field returns constructor field i with bounds checking.
func (c Constr) Field(i int) (Data, error) {
	if i < 0 || i >= len(c.Fields) {
		return nil, fmt.Errorf("constructor %d has %d fields, want field %d", c.Index, len(c.Fields), i)
	}
	return c.Fields[i], nil
}

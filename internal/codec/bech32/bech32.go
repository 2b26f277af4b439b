// Package bech32 implements the bech32 string codec used by ledger
// addresses. Payloads are arbitrary byte strings; the 5-bit regrouping and
// checksum handling stay internal to this package. No overall length limit
// is enforced: ledger addresses exceed the 90-character cap of the original
// specification.
package bech32

import (
	"fmt"
	"strings"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var charsetRev [128]int8

func init() {
	for i := range charsetRev {
		charsetRev[i] = -1
	}
	for i, c := range charset {
		charsetRev[c] = int8(i)
	}
}

var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		b := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, 2*len(hrp)+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	pm := polymod(values) ^ 1
	out := make([]byte, 6)
	for i := range out {
		out[i] = byte(pm >> uint(5*(5-i)) & 31)
	}
	return out
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// convertBits regroups the bit stream from frombits-sized to tobits-sized
// groups. With pad set, trailing bits are zero-padded into a final group;
// without it, trailing bits must be zero padding and are dropped.
func convertBits(data []byte, frombits, tobits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1<<tobits) - 1
	out := make([]byte, 0, len(data)*int(frombits)/int(tobits)+1)
	for _, v := range data {
		if uint(v)>>frombits != 0 {
			return nil, fmt.Errorf("bech32: value %d exceeds %d bits", v, frombits)
		}
		acc = acc<<frombits | uint32(v)
		bits += frombits
		for bits >= tobits {
			bits -= tobits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(tobits-bits)&maxv))
		}
	} else if bits >= frombits || acc<<(tobits-bits)&maxv != 0 {
		return nil, fmt.Errorf("bech32: invalid padding")
	}
	return out, nil
}

// Encode encodes payload under the given human-readable prefix.
func Encode(hrp string, payload []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("bech32: empty prefix")
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", fmt.Errorf("bech32: invalid prefix character %q", hrp[i])
		}
	}
	data, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	data = append(data, createChecksum(hrp, data)...)
	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, d := range data {
		sb.WriteByte(charset[d])
	}
	return sb.String(), nil
}

// Decode splits and validates an encoded string, returning the prefix and
// the decoded payload bytes. Mixed-case strings are rejected; uppercase
// input is accepted and treated as its lowercase form.
func Decode(s string) (string, []byte, error) {
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("bech32: mixed case string")
	}
	s = strings.ToLower(s)
	sep := strings.LastIndexByte(s, '1')
	if sep < 1 || sep+7 > len(s) {
		return "", nil, fmt.Errorf("bech32: invalid separator position")
	}
	hrp := s[:sep]
	data := make([]byte, 0, len(s)-sep-1)
	for i := sep + 1; i < len(s); i++ {
		c := s[i]
		if c >= 128 || charsetRev[c] == -1 {
			return "", nil, fmt.Errorf("bech32: invalid data character %q", c)
		}
		data = append(data, byte(charsetRev[c]))
	}
	if !verifyChecksum(hrp, data) {
		return "", nil, fmt.Errorf("bech32: checksum mismatch")
	}
	payload, err := convertBits(data[:len(data)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, payload, nil
}

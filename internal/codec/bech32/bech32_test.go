package bech32

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownAddresses(t *testing.T) {
	testcases := []struct {
		name    string
		hrp     string
		payload string
		want    string
	}{
		{
			name:    "enterprise key address",
			hrp:     "addr",
			payload: "61" + strings.Repeat("0a", 28),
			want:    "addr1vy9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs3hc7t4",
		},
		{
			name:    "enterprise key address testnet",
			hrp:     "addr_test",
			payload: "60" + strings.Repeat("0a", 28),
			want:    "addr_test1vq9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2lvzys",
		},
		{
			name:    "base address",
			hrp:     "addr",
			payload: "01" + strings.Repeat("0a", 28) + strings.Repeat("44", 28),
			want:    "addr1qy9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zjyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zq929jp3",
		},
		{
			name:    "enterprise script address",
			hrp:     "addr",
			payload: "71" + strings.Repeat("cd", 28),
			want:    "addr1w8xumnwdehxumnwdehxumnwdehxumnwdehxumnwdehxumngxy0k2m",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := hex.DecodeString(tc.payload)
			require.NoError(t, err)

			got, err := Encode(tc.hrp, payload)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			hrp, decoded, err := Decode(got)
			require.NoError(t, err)
			assert.Equal(t, tc.hrp, hrp)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	valid := "addr1vy9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs3hc7t4"

	testcases := []struct {
		name  string
		input string
	}{
		{"flipped data character", strings.Replace(valid, "5zs3", "5zs4", 1)},
		{"truncated checksum", valid[:len(valid)-1]},
		{"mixed case", "Addr" + valid[4:]},
		{"missing separator", strings.ReplaceAll(valid, "1", "q")},
		{"invalid character", strings.Replace(valid, "v", "b", 1)},
		{"empty", ""},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.input)
			assert.Error(t, err)
		})
	}
}

func TestUppercaseAccepted(t *testing.T) {
	valid := "addr1vy9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs2pg9q5zs3hc7t4"
	hrp, payload, err := Decode(strings.ToUpper(valid))
	require.NoError(t, err)
	assert.Equal(t, "addr", hrp)
	assert.Len(t, payload, 29)
}

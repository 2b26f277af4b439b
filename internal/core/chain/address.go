package chain

import (
	"encoding/hex"
	"fmt"

	"github.com/quernali/goDexOrder/internal/codec/bech32"
)

// NetworkID distinguishes mainnet addresses from testnet ones.
type NetworkID byte

const (
	Testnet NetworkID = 0
	Mainnet NetworkID = 1
)

func (n NetworkID) hrp() string {
	if n == Mainnet {
		return "addr"
	}
	return "addr_test"
}

const credentialHashLen = 28

// ParseAddress decodes a bech32 payment address into its structured form.
// Base and enterprise addresses are supported; pointer and reward addresses
// are not used by this layer and are rejected.
func ParseAddress(s string) (Address, NetworkID, error) {
	hrp, payload, err := bech32.Decode(s)
	if err != nil {
		return Address{}, 0, fmt.Errorf("parse address: %w", err)
	}
	if hrp != "addr" && hrp != "addr_test" {
		return Address{}, 0, fmt.Errorf("parse address: unexpected prefix %q", hrp)
	}
	if len(payload) == 0 {
		return Address{}, 0, fmt.Errorf("parse address: empty payload")
	}

	header := payload[0]
	net := NetworkID(header & 0x0f)
	addrType := header >> 4
	body := payload[1:]

	paymentKind := KeyCredential
	if addrType&0x1 == 1 {
		paymentKind = ScriptCredential
	}

	switch addrType {
	case 0, 1, 2, 3:
		if len(body) != 2*credentialHashLen {
			return Address{}, 0, fmt.Errorf("parse address: base address payload is %d bytes", len(body))
		}
		stakeKind := KeyCredential
		if addrType&0x2 == 0x2 {
			stakeKind = ScriptCredential
		}
		return Address{
			Payment: Credential{Kind: paymentKind, Hash: hex.EncodeToString(body[:credentialHashLen])},
			Stake:   &Credential{Kind: stakeKind, Hash: hex.EncodeToString(body[credentialHashLen:])},
		}, net, nil
	case 6, 7:
		if len(body) != credentialHashLen {
			return Address{}, 0, fmt.Errorf("parse address: enterprise address payload is %d bytes", len(body))
		}
		return Address{
			Payment: Credential{Kind: paymentKind, Hash: hex.EncodeToString(body)},
		}, net, nil
	default:
		return Address{}, 0, fmt.Errorf("parse address: unsupported address type %d", addrType)
	}
}

// Bech32 encodes the address for the given network.
func (a Address) Bech32(net NetworkID) (string, error) {
	payment, err := hex.DecodeString(a.Payment.Hash)
	if err != nil || len(payment) != credentialHashLen {
		return "", fmt.Errorf("encode address: bad payment hash %q", a.Payment.Hash)
	}

	var addrType byte
	if a.Payment.Kind == ScriptCredential {
		addrType |= 0x1
	}

	payload := make([]byte, 0, 1+2*credentialHashLen)
	if a.Stake != nil {
		stake, err := hex.DecodeString(a.Stake.Hash)
		if err != nil || len(stake) != credentialHashLen {
			return "", fmt.Errorf("encode address: bad stake hash %q", a.Stake.Hash)
		}
		if a.Stake.Kind == ScriptCredential {
			addrType |= 0x2
		}
		payload = append(payload, addrType<<4|byte(net))
		payload = append(payload, payment...)
		payload = append(payload, stake...)
	} else {
		addrType |= 0x6
		payload = append(payload, addrType<<4|byte(net))
		payload = append(payload, payment...)
	}
	return bech32.Encode(net.hrp(), payload)
}

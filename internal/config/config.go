// Package config loads and validates the tool configuration: network
// selection, chain-indexer access and the deployed contract constants.
// Sources are layered in priority order: built-in defaults, the optional
// config file, then DEXORDER_-prefixed environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quernali/goDexOrder/internal/core/chain"
	"github.com/quernali/goDexOrder/internal/core/tx/swap"
	"github.com/quernali/goDexOrder/internal/core/value"
)

// Config is the complete tool configuration.
type Config struct {
	// Network selects the target network: "mainnet" or "preprod".
	Network string `mapstructure:"network"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Provider  ProviderConfig  `mapstructure:"provider"`
	Contracts ContractsConfig `mapstructure:"contracts"`
}

// ProviderConfig configures chain-indexer access.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// ContractsConfig holds the deployed swap-contract constants. The reference
// locations default per network; the script hashes depend on the deployed
// scripts and must be supplied by the operator.
type ContractsConfig struct {
	MintPolicyID  string `mapstructure:"mint_policy_id"`
	ValidatorHash string `mapstructure:"validator_hash"`
	ConfigNFT     string `mapstructure:"config_nft"`
	// ValidatorRef and MintPolicyRef are "txhash#index" output references
	// of the deployed reference scripts.
	ValidatorRef  string `mapstructure:"validator_ref"`
	MintPolicyRef string `mapstructure:"mint_policy_ref"`
}

// NetworkID maps the configured network name to its ledger network id.
func (c *Config) NetworkID() chain.NetworkID {
	if c.Network == "mainnet" {
		return chain.Mainnet
	}
	return chain.Testnet
}

// Swap assembles the parsed contract constants for the assemblers.
func (c *ContractsConfig) Swap() (swap.Contracts, error) {
	validatorRef, err := ParseOutRef(c.ValidatorRef)
	if err != nil {
		return swap.Contracts{}, fmt.Errorf("contracts.validator_ref: %w", err)
	}
	mintRef, err := ParseOutRef(c.MintPolicyRef)
	if err != nil {
		return swap.Contracts{}, fmt.Errorf("contracts.mint_policy_ref: %w", err)
	}
	return swap.Contracts{
		MintPolicyID:  c.MintPolicyID,
		ValidatorHash: c.ValidatorHash,
		ConfigNFTUnit: value.Unit(c.ConfigNFT),
		ValidatorRef:  validatorRef,
		MintPolicyRef: mintRef,
	}, nil
}

// ParseOutRef parses a "txhash#index" output reference.
func ParseOutRef(s string) (chain.OutRef, error) {
	txHash, idx, ok := strings.Cut(s, "#")
	if !ok {
		return chain.OutRef{}, fmt.Errorf("malformed output reference %q", s)
	}
	if len(txHash) != 64 || !isHex(txHash) {
		return chain.OutRef{}, fmt.Errorf("malformed transaction hash %q", txHash)
	}
	index, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return chain.OutRef{}, fmt.Errorf("malformed output index %q", idx)
	}
	return chain.OutRef{TxHash: txHash, OutputIndex: uint32(index)}, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

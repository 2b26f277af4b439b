package config

import "fmt"

const scriptHashHexLen = 56

// Validate checks the complete configuration for internal consistency.
func Validate(cfg *Config) error {
	switch cfg.Network {
	case "mainnet", "preprod":
	default:
		return fmt.Errorf("unknown network %q", cfg.Network)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}

	if cfg.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}

	c := &cfg.Contracts
	if len(c.MintPolicyID) != scriptHashHexLen || !isHex(c.MintPolicyID) {
		return fmt.Errorf("contracts.mint_policy_id must be a %d-character hex script hash", scriptHashHexLen)
	}
	if len(c.ValidatorHash) != scriptHashHexLen || !isHex(c.ValidatorHash) {
		return fmt.Errorf("contracts.validator_hash must be a %d-character hex script hash", scriptHashHexLen)
	}
	if len(c.ConfigNFT) <= scriptHashHexLen || !isHex(c.ConfigNFT) {
		return fmt.Errorf("contracts.config_nft must be a full policy-plus-name unit")
	}
	if _, err := ParseOutRef(c.ValidatorRef); err != nil {
		return fmt.Errorf("contracts.validator_ref: %w", err)
	}
	if _, err := ParseOutRef(c.MintPolicyRef); err != nil {
		return fmt.Errorf("contracts.mint_policy_ref: %w", err)
	}
	return nil
}

package config

import "github.com/spf13/viper"

// Mainnet deployment constants of the swap contracts.
const (
	mainnetConfigNFT = "fae686ea8f21d567841d703dea4d4221c2af071a6f2b433ff07c0af2" +
		"682fd5d4b0d834a3aa219880fa193869b946ffb80dba5532abca0910c55ad5cd"
	mainnetValidatorRef  = "c8adf3262d769f5692847501791c0245068ed5b6746e7699d23152e94858ada7#2"
	mainnetMintPolicyRef = "c8adf3262d769f5692847501791c0245068ed5b6746e7699d23152e94858ada7#1"
)

// setDefaults installs the network-independent defaults. Every key gets a
// default, empty ones included, so environment overrides reach Unmarshal
// even when neither file nor network defaults mention the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "mainnet")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.api_key", "")

	v.SetDefault("contracts.mint_policy_id", "")
	v.SetDefault("contracts.validator_hash", "")
	v.SetDefault("contracts.config_nft", "")
	v.SetDefault("contracts.validator_ref", "")
	v.SetDefault("contracts.mint_policy_ref", "")
}

// applyNetworkDefaults installs defaults that depend on the selected
// network. Mainnet carries the published deployment constants; other
// networks must configure their own deployment.
func applyNetworkDefaults(v *viper.Viper, network string) {
	switch network {
	case "mainnet":
		v.SetDefault("provider.base_url", "https://mainnet.gomaestro-api.org")
		v.SetDefault("contracts.config_nft", mainnetConfigNFT)
		v.SetDefault("contracts.validator_ref", mainnetValidatorRef)
		v.SetDefault("contracts.mint_policy_ref", mainnetMintPolicyRef)
	case "preprod":
		v.SetDefault("provider.base_url", "https://preprod.gomaestro-api.org")
	}
}

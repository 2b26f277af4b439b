package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quernali/goDexOrder/internal/core/chain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dexorder.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalContracts = `
[contracts]
mint_policy_id = "` + "abababababababababababababababababababababababababababab" + `"
validator_hash = "` + "cdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd" + `"
`

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalContracts)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, chain.Mainnet, cfg.NetworkID())
	assert.Equal(t, "https://mainnet.gomaestro-api.org", cfg.Provider.BaseURL)

	// Published mainnet deployment constants fill in automatically.
	contracts, err := cfg.Contracts.Swap()
	require.NoError(t, err)
	assert.Equal(t, "c8adf3262d769f5692847501791c0245068ed5b6746e7699d23152e94858ada7", contracts.ValidatorRef.TxHash)
	assert.Equal(t, uint32(2), contracts.ValidatorRef.OutputIndex)
	assert.Equal(t, uint32(1), contracts.MintPolicyRef.OutputIndex)
	assert.True(t, strings.HasPrefix(string(contracts.ConfigNFTUnit), "fae686ea"))
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
network = "mainnet"
log_level = "debug"

[provider]
base_url = "https://indexer.example.com"
`+strings.TrimPrefix(minimalContracts, "\n"))

	t.Setenv("DEXORDER_PROVIDER_API_KEY", "secret-from-env")
	t.Setenv("DEXORDER_LOG_LEVEL", "warn")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "https://indexer.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, "secret-from-env", cfg.Provider.APIKey)
	assert.Equal(t, "warn", cfg.LogLevel, "environment beats the file")
}

func TestLoadNetworkOverride(t *testing.T) {
	path := writeConfigFile(t, `network = "mainnet"`+minimalContracts+`
config_nft = "`+strings.Repeat("ef", 28)+`636f6e666967"
validator_ref = "`+strings.Repeat("ab", 32)+`#0"
mint_policy_ref = "`+strings.Repeat("ab", 32)+`#1"

[provider]
base_url = "https://preprod.example.com"
`)

	cfg, err := Load(path, "preprod")
	require.NoError(t, err)
	assert.Equal(t, "preprod", cfg.Network, "flag override beats the file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	testcases := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "missing script hashes",
			content: `network = "mainnet"`,
			wantMsg: "mint_policy_id",
		},
		{
			name:    "unknown network",
			content: `network = "devnet"` + minimalContracts,
			wantMsg: "unknown network",
		},
		{
			name: "preprod needs explicit deployment",
			content: `network = "preprod"
[provider]
base_url = "https://preprod.gomaestro-api.org"
` + strings.TrimPrefix(minimalContracts, "\n"),
			wantMsg: "config_nft",
		},
		{
			name: "bad reference",
			content: minimalContracts + `
validator_ref = "nothex#1"
`,
			wantMsg: "validator_ref",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.content)
			_, err := Load(path, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestParseOutRef(t *testing.T) {
	hash := strings.Repeat("ab", 32)

	ref, err := ParseOutRef(hash + "#3")
	require.NoError(t, err)
	assert.Equal(t, chain.OutRef{TxHash: hash, OutputIndex: 3}, ref)

	for _, bad := range []string{"", hash, hash + "#", hash + "#x", "short#1", hash + "#4294967296"} {
		_, err := ParseOutRef(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

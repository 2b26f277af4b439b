package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, the optional config file at
// path, and DEXORDER_-prefixed environment variables, then validates it. An
// empty path skips the file layer entirely. A non-empty network overrides
// every other source's network selection.
func Load(path, network string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if network != "" {
		v.Set("network", network)
	}

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("DEXORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Network-dependent defaults need the network resolved first.
	applyNetworkDefaults(v, v.GetString("network"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Package cli wires the order-transaction assemblers into the dexorder
// command-line tool. Commands build transaction constraint sets and print
// them as JSON; signing and submission belong to the consuming wallet stack.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quernali/goDexOrder/internal/config"
	"github.com/quernali/goDexOrder/internal/core/tx/swap"
	"github.com/quernali/goDexOrder/internal/provider"
)

var (
	// Global flags
	configFile string
	network    string
	verbose    bool
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "dexorder",
	Short: "dexorder - partial-order transaction builder",
	Long: `dexorder builds the transactions of a partially fillable limit-order
protocol: order placement, batched fills and batched cancellations. The
resulting constraint sets are printed as JSON for a wallet stack to balance,
sign and submit.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&network, "network", "", "target network (mainnet or preprod)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
}

// env is the assembled runtime environment shared by all subcommands.
type env struct {
	cfg       *config.Config
	log       *logrus.Logger
	contracts swap.Contracts
	chain     *provider.Maestro
}

func setup() (*env, error) {
	cfg, err := config.Load(configFile, network)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose && level < logrus.InfoLevel {
		level = logrus.InfoLevel
	}
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	contracts, err := cfg.Contracts.Swap()
	if err != nil {
		return nil, err
	}
	chain, err := provider.NewMaestro(cfg.Provider.BaseURL, cfg.Provider.APIKey, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, contracts: contracts, chain: chain}, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

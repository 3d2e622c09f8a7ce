package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "creditgate",
	Short: "Creditgate - budget and rate control for metered data providers",
	Long: `Creditgate protects a prepaid, metered data provider account from
exhaustion. It admits business actions against the provider's live credit
balance, paces admitted spend with a token bucket, and trips a circuit
breaker when the balance falls below a reserved floor.

It provides:
  - Per-action credit cost registry
  - Fresh balance checks before every admitted action (fail closed)
  - Waiting token-bucket pacing with a critical-level cooldown
  - Hard-mode aborts and soft-mode batch skips
  - A refusal audit trail with memory and SQLite backends`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

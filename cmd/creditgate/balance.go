package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atlas-hq/creditgate/internal/provider"
	"atlas-hq/creditgate/pkg/cli"
	"atlas-hq/creditgate/pkg/config"
)

var balanceFlags struct {
	format string
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Read the provider's remaining credit balance",
	Long: `Perform one balance read against the configured provider endpoint.

This is the same observation the daemon makes before every admitted action.
A failure here means admission would fail closed.

Examples:
  # Read the balance
  creditgate balance

  # Machine-readable output
  creditgate balance --format json`,
	RunE: readBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVar(&balanceFlags.format, "format", "text", "output format: text, json")
}

func readBalance(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	client, err := provider.NewClient(provider.Config{
		BalanceURL: cfg.Provider.BalanceURL,
		APIKey:     cfg.Provider.APIKey,
		Timeout:    cfg.Provider.Timeout,
	})
	if err != nil {
		return cli.NewConfigError("provider", err.Error())
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Provider.Timeout)
	defer cancel()

	balance, err := client.RemainingBalance(ctx)
	if err != nil {
		return cli.NewCommandError("balance", err)
	}

	if balanceFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, map[string]int64{"balance": balance})
	}

	fmt.Printf("Remaining balance: %d credits\n", balance)
	if balance < cfg.Budget.CircuitBreakerFloor {
		fmt.Printf("⚠ Balance is below the circuit breaker floor (%d credits); all actions are refused\n",
			cfg.Budget.CircuitBreakerFloor)
	}
	return nil
}

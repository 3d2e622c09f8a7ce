package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"atlas-hq/creditgate/pkg/cli"
	"atlas-hq/creditgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a creditgate configuration file without starting
anything.

Validation applies defaults first, then checks every section: listen
address, provider endpoint, pacing thresholds (critical < warning <
capacity), cost entries, audit backend, and cron schedules. All problems
are reported at once.

Examples:
  # Validate the default config
  creditgate validate

  # Validate a specific file
  creditgate validate --config /etc/creditgate/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Printf("✗ Configuration invalid (%d problems):\n", len(validationErr.Errors))
			for _, fieldErr := range validationErr.Errors {
				fmt.Printf("  - %s\n", fieldErr.Error())
			}
			return cli.NewConfigError("", "validation failed")
		}
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Actions registered: %d\n", len(cfg.Costs))
	fmt.Printf("  Pacing capacity: %g credits (refill %g/min)\n",
		cfg.Pacing.Capacity, cfg.Pacing.RefillPerMinute)
	fmt.Printf("  Circuit breaker floor: %d credits\n", cfg.Budget.CircuitBreakerFloor)
	fmt.Printf("  Audit backend: %s\n", cfg.Audit.Backend)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atlas-hq/creditgate/pkg/budget/costs"
	"atlas-hq/creditgate/pkg/cli"
	"atlas-hq/creditgate/pkg/config"
)

var costsFlags struct {
	format string
}

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show the registered action cost table",
	Long: `Print the action cost table from the configuration file.

Costs are business estimates of the total provider credits an action
consumes, including headroom for composite actions spanning several calls.

Examples:
  # Show the cost table
  creditgate costs

  # Machine-readable output
  creditgate costs --format json`,
	RunE: showCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)

	costsCmd.Flags().StringVar(&costsFlags.format, "format", "text", "output format: text, json")
}

func showCosts(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	registry := costs.NewRegistry()
	for _, ac := range cfg.Costs {
		err := registry.Register(costs.ActionCost{
			Name:        ac.Name,
			Cost:        ac.Cost,
			Description: ac.Description,
			Category:    costs.Category(ac.Category),
		})
		if err != nil {
			return cli.NewConfigError("costs", err.Error())
		}
	}

	actions := registry.Actions()
	if len(actions) == 0 {
		fmt.Println("No actions registered.")
		return nil
	}

	if costsFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, actions)
	}

	fmt.Printf("%-24s %10s  %-10s %s\n", "ACTION", "COST", "CATEGORY", "DESCRIPTION")
	for _, action := range actions {
		fmt.Printf("%-24s %10d  %-10s %s\n", action.Name, action.Cost, action.Category, action.Description)
	}
	return nil
}

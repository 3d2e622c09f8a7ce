package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atlas-hq/creditgate/pkg/budget/audit"
	"atlas-hq/creditgate/pkg/cli"
	"atlas-hq/creditgate/pkg/config"
)

var refusalsFlags struct {
	limit  int
	format string
}

var refusalsCmd = &cobra.Command{
	Use:   "refusals",
	Short: "List recent refusals from the audit trail",
	Long: `Query the refusal audit trail for recent records, newest first.

Only the SQLite backend can be queried from the command line; the in-memory
backend lives inside the daemon process and is reachable through its
/v1/refusals endpoint instead.

Examples:
  # List the 20 most recent refusals
  creditgate refusals --limit 20

  # Machine-readable output
  creditgate refusals --format json`,
	RunE: listRefusals,
}

func init() {
	rootCmd.AddCommand(refusalsCmd)

	refusalsCmd.Flags().IntVar(&refusalsFlags.limit, "limit", 50, "maximum number of records")
	refusalsCmd.Flags().StringVar(&refusalsFlags.format, "format", "text", "output format: text, json")
}

func listRefusals(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if cfg.Audit.Backend != config.AuditBackendSQLite {
		return fmt.Errorf("audit backend %q is not queryable from the command line; use the daemon's /v1/refusals endpoint", cfg.Audit.Backend)
	}

	backend, err := audit.NewSQLiteBackend(cfg.Audit.SQLitePath)
	if err != nil {
		return cli.NewCommandError("refusals", err)
	}
	defer backend.Close()

	records, err := backend.Recent(context.Background(), refusalsFlags.limit)
	if err != nil {
		return cli.NewCommandError("refusals", err)
	}

	if len(records) == 0 {
		fmt.Println("No refusals recorded.")
		return nil
	}

	if refusalsFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, records)
	}

	fmt.Printf("%-25s %-24s %-5s %9s %9s %9s\n", "TIME", "ACTION", "MODE", "BALANCE", "REQUIRED", "DEFICIT")
	for _, rec := range records {
		fmt.Printf("%-25s %-24s %-5s %9d %9d %9d\n",
			rec.Time.Format("2006-01-02T15:04:05Z07:00"),
			rec.Action, rec.Mode, rec.Balance, rec.Required, rec.Deficit)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"atlas-hq/creditgate/internal/provider"
	"atlas-hq/creditgate/pkg/budget"
	"atlas-hq/creditgate/pkg/cli"
	"atlas-hq/creditgate/pkg/config"
	"atlas-hq/creditgate/pkg/server"
	"atlas-hq/creditgate/pkg/telemetry/health"
	"atlas-hq/creditgate/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the creditgate daemon",
	Long: `Start the creditgate daemon with the specified configuration.

The daemon polls the provider balance, serves the admin API (health probes,
metrics, balance, cost table, refusal audit, admission checks), and prunes
the refusal audit trail on schedule.

Examples:
  # Start with default config
  creditgate run

  # Start with custom config
  creditgate run --config /etc/creditgate/config.yaml

  # Override admin listen address
  creditgate run --listen 0.0.0.0:9090

  # Validate config without starting the daemon
  creditgate run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override admin listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Admin.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Creditgate v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	thresholds, err := config.ThresholdsFromConfig(cfg)
	if err != nil {
		return cli.NewConfigError("pacing", err.Error())
	}

	providerClient, err := provider.NewClient(provider.Config{
		BalanceURL: cfg.Provider.BalanceURL,
		APIKey:     cfg.Provider.APIKey,
		Timeout:    cfg.Provider.Timeout,
	})
	if err != nil {
		return cli.NewConfigError("provider", err.Error())
	}
	defer providerClient.Close()

	manager, err := budget.NewManager(cfg, thresholds, providerClient)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer manager.Close()

	fmt.Printf("✓ Budget manager initialized (%d actions, floor %d credits)\n",
		len(manager.Actions()), thresholds.Floor())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	// Watch the config file for threshold changes if requested.
	if cfg.Watch {
		watcher := config.NewWatcher(cfgFile, thresholds, logger)
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()
		fmt.Println("✓ Config watcher started")
	}

	checker := health.New(0)
	manager.RegisterHealthChecks(checker)

	srv := server.NewServer(&cfg.Admin, manager, checker, server.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Admin server listening on %s\n", cfg.Admin.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Admin.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Admin.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Daemon stopped")
		return nil
	}
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/projectconfig"
)

var version = "dev"

// configFile is the --config flag shared by every subcommand.
var configFile string

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gilbench",
		Short: "gilbench - cross-runtime concurrency and micro benchmarks",
		Long: `gilbench measures how a runtime build handles CPU-bound and I/O-bound work.

It runs a micro suite of timed functions and a concurrency suite that executes
the same workloads sequentially, on a thread pool, in child processes and in
isolated contexts. Container targets for several runtime versions can be built
and run in one go, and their result files merged into one report.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a .gilbench.yaml file (default: search upward from the working directory)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newMicroCommand())
	cmd.AddCommand(newConcurrencyCommand())
	cmd.AddCommand(newWorkerCommand())
	cmd.AddCommand(newDockerCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig returns the explicit --config file when given, otherwise the
// nearest .gilbench.yaml above the working directory, otherwise defaults.
func loadConfig() (*projectconfig.ProjectConfig, error) {
	if configFile != "" {
		return projectconfig.LoadFile(configFile)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		slog.Debug("Loaded project config", "path", cfg.Path)
	}
	return cfg, nil
}

// intOverride returns the flag's value when the user set it, else fallback.
func intOverride(cmd *cobra.Command, name string, value, fallback int) int {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

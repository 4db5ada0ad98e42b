package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/concurrency"
	"github.com/gilbench/gilbench/internal/projectconfig"
	"github.com/gilbench/gilbench/internal/runtimeinfo"
	"github.com/gilbench/gilbench/internal/spinner"
	"github.com/gilbench/gilbench/internal/utils"
	"github.com/gilbench/gilbench/internal/workloads"
)

var (
	concurrencyTasks     int
	concurrencyWorkers   int
	concurrencyOutput    string
	concurrencyIsolation string
)

func newConcurrencyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concurrency",
		Short: "Run the concurrency benchmark suite",
		Long: `Run each default workload --tasks times under every concurrency strategy:
sequential, threading, process and subinterpreters.

The subinterpreters strategy uses the isolation facility picked with
--isolation (none, thread or process). With none it is reported as
unsupported. Results are written as JSON to --output, by default
<results>/concurrency-<implementation>-<version>[-nogil].json.`,
		Args: cobra.NoArgs,
		RunE: concurrencyCommandE,
	}

	cmd.Flags().IntVar(&concurrencyTasks, "tasks", projectconfig.DefaultTasks, "Workload executions per strategy")
	cmd.Flags().IntVar(&concurrencyWorkers, "workers", projectconfig.DefaultWorkers, "Parallel workers per strategy")
	cmd.Flags().StringVarP(&concurrencyOutput, "output", "o", "", "Result file path")
	cmd.Flags().StringVar(&concurrencyIsolation, "isolation", concurrency.IsolationNone, "Isolation facility: none, thread or process")

	return cmd
}

func concurrencyCommandE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tasks := intOverride(cmd, "tasks", concurrencyTasks, cfg.Defaults.Tasks)
	workers := intOverride(cmd, "workers", concurrencyWorkers, cfg.Defaults.Workers)

	iso, err := concurrency.NewIsolation(concurrencyIsolation, workloads.Default, &concurrency.ExecLauncher{})
	if err != nil {
		return err
	}
	runner := concurrency.NewRunner(concurrency.WithIsolation(iso))

	stop := spinner.Start(cmd.ErrOrStderr(), "Running concurrency benchmarks...")
	payload, err := runner.Run(cmd.Context(), tasks, workers, nil)
	stop()
	if err != nil {
		return err
	}

	output := concurrencyOutput
	if output == "" {
		output = runtimeinfo.ConcurrencyOutputPath(cfg.Paths.Results,
			payload.Metadata.Implementation, payload.Metadata.Version, payload.Metadata.GILDisabled)
	}
	if err := utils.WriteJSON(output, payload); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range payload.Workloads {
		fmt.Fprintf(out, "%s:\n", w.Name) //nolint:errcheck
		for _, st := range w.Strategies {
			switch {
			case !st.Supported:
				reason := ""
				if st.Reason != nil {
					reason = *st.Reason
				}
				fmt.Fprintf(out, "  %-16s unsupported (%s)\n", st.Name, reason) //nolint:errcheck
			case st.Duration != nil:
				fmt.Fprintf(out, "  %-16s %.6fs\n", st.Name, *st.Duration) //nolint:errcheck
			default:
				fmt.Fprintf(out, "  %-16s no timing\n", st.Name) //nolint:errcheck
			}
		}
	}
	fmt.Fprintf(out, "Saved results to %s\n", output) //nolint:errcheck
	return nil
}

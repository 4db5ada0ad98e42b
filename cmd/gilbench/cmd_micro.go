package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/microbench"
	"github.com/gilbench/gilbench/internal/projectconfig"
	"github.com/gilbench/gilbench/internal/runtimeinfo"
	"github.com/gilbench/gilbench/internal/spinner"
	"github.com/gilbench/gilbench/internal/utils"
)

var (
	microIterations int
	microRepeat     int
	microOutput     string
)

func newMicroCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "micro",
		Short: "Run the micro benchmark suite",
		Long: `Run every built-in micro case, timing --iterations calls per run and
repeating each run --repeat times.

Results are written as JSON to --output, by default
<results>/benchmarks-<implementation>-<version>.json.`,
		Args: cobra.NoArgs,
		RunE: microCommandE,
	}

	cmd.Flags().IntVar(&microIterations, "iterations", projectconfig.DefaultIterations, "Calls per timed run")
	cmd.Flags().IntVar(&microRepeat, "repeat", projectconfig.DefaultRepeat, "Timed runs per case")
	cmd.Flags().StringVarP(&microOutput, "output", "o", "", "Result file path")

	return cmd
}

func microCommandE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	iterations := intOverride(cmd, "iterations", microIterations, cfg.Defaults.Iterations)
	repeat := intOverride(cmd, "repeat", microRepeat, cfg.Defaults.Repeat)

	stop := spinner.Start(cmd.ErrOrStderr(), "Running micro benchmarks...")
	payload, err := microbench.Run(cmd.Context(), iterations, repeat, nil)
	stop()
	if err != nil {
		return err
	}

	output := microOutput
	if output == "" {
		output = runtimeinfo.MicroOutputPath(cfg.Paths.Results, payload.Implementation, payload.Version)
	}
	if err := utils.WriteJSON(output, payload); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range payload.Cases {
		fmt.Fprintf(out, "%-24s %.6fs ± %.6fs\n", c.Name, c.Mean, c.Stdev) //nolint:errcheck
	}
	fmt.Fprintf(out, "Saved results to %s\n", output) //nolint:errcheck
	return nil
}

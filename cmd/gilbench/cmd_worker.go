package main

import (
	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/concurrency"
	"github.com/gilbench/gilbench/internal/workloads"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "worker",
		Short:  "Execute one worker request read from stdin",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return concurrency.ServeWorker(workloads.Default, cmd.InOrStdin())
		},
	}
}

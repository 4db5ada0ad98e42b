package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/projectconfig"
	"github.com/gilbench/gilbench/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .gilbench.yaml project file",
		Long: `Create a .gilbench.yaml in the given directory, or the current directory.

An interactive form asks for results and container settings, benchmark
defaults and the baseline runtime. Use --yes to accept the defaults without
prompting. An existing file is only replaced with --force.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, yes, force)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .gilbench.yaml")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, yes, force bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(path); err == nil {
		if !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cfg := projectconfig.New()
	if !yes {
		var err error
		cfg, err = wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}
	}

	data, err := projectconfig.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path) //nolint:errcheck
	return nil
}

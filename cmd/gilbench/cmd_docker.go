package main

import (
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/docker"
	"github.com/gilbench/gilbench/internal/hooks"
	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/utils"
)

var (
	dockerSuite       string
	dockerRoot        string
	dockerContext     string
	dockerSkipBuild   bool
	dockerSkipRun     bool
	dockerDryRun      bool
	dockerRunCmd      string
	dockerResultsDir  string
	dockerNoAggregate bool
	dockerIterations  int
	dockerRepeat      int
	dockerTasks       int
	dockerWorkers     int
)

// newCommandRunner is swapped in tests.
var newCommandRunner = func(cmd *cobra.Command) docker.CommandRunner {
	return &docker.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
}

func newDockerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Build and run the benchmark suites in per-version containers",
		Long: `Build one image per runtime version found under --docker-root and run the
selected suite in each, with the host results directory mounted into the
container. Afterwards the result files are aggregated and the report printed.

Each build context is a directory named <prefix><version> holding a
Dockerfile. Every command is printed before it runs; --dry-run only prints.`,
		Args: cobra.NoArgs,
		RunE: dockerCommandE,
	}

	f := cmd.Flags()
	f.StringVar(&dockerSuite, "suite", string(models.SuiteMicro), "Benchmark suite: micro or concurrency")
	f.StringVar(&dockerRoot, "docker-root", "", "Directory holding the per-version build contexts")
	f.StringVar(&dockerContext, "context", "", "Build context passed to the container engine")
	f.BoolVar(&dockerSkipBuild, "skip-build", false, "Do not build images")
	f.BoolVar(&dockerSkipRun, "skip-run", false, "Do not run containers")
	f.BoolVar(&dockerDryRun, "dry-run", false, "Print commands without executing them")
	f.StringVar(&dockerRunCmd, "run-cmd", "", "Command to run inside each container instead of the suite")
	f.StringVar(&dockerResultsDir, "results-dir", "", "Host directory mounted for results (default: <results>/<suite>)")
	f.BoolVar(&dockerNoAggregate, "no-aggregate", false, "Skip aggregating results after the run")
	f.IntVar(&dockerIterations, "iterations", 0, "Override micro iterations")
	f.IntVar(&dockerRepeat, "repeat", 0, "Override micro repeats")
	f.IntVar(&dockerTasks, "tasks", 0, "Override concurrency tasks")
	f.IntVar(&dockerWorkers, "workers", 0, "Override concurrency workers")

	return cmd
}

func dockerCommandE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	suite, err := models.ParseSuite(dockerSuite)
	if err != nil {
		return err
	}

	opts := docker.Options{
		Suite:        suite,
		Engine:       cfg.Container.Engine,
		ImageRepo:    cfg.Container.ImageRepo,
		DockerRoot:   cfg.Paths.DockerRoot,
		DirPrefix:    cfg.Container.DirPrefix,
		Context:      cfg.Paths.Context,
		ResultsDir:   cfg.ResultsDirFor(suite),
		ResultsMount: cfg.Container.ResultsMount,
		Entrypoint:   cfg.Container.Entrypoint,
		SkipBuild:    dockerSkipBuild,
		SkipRun:      dockerSkipRun,
		DryRun:       dockerDryRun,
		Aggregate:    !dockerNoAggregate,
		Baseline:     cfg.BaselineRef(),
		Hooks:        cfg.Hooks,
	}
	if dockerRoot != "" {
		opts.DockerRoot = dockerRoot
	}
	if dockerContext != "" {
		opts.Context = dockerContext
	}
	if dockerResultsDir != "" {
		opts.ResultsDir = dockerResultsDir
	}
	if cmd.Flags().Changed("run-cmd") {
		opts.RunCmd, err = shellquote.Split(dockerRunCmd)
		if err != nil {
			return fmt.Errorf("parsing --run-cmd: %w", err)
		}
		if len(opts.RunCmd) == 0 {
			return fmt.Errorf("--run-cmd must not be empty")
		}
	}
	opts.Iterations = changedInt(cmd, "iterations", dockerIterations)
	opts.Repeat = changedInt(cmd, "repeat", dockerRepeat)
	opts.Tasks = changedInt(cmd, "tasks", dockerTasks)
	opts.Workers = changedInt(cmd, "workers", dockerWorkers)

	driver := &docker.Driver{
		Runner: newCommandRunner(cmd),
		Out:    cmd.OutOrStdout(),
		Hooks:  &hooks.Runner{Verbose: true, Out: cmd.OutOrStdout()},
	}
	report, err := driver.Execute(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if opts.Aggregate && !opts.DryRun && !opts.SkipRun && report.Summary == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s results found in %s\n", suite, opts.ResultsDir) //nolint:errcheck
	}
	return nil
}

func changedInt(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return utils.Ptr(v)
}

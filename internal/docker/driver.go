package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/gilbench/gilbench/internal/aggregate"
	"github.com/gilbench/gilbench/internal/hooks"
	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/runtimeinfo"
)

// Driver builds and runs the per-version images. Every command is echoed to
// Out as "$ <argv>" before it runs.
type Driver struct {
	Runner CommandRunner
	Out    io.Writer
	// Hooks runs the configured lifecycle hooks. Nil uses a quiet runner.
	Hooks *hooks.Runner
}

// Report is what a driver run produced.
type Report struct {
	Targets []Target
	// Summary is nil when aggregation was skipped or found no results.
	Summary *aggregate.Result
}

// Execute discovers targets, then builds and runs each one in order.
func (d *Driver) Execute(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	targets, err := Discover(opts.DockerRoot, opts.DirPrefix)
	if err != nil {
		return nil, err
	}
	slog.Debug("Discovered container targets", "root", opts.DockerRoot, "count", len(targets))

	resultsDir := ""
	if opts.ResultsDir != "" {
		resultsDir, err = filepath.Abs(opts.ResultsDir)
		if err != nil {
			return nil, fmt.Errorf("resolving results directory: %w", err)
		}
		if opts.DryRun || opts.SkipRun {
			err = os.MkdirAll(resultsDir, 0o755)
		} else {
			err = resetDir(resultsDir)
		}
		if err != nil {
			return nil, fmt.Errorf("preparing results directory: %w", err)
		}
	}

	if err := d.runHooks(ctx, opts.DryRun, "before_run", opts.Hooks.BeforeRun); err != nil {
		return nil, err
	}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		env := hooks.VersionEnv + "=" + t.Version
		if err := d.runHooks(ctx, opts.DryRun, "before_target", opts.Hooks.BeforeTarget, env); err != nil {
			return nil, err
		}
		if !opts.SkipBuild {
			if err := d.run(ctx, opts.DryRun, buildCommand(opts, t)); err != nil {
				return nil, err
			}
		}
		if !opts.SkipRun {
			if err := d.run(ctx, opts.DryRun, runCommand(opts, t, resultsDir)); err != nil {
				return nil, err
			}
		}
		if err := d.runHooks(ctx, opts.DryRun, "after_target", opts.Hooks.AfterTarget, env); err != nil {
			return nil, err
		}
	}
	if err := d.runHooks(ctx, opts.DryRun, "after_run", opts.Hooks.AfterRun); err != nil {
		return nil, err
	}

	report := &Report{Targets: targets}
	if opts.SkipRun || opts.DryRun || !opts.Aggregate || resultsDir == "" {
		return report, nil
	}

	report.Summary, err = aggregate.Summarize(resultsDir, opts.Suite, opts.Baseline)
	if err != nil {
		return nil, fmt.Errorf("aggregating results: %w", err)
	}
	if report.Summary != nil {
		fmt.Fprintln(d.Out, report.Summary.Text()) //nolint:errcheck
	}
	return report, nil
}

func (d *Driver) run(ctx context.Context, dryRun bool, argv []string) error {
	fmt.Fprintln(d.Out, "$ "+shellquote.Join(argv...)) //nolint:errcheck
	if dryRun {
		return nil
	}
	return d.Runner.Run(ctx, argv)
}

func (d *Driver) runHooks(ctx context.Context, dryRun bool, name string, list []hooks.HookConfig, env ...string) error {
	if len(list) == 0 {
		return nil
	}
	for _, h := range list {
		fmt.Fprintf(d.Out, "# %s hook: %s\n", name, h.Command) //nolint:errcheck
	}
	if dryRun {
		return nil
	}
	r := d.Hooks
	if r == nil {
		r = &hooks.Runner{Out: d.Out}
	}
	return r.Execute(ctx, name, list, env...)
}

func buildCommand(opts Options, t Target) []string {
	return []string{opts.Engine, "build", "-f", t.Dockerfile, "-t", t.Tag(opts.ImageRepo), opts.Context}
}

func runCommand(opts Options, t Target, resultsDir string) []string {
	argv := []string{opts.Engine, "run", "--rm"}
	if opts.RunCmd == nil && opts.Suite == models.SuiteConcurrency && t.ThreadFree() {
		argv = append(argv, "-e", runtimeinfo.GILEnv+"=0")
	}
	if resultsDir != "" {
		argv = append(argv, "-v", resultsDir+":"+opts.ResultsMount)
	}
	argv = append(argv, t.Tag(opts.ImageRepo))
	return append(argv, benchmarkCommand(opts)...)
}

func benchmarkCommand(opts Options) []string {
	if opts.RunCmd != nil {
		return append([]string(nil), opts.RunCmd...)
	}

	argv := append([]string(nil), opts.Entrypoint...)
	argv = append(argv, opts.Suite.Subcommand())
	switch opts.Suite {
	case models.SuiteMicro:
		argv = appendIntFlag(argv, "--iterations", opts.Iterations)
		argv = appendIntFlag(argv, "--repeat", opts.Repeat)
	case models.SuiteConcurrency:
		argv = appendIntFlag(argv, "--tasks", opts.Tasks)
		argv = appendIntFlag(argv, "--workers", opts.Workers)
	}
	return argv
}

func appendIntFlag(argv []string, flag string, v *int) []string {
	if v == nil {
		return argv
	}
	return append(argv, flag, strconv.Itoa(*v))
}

// resetDir empties dir, creating it if needed.
func resetDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return os.MkdirAll(dir, 0o755)
}

// Package hooks runs user-configured host commands around container driver
// runs, for example to prune images or warm a registry cache.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// VersionEnv is set for per-target hooks to the target's runtime version.
const VersionEnv = "GILBENCH_TARGET_VERSION"

// HookConfig defines a single hook command.
type HookConfig struct {
	Command          string `yaml:"command" json:"command" validate:"required"`
	WorkingDirectory string `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`
	ExitCodes        []int  `yaml:"exit_codes,omitempty" json:"exit_codes,omitempty"`
	ErrorOnFail      bool   `yaml:"error_on_fail,omitempty" json:"error_on_fail,omitempty"`
}

// HooksConfig holds all driver lifecycle hooks.
type HooksConfig struct {
	BeforeRun    []HookConfig `yaml:"before_run,omitempty" json:"before_run,omitempty" validate:"dive"`
	AfterRun     []HookConfig `yaml:"after_run,omitempty" json:"after_run,omitempty" validate:"dive"`
	BeforeTarget []HookConfig `yaml:"before_target,omitempty" json:"before_target,omitempty" validate:"dive"`
	AfterTarget  []HookConfig `yaml:"after_target,omitempty" json:"after_target,omitempty" validate:"dive"`
}

// Empty reports whether no hook is configured.
func (c HooksConfig) Empty() bool {
	return len(c.BeforeRun)+len(c.AfterRun)+len(c.BeforeTarget)+len(c.AfterTarget) == 0
}

// Runner executes hook commands at lifecycle points. Hook output is copied
// to Out when Verbose is set.
type Runner struct {
	Verbose bool
	Out     io.Writer
}

// Execute runs all hooks for a given lifecycle point.
// name identifies the lifecycle point (e.g. "before_run") for logging and error context.
// env is appended to the current environment of every command.
func (r *Runner) Execute(ctx context.Context, name string, hooks []HookConfig, env ...string) error {
	for i, h := range hooks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("hook %s: context canceled: %w", name, err)
		}

		if err := r.runHook(ctx, name, i, h, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runHook(ctx context.Context, name string, index int, h HookConfig, env []string) error {
	if strings.TrimSpace(h.Command) == "" {
		return fmt.Errorf("hook %s[%d]: empty command", name, index)
	}

	parts, err := shellquote.Split(h.Command)
	if err != nil {
		return fmt.Errorf("hook %s[%d]: parsing command: %w", name, index, err)
	}
	//nolint:gosec // hook commands come from the project's own .gilbench.yaml
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if h.WorkingDirectory != "" {
		cmd.Dir = h.WorkingDirectory
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err = cmd.Run()

	if r.Verbose && output.Len() > 0 && r.Out != nil {
		fmt.Fprintf(r.Out, "[hook:%s] %s\n", name, strings.TrimRight(output.String(), "\n")) //nolint:errcheck
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Non-exit error (e.g. command not found)
			if h.ErrorOnFail {
				return fmt.Errorf("hook %s[%d]: %w", name, index, err)
			}
			slog.Warn("Hook failed, continuing", "hook", name, "index", index, "error", err)
			return nil
		}
		exitCode = exitErr.ExitCode()
	}

	if isAcceptableExit(exitCode, h.ExitCodes) {
		return nil
	}
	if h.ErrorOnFail {
		return fmt.Errorf("hook %s[%d]: command exited with code %d", name, index, exitCode)
	}
	slog.Warn("Hook exited with unexpected code, continuing", "hook", name, "index", index, "code", exitCode)
	return nil
}

// isAcceptableExit checks whether exitCode is in the allowed list.
// An empty allowedCodes list defaults to allowing only exit code 0.
func isAcceptableExit(exitCode int, allowedCodes []int) bool {
	if len(allowedCodes) == 0 {
		return exitCode == 0
	}
	for _, code := range allowedCodes {
		if exitCode == code {
			return true
		}
	}
	return false
}

package docker

//go:generate mockgen -source=runner.go -destination=mock_runner_test.go -package=docker

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// CommandRunner executes one external command to completion.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs commands as child processes, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r *ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	//nolint:gosec // argv is assembled from the project's own configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command '%s' failed: %w", argv[0], err)
	}
	return nil
}

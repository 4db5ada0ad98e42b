package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilbench/gilbench/internal/docker"
	"github.com/gilbench/gilbench/internal/projectconfig"
)

type recordingRunner struct {
	calls [][]string
}

func (r *recordingRunner) Run(_ context.Context, argv []string) error {
	r.calls = append(r.calls, argv)
	return nil
}

func useRecordingRunner(t *testing.T) *recordingRunner {
	t.Helper()
	rec := &recordingRunner{}
	orig := newCommandRunner
	newCommandRunner = func(*cobra.Command) docker.CommandRunner { return rec }
	t.Cleanup(func() { newCommandRunner = orig })
	return rec
}

func makeDockerLayout(t *testing.T, root string, versions ...string) {
	t.Helper()
	for _, v := range versions {
		d := filepath.Join(root, "py"+v)
		require.NoError(t, os.MkdirAll(d, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(d, "Dockerfile"), []byte("FROM scratch\n"), 0o644))
	}
}

func commandLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "$ ") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestDockerCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, nil)
	makeDockerLayout(t, filepath.Join(dir, "docker"), "3.12", "3.14t")
	rec := useRecordingRunner(t)

	out, err := runCLI(t, "docker", "--config", cfgPath, "--dry-run", "--iterations", "3")
	require.NoError(t, err)
	assert.Empty(t, rec.calls)

	lines := commandLines(out)
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "$ docker build -f "))
	assert.Contains(t, lines[0], "-t gilbench:3.12")
	assert.True(t, strings.HasPrefix(lines[1], "$ docker run --rm -v "))
	assert.True(t, strings.HasSuffix(lines[1], "gilbench:3.12 gilbench micro --iterations 3"))
	assert.Contains(t, lines[2], "-t gilbench:3.14t")

	assert.DirExists(t, filepath.Join(dir, "results", "micro"))
}

func TestDockerCommand_ConcurrencyEngineFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, func(c *projectconfig.ProjectConfig) { c.Container.Engine = "podman" })
	makeDockerLayout(t, filepath.Join(dir, "docker"), "3.14t")
	rec := useRecordingRunner(t)

	out, err := runCLI(t, "docker", "--config", cfgPath, "--suite", "concurrency", "--skip-build", "--workers", "2")
	require.NoError(t, err)

	require.Len(t, rec.calls, 1)
	argv := rec.calls[0]
	assert.Equal(t, []string{"podman", "run", "--rm", "-e", "GILBENCH_GIL=0"}, argv[:5])
	assert.Equal(t, []string{"gilbench:3.14t", "gilbench", "concurrency", "--workers", "2"}, argv[len(argv)-5:])
	assert.Contains(t, out, "No concurrency results found in ")
}

func TestDockerCommand_RunCmd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, nil)
	makeDockerLayout(t, filepath.Join(dir, "docker"), "3.13")
	rec := useRecordingRunner(t)

	_, err := runCLI(t, "docker", "--config", cfgPath, "--skip-build", "--no-aggregate",
		"--run-cmd", `python -c 'print("hi there")'`)
	require.NoError(t, err)

	require.Len(t, rec.calls, 1)
	argv := rec.calls[0]
	assert.Equal(t, []string{"gilbench:3.13", "python", "-c", `print("hi there")`}, argv[len(argv)-4:])
}

func TestDockerCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, nil)
	makeDockerLayout(t, filepath.Join(dir, "docker"), "3.13")
	useRecordingRunner(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"run-cmd with overrides", []string{"--run-cmd", "true", "--iterations", "2"}, "--run-cmd cannot be combined"},
		{"tasks on micro", []string{"--tasks", "2"}, "--tasks/--workers overrides require --suite concurrency"},
		{"repeat on concurrency", []string{"--suite", "concurrency", "--repeat", "2"}, "--iterations/--repeat overrides are unavailable"},
		{"bad suite", []string{"--suite", "macro"}, `unsupported benchmark suite "macro"`},
		{"unbalanced quote", []string{"--run-cmd", `echo "oops`}, "parsing --run-cmd"},
		{"missing root", []string{"--docker-root", filepath.Join(dir, "nope")}, "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"docker", "--config", cfgPath, "--dry-run"}, tt.args...)
			_, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

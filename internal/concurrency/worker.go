package concurrency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/gilbench/gilbench/internal/workloads"
)

// WorkerRequest asks an isolated execution unit to call a registered
// workload function Count times with a JSON-encoded argument.
type WorkerRequest struct {
	Func     string          `json:"func"`
	Argument json.RawMessage `json:"argument"`
	Count    int             `json:"count"`
}

func newWorkerRequest(w WorkloadSpec, count int) (WorkerRequest, error) {
	arg, err := json.Marshal(w.Argument)
	if err != nil {
		return WorkerRequest{}, fmt.Errorf("encoding argument for %s: %w", w.Name, err)
	}
	return WorkerRequest{Func: w.FuncName, Argument: arg, Count: count}, nil
}

// RunWorker executes req against registry.
func RunWorker(registry *workloads.Registry, req WorkerRequest) error {
	fn, ok := registry.Lookup(req.Func)
	if !ok {
		return fmt.Errorf("workload function %q is not registered", req.Func)
	}

	var arg any
	if len(req.Argument) > 0 {
		if err := json.Unmarshal(req.Argument, &arg); err != nil {
			return fmt.Errorf("decoding argument for %s: %w", req.Func, err)
		}
	}

	for i := 0; i < req.Count; i++ {
		if err := fn(arg); err != nil {
			return fmt.Errorf("%s: %w", req.Func, err)
		}
	}
	return nil
}

// ServeWorker reads one WorkerRequest from r and executes it.
func ServeWorker(registry *workloads.Registry, r io.Reader) error {
	var req WorkerRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("reading worker request: %w", err)
	}
	return RunWorker(registry, req)
}

// Launcher runs a WorkerRequest in a separate OS process.
type Launcher interface {
	Launch(ctx context.Context, req WorkerRequest) error
}

// ExecLauncher starts a child process per request and writes the request to
// its stdin. Command defaults to the running executable's "worker"
// subcommand.
type ExecLauncher struct {
	Command []string
	Env     []string
}

func (l *ExecLauncher) Launch(ctx context.Context, req WorkerRequest) error {
	argv := l.Command
	if len(argv) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating worker executable: %w", err)
		}
		argv = []string{exe, "worker"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding worker request: %w", err)
	}

	//nolint:gosec // argv is the harness's own executable or a test-supplied command
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(body)
	cmd.Env = append(os.Environ(), l.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("worker %s: %w: %s", req.Func, err, msg)
		}
		return fmt.Errorf("worker %s: %w", req.Func, err)
	}
	return nil
}

package concurrency

import (
	"fmt"
	"os"
	"testing"

	"github.com/gilbench/gilbench/internal/workloads"
)

const helperWorkerEnv = "GILBENCH_TEST_WORKER"

// TestMain lets the test binary act as a worker process for the process
// strategy tests.
func TestMain(m *testing.M) {
	if os.Getenv(helperWorkerEnv) == "1" {
		if err := ServeWorker(workloads.Default, os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func helperLauncher() *ExecLauncher {
	return &ExecLauncher{
		Command: []string{os.Args[0]},
		Env:     []string{helperWorkerEnv + "=1"},
	}
}

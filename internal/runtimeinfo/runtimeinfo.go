// Package runtimeinfo describes the runtime build a benchmark executes on.
package runtimeinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GILEnv overrides GIL detection. "0" reports the lock as disabled and "1"
// as enabled, mirroring the switch used by free-threaded interpreter builds.
const GILEnv = "GILBENCH_GIL"

// Implementation returns the toolchain name recorded in result files.
func Implementation() string {
	if runtime.Compiler == "gccgo" {
		return "gccgo"
	}
	return "Go"
}

// Version returns the runtime version without the "go" prefix, e.g. "1.26.0".
func Version() string {
	return strings.TrimPrefix(runtime.Version(), "go")
}

// DetectGILDisabled reports whether CPU-bound work on separate execution
// units can run in parallel. It returns nil when the answer is unknown,
// which only happens when maxProcs is not positive.
func DetectGILDisabled() *bool {
	return detect(os.Getenv(GILEnv), runtime.GOMAXPROCS(0))
}

func detect(env string, maxProcs int) *bool {
	yes, no := true, false
	switch env {
	case "0":
		return &yes
	case "1":
		return &no
	}
	switch {
	case maxProcs > 1:
		return &yes
	case maxProcs == 1:
		return &no
	}
	return nil
}

// MicroOutputPath is the default result file for a micro run.
func MicroOutputPath(dir, implementation, version string) string {
	return filepath.Join(dir, fmt.Sprintf("benchmarks-%s-%s.json", strings.ToLower(implementation), version))
}

// ConcurrencyOutputPath is the default result file for a concurrency run.
func ConcurrencyOutputPath(dir, implementation, version string, gilDisabled *bool) string {
	suffix := ""
	if gilDisabled != nil && *gilDisabled {
		suffix = "-nogil"
	}
	return filepath.Join(dir, fmt.Sprintf("concurrency-%s-%s%s.json", strings.ToLower(implementation), version, suffix))
}

// Package concurrency runs workloads under several execution strategies and
// reports wall-clock duration, throughput and speedup over sequential runs.
package concurrency

import "github.com/gilbench/gilbench/internal/workloads"

// WorkloadSpec describes one concurrency workload. FuncName is the registry
// identifier used when the workload runs outside the calling goroutine's
// address space or in an isolated context.
type WorkloadSpec struct {
	Name        string
	Category    string
	Description string
	Function    workloads.Func
	FuncName    string
	Argument    any

	SupportsThreads         bool
	SupportsProcesses       bool
	SupportsSubinterpreters bool
}

// DefaultWorkloads returns the CPU-bound and IO-bound workloads run when the
// caller supplies none.
func DefaultWorkloads() []WorkloadSpec {
	return []WorkloadSpec{
		registered(
			"cpu_bound_fibonacci",
			"cpu",
			"Iterative Fibonacci computation that keeps the CPU busy and "+
				"shows whether threads can scale CPU-bound work.",
			workloads.FuncFibonacci,
			30,
		),
		registered(
			"io_bound_sleep",
			"io",
			"Repeated short sleeps that mimic I/O waits, highlighting the "+
				"benefits of threads for blocking workloads.",
			workloads.FuncSleep,
			0.002,
		),
	}
}

func registered(name, category, description, funcName string, arg any) WorkloadSpec {
	fn, ok := workloads.Default.Lookup(funcName)
	if !ok {
		panic("workload function not registered: " + funcName)
	}
	return WorkloadSpec{
		Name:                    name,
		Category:                category,
		Description:             description,
		Function:                fn,
		FuncName:                funcName,
		Argument:                arg,
		SupportsThreads:         true,
		SupportsProcesses:       true,
		SupportsSubinterpreters: true,
	}
}

// SplitWork divides amount into parts counts; the first amount%parts
// counts receive one extra unit.
func SplitWork(amount, parts int) []int {
	if parts <= 0 {
		return nil
	}
	base, remainder := amount/parts, amount%parts
	out := make([]int, parts)
	for i := range out {
		out[i] = base
		if i < remainder {
			out[i]++
		}
	}
	return out
}

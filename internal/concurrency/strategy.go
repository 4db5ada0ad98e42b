package concurrency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gilbench/gilbench/internal/workloads"
)

// Strategy names as they appear in result files.
const (
	StrategySequential      = "sequential"
	StrategyThreading       = "threading"
	StrategyProcess         = "process"
	StrategySubinterpreters = "subinterpreters"
)

// Strategy executes tasks invocations of a workload across workers
// execution units and returns the elapsed wall-clock seconds. A
// *UnsupportedError means the strategy cannot run the workload here.
type Strategy interface {
	Name() string
	Run(ctx context.Context, w WorkloadSpec, tasks, workers int) (float64, error)
}

func runSequential(w WorkloadSpec, tasks int) (float64, error) {
	start := time.Now()
	for i := 0; i < tasks; i++ {
		if err := w.Function(w.Argument); err != nil {
			return 0, fmt.Errorf("%s: %w", w.Name, err)
		}
	}
	return time.Since(start).Seconds(), nil
}

// Threading runs invocations on a pool of workers goroutines.
type Threading struct{}

func (Threading) Name() string { return StrategyThreading }

func (Threading) Run(ctx context.Context, w WorkloadSpec, tasks, workers int) (float64, error) {
	if !w.SupportsThreads {
		return 0, unsupported("workload does not support threads")
	}

	start := time.Now()
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < tasks; i++ {
		g.Go(func() error {
			return w.Function(w.Argument)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("%s: %w", w.Name, err)
	}
	return time.Since(start).Seconds(), nil
}

// Process runs invocations in workers child processes. The workload
// travels as its registry identifier plus JSON-encoded argument.
type Process struct {
	Launcher Launcher
	Registry *workloads.Registry
}

func (Process) Name() string { return StrategyProcess }

func (p Process) Run(ctx context.Context, w WorkloadSpec, tasks, workers int) (float64, error) {
	if !w.SupportsProcesses {
		return 0, unsupported("workload does not support processes")
	}
	if err := checkRegistered(p.Registry, w); err != nil {
		return 0, err
	}

	launcher := p.Launcher
	if launcher == nil {
		launcher = &ExecLauncher{}
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, count := range SplitWork(tasks, workers) {
		if count == 0 {
			continue
		}
		req, err := newWorkerRequest(w, count)
		if err != nil {
			return 0, err
		}
		g.Go(func() error {
			return launcher.Launch(gctx, req)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return time.Since(start).Seconds(), nil
}

// Subinterpreters splits tasks evenly across workers isolated contexts
// created by Isolation. Contexts are created before timing starts and are
// always released afterwards.
type Subinterpreters struct {
	Isolation Isolation
}

func (Subinterpreters) Name() string { return StrategySubinterpreters }

func (s Subinterpreters) Run(ctx context.Context, w WorkloadSpec, tasks, workers int) (float64, error) {
	if !w.SupportsSubinterpreters {
		return 0, unsupported("workload does not support subinterpreters")
	}
	if s.Isolation == nil {
		return 0, unsupported(errIsolationUnavailable.Error())
	}
	if err := s.Isolation.Available(); err != nil {
		return 0, unsupported(err.Error())
	}
	creator, ok := s.Isolation.(Creator)
	if !ok {
		return 0, unsupported("isolation facility lacks a creation primitive")
	}
	if w.FuncName == "" {
		return 0, unsupported("workload has no registered function identifier")
	}

	splits := SplitWork(tasks, workers)
	contexts := make([]IsolatedContext, 0, workers)
	defer func() {
		for _, ic := range contexts {
			if err := ic.Close(); err != nil {
				slog.Debug("Releasing isolated context failed", "isolation", s.Isolation.Name(), "error", err)
			}
		}
	}()
	for range splits {
		ic, err := creator.Create(ctx)
		if err != nil {
			return 0, fmt.Errorf("creating %s context: %w", s.Isolation.Name(), err)
		}
		contexts = append(contexts, ic)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i, count := range splits {
		if count == 0 {
			continue
		}
		req, err := newWorkerRequest(w, count)
		if err != nil {
			return 0, err
		}
		ic := contexts[i]
		g.Go(func() error {
			return ic.Run(gctx, req)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return time.Since(start).Seconds(), nil
}

func checkRegistered(registry *workloads.Registry, w WorkloadSpec) error {
	if w.FuncName == "" {
		return unsupported("workload has no registered function identifier")
	}
	if registry == nil {
		registry = workloads.Default
	}
	if _, ok := registry.Lookup(w.FuncName); !ok {
		return unsupported(fmt.Sprintf("workload function %q is not registered", w.FuncName))
	}
	return nil
}

package concurrency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/runtimeinfo"
	"github.com/gilbench/gilbench/internal/utils"
	"github.com/gilbench/gilbench/internal/workloads"
)

// Runner measures each workload sequentially and then under every
// configured strategy.
type Runner struct {
	strategies []Strategy
	isolation  Isolation
	gilProbe   func() *bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithStrategies replaces the strategies run after the sequential baseline.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Runner) {
		r.strategies = strategies
	}
}

// WithIsolation sets the facility used by every subinterpreters strategy,
// regardless of where it appears among the options.
func WithIsolation(iso Isolation) Option {
	return func(r *Runner) {
		r.isolation = iso
	}
}

// WithGILProbe overrides runtime GIL detection.
func WithGILProbe(probe func() *bool) Option {
	return func(r *Runner) {
		r.gilProbe = probe
	}
}

// NewRunner returns a Runner with the threading, process and subinterpreters
// strategies. The subinterpreters strategy has no isolation facility unless
// WithIsolation supplies one.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		strategies: []Strategy{
			Threading{},
			Process{Launcher: &ExecLauncher{}, Registry: workloads.Default},
			Subinterpreters{Isolation: NotAvailable{}},
		},
		gilProbe: runtimeinfo.DetectGILDisabled,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.isolation != nil {
		strategies := make([]Strategy, len(r.strategies))
		for i, s := range r.strategies {
			if _, ok := s.(Subinterpreters); ok {
				s = Subinterpreters{Isolation: r.isolation}
			}
			strategies[i] = s
		}
		r.strategies = strategies
	}
	return r
}

// Run executes tasks invocations of each workload per strategy. A nil
// workloads slice runs DefaultWorkloads; an empty one is rejected.
func (r *Runner) Run(ctx context.Context, tasks, workers int, specs []WorkloadSpec) (*models.ConcurrencyPayload, error) {
	if tasks <= 0 {
		return nil, fmt.Errorf("%w: tasks must be positive, got %d", models.ErrInvalidArgument, tasks)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", models.ErrInvalidArgument, workers)
	}
	if specs == nil {
		specs = DefaultWorkloads()
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one workload must be specified", models.ErrInvalidArgument)
	}

	payload := &models.ConcurrencyPayload{
		Metadata: models.RunMetadata{
			Implementation: runtimeinfo.Implementation(),
			Version:        runtimeinfo.Version(),
			Tasks:          tasks,
			Workers:        workers,
			GILDisabled:    r.gilProbe(),
		},
		Workloads: make([]models.WorkloadResult, 0, len(specs)),
	}

	for _, w := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sequential, err := runSequential(w, tasks)
		if err != nil {
			return nil, err
		}
		strategies := []models.StrategyResult{
			formatResult(StrategySequential, true, &sequential, sequential, tasks, ""),
		}

		for _, s := range r.strategies {
			duration, err := s.Run(ctx, w, tasks, workers)
			var unsup *UnsupportedError
			switch {
			case errors.As(err, &unsup):
				slog.Debug("Strategy unsupported", "workload", w.Name, "strategy", s.Name(), "reason", unsup.Reason)
				strategies = append(strategies, formatResult(s.Name(), false, nil, sequential, tasks, unsup.Reason))
			case err != nil:
				return nil, fmt.Errorf("running %s with %s strategy: %w", w.Name, s.Name(), err)
			default:
				strategies = append(strategies, formatResult(s.Name(), true, &duration, sequential, tasks, ""))
			}
		}

		payload.Workloads = append(payload.Workloads, models.WorkloadResult{
			Name:        w.Name,
			Category:    w.Category,
			Description: w.Description,
			Strategies:  strategies,
		})
	}
	return payload, nil
}

// RunBenchmarks runs the default strategies.
func RunBenchmarks(ctx context.Context, tasks, workers int, specs []WorkloadSpec) (*models.ConcurrencyPayload, error) {
	return NewRunner().Run(ctx, tasks, workers, specs)
}

func formatResult(name string, supported bool, duration *float64, baseline float64, tasks int, reason string) models.StrategyResult {
	res := models.StrategyResult{
		Name:      name,
		Supported: supported,
		Duration:  duration,
	}
	if supported && duration != nil && *duration > 0 {
		res.TasksPerSecond = utils.Ptr(float64(tasks) / *duration)
		if baseline > 0 {
			res.SpeedupVsSequential = utils.Ptr(baseline / *duration)
		}
	}
	if reason != "" {
		res.Reason = utils.Ptr(reason)
	}
	return res
}

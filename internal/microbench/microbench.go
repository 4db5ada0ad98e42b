// Package microbench times the single-threaded micro suite.
package microbench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gilbench/gilbench/internal/metrics"
	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/runtimeinfo"
	"github.com/gilbench/gilbench/internal/workloads"
)

// Case is a named zero-argument benchmark body. The returned value is kept
// in a sink so the computation stays observable.
type Case struct {
	Name string
	Func func() (int, error)
}

// DefaultCases returns the built-in micro suite.
func DefaultCases() []Case {
	return []Case{
		{Name: "fibonacci_40", Func: func() (int, error) { return workloads.Fibonacci(40), nil }},
		{Name: "fibonacci_rec_32", Func: func() (int, error) { return workloads.FibonacciRecursive(32), nil }},
		{Name: "prime_sieve_5000", Func: func() (int, error) { return len(workloads.PrimeSieve(5000)), nil }},
		{Name: "json_roundtrip_500", Func: func() (int, error) { return workloads.JSONRoundTrip(500) }},
		{Name: "bubble_sort_10000", Func: func() (int, error) { return workloads.BubbleSort(10000) }},
		{Name: "threaded_trig_4x20000", Func: func() (int, error) { return workloads.ThreadedTrigonometry(4, 20000) }},
	}
}

const sinkSize = 1024

var sink = make([]int, 0, sinkSize)

func consume(v int) {
	sink = append(sink, v)
	if len(sink) > sinkSize {
		sink = append(sink[:0], sink[sinkSize/2:]...)
	}
}

// Run times every case: repeat runs of iterations calls each. A nil cases
// slice runs DefaultCases.
func Run(ctx context.Context, iterations, repeat int, cases []Case) (*models.MicroPayload, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", models.ErrInvalidArgument, iterations)
	}
	if repeat <= 0 {
		return nil, fmt.Errorf("%w: repeat must be positive, got %d", models.ErrInvalidArgument, repeat)
	}
	if cases == nil {
		cases = DefaultCases()
	}

	payload := &models.MicroPayload{
		Implementation: runtimeinfo.Implementation(),
		Version:        runtimeinfo.Version(),
		Iterations:     iterations,
		Repeat:         repeat,
		Cases:          make([]models.MicroCase, 0, len(cases)),
	}

	for _, c := range cases {
		runs := make([]float64, 0, repeat)
		for r := 0; r < repeat; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			elapsed, err := timeCase(c, iterations)
			if err != nil {
				return nil, fmt.Errorf("running case %s: %w", c.Name, err)
			}
			runs = append(runs, elapsed)
		}

		perIteration := metrics.Scale(runs, float64(iterations))
		mc := models.MicroCase{
			Name:              c.Name,
			Runs:              runs,
			Mean:              metrics.Mean(runs),
			Stdev:             metrics.StdDev(runs),
			PerIterationMean:  metrics.Mean(perIteration),
			PerIterationStdev: metrics.StdDev(perIteration),
		}
		slog.Debug("Benchmark case finished", "case", c.Name, "mean", mc.Mean, "stdev", mc.Stdev)
		payload.Cases = append(payload.Cases, mc)
	}
	return payload, nil
}

func timeCase(c Case, iterations int) (float64, error) {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		v, err := c.Func()
		if err != nil {
			return 0, err
		}
		consume(v)
	}
	return time.Since(start).Seconds(), nil
}

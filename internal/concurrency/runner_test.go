package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/workloads"
)

func strategyNames(res models.WorkloadResult) []string {
	names := make([]string, 0, len(res.Strategies))
	for _, s := range res.Strategies {
		names = append(names, s.Name)
	}
	return names
}

func findStrategy(t *testing.T, res models.WorkloadResult, name string) models.StrategyResult {
	t.Helper()
	for _, s := range res.Strategies {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("strategy %s not found in %v", name, strategyNames(res))
	return models.StrategyResult{}
}

func fixedGIL(v bool) func() *bool {
	return func() *bool { return &v }
}

func TestRunner_DefaultWorkloads(t *testing.T) {
	r := NewRunner(
		WithStrategies(
			Threading{},
			Process{Launcher: helperLauncher(), Registry: workloads.Default},
			Subinterpreters{Isolation: NotAvailable{}},
		),
		WithGILProbe(fixedGIL(true)),
	)

	payload, err := r.Run(context.Background(), 4, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, payload.Metadata.Tasks)
	assert.Equal(t, 2, payload.Metadata.Workers)
	require.NotNil(t, payload.Metadata.GILDisabled)
	assert.True(t, *payload.Metadata.GILDisabled)

	require.Len(t, payload.Workloads, 2)
	assert.Equal(t, "cpu_bound_fibonacci", payload.Workloads[0].Name)
	assert.Equal(t, "cpu", payload.Workloads[0].Category)
	assert.Equal(t, "io_bound_sleep", payload.Workloads[1].Name)
	assert.Equal(t, "io", payload.Workloads[1].Category)

	for _, w := range payload.Workloads {
		assert.Equal(t, []string{"sequential", "threading", "process", "subinterpreters"}, strategyNames(w))

		seq := w.Strategies[0]
		assert.True(t, seq.Supported)
		require.NotNil(t, seq.Duration)
		require.NotNil(t, seq.SpeedupVsSequential)
		assert.InDelta(t, 1.0, *seq.SpeedupVsSequential, 1e-9)
		assert.Nil(t, seq.Reason)

		for _, name := range []string{"threading", "process"} {
			s := findStrategy(t, w, name)
			assert.True(t, s.Supported, name)
			require.NotNil(t, s.Duration, name)
			assert.Greater(t, *s.Duration, 0.0, name)
			assert.NotNil(t, s.TasksPerSecond, name)
		}

		sub := findStrategy(t, w, "subinterpreters")
		assert.False(t, sub.Supported)
		assert.Nil(t, sub.Duration)
		assert.Nil(t, sub.TasksPerSecond)
		assert.Nil(t, sub.SpeedupVsSequential)
		require.NotNil(t, sub.Reason)
		assert.Equal(t, "isolation primitive unavailable", *sub.Reason)
	}
}

func noopWorkload(name string) WorkloadSpec {
	return WorkloadSpec{
		Name:     name,
		Category: "test",
		Function: func(any) error { return nil },
		FuncName: workloads.FuncFibonacci,
		Argument: 1,
	}
}

func TestRunner_UnsupportedFlags(t *testing.T) {
	w := noopWorkload("nothing_supported")

	payload, err := NewRunner(WithGILProbe(fixedGIL(false))).Run(context.Background(), 2, 2, []WorkloadSpec{w})
	require.NoError(t, err)
	require.Len(t, payload.Workloads, 1)

	res := payload.Workloads[0]
	assert.True(t, res.Strategies[0].Supported)

	want := map[string]string{
		"threading":       "workload does not support threads",
		"process":         "workload does not support processes",
		"subinterpreters": "workload does not support subinterpreters",
	}
	for name, reason := range want {
		s := findStrategy(t, res, name)
		assert.False(t, s.Supported, name)
		require.NotNil(t, s.Reason, name)
		assert.Equal(t, reason, *s.Reason)
		assert.Nil(t, s.Duration, name)
	}
}

func TestRunner_InvalidArguments(t *testing.T) {
	r := NewRunner()
	ctx := context.Background()

	_, err := r.Run(ctx, 0, 4, nil)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "tasks must be positive")

	_, err = r.Run(ctx, 4, -1, nil)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "workers must be positive")

	_, err = r.Run(ctx, 4, 4, []WorkloadSpec{})
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "at least one workload")
}

func TestRunner_StrategyFailureIsFatal(t *testing.T) {
	calls := int32(0)
	boom := errors.New("boom")
	w := noopWorkload("flaky")
	w.SupportsThreads = true
	w.Function = func(any) error {
		if atomic.AddInt32(&calls, 1) > 2 {
			return boom
		}
		return nil
	}

	_, err := NewRunner(WithStrategies(Threading{})).Run(context.Background(), 2, 2, []WorkloadSpec{w})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "threading")
}

func TestRunner_WithIsolation(t *testing.T) {
	registry, counter := countingRegistry(t)
	w := noopWorkload("counted")
	w.FuncName = "count"
	w.SupportsSubinterpreters = true

	r := NewRunner(
		WithStrategies(Subinterpreters{}),
		WithIsolation(&ThreadBased{Registry: registry}),
	)
	payload, err := r.Run(context.Background(), 5, 2, []WorkloadSpec{w})
	require.NoError(t, err)

	sub := findStrategy(t, payload.Workloads[0], "subinterpreters")
	assert.True(t, sub.Supported)
	assert.Nil(t, sub.Reason)
	assert.Equal(t, int64(5), counter.Load())
}

func TestRunner_WithIsolationBeforeStrategies(t *testing.T) {
	registry, counter := countingRegistry(t)
	w := noopWorkload("counted")
	w.FuncName = "count"
	w.SupportsSubinterpreters = true

	r := NewRunner(
		WithIsolation(&ThreadBased{Registry: registry}),
		WithStrategies(Subinterpreters{}),
	)
	payload, err := r.Run(context.Background(), 4, 2, []WorkloadSpec{w})
	require.NoError(t, err)

	sub := findStrategy(t, payload.Workloads[0], "subinterpreters")
	assert.True(t, sub.Supported)
	assert.Equal(t, int64(4), counter.Load())
}

func TestThreading_DefaultWorkloadsConcurrently(t *testing.T) {
	w := DefaultWorkloads()[0]
	w.Argument = 25

	elapsed, err := Threading{}.Run(context.Background(), w, 64, 8)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 0.0)
}

func TestFormatResult(t *testing.T) {
	t.Run("supported with duration", func(t *testing.T) {
		d := 2.0
		res := formatResult("threading", true, &d, 4.0, 10, "")
		require.NotNil(t, res.TasksPerSecond)
		assert.InDelta(t, 5.0, *res.TasksPerSecond, 1e-12)
		require.NotNil(t, res.SpeedupVsSequential)
		assert.InDelta(t, 2.0, *res.SpeedupVsSequential, 1e-12)
		assert.Nil(t, res.Reason)
	})

	t.Run("zero duration", func(t *testing.T) {
		d := 0.0
		res := formatResult("threading", true, &d, 4.0, 10, "")
		require.NotNil(t, res.Duration)
		assert.Nil(t, res.TasksPerSecond)
		assert.Nil(t, res.SpeedupVsSequential)
	})

	t.Run("zero baseline", func(t *testing.T) {
		d := 1.0
		res := formatResult("threading", true, &d, 0, 10, "")
		assert.NotNil(t, res.TasksPerSecond)
		assert.Nil(t, res.SpeedupVsSequential)
	})

	t.Run("unsupported", func(t *testing.T) {
		res := formatResult("process", false, nil, 4.0, 10, "nope")
		assert.False(t, res.Supported)
		assert.Nil(t, res.Duration)
		require.NotNil(t, res.Reason)
		assert.Equal(t, "nope", *res.Reason)
	})
}

func TestSplitWork(t *testing.T) {
	tests := []struct {
		amount, parts int
		want          []int
	}{
		{5, 2, []int{3, 2}},
		{24, 4, []int{6, 6, 6, 6}},
		{2, 4, []int{1, 1, 0, 0}},
		{0, 3, []int{0, 0, 0}},
		{7, 0, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitWork(tt.amount, tt.parts), "SplitWork(%d, %d)", tt.amount, tt.parts)
	}
}

func TestUnsupportedError(t *testing.T) {
	err := error(&UnsupportedError{Reason: "no threads here"})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.EqualError(t, err, "no threads here")
}

package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilbench/gilbench/internal/models"
)

func writeFile(t *testing.T, dir, name string, v any) {
	t.Helper()
	var data []byte
	switch val := v.(type) {
	case string:
		data = []byte(val)
	default:
		var err error
		data, err = json.MarshalIndent(val, "", "  ")
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func microPayload(impl, version string, cases map[string]float64) map[string]any {
	var cs []map[string]any
	for name, mean := range cases {
		cs = append(cs, map[string]any{"name": name, "runs": []float64{mean}, "mean": mean, "stdev": 0.1})
	}
	return map[string]any{
		"python_implementation": impl,
		"python_version":        version,
		"iterations":            10,
		"repeat":                5,
		"cases":                 cs,
	}
}

func TestSummarize_Micro(t *testing.T) {
	dir := t.TempDir()
	// File names sort differently from runtime order.
	writeFile(t, dir, "benchmarks-a.json", microPayload("CPython", "3.14.0t", map[string]float64{"fibonacci_40": 0.5}))
	writeFile(t, dir, "benchmarks-b.json", microPayload("CPython", "3.14.0", map[string]float64{"fibonacci_40": 1.0}))
	writeFile(t, dir, "benchmarks-c.json", microPayload("CPython", "3.12.1", map[string]float64{"fibonacci_40": 2.0}))

	res, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	require.NotNil(t, res)

	s := res.Micro
	require.NotNil(t, s)
	assert.Equal(t, []string{"3.12.1", "3.14.0", "3.14.0t"}, s.Versions)
	assert.Equal(t, []string{"CPython", "CPython", "CPython"}, s.Implementations)
	require.Len(t, s.Cases, 1)

	rows := s.Cases[0].Results
	require.Len(t, rows, 3)
	for i, want := range []float64{2.0, 1.0, 0.5} {
		require.NotNil(t, rows[i].RelativeToBaseline)
		assert.InDelta(t, want, *rows[i].RelativeToBaseline, 1e-12)
	}

	want := strings.Join([]string{
		"Aggregate benchmark results (mean ± stdev seconds per run):",
		"- fibonacci_40",
		"    CPython 3.12.1 (10 iterations, 5 repeats): 2.000000s ± 0.100000s total [2.00x slower vs CPython 3.14]",
		"    CPython 3.14.0 (10 iterations, 5 repeats): 1.000000s ± 0.100000s total [on par with CPython 3.14]",
		"    CPython 3.14.0t (10 iterations, 5 repeats): 0.500000s ± 0.100000s total [2.00x faster vs CPython 3.14]",
	}, "\n")
	assert.Equal(t, want, res.Text())

	_, err = os.Stat(filepath.Join(dir, models.SummaryFileName))
	require.NoError(t, err)
}

func TestSummarize_MicroZeroIterations(t *testing.T) {
	dir := t.TempDir()
	payload := microPayload("CPython", "3.14.0", map[string]float64{"fibonacci_40": 1.0})
	payload["iterations"] = 0
	writeFile(t, dir, "benchmarks-zero.json", payload)

	res, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Micro.Cases, 1)
	assert.Contains(t, res.Text(), "CPython 3.14.0 (0 iterations, 5 repeats): 1.000000s")
}

func TestSummarize_MicroIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmarks-cpython-3.14.0.json", microPayload("CPython", "3.14.0", map[string]float64{"x": 1.0}))
	writeFile(t, dir, "benchmarks-cpython-3.13.2.json", microPayload("CPython", "3.13.2", map[string]float64{"x": 1.2}))

	_, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, models.SummaryFileName))
	require.NoError(t, err)

	_, err = Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, models.SummaryFileName))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSummarize_MicroCaseOrderAndMissingData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmarks-1.json", `{"python_implementation": "CPython", "python_version": "3.12.0",
		"iterations": 10, "repeat": 5,
		"cases": [{"name": "b_case", "mean": 1.0, "stdev": 0.0}, {"name": "a_case", "mean": 2.0, "stdev": 0.0}]}`)
	writeFile(t, dir, "benchmarks-2.json", `{"python_implementation": "CPython", "python_version": "3.13.0",
		"cases": [{"name": "c_case", "mean": 3.0}]}`)

	res, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)

	var names []string
	for _, c := range res.Micro.Cases {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"b_case", "a_case", "c_case"}, names)

	text := res.Text()
	assert.Contains(t, text, "    CPython 3.13.0: no data")
	assert.Contains(t, text, "    CPython 3.13.0: 3.000000s ± n/a total")
	assert.Contains(t, text, "    CPython 3.12.0: no data")
	assert.NotContains(t, text, "[", "no baseline means no annotation")
}

func TestSummarize_MicroUnknownRuntime(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmarks-x.json", `{"cases": [{"name": "x", "mean": 1.0, "stdev": 0.0}]}`)

	res, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown"}, res.Micro.Versions)
	assert.Equal(t, []string{"unknown"}, res.Micro.Implementations)
	assert.Nil(t, res.Micro.Cases[0].Results[0].Iterations)
	assert.Contains(t, res.Text(), "    unknown unknown: 1.000000s ± 0.000000s total")
}

func TestSummarize_SkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmarks-broken.json", "{not json")
	writeFile(t, dir, "benchmarks-badschema.json", `{"cases": "nope"}`)
	writeFile(t, dir, "benchmarks-good.json", microPayload("CPython", "3.14.0", map[string]float64{"x": 1.0}))
	writeFile(t, dir, "other.json", microPayload("PyPy", "7.3.17", map[string]float64{"x": 1.0}))

	res, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"3.14.0"}, res.Micro.Versions)
}

func TestSummarize_EmptyDir(t *testing.T) {
	for _, suite := range []models.Suite{models.SuiteMicro, models.SuiteConcurrency} {
		t.Run(string(suite), func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "benchmarks-broken.json", "nope")

			res, err := Summarize(dir, suite, DefaultBaseline)
			require.NoError(t, err)
			assert.Nil(t, res)

			_, err = os.Stat(filepath.Join(dir, models.SummaryFileName))
			assert.True(t, os.IsNotExist(err), "summary.json must not be written")
		})
	}
}

func TestSummarize_UnknownSuite(t *testing.T) {
	_, err := Summarize(t.TempDir(), models.Suite("macro"), DefaultBaseline)
	require.Error(t, err)
}

func TestBaselineMean(t *testing.T) {
	row := func(impl, version string, mean *float64) models.MicroRow {
		return models.MicroRow{Implementation: impl, Version: version, Mean: mean}
	}
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		rows []models.MicroRow
		want *float64
	}{
		{
			name: "prefers standard build",
			rows: []models.MicroRow{row("CPython", "3.14.0t", f(0.5)), row("CPython", "3.14.0", f(1.0))},
			want: f(1.0),
		},
		{
			name: "falls back to thread-free build",
			rows: []models.MicroRow{row("CPython", "3.13.1", f(2.0)), row("CPython", "3.14.0t", f(0.5))},
			want: f(0.5),
		},
		{
			name: "skips rows without a mean",
			rows: []models.MicroRow{row("CPython", "3.14.0", nil), row("CPython", "3.14.1", f(3.0))},
			want: f(3.0),
		},
		{
			name: "implementation must match",
			rows: []models.MicroRow{row("PyPy", "3.14.0", f(1.0))},
			want: nil,
		},
		{
			name: "no rows",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := baselineMean(tt.rows, DefaultBaseline)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestBaselineZeroMeanYieldsNoRatio(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmarks-a.json", microPayload("CPython", "3.14.0", map[string]float64{"x": 0}))
	writeFile(t, dir, "benchmarks-b.json", microPayload("CPython", "3.12.0", map[string]float64{"x": 1}))

	res, err := Summarize(dir, models.SuiteMicro, DefaultBaseline)
	require.NoError(t, err)
	for _, r := range res.Micro.Cases[0].Results {
		assert.Nil(t, r.RelativeToBaseline)
	}
}

func TestCustomBaseline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "benchmarks-go-1.25.0.json", microPayload("Go", "1.25.0", map[string]float64{"x": 1.0}))
	writeFile(t, dir, "benchmarks-go-1.26.0.json", microPayload("Go", "1.26.0", map[string]float64{"x": 4.0}))

	res, err := Summarize(dir, models.SuiteMicro, models.BaselineRef{Implementation: "Go", VersionPrefix: "1.26"})
	require.NoError(t, err)
	assert.Contains(t, res.Text(), "    Go 1.25.0 (10 iterations, 5 repeats): 1.000000s ± 0.100000s total [4.00x faster vs Go 1.26]")
}

func TestFormatRelative(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		relative *float64
		want     string
	}{
		{nil, ""},
		{f(1.0), " [on par with CPython 3.14]"},
		{f(1.019), " [on par with CPython 3.14]"},
		{f(0.981), " [on par with CPython 3.14]"},
		{f(0.5), " [2.00x faster vs CPython 3.14]"},
		{f(1.5), " [1.50x slower vs CPython 3.14]"},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.relative != nil {
			name = fmt.Sprintf("%v", *tt.relative)
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelative(tt.relative, "CPython 3.14"))
		})
	}
}

func TestFormatMicro_Empty(t *testing.T) {
	out := FormatMicro(&models.MicroSummary{Baseline: DefaultBaseline})
	assert.Equal(t, "Aggregate benchmark results (mean ± stdev seconds per run):\n(no benchmark cases found)", out)
}

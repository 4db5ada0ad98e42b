package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilbench/gilbench/internal/aggregate"
	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/utils"
)

func concurrencyResult() *aggregate.Result {
	return &aggregate.Result{
		Suite: models.SuiteConcurrency,
		Concurrency: &models.ConcurrencySummary{
			Suite: models.SuiteConcurrency,
			Workloads: []models.WorkloadSummary{
				{
					Name:        "cpu_bound_fibonacci",
					Category:    utils.Ptr("cpu"),
					Description: utils.Ptr("Iterative Fibonacci."),
					Results: []models.ConcurrencyRow{
						{
							Runtime: models.Runtime{Implementation: "CPython", Version: "3.14.0t", GILDisabled: utils.Ptr(true)},
							Strategies: []models.StrategyResult{
								{Name: "sequential", Supported: true, Duration: utils.Ptr(2.0), TasksPerSecond: utils.Ptr(12.0), SpeedupVsSequential: utils.Ptr(1.0)},
								{Name: "subinterpreters", Supported: false, Reason: utils.Ptr("isolation primitive unavailable")},
							},
						},
						{
							Runtime:    models.Runtime{Implementation: "CPython", Version: "3.12.1"},
							Strategies: []models.StrategyResult{},
						},
					},
				},
			},
		},
	}
}

func TestFormatMarkdown_Concurrency(t *testing.T) {
	md := FormatMarkdown(concurrencyResult())

	assert.True(t, strings.HasPrefix(md, "## Concurrency benchmarks\n"))
	assert.Contains(t, md, "### cpu_bound_fibonacci\n\nIterative Fibonacci.\n")
	assert.Contains(t, md, "| CPython 3.14.0t (GIL disabled) | sequential | 2.000000 | 12.00 | 1.00x |  |")
	assert.Contains(t, md, "| CPython 3.14.0t (GIL disabled) | subinterpreters | n/a | n/a | n/a | unsupported: isolation primitive unavailable |")
	assert.Contains(t, md, "| CPython 3.12.1 | - | - | - | - | no strategy data |")
}

func TestFormatMarkdown_EmptyMicro(t *testing.T) {
	md := FormatMarkdown(&aggregate.Result{
		Suite: models.SuiteMicro,
		Micro: &models.MicroSummary{Baseline: aggregate.DefaultBaseline},
	})
	assert.Contains(t, md, "Baseline: **CPython 3.14**")
	assert.Contains(t, md, "_No benchmark cases found._")
}

func TestFormatHTML_Concurrency(t *testing.T) {
	html, err := FormatHTML(concurrencyResult())
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Concurrency benchmarks</h2>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>subinterpreters</td>")
}

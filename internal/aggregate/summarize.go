// Package aggregate merges per-runtime result files into one summary and
// renders it as text.
package aggregate

import (
	"fmt"
	"path/filepath"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/utils"
)

// DefaultBaseline is the runtime micro ratios are computed against.
var DefaultBaseline = models.BaselineRef{Implementation: "CPython", VersionPrefix: "3.14"}

// Result is an aggregated suite. Exactly one of Micro and Concurrency is set.
type Result struct {
	Suite       models.Suite
	Micro       *models.MicroSummary
	Concurrency *models.ConcurrencySummary
}

// Summary returns the value serialized to summary.json.
func (r *Result) Summary() any {
	if r.Micro != nil {
		return r.Micro
	}
	return r.Concurrency
}

// Text renders the plain-text report.
func (r *Result) Text() string {
	if r.Micro != nil {
		return FormatMicro(r.Micro)
	}
	return FormatConcurrency(r.Concurrency)
}

// Runtimes lists the aggregated runtimes in report order.
func (r *Result) Runtimes() []models.Runtime {
	if r.Micro != nil {
		return r.Micro.Runtimes
	}
	return r.Concurrency.Runtimes
}

// Build aggregates the suite's result files in dir without writing anything.
// It returns nil when dir holds no valid result files.
func Build(dir string, suite models.Suite, baseline models.BaselineRef) (*Result, error) {
	switch suite {
	case models.SuiteMicro:
		files, err := loadMicroFiles(dir)
		if err != nil || len(files) == 0 {
			return nil, err
		}
		sortMicroFiles(files)
		return &Result{Suite: suite, Micro: aggregateMicro(files, baseline)}, nil
	case models.SuiteConcurrency:
		files, err := loadConcurrencyFiles(dir)
		if err != nil || len(files) == 0 {
			return nil, err
		}
		sortConcurrencyFiles(files)
		return &Result{Suite: suite, Concurrency: aggregateConcurrency(files)}, nil
	}
	return nil, fmt.Errorf("unsupported benchmark suite %q", suite)
}

// Summarize aggregates dir and writes summary.json next to the result files.
// It returns nil and writes nothing when dir holds no valid result files.
func Summarize(dir string, suite models.Suite, baseline models.BaselineRef) (*Result, error) {
	res, err := Build(dir, suite, baseline)
	if err != nil || res == nil {
		return nil, err
	}
	if err := utils.WriteJSON(filepath.Join(dir, models.SummaryFileName), res.Summary()); err != nil {
		return nil, err
	}
	return res, nil
}

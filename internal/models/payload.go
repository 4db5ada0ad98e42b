package models

// The JSON key names below are shared with result files written by other
// harness builds, so they keep the python_* spelling regardless of which
// runtime produced the file.

// MicroCase is one timed case of the micro suite.
type MicroCase struct {
	Name              string    `json:"name"`
	Runs              []float64 `json:"runs"`
	Mean              float64   `json:"mean"`
	Stdev             float64   `json:"stdev"`
	PerIterationMean  float64   `json:"per_iteration_mean"`
	PerIterationStdev float64   `json:"per_iteration_stdev"`
}

// MicroPayload is the on-disk result of one micro suite run.
type MicroPayload struct {
	Implementation string      `json:"python_implementation"`
	Version        string      `json:"python_version"`
	Iterations     int         `json:"iterations"`
	Repeat         int         `json:"repeat"`
	Cases          []MicroCase `json:"cases"`
}

// StrategyResult is the outcome of running one workload under one strategy.
// Optional values are nil when the strategy did not run or produced no
// positive duration.
type StrategyResult struct {
	Name                string   `json:"name"`
	Supported           bool     `json:"supported"`
	Duration            *float64 `json:"duration"`
	TasksPerSecond      *float64 `json:"tasks_per_second"`
	SpeedupVsSequential *float64 `json:"speedup_vs_sequential"`
	Reason              *string  `json:"reason"`
}

// WorkloadResult groups the strategy results of one workload, sequential first.
type WorkloadResult struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Strategies  []StrategyResult `json:"strategies"`
}

// RunMetadata describes the runtime a concurrency run executed on.
// GILDisabled is nil when the runtime could not tell.
type RunMetadata struct {
	Implementation string `json:"python_implementation"`
	Version        string `json:"python_version"`
	Tasks          int    `json:"tasks"`
	Workers        int    `json:"workers"`
	GILDisabled    *bool  `json:"gil_disabled"`
}

// ConcurrencyPayload is the on-disk result of one concurrency suite run.
type ConcurrencyPayload struct {
	Metadata  RunMetadata      `json:"metadata"`
	Workloads []WorkloadResult `json:"workloads"`
}

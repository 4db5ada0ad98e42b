package models

// Runtime identifies one interpreter/runtime build in an aggregated summary.
type Runtime struct {
	Implementation string `json:"python_implementation"`
	Version        string `json:"python_version"`
	Tasks          *int   `json:"tasks,omitempty"`
	Workers        *int   `json:"workers,omitempty"`
	GILDisabled    *bool  `json:"gil_disabled,omitempty"`
}

// BaselineRef names the runtime build relative ratios are computed against.
type BaselineRef struct {
	Implementation string `json:"python_implementation"`
	VersionPrefix  string `json:"version_prefix"`
}

// Label is the human-readable form used in report annotations.
func (b BaselineRef) Label() string {
	return b.Implementation + " " + b.VersionPrefix
}

// MicroRow is one runtime's numbers for a single micro case.
type MicroRow struct {
	Implementation     string   `json:"python_implementation"`
	Version            string   `json:"python_version"`
	Iterations         *int     `json:"iterations"`
	Repeat             *int     `json:"repeat"`
	Mean               *float64 `json:"mean"`
	Stdev              *float64 `json:"stdev"`
	RelativeToBaseline *float64 `json:"relative_to_baseline"`
}

// MicroCaseSummary holds all runtime rows of one micro case.
type MicroCaseSummary struct {
	Name    string     `json:"name"`
	Results []MicroRow `json:"results"`
}

// MicroSummary is the aggregated micro suite written to summary.json.
type MicroSummary struct {
	Suite           Suite              `json:"suite"`
	Baseline        BaselineRef        `json:"baseline"`
	Versions        []string           `json:"python_versions"`
	Implementations []string           `json:"python_implementations"`
	Runtimes        []Runtime          `json:"python_runtimes"`
	Cases           []MicroCaseSummary `json:"cases"`
}

// ConcurrencyRow is one runtime's strategy list for a single workload.
type ConcurrencyRow struct {
	Runtime
	Strategies []StrategyResult `json:"strategies"`
}

// WorkloadSummary holds all runtime rows of one concurrency workload.
type WorkloadSummary struct {
	Name        string           `json:"name"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Results     []ConcurrencyRow `json:"results"`
}

// ConcurrencySummary is the aggregated concurrency suite written to summary.json.
type ConcurrencySummary struct {
	Suite           Suite             `json:"suite"`
	Versions        []string          `json:"python_versions"`
	Implementations []string          `json:"python_implementations"`
	Runtimes        []Runtime         `json:"python_runtimes"`
	Workloads       []WorkloadSummary `json:"workloads"`
}

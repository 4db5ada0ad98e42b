package models

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks caller errors such as non-positive counts or an
// empty workload list. These are never retried.
var ErrInvalidArgument = errors.New("invalid argument")

// Suite names a family of benchmarks that share one result-file schema.
type Suite string

const (
	SuiteMicro       Suite = "micro"
	SuiteConcurrency Suite = "concurrency"
)

// SummaryFileName is the sidecar written next to the per-run result files.
const SummaryFileName = "summary.json"

// ParseSuite converts a CLI/config value into a Suite.
func ParseSuite(s string) (Suite, error) {
	switch Suite(s) {
	case SuiteMicro, SuiteConcurrency:
		return Suite(s), nil
	}
	return "", fmt.Errorf("unsupported benchmark suite %q", s)
}

// Pattern returns the glob that matches this suite's result files.
func (s Suite) Pattern() string {
	switch s {
	case SuiteConcurrency:
		return "concurrency-*.json"
	default:
		return "benchmarks-*.json"
	}
}

// Subcommand returns the gilbench subcommand that produces this suite's results.
func (s Suite) Subcommand() string {
	return string(s)
}

package aggregate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/validation"
)

const unknown = "unknown"

// Result files are decoded loosely: any key may be absent or null.

type microFile struct {
	Implementation *string         `json:"python_implementation"`
	Version        *string         `json:"python_version"`
	Iterations     *int            `json:"iterations"`
	Repeat         *int            `json:"repeat"`
	Cases          []microFileCase `json:"cases"`
}

type microFileCase struct {
	Name  *string  `json:"name"`
	Mean  *float64 `json:"mean"`
	Stdev *float64 `json:"stdev"`
}

type concurrencyFile struct {
	Metadata struct {
		Implementation *string `json:"python_implementation"`
		Version        *string `json:"python_version"`
		Tasks          *int    `json:"tasks"`
		Workers        *int    `json:"workers"`
		GILDisabled    *bool   `json:"gil_disabled"`
	} `json:"metadata"`
	Workloads []concurrencyFileWorkload `json:"workloads"`
}

type concurrencyFileWorkload struct {
	Name        *string                 `json:"name"`
	Category    *string                 `json:"category"`
	Description *string                 `json:"description"`
	Strategies  []models.StrategyResult `json:"strategies"`
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// listResultFiles returns the suite's result files in dir in sorted order.
func listResultFiles(dir string, suite models.Suite) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, suite.Pattern()))
	if err != nil {
		return nil, fmt.Errorf("listing %s results: %w", suite, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// readResultFile reads and validates one result file and decodes it into v.
func readResultFile(suite models.Suite, path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if errs := validation.ValidateResultBytes(suite, data); len(errs) > 0 {
		return fmt.Errorf("invalid %s result: %s", suite, strings.Join(errs, "; "))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s result: %w", suite, err)
	}
	return nil
}

func loadMicroFiles(dir string) ([]microFile, error) {
	paths, err := listResultFiles(dir, models.SuiteMicro)
	if err != nil {
		return nil, err
	}

	var files []microFile
	for _, path := range paths {
		var f microFile
		if err := readResultFile(models.SuiteMicro, path, &f); err != nil {
			slog.Warn("Skipping benchmark output", "path", path, "error", err)
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func loadConcurrencyFiles(dir string) ([]concurrencyFile, error) {
	paths, err := listResultFiles(dir, models.SuiteConcurrency)
	if err != nil {
		return nil, err
	}

	var files []concurrencyFile
	for _, path := range paths {
		var f concurrencyFile
		if err := readResultFile(models.SuiteConcurrency, path, &f); err != nil {
			slog.Warn("Skipping concurrency output", "path", path, "error", err)
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

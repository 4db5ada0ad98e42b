package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/utils"
)

func sortMicroFiles(files []microFile) {
	slices.SortStableFunc(files, func(a, b microFile) int {
		if c := cmp.Compare(deref(a.Implementation, ""), deref(b.Implementation, "")); c != 0 {
			return c
		}
		return CompareVersions(deref(a.Version, ""), deref(b.Version, ""))
	})
}

func aggregateMicro(files []microFile, baseline models.BaselineRef) *models.MicroSummary {
	var caseOrder []string
	seen := make(map[string]bool)
	for _, f := range files {
		for _, c := range f.Cases {
			if c.Name == nil || *c.Name == "" || seen[*c.Name] {
				continue
			}
			seen[*c.Name] = true
			caseOrder = append(caseOrder, *c.Name)
		}
	}

	summary := &models.MicroSummary{
		Suite:           models.SuiteMicro,
		Baseline:        baseline,
		Versions:        make([]string, 0, len(files)),
		Implementations: make([]string, 0, len(files)),
		Runtimes:        make([]models.Runtime, 0, len(files)),
		Cases:           make([]models.MicroCaseSummary, 0, len(caseOrder)),
	}
	for _, f := range files {
		impl, version := deref(f.Implementation, unknown), deref(f.Version, unknown)
		summary.Versions = append(summary.Versions, version)
		summary.Implementations = append(summary.Implementations, impl)
		summary.Runtimes = append(summary.Runtimes, models.Runtime{Implementation: impl, Version: version})
	}

	for _, name := range caseOrder {
		rows := make([]models.MicroRow, 0, len(files))
		for _, f := range files {
			row := models.MicroRow{
				Implementation: deref(f.Implementation, unknown),
				Version:        deref(f.Version, unknown),
				Iterations:     f.Iterations,
				Repeat:         f.Repeat,
			}
			if c := findCase(f.Cases, name); c != nil {
				row.Mean = c.Mean
				row.Stdev = c.Stdev
			}
			rows = append(rows, row)
		}

		if base := baselineMean(rows, baseline); base != nil && *base > 0 {
			for i := range rows {
				if rows[i].Mean != nil {
					rows[i].RelativeToBaseline = utils.Ptr(*rows[i].Mean / *base)
				}
			}
		}
		summary.Cases = append(summary.Cases, models.MicroCaseSummary{Name: name, Results: rows})
	}
	return summary
}

func findCase(cases []microFileCase, name string) *microFileCase {
	for i := range cases {
		if cases[i].Name != nil && *cases[i].Name == name {
			return &cases[i]
		}
	}
	return nil
}

// baselineMean picks the mean of the first row matching the baseline
// runtime, preferring standard builds over thread-free ones. Rows are
// already in runtime order.
func baselineMean(rows []models.MicroRow, baseline models.BaselineRef) *float64 {
	var candidates []models.MicroRow
	for _, r := range rows {
		if r.Implementation == baseline.Implementation &&
			strings.HasPrefix(r.Version, baseline.VersionPrefix) &&
			r.Mean != nil {
			candidates = append(candidates, r)
		}
	}
	for _, r := range candidates {
		if !IsThreadFree(r.Version) {
			return r.Mean
		}
	}
	if len(candidates) > 0 {
		return candidates[0].Mean
	}
	return nil
}

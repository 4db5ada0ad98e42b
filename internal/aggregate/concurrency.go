package aggregate

import (
	"cmp"
	"slices"

	"github.com/gilbench/gilbench/internal/models"
)

func sortConcurrencyFiles(files []concurrencyFile) {
	slices.SortStableFunc(files, func(a, b concurrencyFile) int {
		am, bm := a.Metadata, b.Metadata
		if c := cmp.Compare(deref(am.Implementation, ""), deref(bm.Implementation, "")); c != 0 {
			return c
		}
		av, bv := deref(am.Version, ""), deref(bm.Version, "")
		if c := CompareVersions(av, bv); c != 0 {
			return c
		}
		return cmp.Compare(gilRank(am.GILDisabled), gilRank(bm.GILDisabled))
	})
}

func aggregateConcurrency(files []concurrencyFile) *models.ConcurrencySummary {
	type workloadMeta struct {
		category    *string
		description *string
	}
	var order []string
	meta := make(map[string]workloadMeta)
	for _, f := range files {
		for _, w := range f.Workloads {
			if w.Name == nil || *w.Name == "" {
				continue
			}
			if _, ok := meta[*w.Name]; ok {
				continue
			}
			order = append(order, *w.Name)
			meta[*w.Name] = workloadMeta{category: w.Category, description: w.Description}
		}
	}

	summary := &models.ConcurrencySummary{
		Suite:           models.SuiteConcurrency,
		Versions:        make([]string, 0, len(files)),
		Implementations: make([]string, 0, len(files)),
		Runtimes:        make([]models.Runtime, 0, len(files)),
		Workloads:       make([]models.WorkloadSummary, 0, len(order)),
	}
	for _, f := range files {
		rt := models.Runtime{
			Implementation: deref(f.Metadata.Implementation, unknown),
			Version:        deref(f.Metadata.Version, unknown),
			Tasks:          f.Metadata.Tasks,
			Workers:        f.Metadata.Workers,
			GILDisabled:    f.Metadata.GILDisabled,
		}
		summary.Versions = append(summary.Versions, rt.Version)
		summary.Implementations = append(summary.Implementations, rt.Implementation)
		summary.Runtimes = append(summary.Runtimes, rt)
	}

	for _, name := range order {
		ws := models.WorkloadSummary{
			Name:        name,
			Category:    meta[name].category,
			Description: meta[name].description,
			Results:     make([]models.ConcurrencyRow, 0, len(files)),
		}
		for i, f := range files {
			row := models.ConcurrencyRow{
				Runtime:    summary.Runtimes[i],
				Strategies: []models.StrategyResult{},
			}
			if w := findWorkload(f.Workloads, name); w != nil && w.Strategies != nil {
				row.Strategies = w.Strategies
			}
			ws.Results = append(ws.Results, row)
		}
		summary.Workloads = append(summary.Workloads, ws)
	}
	return summary
}

func findWorkload(workloads []concurrencyFileWorkload, name string) *concurrencyFileWorkload {
	for i := range workloads {
		if workloads[i].Name != nil && *workloads[i].Name == name {
			return &workloads[i]
		}
	}
	return nil
}

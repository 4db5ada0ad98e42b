package aggregate

import (
	"fmt"
	"strings"

	"github.com/gilbench/gilbench/internal/metrics"
	"github.com/gilbench/gilbench/internal/models"
)

// relativeTolerance is the ratio band reported as "on par".
const relativeTolerance = 0.02

// FormatRelative renders a ratio against the baseline as a bracketed
// annotation. A nil ratio renders as the empty string.
func FormatRelative(relative *float64, label string) string {
	if relative == nil {
		return ""
	}
	r := *relative
	switch {
	case metrics.IsClose(r, 1.0, relativeTolerance):
		return fmt.Sprintf(" [on par with %s]", label)
	case r < 1.0:
		return fmt.Sprintf(" [%.2fx faster vs %s]", 1/r, label)
	default:
		return fmt.Sprintf(" [%.2fx slower vs %s]", r, label)
	}
}

// FormatMicro renders the micro summary as the plain-text report.
func FormatMicro(s *models.MicroSummary) string {
	lines := []string{"Aggregate benchmark results (mean ± stdev seconds per run):"}
	label := s.Baseline.Label()
	for _, c := range s.Cases {
		lines = append(lines, "- "+c.Name)
		for _, row := range c.Results {
			if row.Mean == nil {
				lines = append(lines, fmt.Sprintf("    %s %s: no data", row.Implementation, row.Version))
				continue
			}
			var meta []string
			if row.Iterations != nil {
				meta = append(meta, fmt.Sprintf("%d iterations", *row.Iterations))
			}
			if row.Repeat != nil {
				meta = append(meta, fmt.Sprintf("%d repeats", *row.Repeat))
			}
			metaText := ""
			if len(meta) > 0 {
				metaText = " (" + strings.Join(meta, ", ") + ")"
			}
			stdev := "n/a"
			if row.Stdev != nil {
				stdev = fmt.Sprintf("%.6fs", *row.Stdev)
			}
			lines = append(lines, fmt.Sprintf("    %s %s%s: %.6fs ± %s total%s",
				row.Implementation, row.Version, metaText, *row.Mean, stdev,
				FormatRelative(row.RelativeToBaseline, label)))
		}
	}
	if len(s.Cases) == 0 {
		lines = append(lines, "(no benchmark cases found)")
	}
	return strings.Join(lines, "\n")
}

// FormatConcurrency renders the concurrency summary as the plain-text report.
func FormatConcurrency(s *models.ConcurrencySummary) string {
	lines := []string{"Aggregate concurrency benchmark results:"}
	for _, w := range s.Workloads {
		header := "- " + w.Name
		if w.Category != nil && *w.Category != "" {
			header += " [" + *w.Category + "]"
		}
		lines = append(lines, header)
		if w.Description != nil && *w.Description != "" {
			lines = append(lines, "    "+*w.Description)
		}

		for _, row := range w.Results {
			lines = append(lines, runtimeLabel(row.Runtime)+":")
			if len(row.Strategies) == 0 {
				lines = append(lines, "        (no strategy data)")
				continue
			}
			for _, st := range row.Strategies {
				lines = append(lines, "        "+strategyLine(st))
			}
		}
	}
	if len(s.Workloads) == 0 {
		lines = append(lines, "(no concurrency benchmark workloads found)")
	}
	return strings.Join(lines, "\n")
}

func runtimeLabel(rt models.Runtime) string {
	label := fmt.Sprintf("    %s %s", rt.Implementation, rt.Version)
	if rt.GILDisabled != nil {
		if *rt.GILDisabled {
			label += " [GIL disabled]"
		} else {
			label += " [GIL enabled]"
		}
	}
	var meta []string
	if rt.Tasks != nil {
		meta = append(meta, fmt.Sprintf("%d tasks", *rt.Tasks))
	}
	if rt.Workers != nil {
		meta = append(meta, fmt.Sprintf("%d workers", *rt.Workers))
	}
	if len(meta) > 0 {
		label += " (" + strings.Join(meta, ", ") + ")"
	}
	return label
}

func strategyLine(st models.StrategyResult) string {
	name := st.Name
	if name == "" {
		name = unknown
	}
	if !st.Supported {
		if st.Reason != nil && *st.Reason != "" {
			return fmt.Sprintf("%s: unsupported (%s)", name, *st.Reason)
		}
		return name + ": unsupported"
	}

	var parts []string
	if st.Duration != nil {
		parts = append(parts, fmt.Sprintf("%.6fs total", *st.Duration))
	}
	if st.TasksPerSecond != nil {
		parts = append(parts, fmt.Sprintf("%.2f tasks/s", *st.TasksPerSecond))
	}
	if st.SpeedupVsSequential != nil {
		parts = append(parts, fmt.Sprintf("%.2fx vs sequential", *st.SpeedupVsSequential))
	}
	if len(parts) == 0 {
		return name + ": supported (no metrics recorded)"
	}
	return name + ": " + strings.Join(parts, ", ")
}

package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gilbench/gilbench/internal/aggregate"
	"github.com/gilbench/gilbench/internal/models"
)

// FormatMarkdown renders an aggregated suite as markdown tables, one per
// micro case or concurrency workload.
func FormatMarkdown(res *aggregate.Result) string {
	if res.Micro != nil {
		return formatMicroMarkdown(res.Micro)
	}
	return formatConcurrencyMarkdown(res.Concurrency)
}

func formatMicroMarkdown(s *models.MicroSummary) string {
	var b strings.Builder
	b.WriteString("## Micro benchmarks\n\n")
	b.WriteString(fmt.Sprintf("Baseline: **%s**\n\n", s.Baseline.Label()))

	for _, c := range s.Cases {
		b.WriteString(fmt.Sprintf("### %s\n\n", c.Name))
		b.WriteString("| Runtime | Mean (s) | Stdev (s) | vs baseline |\n")
		b.WriteString("|---------|----------|-----------|-------------|\n")
		for _, row := range c.Results {
			b.WriteString(fmt.Sprintf("| %s %s | %s | %s | %s |\n",
				row.Implementation, row.Version,
				optSeconds(row.Mean), optSeconds(row.Stdev), optRatio(row.RelativeToBaseline)))
		}
		b.WriteString("\n")
	}
	if len(s.Cases) == 0 {
		b.WriteString("_No benchmark cases found._\n")
	}
	return b.String()
}

func formatConcurrencyMarkdown(s *models.ConcurrencySummary) string {
	var b strings.Builder
	b.WriteString("## Concurrency benchmarks\n\n")

	for _, w := range s.Workloads {
		b.WriteString(fmt.Sprintf("### %s\n\n", w.Name))
		if w.Description != nil && *w.Description != "" {
			b.WriteString(*w.Description + "\n\n")
		}
		b.WriteString("| Runtime | Strategy | Duration (s) | Tasks/s | Speedup | Notes |\n")
		b.WriteString("|---------|----------|--------------|---------|---------|-------|\n")
		for _, row := range w.Results {
			label := markdownRuntime(row.Runtime)
			if len(row.Strategies) == 0 {
				b.WriteString(fmt.Sprintf("| %s | - | - | - | - | no strategy data |\n", label))
				continue
			}
			for _, st := range row.Strategies {
				notes := ""
				if !st.Supported {
					notes = "unsupported"
					if st.Reason != nil && *st.Reason != "" {
						notes += ": " + *st.Reason
					}
				}
				b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
					label, st.Name, optSeconds(st.Duration), optFixed(st.TasksPerSecond),
					optRatio(st.SpeedupVsSequential), notes))
			}
		}
		b.WriteString("\n")
	}
	if len(s.Workloads) == 0 {
		b.WriteString("_No concurrency workloads found._\n")
	}
	return b.String()
}

// FormatHTML renders the markdown report as an HTML fragment.
func FormatHTML(res *aggregate.Result) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(res)), &buf); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.String(), nil
}

func markdownRuntime(rt models.Runtime) string {
	label := rt.Implementation + " " + rt.Version
	if rt.GILDisabled != nil {
		if *rt.GILDisabled {
			label += " (GIL disabled)"
		} else {
			label += " (GIL enabled)"
		}
	}
	return label
}

func optSeconds(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", *v)
}

func optFixed(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func optRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", *v)
}

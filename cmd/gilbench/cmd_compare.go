package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/reporting"
	"github.com/gilbench/gilbench/internal/statistics"
	"github.com/gilbench/gilbench/internal/utils"
	"github.com/gilbench/gilbench/internal/validation"
)

var (
	compareOutputFormat string
	compareSeed         int64
	compareJUnitPath    string
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <result1.json> <result2.json> [result3.json ...]",
		Short: "Compare micro benchmark result files",
		Long: `Compare micro results from two or more runs side by side.

For each case the mean of every file is shown, together with the ratio of the
last file's mean to the first's and whether that difference is significant
under a 95% bootstrap confidence interval over the per-run timings.`,
		Args: cobra.MinimumNArgs(2),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVarP(&compareOutputFormat, "format", "f", "table", "Output format: table or json")
	cmd.Flags().Int64Var(&compareSeed, "seed", 42, "Bootstrap seed (negative for a random seed)")
	cmd.Flags().StringVar(&compareJUnitPath, "junit", "", "Also write a JUnit XML report; significant slowdowns of the last file fail")

	return cmd
}

// caseComparison holds one case across all compared files.
type caseComparison struct {
	Name        string     `json:"name"`
	Means       []*float64 `json:"means"`
	Ratio       *float64   `json:"ratio"`
	Significant bool       `json:"significant"`
}

// comparisonReport is the full comparison output.
type comparisonReport struct {
	Files    []string         `json:"files"`
	Runtimes []string         `json:"runtimes"`
	Cases    []caseComparison `json:"cases"`
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	if compareOutputFormat != "table" && compareOutputFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", compareOutputFormat)
	}

	payloads := make([]*models.MicroPayload, 0, len(args))
	for _, path := range args {
		p, err := loadMicroPayload(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		payloads = append(payloads, p)
	}

	report := buildComparisonReport(args, payloads, compareSeed)
	if compareJUnitPath != "" {
		suites := reporting.ConvertComparison(report.Runtimes[0], report.Runtimes[len(report.Runtimes)-1],
			junitCases(report), time.Now())
		if err := reporting.WriteJUnitXML(suites, compareJUnitPath); err != nil {
			return err
		}
	}
	if compareOutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printComparisonTable(cmd.OutOrStdout(), report)
	return nil
}

func loadMicroPayload(path string) (*models.MicroPayload, error) {
	errs, err := validation.ValidateResultFile(models.SuiteMicro, path)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid micro result: %s", strings.Join(errs, "; "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p models.MicroPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func buildComparisonReport(files []string, payloads []*models.MicroPayload, seed int64) *comparisonReport {
	report := &comparisonReport{Files: files}
	for _, p := range payloads {
		report.Runtimes = append(report.Runtimes, p.Implementation+" "+p.Version)
	}

	var names []string
	seen := make(map[string]bool)
	for _, p := range payloads {
		for _, c := range p.Cases {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
	}

	for _, name := range names {
		cc := caseComparison{Name: name}
		cases := make([]*models.MicroCase, len(payloads))
		for i, p := range payloads {
			cases[i] = findMicroCase(p, name)
			if cases[i] != nil {
				cc.Means = append(cc.Means, utils.Ptr(cases[i].Mean))
			} else {
				cc.Means = append(cc.Means, nil)
			}
		}

		first, last := cases[0], cases[len(cases)-1]
		if first != nil && last != nil {
			cmp := statistics.CompareRuns(first.Runs, last.Runs, seed)
			if !math.IsNaN(cmp.Ratio) {
				cc.Ratio = utils.Ptr(cmp.Ratio)
			}
			cc.Significant = cmp.Significant
		}
		report.Cases = append(report.Cases, cc)
	}
	return report
}

func junitCases(r *comparisonReport) []reporting.CaseComparison {
	cases := make([]reporting.CaseComparison, 0, len(r.Cases))
	for _, c := range r.Cases {
		cases = append(cases, reporting.CaseComparison{
			Name:        c.Name,
			Reference:   c.Means[0],
			Candidate:   c.Means[len(c.Means)-1],
			Ratio:       c.Ratio,
			Significant: c.Significant,
		})
	}
	return cases
}

func findMicroCase(p *models.MicroPayload, name string) *models.MicroCase {
	for i := range p.Cases {
		if p.Cases[i].Name == name {
			return &p.Cases[i]
		}
	}
	return nil
}

func printComparisonTable(w io.Writer, r *comparisonReport) {
	header := []string{"Case"}
	header = append(header, r.Runtimes...)
	header = append(header, "Ratio", "Significant")

	rows := [][]string{header}
	for _, c := range r.Cases {
		row := []string{c.Name}
		for _, m := range c.Means {
			if m == nil {
				row = append(row, "n/a")
			} else {
				row = append(row, fmt.Sprintf("%.6fs", *m))
			}
		}
		ratio := "n/a"
		if c.Ratio != nil {
			ratio = fmt.Sprintf("%.2fx", *c.Ratio)
		}
		sig := "no"
		if c.Significant {
			sig = "yes"
		}
		rows = append(rows, append(row, ratio, sig))
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for i, f := range r.Files {
		fmt.Fprintf(w, "[%d] %s\n", i+1, f) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")) //nolint:errcheck
		if n == 0 {
			seps := make([]string, len(widths))
			for i, wd := range widths {
				seps[i] = strings.Repeat("-", wd)
			}
			fmt.Fprintln(w, strings.Join(seps, "  ")) //nolint:errcheck
		}
	}
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/aggregate"
	"github.com/gilbench/gilbench/internal/exporter"
	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/projectconfig"
)

var (
	reportSuite        string
	reportResultsDir   string
	reportFormat       string
	reportWatch        bool
	reportPromTextfile string
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate result files and print a report",
		Long: `Merge every result file of one suite in --results-dir into summary.json
and print the aggregated report as text, json, markdown or html.

With --watch the report is rebuilt whenever a result file in the directory
is created or rewritten. With --prom-textfile the aggregated numbers are also
written in the Prometheus text exposition format.`,
		Args: cobra.NoArgs,
		RunE: reportCommandE,
	}

	cmd.Flags().StringVar(&reportSuite, "suite", string(models.SuiteMicro), "Benchmark suite: micro or concurrency")
	cmd.Flags().StringVar(&reportResultsDir, "results-dir", "", "Directory holding result files (default: <results>/<suite>)")
	cmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "Output format: text, json, markdown or html")
	cmd.Flags().BoolVar(&reportWatch, "watch", false, "Rebuild the report when result files change")
	cmd.Flags().StringVar(&reportPromTextfile, "prom-textfile", "", "Also write metrics to this Prometheus textfile")

	return cmd
}

func reportCommandE(cmd *cobra.Command, _ []string) error {
	switch reportFormat {
	case "text", "json", "markdown", "html":
	default:
		return fmt.Errorf("unsupported format %q: must be text, json, markdown or html", reportFormat)
	}
	suite, err := models.ParseSuite(reportSuite)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := reportResultsDir
	if dir == "" {
		dir = cfg.ResultsDirFor(suite)
	}

	if err := writeReport(cmd.OutOrStdout(), cfg, dir, suite); err != nil {
		return err
	}
	if !reportWatch {
		return nil
	}
	return watchResults(cmd.Context(), dir, suite, func() error {
		return writeReport(cmd.OutOrStdout(), cfg, dir, suite)
	})
}

func writeReport(w io.Writer, cfg *projectconfig.ProjectConfig, dir string, suite models.Suite) error {
	res, err := aggregate.Summarize(dir, suite, cfg.BaselineRef())
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Fprintf(w, "No %s results found in %s\n", suite, dir) //nolint:errcheck
		return nil
	}

	if reportPromTextfile != "" {
		if err := exporter.WriteTextfile(reportPromTextfile, res); err != nil {
			return err
		}
	}

	switch reportFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Summary())
	case "markdown":
		_, err = fmt.Fprint(w, FormatMarkdown(res))
	case "html":
		var html string
		html, err = FormatHTML(res)
		if err == nil {
			_, err = fmt.Fprint(w, html)
		}
	default:
		_, err = fmt.Fprintln(w, res.Text())
	}
	return err
}

// watchResults calls rebuild after each create or write of a file matching
// the suite's result pattern in dir, until ctx is done.
func watchResults(ctx context.Context, dir string, suite models.Suite, rebuild func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	slog.Debug("Watching results", "dir", dir, "pattern", suite.Pattern())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isResultEvent(ev, suite) {
				continue
			}
			slog.Debug("Result file changed", "path", ev.Name, "op", ev.Op.String())
			if err := rebuild(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func isResultEvent(ev fsnotify.Event, suite models.Suite) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	ok, err := filepath.Match(suite.Pattern(), filepath.Base(ev.Name))
	return err == nil && ok
}

// Package exporter renders aggregated results as Prometheus gauges in the
// node_exporter textfile format.
package exporter

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gilbench/gilbench/internal/aggregate"
	"github.com/gilbench/gilbench/internal/models"
)

const namespace = "gilbench"

type microGauges struct {
	mean     *prometheus.GaugeVec
	stdev    *prometheus.GaugeVec
	relative *prometheus.GaugeVec
}

type concurrencyGauges struct {
	duration  *prometheus.GaugeVec
	rate      *prometheus.GaugeVec
	speedup   *prometheus.GaugeVec
	supported *prometheus.GaugeVec
}

func newMicroGauges(reg prometheus.Registerer) microGauges {
	labels := []string{"case", "implementation", "version"}
	f := promauto.With(reg)
	return microGauges{
		mean: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "micro",
			Name:      "mean_seconds",
			Help:      "Mean wall-clock seconds per repeat of a micro case",
		}, labels),
		stdev: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "micro",
			Name:      "stdev_seconds",
			Help:      "Population standard deviation of the per-repeat seconds",
		}, labels),
		relative: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "micro",
			Name:      "relative_to_baseline",
			Help:      "Mean divided by the baseline runtime's mean",
		}, labels),
	}
}

func newConcurrencyGauges(reg prometheus.Registerer) concurrencyGauges {
	labels := []string{"workload", "implementation", "version", "gil_disabled", "strategy"}
	f := promauto.With(reg)
	return concurrencyGauges{
		duration: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "concurrency",
			Name:      "duration_seconds",
			Help:      "Wall-clock seconds to run all tasks under a strategy",
		}, labels),
		rate: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "concurrency",
			Name:      "tasks_per_second",
			Help:      "Task throughput under a strategy",
		}, labels),
		speedup: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "concurrency",
			Name:      "speedup_vs_sequential",
			Help:      "Sequential duration divided by the strategy duration",
		}, labels),
		supported: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "concurrency",
			Name:      "strategy_supported",
			Help:      "1 when the strategy ran on this runtime, 0 otherwise",
		}, labels),
	}
}

// Registry returns a registry populated with gauges for res.
func Registry(res *aggregate.Result) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	switch {
	case res.Micro != nil:
		recordMicro(newMicroGauges(reg), res.Micro)
	case res.Concurrency != nil:
		recordConcurrency(newConcurrencyGauges(reg), res.Concurrency)
	}
	return reg
}

// WriteTextfile writes res to path atomically.
func WriteTextfile(path string, res *aggregate.Result) error {
	if err := prometheus.WriteToTextfile(path, Registry(res)); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func recordMicro(g microGauges, s *models.MicroSummary) {
	for _, c := range s.Cases {
		for _, row := range c.Results {
			labels := prometheus.Labels{"case": c.Name, "implementation": row.Implementation, "version": row.Version}
			setIf(g.mean, labels, row.Mean)
			setIf(g.stdev, labels, row.Stdev)
			setIf(g.relative, labels, row.RelativeToBaseline)
		}
	}
}

func recordConcurrency(g concurrencyGauges, s *models.ConcurrencySummary) {
	for _, w := range s.Workloads {
		for _, row := range w.Results {
			for _, st := range row.Strategies {
				labels := prometheus.Labels{
					"workload":       w.Name,
					"implementation": row.Implementation,
					"version":        row.Version,
					"gil_disabled":   gilLabel(row.GILDisabled),
					"strategy":       st.Name,
				}
				supported := 0.0
				if st.Supported {
					supported = 1
				}
				g.supported.With(labels).Set(supported)
				setIf(g.duration, labels, st.Duration)
				setIf(g.rate, labels, st.TasksPerSecond)
				setIf(g.speedup, labels, st.SpeedupVsSequential)
			}
		}
	}
}

func setIf(g *prometheus.GaugeVec, labels prometheus.Labels, v *float64) {
	if v != nil {
		g.With(labels).Set(*v)
	}
}

func gilLabel(v *bool) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatBool(*v)
}

// Package statistics decides whether two sets of timing runs differ by
// more than run-to-run noise.
package statistics

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/gilbench/gilbench/internal/metrics"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// DefaultConfidenceLevel is used by the compare command.
const DefaultConfidenceLevel = 0.95

// BootstrapDiffCI computes a percentile bootstrap confidence interval for
// mean(after) - mean(before), resampling each side independently.
// A negative seed uses a non-deterministic source. When either side has
// fewer than 2 runs the interval collapses to the observed difference.
func BootstrapDiffCI(before, after []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	diff := metrics.Mean(after) - metrics.Mean(before)
	if len(before) < 2 || len(after) < 2 {
		return ConfidenceInterval{
			Lower:           diff,
			Upper:           diff,
			Mean:            diff,
			ConfidenceLevel: confidenceLevel,
		}
	}

	rng := newRand(seed)
	iters := DefaultBootstrapIterations
	diffs := make([]float64, iters)
	sampleBefore := make([]float64, len(before))
	sampleAfter := make([]float64, len(after))
	for i := 0; i < iters; i++ {
		resample(rng, before, sampleBefore)
		resample(rng, after, sampleAfter)
		diffs[i] = metrics.Mean(sampleAfter) - metrics.Mean(sampleBefore)
	}
	sort.Float64s(diffs)

	lo, hi := percentileBounds(confidenceLevel, iters)
	return ConfidenceInterval{
		Lower:           diffs[lo],
		Upper:           diffs[hi],
		Mean:            diff,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// IsSignificant returns true if the confidence interval does not contain zero,
// indicating statistical significance at the given confidence level.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

// Comparison summarizes how a set of runs moved relative to a reference set.
type Comparison struct {
	Ratio       float64            `json:"ratio"`
	Difference  ConfidenceInterval `json:"difference"`
	Significant bool               `json:"significant"`
}

// CompareRuns compares after against before. Ratio is mean(after)/mean(before)
// and is NaN when the reference mean is not positive.
func CompareRuns(before, after []float64, seed int64) Comparison {
	ci := BootstrapDiffCI(before, after, DefaultConfidenceLevel, seed)
	ratio := math.NaN()
	if m := metrics.Mean(before); m > 0 {
		ratio = metrics.Mean(after) / m
	}
	return Comparison{
		Ratio:       ratio,
		Difference:  ci,
		Significant: ci.NumBootstraps > 0 && IsSignificant(ci),
	}
}

func newRand(seed int64) *rand.Rand {
	if seed < 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

func resample(rng *rand.Rand, src, dst []float64) {
	for j := range dst {
		dst[j] = src[rng.IntN(len(src))]
	}
}

func percentileBounds(confidenceLevel float64, iters int) (int, int) {
	alpha := 1.0 - confidenceLevel
	lo := int(math.Floor(alpha / 2.0 * float64(iters)))
	hi := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hi >= iters {
		hi = iters - 1
	}
	return lo, hi
}

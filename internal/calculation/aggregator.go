package calculation

import (
	"math"
	"sort"

	"github.com/rpgo/valuation-engine/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// smallSampleThreshold is the N below which the nearest-rank percentile
// method and a single-worst-value CTE95 are used instead of linear
// interpolation between order statistics, since interpolation gets noisy
// on very small samples.
const smallSampleThreshold = 20

// Aggregate reduces per-scenario NPVs into summary statistics. The caller
// passes npvs in scenario order; the statistics are computed over a sorted
// copy, so they do not depend on the order in which scenarios completed.
func Aggregate(npvs []float64, retainDistribution bool) domain.AggregateResult {
	n := len(npvs)
	result := domain.AggregateResult{Count: n}
	if n == 0 {
		return result
	}

	sorted := make([]float64, n)
	copy(sorted, npvs)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	result.Mean = mean

	if n > 1 {
		result.StdDev = stat.StdDev(sorted, nil)
	}

	if n < smallSampleThreshold {
		result.Percentiles = nearestRankPercentiles(sorted)
		result.CTE95 = sorted[0] // single worst value
	} else {
		result.Percentiles = interpolatedPercentiles(sorted)
		result.CTE95 = cte95(sorted)
	}

	if retainDistribution {
		dist := make([]float64, n)
		copy(dist, npvs)
		result.Distribution = dist
	}

	return result
}

// interpolatedPercentiles uses linear interpolation between order
// statistics: index = p*(N-1)/100.
func interpolatedPercentiles(sorted []float64) domain.Percentiles {
	return domain.Percentiles{
		P50: quantileAt(sorted, 0.50),
		P75: quantileAt(sorted, 0.75),
		P90: quantileAt(sorted, 0.90),
		P95: quantileAt(sorted, 0.95),
		P99: quantileAt(sorted, 0.99),
	}
}

func quantileAt(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// nearestRankPercentiles is the small-sample (N<20) fallback: round the
// fractional index to the nearest rank instead of interpolating.
func nearestRankPercentiles(sorted []float64) domain.Percentiles {
	return domain.Percentiles{
		P50: nearestRank(sorted, 0.50),
		P75: nearestRank(sorted, 0.75),
		P90: nearestRank(sorted, 0.90),
		P95: nearestRank(sorted, 0.95),
		P99: nearestRank(sorted, 0.99),
	}
}

func nearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// cte95 is the mean of all values at or below P5 (left-tail expected
// shortfall).
func cte95(sorted []float64) float64 {
	p5 := quantileAt(sorted, 0.05)

	var sum float64
	var count int
	for _, v := range sorted {
		if v <= p5 {
			sum += v
			count++
		}
	}
	if count == 0 {
		// p5 sits below every sample's own index rounding; the worst value
		// always qualifies as "at or below" itself.
		return sorted[0]
	}
	return sum / float64(count)
}

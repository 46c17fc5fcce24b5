package calculation

import (
	"github.com/rpgo/valuation-engine/internal/domain"
	"github.com/rpgo/valuation-engine/pkg/rng"
)

// scenarioSeedMultiplier decorrelates per-scenario streams from the master
// seed: seed(s) = master_seed XOR (s * k mod 2^64).
const scenarioSeedMultiplier uint64 = 2654435761

// ScenarioPath holds one scenario's short-rate path and cumulative discount
// factors, indexed 1..maxTerm (index 0 unused for Rate, D[0] == 1 by
// definition). It is produced once per scenario, consumed in place by the
// projection kernel, and never shared across workers.
type ScenarioPath struct {
	Rate []float64 // Rate[y] = r(s,y), 1-indexed, Rate[0] is unused
	D    []float64 // D[y] = cumulative discount factor, D[0] = 1
}

// ScenarioSeed computes the deterministic per-scenario seed from the job's
// master seed and scenario index.
func ScenarioSeed(masterSeed uint64, scenario int) uint64 {
	return masterSeed ^ (uint64(scenario) * scenarioSeedMultiplier)
}

// GenerateScenarioPath builds the rate path and discount factors for one
// scenario by the drift-plus-volatility recurrence. maxTerm is the longest
// term among all policies in the portfolio; the path is generated once to
// this length and every policy's kernel run reads a prefix of it.
func GenerateScenarioPath(params domain.ScenarioParams, masterSeed uint64, scenario, maxTerm int) ScenarioPath {
	path := ScenarioPath{
		Rate: make([]float64, maxTerm+1),
		D:    make([]float64, maxTerm+1),
	}
	path.D[0] = 1
	if maxTerm == 0 {
		return path
	}

	source := rng.New(ScenarioSeed(masterSeed, scenario))

	path.Rate[1] = params.Clamp(params.InitialRate)
	for y := 2; y <= maxTerm; y++ {
		z := source.NextNormal()
		path.Rate[y] = params.Clamp(path.Rate[y-1] + params.Drift + params.Volatility*z)
	}

	for y := 1; y <= maxTerm; y++ {
		path.D[y] = path.D[y-1] / (1 + path.Rate[y])
	}

	return path
}

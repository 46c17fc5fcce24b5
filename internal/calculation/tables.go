package calculation

import "github.com/rpgo/valuation-engine/internal/domain"

// AssumptionTables bundles the three immutable lookup structures a
// projection needs, plus the multipliers applied uniformly at lookup time.
type AssumptionTables struct {
	Mortality *domain.MortalityTable
	Lapse     *domain.LapseTable
	Expense   domain.ExpenseAssumptions
}

// Qx returns the mortality-multiplier-adjusted qx(age, gender), clamped to
// [0, 0.999].
func (t *AssumptionTables) Qx(age int, gender domain.Gender, mult float64) float64 {
	return clamp01(t.Mortality.Qx(age, gender) * mult)
}

// LapseRate returns the lapse-multiplier-adjusted lapse(policyYear),
// clamped to [0, 0.999].
func (t *AssumptionTables) LapseRate(policyYear int, mult float64) float64 {
	return clamp01(t.Lapse.Lapse(policyYear) * mult)
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 0.999 {
		return 0.999
	}
	return p
}

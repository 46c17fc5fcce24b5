package domain

import (
	"fmt"
	"math"
)

// MaxAge is the highest tabulated age in a mortality table; lookups beyond
// it clamp to this endpoint.
const MaxAge = 120

// MaxLapseYear is the highest tabulated policy year in a lapse table;
// lookups beyond it clamp to the last defined year.
const MaxLapseYear = 50

// MortalityTable holds qx(age, gender) for age in [0, MaxAge], one row per
// age, two columns (male, female). Immutable once loaded.
type MortalityTable struct {
	// rows[age][gender] = qx
	rows [MaxAge + 1][2]float64
}

// NewMortalityTable builds a table from row-major (age, gender) data, as
// produced by the binary and CSV loaders in internal/config.
func NewMortalityTable(rows [][2]float64) (*MortalityTable, error) {
	if len(rows) != MaxAge+1 {
		return nil, fmt.Errorf("mortality table must have %d rows, got %d", MaxAge+1, len(rows))
	}
	t := &MortalityTable{}
	for age, row := range rows {
		for gender, qx := range row {
			if err := validateProbability(qx); err != nil {
				return nil, fmt.Errorf("mortality table age=%d gender=%d: %w", age, gender, err)
			}
			t.rows[age][gender] = qx
		}
	}
	return t, nil
}

// Qx returns the tabulated mortality rate for age/gender, clamped to the
// table's range and to [0, 0.999]
func (t *MortalityTable) Qx(age int, gender Gender) float64 {
	if age < 0 {
		age = 0
	}
	if age > MaxAge {
		age = MaxAge
	}
	return clampProbability(t.rows[age][gender])
}

// LapseTable holds lapse rates indexed by policy-year 1..MaxLapseYear.
type LapseTable struct {
	rates [MaxLapseYear]float64
}

// NewLapseTable builds a table from rates for policy-years 1..50, in order.
func NewLapseTable(rates []float64) (*LapseTable, error) {
	if len(rates) != MaxLapseYear {
		return nil, fmt.Errorf("lapse table must have %d entries, got %d", MaxLapseYear, len(rates))
	}
	t := &LapseTable{}
	for i, r := range rates {
		if err := validateProbability(r); err != nil {
			return nil, fmt.Errorf("lapse table year=%d: %w", i+1, err)
		}
		t.rates[i] = r
	}
	return t, nil
}

// Lapse returns the tabulated lapse rate for a policy-year, clamped to the
// table's range and to [0, 0.999].
func (t *LapseTable) Lapse(policyYear int) float64 {
	if policyYear < 1 {
		policyYear = 1
	}
	if policyYear > MaxLapseYear {
		policyYear = MaxLapseYear
	}
	return clampProbability(t.rates[policyYear-1])
}

// ExpenseAssumptions holds the four per-job expense parameters applied
// during cashflow projection.
type ExpenseAssumptions struct {
	Acquisition      float64 // one-off, year 1
	Maintenance      float64 // per policy per year
	PercentOfPremium float64 // fraction of premium
	ClaimExpense     float64 // per death
}

// Validate checks that every expense assumption is finite and non-negative.
func (e ExpenseAssumptions) Validate() error {
	for name, v := range map[string]float64{
		"acquisition":        e.Acquisition,
		"maintenance":        e.Maintenance,
		"percent_of_premium": e.PercentOfPremium,
		"claim_expense":      e.ClaimExpense,
	} {
		if isNonFinite(v) || v < 0 {
			return fmt.Errorf("expense assumption %q must be finite and non-negative, got %v", name, v)
		}
	}
	return nil
}

func validateProbability(p float64) error {
	if isNonFinite(p) {
		return fmt.Errorf("value %v is not finite", p)
	}
	if p < 0 || p > 1 {
		return fmt.Errorf("value %v outside [0,1]", p)
	}
	return nil
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 0.999 {
		return 0.999
	}
	return p
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

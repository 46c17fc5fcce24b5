package domain

import (
	"fmt"
	"math"
)

// ScenarioParams parameterises the short-rate path generator.
type ScenarioParams struct {
	InitialRate float64 `yaml:"initial_rate"`
	Drift       float64 `yaml:"drift"`
	Volatility  float64 `yaml:"volatility"`
	MinRate     float64 `yaml:"min_rate"`
	MaxRate     float64 `yaml:"max_rate"`
}

// Validate checks that the parameters are finite and internally consistent.
func (p ScenarioParams) Validate() error {
	for name, v := range map[string]float64{
		"initial_rate": p.InitialRate,
		"drift":        p.Drift,
		"volatility":   p.Volatility,
		"min_rate":     p.MinRate,
		"max_rate":     p.MaxRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scenario parameter %q must be finite, got %v", name, v)
		}
	}
	if p.MinRate > p.MaxRate {
		return fmt.Errorf("scenario min_rate %v exceeds max_rate %v", p.MinRate, p.MaxRate)
	}
	if p.Volatility < 0 {
		return fmt.Errorf("scenario volatility must be non-negative, got %v", p.Volatility)
	}
	return nil
}

// Clamp bounds a rate into [MinRate, MaxRate].
func (p ScenarioParams) Clamp(r float64) float64 {
	if r < p.MinRate {
		return p.MinRate
	}
	if r > p.MaxRate {
		return p.MaxRate
	}
	return r
}

// Multipliers uniformly scale assumption-table lookups. The zero value
// scales every lookup to zero; use DefaultMultipliers for the neutral
// 1.0/1.0/1.0 default.
type Multipliers struct {
	Mortality float64 `yaml:"mortality_mult"`
	Lapse     float64 `yaml:"lapse_mult"`
	Expense   float64 `yaml:"expense_mult"`
}

// DefaultMultipliers returns the neutral default of 1.0 for all three.
func DefaultMultipliers() Multipliers {
	return Multipliers{Mortality: 1.0, Lapse: 1.0, Expense: 1.0}
}

// Validate checks that every multiplier is finite and non-negative.
func (m Multipliers) Validate() error {
	for name, v := range map[string]float64{
		"mortality_mult": m.Mortality,
		"lapse_mult":     m.Lapse,
		"expense_mult":   m.Expense,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("multiplier %q must be finite and non-negative, got %v", name, v)
		}
	}
	return nil
}

package calculation

import (
	"math"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// survivalFloor is the in-force threshold below which the remaining
// survivors are treated as fully decremented, letting the roll-forward
// stop early once a cohort is exhausted.
const survivalFloor = 1e-12

// ProjectPolicy computes the net present value of one policy under one
// scenario's rate path via a year-by-year roll-forward of survival,
// deaths, lapses, and cashflows. It returns an error, never a NaN/Inf
// result, if the kernel produces a non-finite cashflow, naming the
// offending policy and scenario.
func ProjectPolicy(p domain.Policy, tables *AssumptionTables, path ScenarioPath, mult domain.Multipliers, scenario int) (float64, error) {
	survival := 1.0
	cumulativeNPV := 0.0

	for y := 1; y <= int(p.Term); y++ {
		age := int(p.Age) + y - 1
		q := tables.Qx(age, p.Gender, mult.Mortality)
		lapseRate := tables.LapseRate(y, mult.Lapse)

		deaths := survival * q
		lapses := (survival - deaths) * lapseRate
		survivalEnd := survival - deaths - lapses

		net := policyYearCashflow(p, tables.Expense, survival, deaths, y, mult.Expense)

		cumulativeNPV += net * path.D[y]

		if math.IsNaN(cumulativeNPV) || math.IsInf(cumulativeNPV, 0) {
			return 0, domain.NewExecutionError(p.ID, scenario, "non-finite cumulative NPV at year %d", y)
		}

		survival = survivalEnd
		if survival < survivalFloor {
			break
		}
	}

	if p.Product == domain.Endowment {
		cumulativeNPV += survival * float64(p.SumAssured) * path.D[int(p.Term)]
		if math.IsNaN(cumulativeNPV) || math.IsInf(cumulativeNPV, 0) {
			return 0, domain.NewExecutionError(p.ID, scenario, "non-finite NPV after endowment maturity benefit")
		}
	}

	return cumulativeNPV, nil
}

// policyYearCashflow computes one year's net cashflow for a policy. A
// term/whole-life/endowment policy collects premium and pays claims and
// expenses; an annuity charges no premium and incurs no percent-of-premium
// expense (it does incur maintenance and the year-1 acquisition expense),
// and instead pays its Premium field each year as a benefit to survivors
// (the single consideration that funds it is outside the per-year
// roll-forward the kernel performs).
func policyYearCashflow(p domain.Policy, exp domain.ExpenseAssumptions, survival, deaths float64, year int, expenseMult float64) float64 {
	premium := float64(p.Premium)
	sumAssured := float64(p.SumAssured)

	if p.Product == domain.Annuity {
		benefitCF := premium * survival
		expCF := exp.Maintenance * survival * expenseMult
		if year == 1 {
			expCF += exp.Acquisition * expenseMult
		}
		return -benefitCF - expCF
	}

	premCF := premium * survival
	claimCF := (sumAssured + exp.ClaimExpense) * deaths
	expCF := exp.Maintenance*survival + exp.PercentOfPremium*premium*survival
	if year == 1 {
		expCF += exp.Acquisition
	}
	expCF *= expenseMult

	return premCF - claimCF - expCF
}

// ProjectPortfolio sums ProjectPolicy across every policy for one scenario,
// producing the portfolio NPV that is the kernel's output. The loop is
// policy-major: one scenario's path is held once while every policy is
// streamed across it, matching the scheduler's scenario-major task
// organisation.
func ProjectPortfolio(policies []domain.Policy, tables *AssumptionTables, path ScenarioPath, mult domain.Multipliers, scenario int) (float64, error) {
	total := 0.0
	for _, p := range policies {
		npv, err := ProjectPolicy(p, tables, path, mult, scenario)
		if err != nil {
			return 0, err
		}
		total += npv
		if math.IsNaN(total) || math.IsInf(total, 0) {
			return 0, domain.NewExecutionError(p.ID, scenario, "non-finite portfolio NPV after adding policy")
		}
	}
	return total, nil
}

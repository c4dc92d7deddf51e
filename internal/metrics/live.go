package metrics

import (
	"math/rand/v2"

	"duka/internal/core"
)

// Randomize returns a perturbed copy of the dataset for the live income view:
// income ±2500, orders and new customers ±2, refunds -1..0. Profit is taken
// from the unperturbed income. Counts are clamped at zero.
func Randomize(dataset []core.MonthlyRecord, rng *rand.Rand) []core.MonthlyRecord {
	out := make([]core.MonthlyRecord, len(dataset))
	for i, m := range dataset {
		r := m
		r.Profit = m.Income - m.Expenses
		r.Income = clampZero(m.Income + rng.Int64N(5000) - 2500)
		r.NewCustomers = clampZero(m.NewCustomers + rng.Int64N(5) - 2)
		r.Orders = clampZero(m.Orders + rng.Int64N(5) - 2)
		r.Refunds = clampZero(m.Refunds + rng.Int64N(2) - 1)
		out[i] = r
	}
	return out
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

package metrics

import (
	"fmt"

	"duka/internal/core"
)

type (
	// MonthComparison compares one month against the month before it.
	// January is compared against December.
	MonthComparison struct {
		Month          string `json:"month"`
		Previous       string `json:"previous"`
		IncomeChange   Delta  `json:"incomeChange"`
		CustomerChange Delta  `json:"customersChange"`
	}

	// Comparison holds the last entry of a view against the one before it.
	// Previous is nil when the view has no preceding entry (yearly).
	Comparison struct {
		Granularity core.Granularity      `json:"granularity"`
		Current     core.AggregateTotals  `json:"current"`
		Previous    *core.AggregateTotals `json:"previous"`
		Deltas      []Delta               `json:"deltas"`
	}

	// Report is everything the dashboard shows for one granularity.
	Report struct {
		Granularity core.Granularity     `json:"granularity"`
		View        core.PeriodView      `json:"view"`
		Totals      core.AggregateTotals `json:"totals"`
		Series      []core.ChartRecord   `json:"series"`
		Comparison  Comparison           `json:"comparison"`
	}
)

func checkMonth(month int) error {
	if month < 1 || month > core.MonthsPerYear {
		return fmt.Errorf("%w: %d (want 1-%d)", core.ErrInvalidMonth, month, core.MonthsPerYear)
	}
	return nil
}

// MonthlyComparison returns the income and new-customer change of month
// (1-12) against the previous month.
func MonthlyComparison(dataset []core.MonthlyRecord, month int) (MonthComparison, error) {
	if err := core.ValidateDataset(dataset); err != nil {
		return MonthComparison{}, err
	}
	if err := checkMonth(month); err != nil {
		return MonthComparison{}, err
	}
	idx := month - 1
	prevIdx := (idx + core.MonthsPerYear - 1) % core.MonthsPerYear
	cur, prev := dataset[idx].Totals(), dataset[prevIdx].Totals()
	return MonthComparison{
		Month:          dataset[idx].Period,
		Previous:       dataset[prevIdx].Period,
		IncomeChange:   ComputeDelta(cur, prev, core.FieldIncome),
		CustomerChange: ComputeDelta(cur, prev, core.FieldNewCustomers),
	}, nil
}

// YearToDate sums income from January through month (1-12) inclusive.
func YearToDate(dataset []core.MonthlyRecord, month int) (int64, error) {
	if err := core.ValidateDataset(dataset); err != nil {
		return 0, err
	}
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	return Aggregate(dataset[:month]).Income, nil
}

// CompareView compares the last entry of view with the entry before it.
func CompareView(view core.PeriodView, g core.Granularity) Comparison {
	c := Comparison{Granularity: g}
	if len(view) == 0 {
		c.Deltas = ComputeDeltas(c.Current, c.Current)
		return c
	}
	c.Current = view[len(view)-1].Totals()
	if len(view) < 2 {
		c.Deltas = make([]Delta, 0, len(core.Fields()))
		for _, f := range core.Fields() {
			c.Deltas = append(c.Deltas, Delta{Field: f})
		}
		return c
	}
	prev := view[len(view)-2].Totals()
	c.Previous = &prev
	c.Deltas = ComputeDeltas(c.Current, prev)
	return c
}

// PeriodComparison selects the view for g and compares its last two entries.
func PeriodComparison(dataset []core.MonthlyRecord, g core.Granularity, jitter Jitter) (Comparison, error) {
	view, err := SelectPeriod(dataset, g, jitter)
	if err != nil {
		return Comparison{}, err
	}
	return CompareView(view, g), nil
}

// BuildReport runs the whole pipeline for one granularity.
func BuildReport(dataset []core.MonthlyRecord, g core.Granularity, jitter Jitter) (Report, error) {
	view, err := SelectPeriod(dataset, g, jitter)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Granularity: g,
		View:        view,
		Totals:      Aggregate(view),
		Series:      ToChartSeries(view),
		Comparison:  CompareView(view, g),
	}, nil
}

// DeltaFor picks the delta of field out of a comparison.
func (c Comparison) DeltaFor(field core.Field) Delta {
	for _, d := range c.Deltas {
		if d.Field == field {
			return d
		}
	}
	return Delta{Field: field}
}

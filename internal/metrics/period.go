package metrics

import (
	"fmt"

	"duka/internal/core"
)

// PeriodStrategy builds the view of one granularity from a validated dataset.
type PeriodStrategy interface {
	Select(dataset []core.MonthlyRecord, jitter Jitter) core.PeriodView
}

// DailyStrategy synthesizes 7 days from the last month. The values are an
// approximation (month ÷ 30 with noise), not a real daily breakdown.
type DailyStrategy struct{}

func (DailyStrategy) Select(dataset []core.MonthlyRecord, jitter Jitter) core.PeriodView {
	return split(dataset[len(dataset)-1], 30, 7, "Day", jitter)
}

// WeeklyStrategy synthesizes 4 weeks from the last month (month ÷ 4 with noise).
type WeeklyStrategy struct{}

func (WeeklyStrategy) Select(dataset []core.MonthlyRecord, jitter Jitter) core.PeriodView {
	return split(dataset[len(dataset)-1], 4, 4, "Week", jitter)
}

// MonthlyStrategy returns a copy of the 12 months.
type MonthlyStrategy struct{}

func (MonthlyStrategy) Select(dataset []core.MonthlyRecord, _ Jitter) core.PeriodView {
	view := make(core.PeriodView, len(dataset))
	copy(view, dataset)
	return view
}

// YearlyStrategy collapses the dataset into a single summed entry.
type YearlyStrategy struct{}

func (YearlyStrategy) Select(dataset []core.MonthlyRecord, _ Jitter) core.PeriodView {
	t := Aggregate(dataset)
	return core.PeriodView{{
		Period:       "Year",
		Income:       t.Income,
		Expenses:     t.Expenses,
		Profit:       t.Profit,
		Orders:       t.Orders,
		NewCustomers: t.NewCustomers,
		Refunds:      t.Refunds,
	}}
}

var periodStrategies = map[core.Granularity]PeriodStrategy{
	core.Daily:   DailyStrategy{},
	core.Weekly:  WeeklyStrategy{},
	core.Monthly: MonthlyStrategy{},
	core.Yearly:  YearlyStrategy{},
}

// GetPeriodStrategy returns the strategy registered for g.
func GetPeriodStrategy(g core.Granularity) (PeriodStrategy, error) {
	s, ok := periodStrategies[g]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownGranularity, g)
	}
	return s, nil
}

// SelectPeriod maps the 12-month dataset to the view of granularity g.
// The dataset is never aliased or modified. A nil jitter means NoJitter.
func SelectPeriod(dataset []core.MonthlyRecord, g core.Granularity, jitter Jitter) (core.PeriodView, error) {
	if err := core.ValidateDataset(dataset); err != nil {
		return nil, err
	}
	s, err := GetPeriodStrategy(g)
	if err != nil {
		return nil, err
	}
	if jitter == nil {
		jitter = NoJitter{}
	}
	return s.Select(dataset, jitter), nil
}

func split(src core.MonthlyRecord, divisor int64, n int, label string, jitter Jitter) core.PeriodView {
	view := make(core.PeriodView, n)
	for i := range view {
		r := core.MonthlyRecord{
			Period:       fmt.Sprintf("%s %d", label, i+1),
			Position:     i,
			Income:       jitter.Apply(divRound(src.Income, divisor)),
			Expenses:     jitter.Apply(divRound(src.Expenses, divisor)),
			Orders:       jitter.Apply(divRound(src.Orders, divisor)),
			NewCustomers: jitter.Apply(divRound(src.NewCustomers, divisor)),
			Refunds:      jitter.Apply(divRound(src.Refunds, divisor)),
		}
		r.Profit = r.Income - r.Expenses
		view[i] = r
	}
	return view
}

// divRound divides a non-negative v by d rounding half up.
func divRound(v, d int64) int64 {
	return (v + d/2) / d
}

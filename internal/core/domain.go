package core

import (
	"fmt"
	"strings"
)

// MonthsPerYear is the exact length every income dataset must have.
const MonthsPerYear = 12

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

const (
	FieldIncome       Field = "income"
	FieldExpenses     Field = "expenses"
	FieldProfit       Field = "profit"
	FieldOrders       Field = "orders"
	FieldNewCustomers Field = "newCustomers"
	FieldRefunds      Field = "refunds"
)

type (
	// Granularity selects how the 12-month dataset is sliced or synthesized.
	Granularity string

	// Field names one numeric column of a record or of aggregated totals.
	Field string

	// MonthlyRecord is one month of the fixed income dataset, or one synthetic
	// entry derived from it.
	MonthlyRecord struct {
		Period       string `json:"period"`
		Position     int    `json:"position"`
		Income       int64  `json:"income"`
		Expenses     int64  `json:"expenses"`
		Profit       int64  `json:"profit"`
		Orders       int64  `json:"orders"`
		NewCustomers int64  `json:"newCustomers"`
		Refunds      int64  `json:"refunds"`
	}

	// PeriodView is the sequence of records produced for one granularity.
	PeriodView []MonthlyRecord

	// AggregateTotals holds the sums of every numeric field over a PeriodView.
	AggregateTotals struct {
		Income       int64 `json:"income"`
		Expenses     int64 `json:"expenses"`
		Profit       int64 `json:"profit"`
		Orders       int64 `json:"orders"`
		NewCustomers int64 `json:"newCustomers"`
		Refunds      int64 `json:"refunds"`
	}

	// ChartRecord is a PeriodView entry with the running income total attached.
	ChartRecord struct {
		MonthlyRecord
		CumulativeTotal int64 `json:"cumulativeTotal"`
	}
)

// Granularities returns every supported granularity in display order.
func Granularities() []Granularity {
	return []Granularity{Daily, Weekly, Monthly, Yearly}
}

// IsValid reports whether g is one of the four supported granularities.
func (g Granularity) IsValid() bool {
	switch g {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity normalizes user input into a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
	return g, nil
}

// Fields returns every aggregatable field.
func Fields() []Field {
	return []Field{FieldIncome, FieldExpenses, FieldProfit, FieldOrders, FieldNewCustomers, FieldRefunds}
}

// ParseField accepts both the camelCase JSON name and the snake_case form.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return FieldIncome, nil
	case "expenses":
		return FieldExpenses, nil
	case "profit":
		return FieldProfit, nil
	case "orders":
		return FieldOrders, nil
	case "newcustomers", "new_customers":
		return FieldNewCustomers, nil
	case "refunds":
		return FieldRefunds, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// Value returns the named field of the totals.
func (t AggregateTotals) Value(f Field) (int64, bool) {
	switch f {
	case FieldIncome:
		return t.Income, true
	case FieldExpenses:
		return t.Expenses, true
	case FieldProfit:
		return t.Profit, true
	case FieldOrders:
		return t.Orders, true
	case FieldNewCustomers:
		return t.NewCustomers, true
	case FieldRefunds:
		return t.Refunds, true
	default:
		return 0, false
	}
}

// Totals converts a single record into totals, which is how one entry is
// compared against another.
func (r MonthlyRecord) Totals() AggregateTotals {
	return AggregateTotals{
		Income:       r.Income,
		Expenses:     r.Expenses,
		Profit:       r.Profit,
		Orders:       r.Orders,
		NewCustomers: r.NewCustomers,
		Refunds:      r.Refunds,
	}
}

// Validate checks the non-negativity invariant of the counted fields.
func (r MonthlyRecord) Validate() error {
	if r.Income < 0 || r.Orders < 0 || r.NewCustomers < 0 || r.Refunds < 0 {
		return fmt.Errorf("%w: record %q has a negative value", ErrInvalidDataset, r.Period)
	}
	return nil
}

// ValidateDataset enforces the 12-record precondition of the pipeline.
func ValidateDataset(dataset []MonthlyRecord) error {
	if len(dataset) != MonthsPerYear {
		return fmt.Errorf("%w: got %d records, want %d", ErrInvalidDataset, len(dataset), MonthsPerYear)
	}
	for _, r := range dataset {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

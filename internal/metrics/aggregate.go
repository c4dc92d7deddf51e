package metrics

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"duka/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Aggregate sums every numeric field of the view. An empty view yields zeros.
func Aggregate(view core.PeriodView) core.AggregateTotals {
	var t core.AggregateTotals
	for _, r := range view {
		t.Income += r.Income
		t.Expenses += r.Expenses
		t.Profit += r.Profit
		t.Orders += r.Orders
		t.NewCustomers += r.NewCustomers
		t.Refunds += r.Refunds
	}
	return t
}

// Delta is the percentage change of one field. Defined is false when the
// baseline is zero and the current value is not, or the field is unknown.
type Delta struct {
	Field   core.Field
	Percent float64
	Defined bool
}

// String renders "10.0%", "-3.5%" or "N/A".
func (d Delta) String() string {
	if !d.Defined {
		return "N/A"
	}
	return strconv.FormatFloat(d.Percent, 'f', 1, 64) + "%"
}

func (d Delta) MarshalJSON() ([]byte, error) {
	var pct *float64
	if d.Defined {
		pct = &d.Percent
	}
	return json.Marshal(struct {
		Field   core.Field `json:"field"`
		Percent *float64   `json:"percent"`
		Label   string     `json:"label"`
	}{d.Field, pct, d.String()})
}

// ComputeDelta returns ((cur - prev) / |prev|) * 100 rounded half away from
// zero to one decimal place.
//
// A zero baseline never yields NaN or Inf: 0 -> 0 is a defined 0%, anything
// else from 0 is undefined.
func ComputeDelta(current, previous core.AggregateTotals, field core.Field) Delta {
	cur, ok := current.Value(field)
	if !ok {
		return Delta{Field: field}
	}
	prev, _ := previous.Value(field)
	return percentChange(field, cur, prev)
}

func percentChange(field core.Field, cur, prev int64) Delta {
	if prev == 0 {
		if cur == 0 {
			return Delta{Field: field, Defined: true}
		}
		return Delta{Field: field}
	}
	base := decimal.NewFromInt(prev).Abs()
	pct := decimal.NewFromInt(cur - prev).Div(base).Mul(hundred).Round(1)
	f, _ := pct.Float64()
	return Delta{Field: field, Percent: f, Defined: true}
}

// ComputeDeltas returns one delta per field in core.Fields order.
func ComputeDeltas(current, previous core.AggregateTotals) []Delta {
	fields := core.Fields()
	out := make([]Delta, 0, len(fields))
	for _, f := range fields {
		out = append(out, ComputeDelta(current, previous, f))
	}
	return out
}

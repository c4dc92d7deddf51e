package metrics

import "duka/internal/core"

// ToChartSeries attaches the running income total to each entry. Output
// order matches the view; the view itself is left untouched.
func ToChartSeries(view core.PeriodView) []core.ChartRecord {
	out := make([]core.ChartRecord, len(view))
	var running int64
	for i, r := range view {
		running += r.Income
		out[i] = core.ChartRecord{MonthlyRecord: r, CumulativeTotal: running}
	}
	return out
}

package http

import (
	"net/http"
	"time"

	"duka/internal/core"
)

// GET /api/metrics?granularity=&seed=
func (h *handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	g, err := queryGranularity(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	seed, err := querySeed(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	report, err := h.deps.Dashboard.Report(r.Context(), g, seed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /api/metrics/summary?seed=
func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	seed, err := querySeed(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	summary, err := h.deps.Dashboard.Summary(r.Context(), seed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/metrics/delta?field=&granularity=&seed=
func (h *handler) getDelta(w http.ResponseWriter, r *http.Request) {
	field, err := core.ParseField(r.URL.Query().Get("field"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	g, err := queryGranularity(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	seed, err := querySeed(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.deps.Dashboard.Delta(r.Context(), field, g, seed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"granularity": g,
		"delta":       d,
	})
}

func (h *handler) getIncomeChart(w http.ResponseWriter, r *http.Request) {
	series, err := h.deps.Dashboard.IncomeChart(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (h *handler) getIncomeComparison(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	cmp, err := h.deps.Dashboard.MonthComparison(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *handler) getYearToDate(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	total, err := h.deps.Dashboard.YearToDate(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":     month,
		"income":    total,
		"formatted": core.FormatWhole(total),
	})
}

func (h *handler) getLive(w http.ResponseWriter, r *http.Request) {
	seed, err := querySeed(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	records, err := h.deps.Dashboard.Live(r.Context(), seed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	"duka/internal/core"
	"duka/internal/metrics"
)

func TestRows(t *testing.T) {
	view, err := metrics.SelectPeriod(core.IncomeFixture(), core.Monthly, metrics.NoJitter{})
	require.NoError(t, err)
	rows := Rows(metrics.ToChartSeries(view))

	require.Len(t, rows, 13)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []any{"Jan", int64(45000), int64(32000), int64(13000), int64(120), int64(35), int64(4), int64(45000)}, rows[1])
	assert.Equal(t, int64(709000), rows[12][7])
}

func TestRowsEmpty(t *testing.T) {
	assert.Equal(t, [][]any{Header}, Rows(nil))
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Income'", quoteSheet("Income"))
	assert.Equal(t, "'Bob''s tab'", quoteSheet("Bob's tab"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	assert.ErrorContains(t, err, "credentials")

	_, err = New(context.Background(), Options{})
	assert.ErrorContains(t, err, "spreadsheet id")
}

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func TestExportSeries(t *testing.T) {
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		reqs = append(reqs, recorded{r.Method, r.URL.Path, body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, ":clear") {
			w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
			return
		}
		w.Write([]byte(`{"spreadsheetId":"sheet-1","updatedRows":3}`))
	}))
	defer srv.Close()

	exp, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		SheetName:     "Income",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
		},
	})
	require.NoError(t, err)

	series := []core.ChartRecord{
		{MonthlyRecord: core.MonthlyRecord{Period: "Week 1", Income: 100}, CumulativeTotal: 100},
		{MonthlyRecord: core.MonthlyRecord{Period: "Week 2", Income: 50}, CumulativeTotal: 150},
	}
	require.NoError(t, exp.ExportSeries(context.Background(), core.Weekly, series))

	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPost, reqs[0].method)
	assert.True(t, strings.HasSuffix(reqs[0].path, ":clear"), reqs[0].path)
	assert.Equal(t, http.MethodPut, reqs[1].method)
	assert.Contains(t, reqs[1].path, "/v4/spreadsheets/sheet-1/values/")

	values, ok := reqs[1].body["values"].([]any)
	require.True(t, ok)
	require.Len(t, values, 3)
	assert.Equal(t, "Week 2", values[2].([]any)[0])
}

func TestExportSeriesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	}))
	defer srv.Close()

	exp, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		ClientOptions: []goption.ClientOption{goption.WithEndpoint(srv.URL + "/"), goption.WithoutAuthentication()},
	})
	require.NoError(t, err)
	err = exp.ExportSeries(context.Background(), core.Monthly, nil)
	assert.ErrorContains(t, err, "clear Income")
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duka/internal/core"
	"duka/internal/kv/memory"
	"duka/internal/log"
	"duka/internal/services"
)

type stubProducts struct {
	products []core.Product
	err      error
}

func (s stubProducts) FetchProducts(context.Context) ([]core.Product, error) {
	return s.products, s.err
}

func newTestServer(t *testing.T, products stubProducts, ready func(context.Context) error) *Server {
	t.Helper()
	ctx := context.Background()
	kv := memory.New(nil)
	orders, err := services.OpenOrderStore(ctx, kv, 42, 60)
	require.NoError(t, err)
	tickets, err := services.OpenTicketStore(ctx, kv)
	require.NoError(t, err)

	logger := log.Discard()
	srv := NewServer(Options{CORSOrigins: []string{"http://localhost:5173"}, RateLimitPerMin: 1000}, Dependencies{
		Dashboard: services.NewDashboardService(kv, 42, logger),
		Orders:    services.NewOrderService(orders, nil, logger),
		Tickets:   services.NewTicketService(tickets, nil, logger),
		Products:  products,
		Ready:     ready,
		Logger:    logger,
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, stubProducts{}, nil)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestServer(t, stubProducts{}, func(context.Context) error { return errors.New("db gone") })
	rec = do(t, down, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db gone")
}

func TestMetricsEndpoints(t *testing.T) {
	srv := newTestServer(t, stubProducts{}, nil)

	rec := do(t, srv, http.MethodGet, "/api/metrics?granularity=yearly", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[struct {
		Granularity string `json:"granularity"`
		View        []core.MonthlyRecord
		Totals      core.AggregateTotals
		Comparison  struct {
			Deltas []struct {
				Field   string   `json:"field"`
				Percent *float64 `json:"percent"`
				Label   string   `json:"label"`
			} `json:"deltas"`
		} `json:"comparison"`
	}](t, rec)
	assert.Equal(t, "yearly", report.Granularity)
	assert.Len(t, report.View, 1)
	assert.Equal(t, int64(709000), report.Totals.Income)
	require.NotEmpty(t, report.Comparison.Deltas)
	assert.Nil(t, report.Comparison.Deltas[0].Percent)
	assert.Equal(t, "N/A", report.Comparison.Deltas[0].Label)

	rec = do(t, srv, http.MethodGet, "/api/metrics?granularity=hourly", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "unknown granularity")

	rec = do(t, srv, http.MethodGet, "/api/metrics?seed=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	a := do(t, srv, http.MethodGet, "/api/metrics?granularity=daily&seed=9", "").Body.String()
	b := do(t, srv, http.MethodGet, "/api/metrics?granularity=daily&seed=9", "").Body.String()
	assert.Equal(t, a, b, "same seed, same view")

	rec = do(t, srv, http.MethodGet, "/api/metrics/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[struct {
		Reports map[string]json.RawMessage `json:"reports"`
	}](t, rec)
	assert.Len(t, summary.Reports, 4)

	rec = do(t, srv, http.MethodGet, "/api/metrics/delta?field=income&granularity=monthly", "")
	require.Equal(t, http.StatusOK, rec.Code)
	delta := decode[struct {
		Delta struct {
			Percent *float64 `json:"percent"`
			Label   string   `json:"label"`
		} `json:"delta"`
	}](t, rec)
	require.NotNil(t, delta.Delta.Percent)
	assert.InDelta(t, 4.5, *delta.Delta.Percent, 1e-9)
	assert.Equal(t, "4.5%", delta.Delta.Label)

	rec = do(t, srv, http.MethodGet, "/api/metrics/delta?field=margin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncomeEndpoints(t *testing.T) {
	srv := newTestServer(t, stubProducts{}, nil)

	rec := do(t, srv, http.MethodGet, "/api/income/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[struct {
		Series []core.ChartRecord `json:"series"`
	}](t, rec)
	require.Len(t, chart.Series, 12)
	assert.Equal(t, int64(709000), chart.Series[11].CumulativeTotal)

	rec = do(t, srv, http.MethodGet, "/api/income/comparison?month=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cmp := decode[map[string]any](t, rec)
	assert.Equal(t, "Dec", cmp["previous"])

	rec = do(t, srv, http.MethodGet, "/api/income/ytd?month=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ytd := decode[map[string]any](t, rec)
	assert.EqualValues(t, 97000, ytd["income"])
	assert.Equal(t, "$97,000", ytd["formatted"])

	rec = do(t, srv, http.MethodGet, "/api/income/ytd?month=13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/income/ytd?month=may", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/income/live?seed=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	live := decode[struct {
		Records []core.MonthlyRecord `json:"records"`
	}](t, rec)
	assert.Len(t, live.Records, 12)
}

func TestOrderEndpoints(t *testing.T) {
	srv := newTestServer(t, stubProducts{}, nil)

	rec := do(t, srv, http.MethodGet, "/api/orders?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[services.Page[core.Order]](t, rec)
	assert.Len(t, page.Items, 5)
	assert.True(t, page.HasMore)
	assert.Equal(t, "5", page.NextCursor)
	assert.Equal(t, 60, page.Total)

	rec = do(t, srv, http.MethodGet, "/api/orders?cursor="+page.NextCursor+"&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ORD-1006", decode[services.Page[core.Order]](t, rec).Items[0].ID)

	for _, q := range []string{"status=Lost", "period=hourly", "from=yesterday", "cursor=x", "limit=-2", "from=2026-02-01&to=2026-01-01"} {
		rec = do(t, srv, http.MethodGet, "/api/orders?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = do(t, srv, http.MethodGet, "/api/orders/totals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 60, decode[core.OrderTotals](t, rec).TotalOrders)

	rec = do(t, srv, http.MethodPatch, "/api/orders/ORD-1001/status", `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.OrderDelivered, decode[core.Order](t, rec).Status)

	rec = do(t, srv, http.MethodGet, "/api/orders?status=Delivered&limit=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := false
	for _, o := range decode[services.Page[core.Order]](t, rec).Items {
		found = found || o.ID == "ORD-1001"
	}
	assert.True(t, found)

	rec = do(t, srv, http.MethodPatch, "/api/orders/ORD-0001/status", `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodPatch, "/api/orders/ORD-1001/status", `{"status":"Lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, srv, http.MethodPatch, "/api/orders/ORD-1001/status", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketEndpoints(t *testing.T) {
	srv := newTestServer(t, stubProducts{}, nil)

	rec := do(t, srv, http.MethodPost, "/api/tickets",
		`{"title":"Refund","description":"Please refund order ORD-1002","priority":"High","user":"sarah@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[core.Ticket](t, rec)
	assert.Equal(t, core.PriorityHigh, created.Priority)
	assert.Equal(t, core.TicketOpen, created.Status)
	assert.Equal(t, "/api/tickets/"+created.ID, rec.Header().Get("Location"))

	rec = do(t, srv, http.MethodPost, "/api/tickets", `{"title":"","description":"x","user":"u"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", decode[ErrorResponse](t, rec).Error)

	rec = do(t, srv, http.MethodGet, "/api/tickets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Tickets []core.Ticket `json:"tickets"`
		Count   int           `json:"count"`
	}](t, rec)
	assert.Equal(t, 5, list.Count)
	assert.Equal(t, created.ID, list.Tickets[0].ID)

	rec = do(t, srv, http.MethodPatch, "/api/tickets/TCK-1002/status", `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.TicketInProgress, decode[core.Ticket](t, rec).Status)

	rec = do(t, srv, http.MethodPost, "/api/tickets/TCK-1002/comments", `{"text":"On it","author":"Mia"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Mia", decode[core.Comment](t, rec).Author)

	rec = do(t, srv, http.MethodGet, "/api/tickets/TCK-1002", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[core.Ticket](t, rec).Comments, 1)

	rec = do(t, srv, http.MethodGet, "/api/tickets/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/tickets/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[core.TicketStats](t, rec)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[core.TicketInProgress])
}

func TestProductsEndpoint(t *testing.T) {
	srv := newTestServer(t, stubProducts{products: []core.Product{{ID: 1, Title: "Bag", Stock: 3}}}, nil)
	rec := do(t, srv, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["count"])

	down := newTestServer(t, stubProducts{err: core.ErrCatalogUnavailable}, nil)
	rec = do(t, down, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRateLimit(t *testing.T) {
	kv := memory.New(nil)
	logger := log.Discard()
	srv := NewServer(Options{RateLimitPerMin: 2}, Dependencies{
		Dashboard: services.NewDashboardService(kv, 1, logger),
		Logger:    logger,
	})
	defer srv.Shutdown(context.Background())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/income/chart", "").Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/income/chart", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "").Code, "health is not limited")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, stubProducts{}, nil)
	rec := do(t, srv, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

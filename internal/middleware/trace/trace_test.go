package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestMiddlewareCountsAndEchoesID(t *testing.T) {
	m := NewMiddleware()
	h := middleware.RequestID(m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("request id header missing")
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	got := m.Metrics()
	if got.TotalRequests != 2 || got.ServerErrors != 1 || got.InFlight != 0 {
		t.Errorf("metrics = %+v", got)
	}
}

// Package trace counts requests and echoes the request id back to clients.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// HeaderRequestID carries the request id on responses.
const HeaderRequestID = "X-Request-Id"

// Metrics is a snapshot of the request counters.
type Metrics struct {
	TotalRequests   int64 `json:"totalRequests"`
	InFlight        int64 `json:"inFlight"`
	ServerErrors    int64 `json:"serverErrors"`
	LastDurationMic int64 `json:"lastDurationMicros"`
}

// Middleware tracks request counts. It expects chi's RequestID middleware
// to run first.
type Middleware struct {
	total    atomic.Int64
	inFlight atomic.Int64
	errors5x atomic.Int64
	lastDur  atomic.Int64
}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Handler wraps next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.total.Add(1)
		m.inFlight.Add(1)
		defer m.inFlight.Add(-1)

		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(HeaderRequestID, id)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if ww.Status() >= http.StatusInternalServerError {
			m.errors5x.Add(1)
		}
		m.lastDur.Store(time.Since(start).Microseconds())
	})
}

// Metrics returns the current counters.
func (m *Middleware) Metrics() Metrics {
	return Metrics{
		TotalRequests:   m.total.Load(),
		InFlight:        m.inFlight.Load(),
		ServerErrors:    m.errors5x.Load(),
		LastDurationMic: m.lastDur.Load(),
	}
}

// Package http serves the dashboard JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"duka/internal/log"
	"duka/internal/middleware/ratelimit"
	"duka/internal/middleware/security"
	"duka/internal/middleware/trace"
	"duka/internal/ports"
	"duka/internal/services"
)

// Dependencies are the services behind the handlers.
type Dependencies struct {
	Dashboard *services.DashboardService
	Orders    *services.OrderService
	Tickets   *services.TicketService
	Products  ports.ProductFetcher
	// Ready reports whether the storage backend is reachable.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
}

// Options configure the listener and the middleware stack.
type Options struct {
	Addr            string
	CORSOrigins     []string
	RateLimitPerMin int
}

type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer builds the router and returns a ready-to-run server.
func NewServer(opts Options, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	s := &Server{
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMin}),
		tracer:   trace.NewMiddleware(),
		detector: security.NewDetector(),
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts, deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options, deps Dependencies) http.Handler {
	h := &handler{deps: deps, server: s}
	httpLogger := deps.Logger.WithComponent(log.ComponentHTTP)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(httpLogger))
	r.Use(log.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{trace.HeaderRequestID, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
		}))

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", h.getMetrics)
			r.Get("/summary", h.getSummary)
			r.Get("/delta", h.getDelta)
		})

		r.Route("/income", func(r chi.Router) {
			r.Get("/chart", h.getIncomeChart)
			r.Get("/comparison", h.getIncomeComparison)
			r.Get("/ytd", h.getYearToDate)
			r.Get("/live", h.getLive)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Get("/totals", h.getOrderTotals)
			r.Get("/{id}", h.getOrder)
			r.Patch("/{id}/status", h.updateOrderStatus)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", h.listTickets)
			r.Post("/", h.createTicket)
			r.Get("/stats", h.getTicketStats)
			r.Get("/{id}", h.getTicket)
			r.Patch("/{id}/status", h.updateTicketStatus)
			r.Post("/{id}/comments", h.addComment)
		})

		r.Get("/products", h.listProducts)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return r
}

// Shutdown stops the background goroutines and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

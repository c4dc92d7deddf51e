package http

import (
	"context"
	"net/http"
	"time"

	"duka/internal/core"
)

type handler struct {
	deps   Dependencies
	server *Server
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready pings the backend and reports the request counters.
func (h *handler) ready(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":   "ready",
		"requests": h.server.tracer.Metrics(),
		"security": h.server.detector.Metrics(),
		"rateLimit": map[string]int64{
			"rejected":      h.server.limiter.Hits(),
			"activeClients": int64(h.server.limiter.ActiveClients()),
		},
	}
	if h.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.Ready(ctx); err != nil {
			body["status"] = "unavailable"
			body["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	if h.deps.Products == nil {
		writeError(w, http.StatusBadGateway, "product catalog unavailable", core.ErrCatalogUnavailable)
		return
	}
	products, err := h.deps.Products.FetchProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "count": len(products)})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"duka/internal/core"
	"duka/internal/services"
)

type statusRequest struct {
	Status string `json:"status"`
}

// GET /api/orders?status=&period=&from=&to=&cursor=&limit=
func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := services.OrderQuery{
		Status: r.URL.Query().Get("status"),
		Cursor: r.URL.Query().Get("cursor"),
	}
	var err error
	if p := r.URL.Query().Get("period"); p != "" && p != "all" {
		if q.Period, err = core.ParseGranularity(p); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if q.From, err = queryDate(r, "from", false); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if q.To, err = queryDate(r, "to", true); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	page, err := h.deps.Orders.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) getOrderTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Orders.Totals(r.Context()))
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.deps.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// PATCH /api/orders/{id}/status {"status": "Shipped"}
func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	status, err := core.ParseOrderStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	o, err := h.deps.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"duka/internal/core"
	"duka/internal/services"
)

func (h *handler) listTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.deps.Tickets.List(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets, "count": len(tickets)})
}

func (h *handler) createTicket(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := h.deps.Tickets.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/tickets/"+t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (h *handler) getTicketStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Tickets.Stats(r.Context()))
}

func (h *handler) getTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.Tickets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) updateTicketStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	status, err := core.ParseTicketStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := h.deps.Tickets.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req services.AddCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := h.deps.Tickets.AddComment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

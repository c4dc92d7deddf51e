package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"duka/internal/core"
	"duka/internal/log"
	"duka/internal/services"
)

const maxBodyBytes = 1 << 20

var errInvalidParam = errors.New("invalid parameter")

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps a service error to a status code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, errInvalidParam), core.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case core.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, core.ErrCatalogUnavailable):
		writeError(w, http.StatusBadGateway, "product catalog unavailable", err)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, r.Method+" "+r.URL.Path, nil)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errInvalidParam, err)
	}
	return nil
}

func paramError(name, value, want string) error {
	return fmt.Errorf("%w: %s %q %s", errInvalidParam, name, value, want)
}

// querySeed returns nil when seed is absent.
func querySeed(r *http.Request) (*uint64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("seed"))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, paramError("seed", v, "must be a non-negative integer")
	}
	return &n, nil
}

// queryGranularity defaults to monthly.
func queryGranularity(r *http.Request) (core.Granularity, error) {
	v := r.URL.Query().Get("granularity")
	if v == "" {
		return core.Monthly, nil
	}
	return core.ParseGranularity(v)
}

// queryMonth defaults to the current month.
func queryMonth(r *http.Request, now time.Time) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return int(now.Month()), nil
	}
	m, err := strconv.Atoi(v)
	if err != nil {
		return 0, paramError("month", v, "must be a number from 1 to 12")
	}
	return m, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, paramError(name, v, "must be a non-negative integer")
	}
	return n, nil
}

// queryDate parses YYYY-MM-DD. endOfDay moves the result to the last
// instant of that day so the bound is inclusive.
func queryDate(r *http.Request, name string, endOfDay bool) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, paramError(name, v, "must be a date as YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/piyush-tyagi-13/meal-planner/internal/schedule"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError logs err under action and answers with the matching status.
func respondError(w http.ResponseWriter, action string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(action, "error", err)
	} else {
		slog.Warn(action, "error", err)
	}
	writeError(w, status, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, schedule.ErrInvalidExpression):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrIndexOutOfRange):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrTokenMissing):
		return http.StatusUnauthorized, "setup required"
	case store.IsConflict(err):
		return http.StatusConflict, "changed elsewhere, sync and try again"
	case errors.Is(err, schedule.ErrNoSchedule), errors.Is(err, schedule.ErrNotClockTime):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, store.ErrSync):
		return http.StatusBadGateway, "cloud sync error"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return 0, false
	}
	return index, true
}

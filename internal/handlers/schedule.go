package handlers

import (
	"net/http"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
}

func NewScheduleHandler(scheduleService *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

func (handler *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := handler.scheduleService.Read(r.Context())
	if err != nil {
		respondError(w, "reading schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// Update takes either a cron expression or an hour and minute on the
// family's clock.
func (handler *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Cron   *string `json:"cron"`
		Hour   *int    `json:"hour"`
		Minute *int    `json:"minute"`
	}
	if !decodeJSON(w, r, &request) {
		return
	}

	var (
		updated models.Schedule
		err     error
	)
	switch {
	case request.Cron != nil:
		updated, err = handler.scheduleService.Edit(r.Context(), *request.Cron)
	case request.Hour != nil && request.Minute != nil:
		updated, err = handler.scheduleService.SetDisplayTime(r.Context(), *request.Hour, *request.Minute)
	default:
		writeError(w, http.StatusBadRequest, "cron or hour and minute are required")
		return
	}
	if err != nil {
		respondError(w, "updating schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (handler *ScheduleHandler) Run(w http.ResponseWriter, r *http.Request) {
	if err := handler.scheduleService.Trigger(r.Context()); err != nil {
		respondError(w, "triggering workflow", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (handler *ScheduleHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	feed, err := handler.scheduleService.Calendar(r.Context())
	if err != nil {
		respondError(w, "building schedule calendar", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=meal-plan.ics")
	w.Write([]byte(feed))
}

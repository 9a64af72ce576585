package handlers

import (
	"log/slog"
	"net/http"

	"github.com/piyush-tyagi-13/meal-planner/internal/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
)

type SettingsHandler struct {
	preferences    *services.PreferenceService
	syncService    *services.SyncService
	sessionService *services.SessionService
}

func NewSettingsHandler(preferences *services.PreferenceService, syncService *services.SyncService, sessionService *services.SessionService) *SettingsHandler {
	return &SettingsHandler{
		preferences:    preferences,
		syncService:    syncService,
		sessionService: sessionService,
	}
}

type settingsResponse struct {
	Theme           models.Theme `json:"theme"`
	TokenConfigured bool         `json:"token_configured"`
}

func (handler *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	theme, err := handler.preferences.Theme(ctx)
	if err != nil {
		respondError(w, "reading theme", err)
		return
	}
	configured, err := handler.preferences.HasToken(ctx)
	if err != nil {
		respondError(w, "reading token", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Theme: theme, TokenConfigured: configured})
}

// SaveToken stores the token only if it can load the data.
func (handler *SettingsHandler) SaveToken(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &request) {
		return
	}

	ctx := r.Context()
	if err := handler.preferences.Connect(ctx, request.Token, handler.syncService, middleware.GetSession(ctx)); err != nil {
		respondError(w, "connecting", err)
		return
	}
	handler.Get(w, r)
}

func (handler *SettingsHandler) ClearToken(w http.ResponseWriter, r *http.Request) {
	if err := handler.preferences.ClearToken(r.Context()); err != nil {
		respondError(w, "clearing token", err)
		return
	}
	handler.sessionService.Reset()
	slog.Info("token cleared, sessions reset")
	handler.Get(w, r)
}

func (handler *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Theme models.Theme `json:"theme"`
	}
	if !decodeJSON(w, r, &request) {
		return
	}
	if err := handler.preferences.SetTheme(r.Context(), request.Theme); err != nil {
		respondError(w, "setting theme", err)
		return
	}
	handler.Get(w, r)
}

func (handler *SettingsHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := handler.preferences.ToggleTheme(r.Context()); err != nil {
		respondError(w, "toggling theme", err)
		return
	}
	handler.Get(w, r)
}

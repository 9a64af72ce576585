package handlers

import (
	"net/http"

	"github.com/piyush-tyagi-13/meal-planner/internal/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
)

type SyncHandler struct {
	syncService *services.SyncService
	planService *services.PlanService
}

func NewSyncHandler(syncService *services.SyncService, planService *services.PlanService) *SyncHandler {
	return &SyncHandler{syncService: syncService, planService: planService}
}

type syncResponse struct {
	Recipes    []models.Recipe `json:"recipes"`
	Recipients []string        `json:"recipients"`
}

func (handler *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.GetSession(ctx)
	if err := handler.syncService.Refresh(ctx, sess); err != nil {
		respondError(w, "refreshing data", err)
		return
	}
	state := sess.Snapshot()
	writeJSON(w, http.StatusOK, syncResponse{Recipes: state.Recipes, Recipients: state.Recipients})
}

func (handler *SyncHandler) Plan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	preview, err := handler.planService.Preview(ctx, middleware.GetSession(ctx))
	if err != nil {
		respondError(w, "previewing plan", err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

package handlers

import (
	"net/http"

	"github.com/piyush-tyagi-13/meal-planner/internal/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
)

type RecipientHandler struct {
	recipientService *services.RecipientService
}

func NewRecipientHandler(recipientService *services.RecipientService) *RecipientHandler {
	return &RecipientHandler{recipientService: recipientService}
}

func (handler *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, handler.recipientService.List(middleware.GetSession(r.Context())))
}

func (handler *RecipientHandler) Add(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &request) {
		return
	}

	ctx := r.Context()
	sess := middleware.GetSession(ctx)
	if err := handler.recipientService.Add(ctx, sess, request.Email); err != nil {
		respondError(w, "adding recipient", err)
		return
	}
	writeJSON(w, http.StatusCreated, handler.recipientService.List(sess))
}

func (handler *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	sess := middleware.GetSession(ctx)
	if _, err := handler.recipientService.Delete(ctx, sess, index); err != nil {
		respondError(w, "removing recipient", err)
		return
	}
	writeJSON(w, http.StatusOK, handler.recipientService.List(sess))
}

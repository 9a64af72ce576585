package handlers

import (
	"net/http"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
)

type RecipeHandler struct {
	recipeService *services.RecipeService
}

func NewRecipeHandler(recipeService *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// recipeRequest accepts ingredients either as a list or as one line per
// ingredient.
type recipeRequest struct {
	models.RecipeInput
	IngredientsText string `json:"ingredients_text"`
}

func (request recipeRequest) input() models.RecipeInput {
	input := request.RecipeInput
	if request.IngredientsText != "" {
		input.Ingredients = append(input.Ingredients, parseIngredientLines(request.IngredientsText)...)
	}
	return input
}

func parseIngredientLines(text string) []string {
	var ingredients []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	return ingredients
}

func (handler *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, handler.recipeService.Search(sess, r.URL.Query().Get("q")))
}

func (handler *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request recipeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	ctx := r.Context()
	saved, err := handler.recipeService.Save(ctx, middleware.GetSession(ctx), request.input(), nil)
	if err != nil {
		respondError(w, "creating recipe", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (handler *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	var request recipeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	ctx := r.Context()
	saved, err := handler.recipeService.Save(ctx, middleware.GetSession(ctx), request.input(), &index)
	if err != nil {
		respondError(w, "updating recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (handler *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	removed, err := handler.recipeService.Delete(ctx, middleware.GetSession(ctx), index)
	if err != nil {
		respondError(w, "deleting recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

type RecipeService struct {
	documents *store.Store
	now       func() time.Time
}

func NewRecipeService(documents *store.Store) *RecipeService {
	return &RecipeService{documents: documents, now: time.Now}
}

func (service *RecipeService) List(sess *session.Session) []models.Recipe {
	return sess.Snapshot().Recipes
}

// Save replaces the recipe at editingIndex, keeping its id, or appends a
// new recipe when editingIndex is nil. The whole list is written back with
// the session's revision. The result carries the position the recipe was
// committed at.
func (service *RecipeService) Save(ctx context.Context, sess *session.Session, input models.RecipeInput, editingIndex *int) (models.IndexedRecipe, error) {
	recipe, err := normalizeRecipe(input)
	if err != nil {
		return models.IndexedRecipe{}, err
	}

	var index int
	err = sess.Do(func(state *session.State) error {
		recipes := state.Recipes
		if editingIndex != nil {
			if err := checkIndex(*editingIndex, len(recipes)); err != nil {
				return fmt.Errorf("editing recipe: %w", err)
			}
			index = *editingIndex
			recipe.ID = recipes[index].ID
			recipes[index] = recipe
		} else {
			recipe.ID = service.newID(recipes)
			index = len(recipes)
			recipes = append(recipes, recipe)
		}

		revision, err := service.documents.Write(ctx, RecipesPath, recipes, state.RecipesRevision, "Update: "+recipe.Name)
		if err != nil {
			return fmt.Errorf("saving recipe %s: %w", recipe.Name, err)
		}
		state.Recipes = recipes
		state.RecipesRevision = revision
		return nil
	})
	if err != nil {
		return models.IndexedRecipe{}, err
	}
	return models.IndexedRecipe{Index: index, Recipe: recipe}, nil
}

func (service *RecipeService) Delete(ctx context.Context, sess *session.Session, index int) (models.Recipe, error) {
	var removed models.Recipe
	err := sess.Do(func(state *session.State) error {
		if err := checkIndex(index, len(state.Recipes)); err != nil {
			return fmt.Errorf("deleting recipe: %w", err)
		}
		removed = state.Recipes[index]
		recipes := slices.Delete(state.Recipes, index, index+1)

		revision, err := service.documents.Write(ctx, RecipesPath, recipes, state.RecipesRevision, "Delete: "+removed.Name)
		if err != nil {
			return fmt.Errorf("deleting recipe %s: %w", removed.Name, err)
		}
		state.Recipes = recipes
		state.RecipesRevision = revision
		return nil
	})
	if err != nil {
		return models.Recipe{}, err
	}
	return removed, nil
}

// Search matches term case-insensitively against each recipe's name and
// ingredients. An empty term matches everything.
func (service *RecipeService) Search(sess *session.Session, term string) []models.IndexedRecipe {
	term = strings.ToLower(strings.TrimSpace(term))
	results := []models.IndexedRecipe{}
	for i, recipe := range sess.Snapshot().Recipes {
		if term == "" || recipeMatches(recipe, term) {
			results = append(results, models.IndexedRecipe{Index: i, Recipe: recipe})
		}
	}
	return results
}

func recipeMatches(recipe models.Recipe, term string) bool {
	if strings.Contains(strings.ToLower(recipe.Name), term) {
		return true
	}
	for _, ingredient := range recipe.Ingredients {
		if strings.Contains(strings.ToLower(ingredient), term) {
			return true
		}
	}
	return false
}

// newID derives an id from the current time, stepping forward until it is
// unused.
func (service *RecipeService) newID(recipes []models.Recipe) string {
	used := make(map[string]bool, len(recipes))
	for _, recipe := range recipes {
		used[recipe.ID] = true
	}
	millis := service.now().UnixMilli()
	for {
		id := "R" + strconv.FormatInt(millis, 10)
		if !used[id] {
			return id
		}
		millis++
	}
}

func normalizeRecipe(input models.RecipeInput) (models.Recipe, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Recipe{}, fmt.Errorf("%w: recipe name is required", ErrInvalidInput)
	}

	mealTimes := []models.MealTime{}
	for _, raw := range input.MealTimes {
		mealTime := models.MealTime(strings.TrimSpace(string(raw)))
		if !mealTime.Valid() {
			return models.Recipe{}, fmt.Errorf("%w: unknown meal time %q", ErrInvalidInput, raw)
		}
		if !slices.Contains(mealTimes, mealTime) {
			mealTimes = append(mealTimes, mealTime)
		}
	}

	ingredients := []string{}
	for _, ingredient := range input.Ingredients {
		if trimmed := strings.TrimSpace(ingredient); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}

	return models.Recipe{
		Name:                name,
		MealTimeEligibility: mealTimes,
		Ingredients:         ingredients,
		Instructions:        strings.TrimSpace(input.Instructions),
	}, nil
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, length)
	}
	return nil
}

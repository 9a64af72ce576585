package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/planner"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

type PlanService struct {
	documents *store.Store

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPlanService(documents *store.Store) *PlanService {
	return &PlanService{
		documents: documents,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Preview picks today's meals the way the daily mailer does, then
// tomorrow's from today's, and lists what to buy for tomorrow. Nothing is
// written back.
func (service *PlanService) Preview(ctx context.Context, sess *session.Session) (models.PlanPreview, error) {
	var previous []models.PreviousMeal
	_, found, err := service.documents.Fetch(ctx, PreviousMealsPath, &previous)
	if err != nil {
		return models.PlanPreview{}, fmt.Errorf("loading previous meals: %w", err)
	}
	if !found {
		slog.Info("no previous day meals recorded", "path", PreviousMealsPath)
	}

	recipes := sess.Snapshot().Recipes

	service.mu.Lock()
	defer service.mu.Unlock()
	today := planner.SelectMeals(recipes, planner.Names(previous), models.MealTimes, service.rng)
	tomorrow := planner.SelectMeals(recipes, planner.Names(planner.PreviousMeals(today)), models.MealTimes, service.rng)

	return models.PlanPreview{
		Today:               today,
		Tomorrow:            tomorrow,
		TomorrowIngredients: planner.ShoppingList(tomorrow),
	}, nil
}

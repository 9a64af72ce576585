// Package planner picks the day's meals the way the daily mailer does and
// builds the shopping list for them.
package planner

import (
	"math/rand/v2"
	"sort"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
)

// SelectMeals picks one recipe per meal time. A recipe is a candidate when
// it is eligible for the meal time, was not served the previous day, and
// has not already been picked today. Meal times without a candidate map to
// nil.
func SelectMeals(recipes []models.Recipe, previousNames []string, mealTimes []models.MealTime, rng *rand.Rand) models.MealSelection {
	excluded := make(map[string]bool, len(previousNames))
	for _, name := range previousNames {
		excluded[name] = true
	}

	selection := make(models.MealSelection, len(mealTimes))
	for _, mealTime := range mealTimes {
		var candidates []int
		for i, recipe := range recipes {
			if recipe.EligibleFor(mealTime) && !excluded[recipe.Name] {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			selection[mealTime] = nil
			continue
		}

		picked := recipes[candidates[rng.IntN(len(candidates))]]
		selection[mealTime] = &picked
		excluded[picked.Name] = true
	}
	return selection
}

// PreviousMeals converts a selection into the form the mailer persists.
func PreviousMeals(selection models.MealSelection) []models.PreviousMeal {
	var meals []models.PreviousMeal
	for _, mealTime := range models.MealTimes {
		if recipe := selection[mealTime]; recipe != nil {
			meals = append(meals, models.PreviousMeal{Name: recipe.Name, MealTime: mealTime})
		}
	}
	return meals
}

func Names(meals []models.PreviousMeal) []string {
	names := make([]string, 0, len(meals))
	for _, meal := range meals {
		names = append(names, meal.Name)
	}
	return names
}

// ShoppingList returns the sorted, de-duplicated ingredients of every
// selected recipe.
func ShoppingList(selection models.MealSelection) []string {
	seen := make(map[string]bool)
	ingredients := []string{}
	for _, recipe := range selection {
		if recipe == nil {
			continue
		}
		for _, ingredient := range recipe.Ingredients {
			if !seen[ingredient] {
				seen[ingredient] = true
				ingredients = append(ingredients, ingredient)
			}
		}
	}
	sort.Strings(ingredients)
	return ingredients
}

package models

type MealTime string

const (
	MealTimeBreakfast MealTime = "breakfast"
	MealTimeLunch     MealTime = "lunch"
	MealTimeDinner    MealTime = "dinner"
)

var MealTimes = []MealTime{MealTimeBreakfast, MealTimeLunch, MealTimeDinner}

func (mealTime MealTime) Valid() bool {
	for _, known := range MealTimes {
		if mealTime == known {
			return true
		}
	}
	return false
}

// Recipe is one entry of recipes.json. The instructions live under the
// "recipe" key, which is what the daily mailer reads.
type Recipe struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	MealTimeEligibility []MealTime `json:"mealTimeEligibility"`
	Ingredients         []string   `json:"ingredients"`
	Instructions        string     `json:"recipe"`
}

func (recipe Recipe) EligibleFor(mealTime MealTime) bool {
	for _, eligible := range recipe.MealTimeEligibility {
		if eligible == mealTime {
			return true
		}
	}
	return false
}

type RecipeInput struct {
	Name         string     `json:"name"`
	MealTimes    []MealTime `json:"meal_times"`
	Ingredients  []string   `json:"ingredients"`
	Instructions string     `json:"instructions"`
}

type IndexedRecipe struct {
	Index  int    `json:"index"`
	Recipe Recipe `json:"recipe"`
}

// RecipientConfig is the shape of config.json.
type RecipientConfig struct {
	Recipients []string `json:"recipients"`
}

type PreviousMeal struct {
	Name     string   `json:"name"`
	MealTime MealTime `json:"meal_time"`
}

type Schedule struct {
	Expression string `json:"cron"`
	Display    string `json:"display"`
	Revision   string `json:"revision"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (theme Theme) Valid() bool {
	return theme == ThemeLight || theme == ThemeDark
}

type MealSelection map[MealTime]*Recipe

type PlanPreview struct {
	Today               MealSelection `json:"today"`
	Tomorrow            MealSelection `json:"tomorrow"`
	TomorrowIngredients []string      `json:"tomorrow_ingredients"`
}

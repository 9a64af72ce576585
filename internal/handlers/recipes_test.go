package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/piyush-tyagi-13/meal-planner/internal/github"
	"github.com/piyush-tyagi-13/meal-planner/internal/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/repository"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
	"github.com/piyush-tyagi-13/meal-planner/internal/testutil"
)

type apiFixture struct {
	fake        *testutil.FakeGitHub
	preferences *services.PreferenceService
	router      chi.Router
	cookie      *http.Cookie
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	fake := testutil.NewFakeGitHub(t)
	db := testutil.NewTestDatabase(t)

	preferences := services.NewPreferenceService(repository.NewSettingsRepository(db))
	client := github.NewClient(preferences.TokenSource(), testutil.FakeOwner, testutil.FakeRepo, testutil.FakeBranch).WithBaseURL(fake.URL())
	documents := store.New(client)
	syncService := services.NewSyncService(documents)
	sessionService := services.NewSessionService("test-secret", session.NewRegistry())

	settingsHandler := NewSettingsHandler(preferences, syncService, sessionService)
	syncHandler := NewSyncHandler(syncService, services.NewPlanService(documents))
	recipeHandler := NewRecipeHandler(services.NewRecipeService(documents))
	recipientHandler := NewRecipientHandler(services.NewRecipientService(documents))
	scheduleHandler := NewScheduleHandler(services.NewScheduleService(documents, client, "daily.yml"))

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionService))
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings/token", settingsHandler.SaveToken)
		r.Delete("/settings/token", settingsHandler.ClearToken)
		r.Put("/settings/theme", settingsHandler.SetTheme)
		r.Post("/settings/theme/toggle", settingsHandler.ToggleTheme)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(preferences))
			r.Post("/sync", syncHandler.Sync)
			r.Get("/schedule", scheduleHandler.Get)
			r.Put("/schedule", scheduleHandler.Update)
			r.Post("/schedule/run", scheduleHandler.Run)
			r.Get("/schedule.ics", scheduleHandler.Calendar)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireLoaded(syncService))
				r.Get("/recipes", recipeHandler.List)
				r.Post("/recipes", recipeHandler.Create)
				r.Put("/recipes/{index}", recipeHandler.Update)
				r.Delete("/recipes/{index}", recipeHandler.Delete)
				r.Get("/recipients", recipientHandler.List)
				r.Post("/recipients", recipientHandler.Add)
				r.Delete("/recipients/{index}", recipientHandler.Delete)
				r.Get("/plan", syncHandler.Plan)
			})
		})
	})

	return &apiFixture{fake: fake, preferences: preferences, router: router}
}

func (fixture *apiFixture) connect(t *testing.T) {
	t.Helper()
	if err := fixture.preferences.SaveToken(context.Background(), testutil.FakeToken); err != nil {
		t.Fatalf("saving token: %v", err)
	}
}

func (fixture *apiFixture) seed(t *testing.T, path string, v any) {
	t.Helper()
	text, err := store.MarshalDocument(v)
	if err != nil {
		t.Fatalf("marshaling %s: %v", path, err)
	}
	fixture.fake.SetFile(path, text)
}

// do sends a request, carrying the session cookie between calls.
func (fixture *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	if fixture.cookie != nil {
		request.AddCookie(fixture.cookie)
	}
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)

	for _, cookie := range recorder.Result().Cookies() {
		fixture.cookie = cookie
	}
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(v); err != nil {
		t.Fatalf("decoding response %q: %v", recorder.Body.String(), err)
	}
}

func testRecipes() []models.Recipe {
	return []models.Recipe{
		{ID: "R1", Name: "Poha", MealTimeEligibility: []models.MealTime{models.MealTimeBreakfast}, Ingredients: []string{"poha", "onion"}},
		{ID: "R2", Name: "Rajma Chawal", MealTimeEligibility: []models.MealTime{models.MealTimeLunch}, Ingredients: []string{"rajma", "rice"}},
	}
}

func TestParseIngredientLines(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{name: "one per line", text: "rice\nurad dal", expected: []string{"rice", "urad dal"}},
		{name: "trims and drops blanks", text: "  rice \n\n \r\nsalt\n", expected: []string{"rice", "salt"}},
		{name: "empty", text: "", expected: nil},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got := parseIngredientLines(testCase.text)
			if !reflect.DeepEqual(got, testCase.expected) {
				t.Errorf("expected %v, got %v", testCase.expected, got)
			}
		})
	}
}

func TestRecipesRequireSetup(t *testing.T) {
	fixture := newAPIFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/api/recipes", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "setup required") {
		t.Errorf("expected setup required message, got %s", recorder.Body.String())
	}
}

func TestRecipesListAndSearch(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.connect(t)
	fixture.seed(t, services.RecipesPath, testRecipes())

	var all []models.IndexedRecipe
	decodeBody(t, fixture.do(t, http.MethodGet, "/api/recipes", nil), &all)
	if len(all) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(all))
	}

	var found []models.IndexedRecipe
	decodeBody(t, fixture.do(t, http.MethodGet, "/api/recipes?q=rice", nil), &found)
	if len(found) != 1 || found[0].Index != 1 || found[0].Recipe.Name != "Rajma Chawal" {
		t.Errorf("unexpected search result: %+v", found)
	}
}

func TestRecipeCreateUpdateDelete(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.connect(t)
	fixture.seed(t, services.RecipesPath, testRecipes())

	recorder := fixture.do(t, http.MethodPost, "/api/recipes", map[string]any{
		"name":             "Masala Dosa",
		"meal_times":       []string{"breakfast"},
		"ingredients_text": "rice\nurad dal\n",
		"instructions":     "Ferment overnight.",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var created models.IndexedRecipe
	decodeBody(t, recorder, &created)
	if created.Index != 2 || !strings.HasPrefix(created.Recipe.ID, "R") {
		t.Errorf("unexpected created recipe: %+v", created)
	}
	if len(created.Recipe.Ingredients) != 2 {
		t.Errorf("expected ingredients parsed from text, got %v", created.Recipe.Ingredients)
	}

	recorder = fixture.do(t, http.MethodPut, "/api/recipes/0", map[string]any{"name": "Kanda Poha", "meal_times": []string{"breakfast"}})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = fixture.do(t, http.MethodDelete, "/api/recipes/1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	text, _ := fixture.fake.File(services.RecipesPath)
	var stored []models.Recipe
	json.Unmarshal([]byte(text), &stored)
	if len(stored) != 2 || stored[0].Name != "Kanda Poha" || stored[0].ID != "R1" || stored[1].Name != "Masala Dosa" {
		t.Errorf("unexpected stored recipes: %+v", stored)
	}
}

func TestRecipeErrorsMapToStatuses(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.connect(t)
	fixture.seed(t, services.RecipesPath, testRecipes())
	fixture.do(t, http.MethodGet, "/api/recipes", nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"blank name", http.MethodPost, "/api/recipes", map[string]any{"name": " "}, http.StatusBadRequest},
		{"bad index", http.MethodDelete, "/api/recipes/abc", nil, http.StatusBadRequest},
		{"index out of range", http.MethodDelete, "/api/recipes/9", nil, http.StatusNotFound},
		{"malformed body", http.MethodPost, "/api/recipes", "{", http.StatusBadRequest},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := fixture.do(t, testCase.method, testCase.path, testCase.body)
			if recorder.Code != testCase.status {
				t.Errorf("expected %d, got %d: %s", testCase.status, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestRecipeConflictIs409(t *testing.T) {
	fixture := newAPIFixture(t)
	fixture.connect(t)
	fixture.seed(t, services.RecipesPath, testRecipes())
	fixture.do(t, http.MethodGet, "/api/recipes", nil)

	fixture.seed(t, services.RecipesPath, testRecipes()[:1])
	recorder := fixture.do(t, http.MethodDelete, "/api/recipes/0", nil)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", recorder.Code, recorder.Body.String())
	}

	fixture.fake.FailNext(http.StatusInternalServerError)
	fixture.fake.FailNext(http.StatusInternalServerError)
	recorder = fixture.do(t, http.MethodPost, "/api/sync", nil)
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", recorder.Code)
	}
}

package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/config"
	"github.com/piyush-tyagi-13/meal-planner/internal/github"
	"github.com/piyush-tyagi-13/meal-planner/internal/handlers"
	"github.com/piyush-tyagi-13/meal-planner/internal/middleware"
	"github.com/piyush-tyagi-13/meal-planner/internal/repository"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, sessionService *services.SessionService) *Server {
	settingsRepo := repository.NewSettingsRepository(database)
	preferences := services.NewPreferenceService(settingsRepo)

	client := github.NewClient(preferences.TokenSource(), cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch).
		WithBaseURL(cfg.GitHubAPIURL)
	documents := store.New(client)

	syncService := services.NewSyncService(documents)
	recipeService := services.NewRecipeService(documents)
	recipientService := services.NewRecipientService(documents)
	scheduleService := services.NewScheduleService(documents, client, cfg.WorkflowFile)
	planService := services.NewPlanService(documents)

	settingsHandler := handlers.NewSettingsHandler(preferences, syncService, sessionService)
	syncHandler := handlers.NewSyncHandler(syncService, planService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	recipientHandler := handlers.NewRecipientHandler(recipientService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

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

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}

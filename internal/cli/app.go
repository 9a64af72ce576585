package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/piyush-tyagi-13/meal-planner/internal/config"
	"github.com/piyush-tyagi-13/meal-planner/internal/database"
	"github.com/piyush-tyagi-13/meal-planner/internal/github"
	"github.com/piyush-tyagi-13/meal-planner/internal/repository"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

// app holds the services one command invocation works with.
type app struct {
	config   config.Config
	database *sql.DB

	preferences *services.PreferenceService
	sync        *services.SyncService
	recipes     *services.RecipeService
	recipients  *services.RecipientService
	schedule    *services.ScheduleService
	plan        *services.PlanService
}

func openApp(cfg config.Config) (*app, error) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	preferences := services.NewPreferenceService(repository.NewSettingsRepository(db))
	client := github.NewClient(preferences.TokenSource(), cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch).
		WithBaseURL(cfg.GitHubAPIURL)
	documents := store.New(client)

	return &app{
		config:      cfg,
		database:    db,
		preferences: preferences,
		sync:        services.NewSyncService(documents),
		recipes:     services.NewRecipeService(documents),
		recipients:  services.NewRecipientService(documents),
		schedule:    services.NewScheduleService(documents, client, cfg.WorkflowFile),
		plan:        services.NewPlanService(documents),
	}, nil
}

// loadedSession starts a session holding the current stored collections.
func (application *app) loadedSession(ctx context.Context) (*session.Session, error) {
	sess := session.New()
	if err := application.sync.Refresh(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// loadedSessionWithToken saves token and keeps it only if it loads the data.
func (application *app) loadedSessionWithToken(ctx context.Context, token string) (*session.Session, error) {
	sess := session.New()
	if err := application.preferences.Connect(ctx, token, application.sync, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (application *app) Close() error {
	return application.database.Close()
}

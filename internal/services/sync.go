package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	RecipesPath       = "recipes.json"
	ConfigPath        = "config.json"
	PreviousMealsPath = "previous_day_meals.json"
)

type SyncService struct {
	documents *store.Store
}

func NewSyncService(documents *store.Store) *SyncService {
	return &SyncService{documents: documents}
}

// Refresh reloads both collections. The recipe list is required; a
// recipient list that cannot be read is logged and left empty. Both are
// committed to the session together.
func (service *SyncService) Refresh(ctx context.Context, sess *session.Session) error {
	var (
		recipes            []models.Recipe
		recipesRevision    string
		recipientConfig    models.RecipientConfig
		recipientsRevision string
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		revision, found, err := service.documents.Fetch(groupCtx, RecipesPath, &recipes)
		if err != nil {
			return fmt.Errorf("loading recipes: %w", err)
		}
		if !found {
			slog.Info("recipes document not found, starting empty", "path", RecipesPath)
		}
		recipesRevision = revision
		return nil
	})
	group.Go(func() error {
		revision, found, err := service.documents.Fetch(groupCtx, ConfigPath, &recipientConfig)
		if err != nil {
			slog.Warn("loading recipients", "path", ConfigPath, "error", err)
			recipientConfig = models.RecipientConfig{}
			return nil
		}
		if !found {
			slog.Warn("recipient config not found", "path", ConfigPath)
		}
		recipientsRevision = revision
		return nil
	})
	if err := group.Wait(); err != nil {
		return err
	}

	if recipes == nil {
		recipes = []models.Recipe{}
	}
	recipients := recipientConfig.Recipients
	if recipients == nil {
		recipients = []string{}
	}

	return sess.Do(func(state *session.State) error {
		state.Recipes = recipes
		state.RecipesRevision = recipesRevision
		state.Recipients = recipients
		state.RecipientsRevision = recipientsRevision
		state.Loaded = true
		return nil
	})
}

// EnsureLoaded refreshes sess only if it has never been loaded.
func (service *SyncService) EnsureLoaded(ctx context.Context, sess *session.Session) error {
	if sess.Loaded() {
		return nil
	}
	return service.Refresh(ctx, sess)
}

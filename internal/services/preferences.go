package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/repository"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"golang.org/x/oauth2"
)

const (
	TokenKey = "meal_planner_token"
	ThemeKey = "meal_planner_theme"
)

// Refresher reloads a session from the backend.
type Refresher interface {
	Refresh(ctx context.Context, sess *session.Session) error
}

type PreferenceService struct {
	settingsRepo repository.SettingsRepository
}

func NewPreferenceService(settingsRepo repository.SettingsRepository) *PreferenceService {
	return &PreferenceService{settingsRepo: settingsRepo}
}

// Token returns the saved access token, or "" when none is saved.
func (service *PreferenceService) Token(ctx context.Context) (string, error) {
	return service.optional(ctx, TokenKey)
}

func (service *PreferenceService) HasToken(ctx context.Context) (bool, error) {
	token, err := service.Token(ctx)
	return token != "", err
}

func (service *PreferenceService) SaveToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if err := service.settingsRepo.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

func (service *PreferenceService) ClearToken(ctx context.Context) error {
	if err := service.settingsRepo.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

// Connect saves token and proves it by refreshing sess. A token that
// cannot load the data is cleared again.
func (service *PreferenceService) Connect(ctx context.Context, token string, refresher Refresher, sess *session.Session) error {
	if err := service.SaveToken(ctx, token); err != nil {
		return err
	}
	if err := refresher.Refresh(ctx, sess); err != nil {
		if clearErr := service.ClearToken(ctx); clearErr != nil {
			slog.Error("clearing rejected token", "error", clearErr)
		}
		return fmt.Errorf("connecting: %w", err)
	}
	slog.Info("cloud sync connected")
	return nil
}

// Theme returns the saved theme, falling back to light for a missing or
// unknown value.
func (service *PreferenceService) Theme(ctx context.Context) (models.Theme, error) {
	value, err := service.optional(ctx, ThemeKey)
	if err != nil {
		return models.ThemeLight, err
	}
	if theme := models.Theme(value); theme.Valid() {
		return theme, nil
	}
	return models.ThemeLight, nil
}

func (service *PreferenceService) SetTheme(ctx context.Context, theme models.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidInput, theme)
	}
	if err := service.settingsRepo.Set(ctx, ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

func (service *PreferenceService) ToggleTheme(ctx context.Context) (models.Theme, error) {
	current, err := service.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := models.ThemeDark
	if current == models.ThemeDark {
		next = models.ThemeLight
	}
	if err := service.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// TokenSource exposes the saved token to an HTTP client. The token is read
// on every call so a token saved or cleared later takes effect at once.
func (service *PreferenceService) TokenSource() oauth2.TokenSource {
	return settingsTokenSource{service: service}
}

func (service *PreferenceService) optional(ctx context.Context, key string) (string, error) {
	value, err := service.settingsRepo.Get(ctx, key)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference: %w", err)
	}
	return value, nil
}

type settingsTokenSource struct {
	service *PreferenceService
}

func (source settingsTokenSource) Token() (*oauth2.Token, error) {
	token, err := source.service.Token(context.Background())
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrTokenMissing
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

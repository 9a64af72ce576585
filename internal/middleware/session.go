package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
)

type contextKey string

const SessionContextKey contextKey = "session"

// LoadSession attaches the client's session to the request context,
// starting one when the request carries no valid cookie.
func LoadSession(sessionService *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionService.Current(w, r)
			if err != nil {
				slog.Error("loading session", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to start session")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireToken rejects requests until an access token has been saved.
func RequireToken(preferences *services.PreferenceService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := preferences.HasToken(r.Context())
			if err != nil {
				slog.Error("checking token", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to read settings")
				return
			}
			if !ok {
				writeError(w, http.StatusUnauthorized, "setup required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLoaded makes sure the session holds the stored collections
// before the handler runs.
func RequireLoaded(syncService *services.SyncService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := syncService.EnsureLoaded(r.Context(), GetSession(r.Context())); err != nil {
				slog.Error("loading data", "error", err)
				if errors.Is(err, services.ErrTokenMissing) {
					writeError(w, http.StatusUnauthorized, "setup required")
					return
				}
				writeError(w, http.StatusBadGateway, "cloud sync error")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(SessionContextKey).(*session.Session)
	return sess
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

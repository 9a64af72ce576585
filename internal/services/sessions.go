package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
)

const (
	sessionCookieName = "meal_planner_session"
	SessionMaxAge     = 30 * 24 * time.Hour
)

// SessionService ties browser clients to server-side sessions through a
// signed cookie.
type SessionService struct {
	secureCookie *securecookie.SecureCookie
	registry     *session.Registry
}

type SessionData struct {
	SessionID string `json:"session_id"`
}

func NewSessionService(secret string, registry *session.Registry) *SessionService {
	secureCookie := securecookie.New([]byte(secret), nil)
	secureCookie.MaxAge(int(SessionMaxAge / time.Second))
	return &SessionService{
		secureCookie: secureCookie,
		registry:     registry,
	}
}

// Current returns the session named by the request's cookie, starting a
// new one (and setting the cookie) when there is none or it has expired.
func (service *SessionService) Current(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if data, err := service.GetSession(r); err == nil {
		if sess, ok := service.registry.Get(data.SessionID); ok {
			return sess, nil
		}
	}

	sess := service.registry.Create()
	if err := service.SetSession(w, sess.ID); err != nil {
		return nil, err
	}
	slog.Debug("started session", "id", sess.ID)
	return sess, nil
}

func (service *SessionService) SetSession(w http.ResponseWriter, sessionID string) error {
	encoded, err := json.Marshal(SessionData{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionMaxAge / time.Second),
	})
	return nil
}

func (service *SessionService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(decoded), &data); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return data, nil
}

func (service *SessionService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Reset forgets every session, forcing each client to reload.
func (service *SessionService) Reset() {
	service.registry.Reset()
}

// PruneExpired drops sessions older than the cookie lifetime.
func (service *SessionService) PruneExpired(now time.Time) int {
	return service.registry.Prune(now.Add(-SessionMaxAge))
}

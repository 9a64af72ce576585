// Package session holds one client's view of the two stored collections
// together with the revision token each was read or written at.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/piyush-tyagi-13/meal-planner/internal/models"
)

type State struct {
	Recipes            []models.Recipe
	RecipesRevision    string
	Recipients         []string
	RecipientsRevision string
	Loaded             bool
}

func (state State) clone() State {
	recipes := make([]models.Recipe, len(state.Recipes))
	for i, recipe := range state.Recipes {
		recipe.MealTimeEligibility = slices.Clone(recipe.MealTimeEligibility)
		recipe.Ingredients = slices.Clone(recipe.Ingredients)
		recipes[i] = recipe
	}
	state.Recipes = recipes
	state.Recipients = append([]string{}, state.Recipients...)
	return state
}

type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state State
}

func New() *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: time.Now()}
}

// Snapshot returns a copy that callers may modify freely.
func (session *Session) Snapshot() State {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.state.clone()
}

func (session *Session) Loaded() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.state.Loaded
}

// Do runs fn against a copy of the state while holding the session lock and
// commits the copy only when fn succeeds. A collection and its revision are
// therefore always replaced together, and a failed action leaves the
// last-known-good state in place.
func (session *Session) Do(fn func(state *State) error) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	working := session.state.clone()
	if err := fn(&working); err != nil {
		return err
	}
	session.state = working
	return nil
}

// Registry maps session ids to sessions for long-running servers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (registry *Registry) Get(id string) (*Session, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	session, ok := registry.sessions[id]
	return session, ok
}

func (registry *Registry) Create() *Session {
	session := New()
	registry.mu.Lock()
	registry.sessions[session.ID] = session
	registry.mu.Unlock()
	return session
}

// Reset drops every session so the next request reloads from the backend.
// Used when the access token changes.
func (registry *Registry) Reset() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.sessions = make(map[string]*Session)
}

// Prune removes sessions created before cutoff and returns how many were
// removed.
func (registry *Registry) Prune(cutoff time.Time) int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	removed := 0
	for id, session := range registry.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(registry.sessions, id)
			removed++
		}
	}
	return removed
}

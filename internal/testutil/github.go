package testutil

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/piyush-tyagi-13/meal-planner/internal/github"
	"golang.org/x/oauth2"
)

const (
	FakeOwner  = "family"
	FakeRepo   = "meal-planner"
	FakeBranch = "main"
	FakeToken  = "test-token"
)

// FakeGitHub serves the contents and workflow dispatch endpoints for a
// single repository branch, rejecting writes whose sha does not match the
// stored blob the way GitHub does.
type FakeGitHub struct {
	Server *httptest.Server

	mu         sync.Mutex
	files      map[string][]byte
	failures   []int
	dispatches []string
	requests   []string
	lastQuery  map[string]string
}

func NewFakeGitHub(t *testing.T) *FakeGitHub {
	t.Helper()

	fake := &FakeGitHub{files: make(map[string][]byte)}

	router := chi.NewRouter()
	router.Use(fake.record)
	router.Get("/repos/{owner}/{repo}/contents/*", fake.getContents)
	router.Put("/repos/{owner}/{repo}/contents/*", fake.putContents)
	router.Post("/repos/{owner}/{repo}/actions/workflows/{file}/dispatches", fake.dispatch)

	fake.Server = httptest.NewServer(router)
	t.Cleanup(fake.Server.Close)
	return fake
}

func (fake *FakeGitHub) URL() string {
	return fake.Server.URL
}

// Client returns a github client authorised against the fake.
func (fake *FakeGitHub) Client() *github.Client {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: FakeToken})
	return github.NewClient(tokens, FakeOwner, FakeRepo, FakeBranch).WithBaseURL(fake.URL())
}

// SetFile stores content at path and returns its blob sha.
func (fake *FakeGitHub) SetFile(path string, content string) string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.files[path] = []byte(content)
	return BlobSHA([]byte(content))
}

func (fake *FakeGitHub) File(path string) (string, bool) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	content, ok := fake.files[path]
	return string(content), ok
}

func (fake *FakeGitHub) SHA(path string) string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	content, ok := fake.files[path]
	if !ok {
		return ""
	}
	return BlobSHA(content)
}

// FailNext makes the next request answer with status.
func (fake *FakeGitHub) FailNext(status int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.failures = append(fake.failures, status)
}

func (fake *FakeGitHub) Dispatches() []string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]string(nil), fake.dispatches...)
}

// Requests lists "METHOD path" for every request served.
func (fake *FakeGitHub) Requests() []string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return append([]string(nil), fake.requests...)
}

func (fake *FakeGitHub) LastQuery() map[string]string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.lastQuery
}

// BlobSHA is the git blob hash of content, which GitHub reports as sha.
func BlobSHA(content []byte) string {
	hash := sha1.New()
	fmt.Fprintf(hash, "blob %d\x00", len(content))
	hash.Write(content)
	return hex.EncodeToString(hash.Sum(nil))
}

func (fake *FakeGitHub) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		fake.requests = append(fake.requests, r.Method+" "+r.URL.Path)
		query := make(map[string]string)
		for key := range r.URL.Query() {
			query[key] = r.URL.Query().Get(key)
		}
		fake.lastQuery = query
		var status int
		if len(fake.failures) > 0 {
			status = fake.failures[0]
			fake.failures = fake.failures[1:]
		}
		fake.mu.Unlock()

		if status != 0 {
			writeMessage(w, status, http.StatusText(status))
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+FakeToken {
			writeMessage(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func knownRepository(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "owner") != FakeOwner || chi.URLParam(r, "repo") != FakeRepo {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return false
	}
	return true
}

func (fake *FakeGitHub) getContents(w http.ResponseWriter, r *http.Request) {
	if !knownRepository(w, r) {
		return
	}
	path := chi.URLParam(r, "*")
	if ref := r.URL.Query().Get("ref"); ref != "" && ref != FakeBranch {
		writeMessage(w, http.StatusNotFound, "No commit found for the ref "+ref)
		return
	}

	fake.mu.Lock()
	content, ok := fake.files[path]
	fake.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type":     "file",
		"encoding": "base64",
		"name":     path[strings.LastIndex(path, "/")+1:],
		"path":     path,
		"sha":      BlobSHA(content),
		"size":     len(content),
		"content":  wrapBase64(base64.StdEncoding.EncodeToString(content)),
	})
}

func (fake *FakeGitHub) putContents(w http.ResponseWriter, r *http.Request) {
	if !knownRepository(w, r) {
		return
	}
	path := chi.URLParam(r, "*")

	var body struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Problems parsing JSON")
		return
	}
	if body.Branch != "" && body.Branch != FakeBranch {
		writeMessage(w, http.StatusNotFound, "Branch not found")
		return
	}
	content, err := base64.StdEncoding.DecodeString(body.Content)
	if err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, "content is not valid Base64")
		return
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	existing, exists := fake.files[path]
	switch {
	case exists && body.SHA == "":
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid request.\n\n\"sha\" wasn't supplied.")
		return
	case exists && body.SHA != BlobSHA(existing):
		writeMessage(w, http.StatusConflict, fmt.Sprintf("%s does not match %s", path, body.SHA))
		return
	case !exists && body.SHA != "":
		writeMessage(w, http.StatusConflict, fmt.Sprintf("%s does not match %s", path, body.SHA))
		return
	}

	fake.files[path] = content
	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	sha := BlobSHA(content)
	writeJSON(w, status, map[string]any{
		"content": map[string]any{"path": path, "sha": sha, "type": "file"},
		"commit":  map[string]any{"sha": BlobSHA([]byte(body.Message + sha)), "message": body.Message},
	})
}

func (fake *FakeGitHub) dispatch(w http.ResponseWriter, r *http.Request) {
	if !knownRepository(w, r) {
		return
	}
	var body struct {
		Ref string `json:"ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Ref == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "Required input 'ref' not provided")
		return
	}

	fake.mu.Lock()
	fake.dispatches = append(fake.dispatches, chi.URLParam(r, "file")+"@"+body.Ref)
	fake.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func wrapBase64(encoded string) string {
	var builder strings.Builder
	for len(encoded) > 60 {
		builder.WriteString(encoded[:60])
		builder.WriteString("\n")
		encoded = encoded[60:]
	}
	builder.WriteString(encoded)
	builder.WriteString("\n")
	return builder.String()
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

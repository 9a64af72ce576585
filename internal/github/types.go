// Package github is a small client for the parts of the GitHub REST API
// used to keep documents in a repository: the contents endpoint and
// workflow dispatch.
package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024
)

// ErrNotFound is returned by GetContents when the path does not exist on
// the branch.
var ErrNotFound = errors.New("github: not found")

// Client talks to one repository branch.
type Client struct {
	Owner      string
	Repo       string
	Branch     string
	BaseURL    string
	HTTPClient *http.Client

	now func() time.Time
}

// Content is a file as returned by the contents endpoint. Content holds
// base64 text, possibly wrapped across lines.
type Content struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
}

// ContentUpdate is the body of a contents PUT. An empty SHA creates the
// file.
type ContentUpdate struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

type ContentResponse struct {
	Content Content `json:"content"`
	Commit  Commit  `json:"commit"`
}

type workflowDispatch struct {
	Ref string `json:"ref"`
}

// APIError is any non-success response other than a 404 on read.
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("github: unexpected status %d", err.StatusCode)
	}
	return fmt.Sprintf("github: %s (status %d)", err.Message, err.StatusCode)
}

// Conflict reports whether the backend rejected a write because the
// supplied SHA no longer matches the stored blob.
func (err *APIError) Conflict() bool {
	return err.StatusCode == http.StatusConflict
}

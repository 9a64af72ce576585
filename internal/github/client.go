package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// NewClient creates a client whose requests are authorised by tokens.
// The source is consulted on every request, so a token saved after the
// client was built is picked up immediately.
func NewClient(tokens oauth2.TokenSource, owner, repo, branch string) *Client {
	return &Client{
		Owner:   owner,
		Repo:    repo,
		Branch:  branch,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
			Timeout:   DefaultTimeout,
		},
		now: time.Now,
	}
}

// WithHTTPClient returns a copy of the client using httpClient.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	clone := *c
	clone.HTTPClient = httpClient
	return &clone
}

// WithBaseURL returns a copy of the client pointed at baseURL (tests, GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &clone
}

func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.BaseURL, url.PathEscape(c.Owner), url.PathEscape(c.Repo), strings.Join(segments, "/"))
}

// GetContents reads path on the client's branch. Every call carries a
// fresh "t" query value so intermediate caches never answer it.
func (c *Client) GetContents(ctx context.Context, path string) (*Content, error) {
	values := url.Values{}
	values.Set("ref", c.Branch)
	values.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))

	body, err := c.do(ctx, http.MethodGet, c.contentsURL(path)+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var content Content
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("parsing contents response: %w", err)
	}
	if content.Type != "" && content.Type != "file" {
		return nil, fmt.Errorf("%s is a %s, not a file", path, content.Type)
	}
	return &content, nil
}

// PutContents creates or replaces path and returns the stored blob SHA.
func (c *Client) PutContents(ctx context.Context, path string, update ContentUpdate) (*ContentResponse, error) {
	if update.Branch == "" {
		update.Branch = c.Branch
	}

	body, err := c.do(ctx, http.MethodPut, c.contentsURL(path), update)
	if err != nil {
		return nil, err
	}

	var response ContentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parsing update response: %w", err)
	}
	if response.Content.SHA == "" {
		return nil, errors.New("update response carries no content sha")
	}
	return &response, nil
}

// DispatchWorkflow triggers a workflow_dispatch run of workflowFile on the
// client's branch.
func (c *Client) DispatchWorkflow(ctx context.Context, workflowFile string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		c.BaseURL, url.PathEscape(c.Owner), url.PathEscape(c.Repo), url.PathEscape(workflowFile))

	_, err := c.do(ctx, http.MethodPost, endpoint, workflowDispatch{Ref: c.Branch})
	return err
}

func (c *Client) do(ctx context.Context, method, urlStr string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}

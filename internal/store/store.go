// Package store keeps JSON and text documents in a GitHub repository,
// using each file's blob SHA as its revision token.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/piyush-tyagi-13/meal-planner/internal/github"
)

// ErrSync wraps every failure to read or write a document other than a
// read of a missing file.
var ErrSync = errors.New("cloud sync error")

type ContentsAPI interface {
	GetContents(ctx context.Context, path string) (*github.Content, error)
	PutContents(ctx context.Context, path string, update github.ContentUpdate) (*github.ContentResponse, error)
}

type Store struct {
	contents ContentsAPI
}

func New(contents ContentsAPI) *Store {
	return &Store{contents: contents}
}

// Fetch decodes the JSON document at path into v. A missing document
// reports found=false and leaves v untouched.
func (store *Store) Fetch(ctx context.Context, path string, v any) (revision string, found bool, err error) {
	content, err := store.contents.GetContents(ctx, path)
	if errors.Is(err, github.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: fetching %s: %w", ErrSync, path, err)
	}
	if err := DecodeDocument(content.Content, v); err != nil {
		return "", false, fmt.Errorf("%w: reading %s: %w", ErrSync, path, err)
	}
	return content.SHA, true, nil
}

// Write replaces the document at path with v, provided the stored blob
// still matches revision. An empty revision creates the document.
func (store *Store) Write(ctx context.Context, path string, v any, revision, message string) (string, error) {
	encoded, err := EncodeDocument(v)
	if err != nil {
		return "", fmt.Errorf("%w: encoding %s: %w", ErrSync, path, err)
	}
	return store.put(ctx, path, encoded, revision, message)
}

func (store *Store) FetchText(ctx context.Context, path string) (text string, revision string, found bool, err error) {
	content, err := store.contents.GetContents(ctx, path)
	if errors.Is(err, github.ErrNotFound) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("%w: fetching %s: %w", ErrSync, path, err)
	}
	text, err = DecodeText(content.Content)
	if err != nil {
		return "", "", false, fmt.Errorf("%w: reading %s: %w", ErrSync, path, err)
	}
	return text, content.SHA, true, nil
}

func (store *Store) WriteText(ctx context.Context, path, text, revision, message string) (string, error) {
	return store.put(ctx, path, EncodeText(text), revision, message)
}

func (store *Store) put(ctx context.Context, path, encoded, revision, message string) (string, error) {
	response, err := store.contents.PutContents(ctx, path, github.ContentUpdate{
		Message: message,
		Content: encoded,
		SHA:     revision,
	})
	if err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", ErrSync, path, err)
	}
	return response.Content.SHA, nil
}

// IsConflict reports whether err is a write rejected because the revision
// was stale.
func IsConflict(err error) bool {
	var apiErr *github.APIError
	return errors.As(err, &apiErr) && apiErr.Conflict()
}

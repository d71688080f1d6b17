// Package firebase implements the remote.Store interface against a
// Realtime-Database-style REST backend.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"todolist/internal/auth"
	"todolist/internal/config"
	"todolist/internal/identity"
	"todolist/internal/remote"
	"todolist/internal/task"
)

const (
	// APITimeout is the timeout for remote calls.
	APITimeout = 5 * time.Second
)

// Settings holds the remote database location, read from database.json in
// the config directory.
type Settings struct {
	URL string `json:"url"`
}

// LoadSettings reads and validates the database settings file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read %s: %w", config.DatabaseFile, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", config.DatabaseFile, err)
	}
	if _, err := url.ParseRequestURI(s.URL); err != nil || s.URL == "" {
		return Settings{}, fmt.Errorf("invalid database url %q", s.URL)
	}
	return s, nil
}

// Client talks to the per-user document collections over authorized HTTP.
type Client struct {
	base       string
	httpClient *http.Client
}

// New creates a Client from the stored OAuth credentials and database
// settings. Requires oauth_client.json, token.json, and database.json to
// exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	settings, err := LoadSettings(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, auth.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}

	// Token source auto-refreshes against the stored refresh token.
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	return &Client{
		base:       strings.TrimRight(settings.URL, "/"),
		httpClient: oauth2.NewClient(ctx, tokenSource),
	}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and base URL
// (for testing).
func NewWithHTTPClient(base string, httpClient *http.Client) *Client {
	return &Client{base: strings.TrimRight(base, "/"), httpClient: httpClient}
}

// FetchAll implements remote.Store. A single document that fails to decode
// aborts the whole fetch.
func (c *Client) FetchAll(ctx context.Context, id identity.Identity) ([]task.Task, error) {
	body, err := c.do(ctx, http.MethodGet, c.tasksURL(id), nil)
	if err != nil {
		return nil, &remote.FetchError{Err: wrapError(err)}
	}

	// The collection is a JSON object keyed by task id, or null when empty.
	var docs map[string]map[string]any
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, &remote.FetchError{Err: fmt.Errorf("malformed collection: %w", err)}
	}

	tasks := make([]task.Task, 0, len(docs))
	for _, fields := range docs {
		t, err := task.Decode(fields)
		if err != nil {
			return nil, &remote.FetchError{Err: err}
		}
		tasks = append(tasks, t)
	}

	// The wire object is unordered; document-key order keeps ingest
	// deterministic.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Save implements remote.Store. The record is overwritten whole.
func (c *Client) Save(ctx context.Context, t task.Task, id identity.Identity) error {
	if err := t.Validate(); err != nil {
		return &remote.WriteError{Op: "save", Err: err}
	}
	payload, err := json.Marshal(t.Encode())
	if err != nil {
		return &remote.WriteError{Op: "save", Err: err}
	}
	if _, err := c.do(ctx, http.MethodPut, c.taskURL(id, t.ID), payload); err != nil {
		return &remote.WriteError{Op: "save", Err: wrapError(err)}
	}
	return nil
}

// Remove implements remote.Store. Removing an absent id succeeds.
func (c *Client) Remove(ctx context.Context, t task.Task, id identity.Identity) error {
	_, err := c.do(ctx, http.MethodDelete, c.taskURL(id, t.ID), nil)
	if err != nil && !isNotFound(err) {
		return &remote.WriteError{Op: "remove", Err: wrapError(err)}
	}
	return nil
}

// SaveIdentity implements remote.Store.
func (c *Client) SaveIdentity(ctx context.Context, id identity.Identity) error {
	payload, err := json.Marshal(id)
	if err != nil {
		return &remote.WriteError{Op: "save identity", Err: err}
	}
	if _, err := c.do(ctx, http.MethodPut, c.profileURL(id), payload); err != nil {
		return &remote.WriteError{Op: "save identity", Err: wrapError(err)}
	}
	return nil
}

func (c *Client) tasksURL(id identity.Identity) string {
	return fmt.Sprintf("%s/users/%s/tasks.json", c.base, EmailKey(id.Email))
}

func (c *Client) taskURL(id identity.Identity, taskID string) string {
	return fmt.Sprintf("%s/users/%s/tasks/%s.json", c.base, EmailKey(id.Email), taskID)
}

func (c *Client) profileURL(id identity.Identity) string {
	return fmt.Sprintf("%s/users/%s/profile.json", c.base, EmailKey(id.Email))
}

// EmailKey escapes an email address for use as a document key. Dots are not
// allowed in keys, so they become commas.
func EmailKey(email string) string {
	return strings.ReplaceAll(email, ".", ",")
}

// statusError carries a non-2xx response status.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}
	return data, nil
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	if se, ok := err.(*statusError); ok {
		switch se.code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: todolist login)")
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}

	return err
}

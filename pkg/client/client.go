// Package client is a Go client for the inkwell API. It holds the session
// cookies and transparently renews an expired access token: a 401 triggers
// exactly one refresh attempt before the request fails for good, and
// concurrent requests share a single in-flight refresh instead of racing the
// refresh endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// ErrSessionExpired is returned when the refresh attempt after a 401 also
// fails. Callers should treat it as a forced logout.
var ErrSessionExpired = errors.New("session expired")

// refreshReuseWindow is how long a completed refresh outcome is replayed to
// callers that were queued behind it.
const refreshReuseWindow = 2 * time.Second

// APIError carries a non-success envelope response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// User mirrors the user object returned by the API.
type User struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
	Role   string  `json:"role"`
}

// Client is a session-holding API client.
type Client struct {
	baseURL string
	http    *http.Client

	mu            sync.Mutex
	lastRefresh   time.Time
	lastRefreshOK bool
}

// New creates a Client for the given base URL.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

// Login authenticates with a Google ID token credential and stores the
// session cookies.
func (c *Client) Login(ctx context.Context, credential string) (*User, error) {
	var data struct {
		User User `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/auth/google", map[string]string{"credential": credential}, &data)
	if err != nil {
		return nil, err
	}
	return &data.User, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var data struct {
		User User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Do performs an authenticated request. On a 401 it attempts one silent
// refresh and replays the request; a second 401 or a failed refresh surfaces
// ErrSessionExpired. It never loops.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	err := c.call(ctx, method, path, body, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}

	if !c.refresh(ctx) {
		return ErrSessionExpired
	}

	err = c.call(ctx, method, path, body, out)
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return err
}

// refresh renews the session, serializing concurrent callers. Callers queued
// behind an in-flight refresh reuse its outcome instead of issuing their own,
// so a burst of expired requests cannot trigger competing rotations.
func (c *Client) refresh(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastRefresh) < refreshReuseWindow {
		return c.lastRefreshOK
	}

	err := c.call(ctx, http.MethodPost, "/auth/refresh", nil, nil)
	c.lastRefresh = time.Now()
	c.lastRefreshOK = err == nil

	return c.lastRefreshOK
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}

	return nil
}

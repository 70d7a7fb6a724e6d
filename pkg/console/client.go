package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// envelope is the backend's uniform response shape.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is the console's HTTP transport. It attaches the bearer token,
// unwraps the response envelope, and routes every authenticated 401
// through the unauthorized hook so the session manager can clear state.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token func() string
	// onUnauthorized receives the request path that triggered the 401.
	// The login endpoint is exempt: a rejected login is a credential
	// problem, not an expired session.
	onUnauthorized func(path string)
}

// NewClient builds a Client for the given base URL. httpClient may be
// nil, http.DefaultClient is used then.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetTokenSource installs the bearer token provider. An empty return
// value sends the request unauthenticated.
func (c *Client) SetTokenSource(source func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = source
}

// SetUnauthorizedHook installs the 401 interceptor.
func (c *Client) SetUnauthorizedHook(hook func(path string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = hook
}

// Get performs a GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body and decodes the envelope data
// into out. body and out may both be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("console: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("console: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	tokenSource := c.token
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if tokenSource != nil {
		if token := tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &NetworkError{Err: fmt.Errorf("decode envelope: %w", err)}
	}

	if env.Code == 401 && !isLoginPath(path) {
		if hook != nil {
			hook(path)
		}
		return apiError(env.Code, env.Message)
	}
	if env.Code != 200 {
		return apiError(env.Code, env.Message)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("console: decode response data: %w", err)
		}
	}
	return nil
}

func isLoginPath(path string) bool {
	return strings.HasSuffix(path, "/users/login")
}

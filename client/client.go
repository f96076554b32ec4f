// Package client is a Go client for the HabitHome API. It keeps the current
// token pair and, when a request comes back 401, refreshes the pair once and
// retries that request exactly once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Config configures a Client. Locale is sent as Accept-Language ("en" or
// "zh"). OnTokens, if set, is called whenever the token pair changes.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Locale   string
	OnTokens func(access, refresh string)
}

type Client struct {
	baseURL    string
	locale     string
	httpClient *http.Client
	onTokens   func(access, refresh string)

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// refreshMu serializes refreshes so concurrent 401s trigger one call.
	refreshMu sync.Mutex
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		locale:   cfg.Locale,
		onTokens: cfg.OnTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("habithome: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = access, refresh
	c.mu.Unlock()
	if c.onTokens != nil {
		c.onTokens(access, refresh)
	}
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Do sends an authenticated request and decodes the envelope's data into
// out. A 401 triggers one refresh and one retry; any other failure, or a
// second 401, is returned as is.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	access, _ := c.Tokens()
	err := c.send(ctx, method, path, access, body, out)
	if !IsUnauthorized(err) {
		return err
	}

	if refreshErr := c.refresh(ctx, access); refreshErr != nil {
		return err
	}

	access, _ = c.Tokens()
	return c.send(ctx, method, path, access, body, out)
}

// refresh exchanges the refresh token for a new pair. staleAccess is the
// token that was rejected; if another goroutine already replaced it, no
// request is made.
func (c *Client) refresh(ctx context.Context, staleAccess string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.Tokens()
	if access != staleAccess && access != "" {
		return nil
	}
	if refresh == "" {
		return errors.New("habithome: no refresh token")
	}

	var s Session
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refresh}, &s); err != nil {
		if IsUnauthorized(err) {
			c.SetTokens("", "")
		}
		return err
	}
	c.SetTokens(s.Token, s.RefreshToken)
	return nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && res.StatusCode < 300 {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	if res.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: msg, Details: env.Details}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}
	return nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*Session, error) {
	var s Session
	err := c.send(ctx, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"name":            name,
	}, &s)
	if err != nil {
		return nil, err
	}
	c.SetTokens(s.Token, s.RefreshToken)
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.send(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}
	c.SetTokens(s.Token, s.RefreshToken)
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Families(ctx context.Context) ([]Family, error) {
	var out []Family
	if err := c.Do(ctx, http.MethodGet, "/api/families", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFamily(ctx context.Context, name string, description *string) (*Family, error) {
	var f Family
	err := c.Do(ctx, http.MethodPost, "/api/families", map[string]any{"name": name, "description": description}, &f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) JoinFamily(ctx context.Context, inviteCode string) (*Family, error) {
	var f Family
	if err := c.Do(ctx, http.MethodPost, "/api/families/join", map[string]string{"inviteCode": inviteCode}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Tasks lists tasks. familyID and sort may be empty.
func (c *Client) Tasks(ctx context.Context, familyID, sort string) ([]Task, error) {
	q := url.Values{}
	if familyID != "" {
		q.Set("familyId", familyID)
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []Task
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in CreateTask) (*Task, error) {
	var t Task
	if err := c.Do(ctx, http.MethodPost, "/api/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask sends patch as is; use a map to send explicit nulls.
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch any) (*Task, error) {
	var t Task
	if err := c.Do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(taskID), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CompleteTask(ctx context.Context, taskID string) (*Task, error) {
	var t Task
	if err := c.Do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(taskID)+"/complete", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.Do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(taskID), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.Do(ctx, http.MethodGet, "/api/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

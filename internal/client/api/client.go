// Package api implements the HTTP client for the authkeeper server.
// The session cookie issued on login lives in a cookie jar; with a session
// store attached it also survives process restarts, so one CLI invocation's
// login is visible to the next.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/authkeeper/internal/client/session"
	"github.com/iudanet/authkeeper/pkg/api"
)

// Client is an HTTP client for the authkeeper server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serverURL  *url.URL
	sessions   *session.Store
}

// NewClient creates a new API client for the server at baseURL. The session
// cookie is kept in memory only.
func NewClient(baseURL string) (*Client, error) {
	return NewClientWithSessions(baseURL, nil)
}

// NewClientWithSessions creates a client whose session cookie is restored
// from and saved to the given store, surviving process restarts. A nil store
// keeps the session in memory only.
func NewClientWithSessions(baseURL string, sessions *session.Store) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	serverURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:   baseURL,
		serverURL: serverURL,
		sessions:  sessions,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}

	if err := c.restoreSession(); err != nil {
		return nil, err
	}

	return c, nil
}

// restoreSession seeds the jar with the session id persisted by a previous
// login, if any.
func (c *Client) restoreSession() error {
	if c.sessions == nil {
		return nil
	}

	sessionID, err := c.sessions.Get(context.Background(), c.baseURL)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil
		}
		return fmt.Errorf("failed to load stored session: %w", err)
	}

	c.httpClient.Jar.SetCookies(c.serverURL, []*http.Cookie{{
		Name:  api.SessionCookieName,
		Value: sessionID,
		Path:  "/",
	}})

	return nil
}

// persistSession writes the jar's session cookie to the store after a
// successful login.
func (c *Client) persistSession(ctx context.Context) error {
	if c.sessions == nil {
		return nil
	}

	for _, cookie := range c.httpClient.Jar.Cookies(c.serverURL) {
		if cookie.Name == api.SessionCookieName && cookie.Value != "" {
			return c.sessions.Save(ctx, c.baseURL, cookie.Value)
		}
	}

	return fmt.Errorf("server did not set a session cookie")
}

// dropSession removes the persisted session after logout.
func (c *Client) dropSession(ctx context.Context) error {
	if c.sessions == nil {
		return nil
	}
	return c.sessions.Delete(ctx, c.baseURL)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) (*api.MessageResponse, error) {
	form := url.Values{"email": {email}, "password": {password}}

	var resp api.MessageResponse
	if err := c.doForm(ctx, http.MethodPost, "/users", form, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login authenticates and stores the session cookie in the jar, persisting it
// when a session store is attached.
func (c *Client) Login(ctx context.Context, email, password string) (*api.MessageResponse, error) {
	form := url.Values{"email": {email}, "password": {password}}

	var resp api.MessageResponse
	if err := c.doForm(ctx, http.MethodPost, "/sessions", form, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	if err := c.persistSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &resp, nil
}

// Logout destroys the current session on the server and forgets the persisted
// session id. The server answers with a redirect to /, which the client
// follows.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doForm(ctx, http.MethodDelete, "/sessions", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}

	if err := c.dropSession(ctx); err != nil {
		return fmt.Errorf("failed to drop stored session: %w", err)
	}

	return nil
}

// Profile returns the email attached to the current session.
func (c *Client) Profile(ctx context.Context) (*api.ProfileResponse, error) {
	var resp api.ProfileResponse
	if err := c.doForm(ctx, http.MethodGet, "/profile", nil, &resp); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &resp, nil
}

// RequestReset asks for a password-reset token.
func (c *Client) RequestReset(ctx context.Context, email string) (*api.ResetTokenResponse, error) {
	form := url.Values{"email": {email}}

	var resp api.ResetTokenResponse
	if err := c.doForm(ctx, http.MethodPost, "/reset_password", form, &resp); err != nil {
		return nil, fmt.Errorf("reset request failed: %w", err)
	}
	return &resp, nil
}

// UpdatePassword redeems a reset token and installs a new password.
func (c *Client) UpdatePassword(ctx context.Context, email, resetToken, newPassword string) (*api.MessageResponse, error) {
	form := url.Values{
		"email":        {email},
		"reset_token":  {resetToken},
		"new_password": {newPassword},
	}

	var resp api.MessageResponse
	if err := c.doForm(ctx, http.MethodPut, "/reset_password", form, &resp); err != nil {
		return nil, fmt.Errorf("password update request failed: %w", err)
	}
	return &resp, nil
}

// Me resolves the identity behind Basic auth credentials, bypassing the
// session cookie.
func (c *Client) Me(ctx context.Context, email, password string) (*api.MeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(email, password)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(httpResp)
	}

	var resp api.MeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// doForm sends a form-encoded request and decodes the JSON response into
// result when it is non-nil.
func (c *Client) doForm(ctx context.Context, method, path string, form url.Values, result any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorFromResponse turns a non-2xx response into an error, preferring the
// server's JSON message when present.
func (c *Client) errorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var errResp api.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Message)
	}

	return fmt.Errorf("server returned %d", resp.StatusCode)
}

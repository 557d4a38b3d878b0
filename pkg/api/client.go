// Package api talks to the expense backend: the session gate, logout and
// thin JSON helpers for the REST verbs the pages use.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultLoginPath  = "/login"
	DefaultUserPath   = "/api/user"
	DefaultLogoutPath = "/api/logout"
)

// Config configures the backend client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Navigator  Navigator
	LoginPath  string
	UserPath   string
	LogoutPath string
	Header     http.Header
}

// Client wraps the expense backend's session endpoints and generic JSON verbs.
// It adds no timeout or retry of its own; cancellation comes from the context.
type Client struct {
	baseURL    string
	client     *http.Client
	navigator  Navigator
	loginPath  string
	userPath   string
	logoutPath string
	header     http.Header
}

// NewClient builds a client. An empty BaseURL issues requests against paths
// as given, which suits absolute caller-supplied URLs.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	navigator := cfg.Navigator
	if navigator == nil {
		navigator = noopNavigator{}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		client:     httpClient,
		navigator:  navigator,
		loginPath:  orDefault(cfg.LoginPath, DefaultLoginPath),
		userPath:   orDefault(cfg.UserPath, DefaultUserPath),
		logoutPath: orDefault(cfg.LogoutPath, DefaultLogoutPath),
		header:     cfg.Header.Clone(),
	}
}

// LoginPath reports where failed auth checks redirect to.
func (c *Client) LoginPath() string {
	return c.loginPath
}

// CheckAuth fetches the current user. Any transport failure, undecodable
// body or unsuccessful payload redirects to the login path and yields false.
func (c *Client) CheckAuth(ctx context.Context, opts ...RequestOption) (User, bool) {
	var payload userResponse
	if err := c.do(ctx, http.MethodGet, c.userPath, nil, &payload, opts); err != nil || !payload.Success {
		c.navigatorFor(ctx).Redirect(ctx, c.loginPath)
		return User{}, false
	}
	return payload.User, true
}

// Logout invalidates the session, ignoring any failure, then redirects to the
// login path.
func (c *Client) Logout(ctx context.Context, opts ...RequestOption) {
	_ = c.do(ctx, http.MethodPost, c.logoutPath, nil, nil, opts)
	c.navigatorFor(ctx).Redirect(ctx, c.loginPath)
}

func (c *Client) navigatorFor(ctx context.Context) Navigator {
	if nav, ok := ctx.Value(navigatorKey{}).(Navigator); ok && nav != nil {
		return nav
	}
	return c.navigator
}

// Get issues a GET and decodes the JSON body into out. The HTTP status is not
// inspected.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

// Post issues a POST with a JSON body and decodes the JSON response into out.
// The HTTP status is not inspected.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, &jsonBody{body}, out, opts)
}

// Delete issues a DELETE and decodes the JSON response into out. The HTTP
// status is not inspected.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

type jsonBody struct {
	value any
}

func (c *Client) do(ctx context.Context, method, path string, body *jsonBody, target any, opts []RequestOption) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body.value)
		if err != nil {
			return fmt.Errorf("api: encode payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api: http request: %w", err)
	}
	defer resp.Body.Close()
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("api: decode response: empty body")
		}
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || c.baseURL == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

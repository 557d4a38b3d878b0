package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAuthReturnsUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultUserPath || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "abc" {
			t.Fatalf("expected forwarded session cookie")
		}
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":7,"username":"asha","email":"asha@example.in","created_at":"2026-01-02"}}`))
	}))
	t.Cleanup(server.Close)

	nav := &RecordingNavigator{}
	client := NewClient(Config{BaseURL: server.URL, Navigator: nav})
	user, ok := client.CheckAuth(context.Background(), WithCookies([]*http.Cookie{{Name: "session", Value: "abc"}}))
	require.True(t, ok)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "asha", user.Username)
	assert.Empty(t, nav.Redirects())
}

func TestCheckAuthRedirectsOnFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"unsuccessful payload": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Login required"}`))
		},
		"invalid body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>login</html>`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			t.Cleanup(server.Close)
			nav := &RecordingNavigator{}
			client := NewClient(Config{BaseURL: server.URL, Navigator: nav})
			_, ok := client.CheckAuth(context.Background())
			assert.False(t, ok)
			assert.Equal(t, []string{DefaultLoginPath}, nav.Redirects())
		})
	}
}

func TestCheckAuthRedirectsOnTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	nav := &RecordingNavigator{}
	client := NewClient(Config{BaseURL: url, Navigator: nav, LoginPath: "/signin"})
	_, ok := client.CheckAuth(context.Background())
	assert.False(t, ok)
	last, _ := nav.Last()
	assert.Equal(t, "/signin", last)
}

func TestLogoutAlwaysRedirects(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultLogoutPath, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	nav := &RecordingNavigator{}
	NewClient(Config{BaseURL: server.URL, Navigator: nav}).Logout(context.Background())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{DefaultLoginPath}, nav.Redirects())

	offline := NewClient(Config{BaseURL: "http://127.0.0.1:1", Navigator: nav})
	offline.Logout(context.Background())
	assert.Len(t, nav.Redirects(), 2)
}

func TestLogoutRedirectsThroughRequestNavigator(t *testing.T) {
	var cookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil {
			cookie = c.Value
		}
	}))
	t.Cleanup(server.Close)

	configured := &RecordingNavigator{}
	client := NewClient(Config{BaseURL: server.URL, Navigator: configured})

	req := httptest.NewRequest(http.MethodPost, "/dashboard/logout", nil)
	rec := httptest.NewRecorder()
	ctx := WithNavigator(context.Background(), RedirectWriter(rec, req))
	client.Logout(ctx, WithCookies([]*http.Cookie{{Name: "sid", Value: "abc"}}))

	assert.Equal(t, "abc", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, DefaultLoginPath, rec.Header().Get("Location"))
	assert.Empty(t, configured.Redirects())
}

func TestVerbsDecodeBodyRegardlessOfStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "echo": body["amount"]})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Expense not found"}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"items":[1,2,3]}`))
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL})
	ctx := context.Background()

	var listed struct {
		Success bool  `json:"success"`
		Items   []int `json:"items"`
	}
	require.NoError(t, client.Get(ctx, "/api/expenses", &listed))
	assert.Equal(t, []int{1, 2, 3}, listed.Items)

	var created map[string]any
	require.NoError(t, client.Post(ctx, "api/expenses", map[string]any{"amount": 450}, &created))
	assert.Equal(t, float64(450), created["echo"])

	var deleted map[string]any
	require.NoError(t, client.Delete(ctx, server.URL+"/api/expenses/9", &deleted))
	assert.Equal(t, false, deleted["success"])
	assert.Equal(t, "Expense not found", deleted["error"])
}

func TestVerbsPropagateErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL})
	var out map[string]any
	err := client.Get(context.Background(), "/api/summary", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api: decode response")

	err = client.Post(context.Background(), "/api/feedback", map[string]any{"bad": func() {}}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api: encode payload")
}

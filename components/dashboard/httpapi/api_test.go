package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
	"github.com/nexusboard/nexusboard/components/dashboard/commands"
	"github.com/nexusboard/nexusboard/pkg/api"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func TestHandleAssignWidget(t *testing.T) {
	assign := &stubCommander[dashboard.AddWidgetRequest]{}
	h := &Handlers{API: &CommandExecutor{AssignCommander: assign}}
	payload := dashboard.AddWidgetRequest{DefinitionID: dashboard.WidgetProducts, AreaCode: dashboard.AreaMain}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h.HandleAssignWidget(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if assign.calls != 1 || assign.last.AreaCode != dashboard.AreaMain {
		t.Fatalf("expected assign to execute with payload, got %+v", assign.last)
	}
}

func TestHandleAssignWidgetRejectsBadJSON(t *testing.T) {
	assign := &stubCommander[dashboard.AddWidgetRequest]{}
	h := &Handlers{API: &CommandExecutor{AssignCommander: assign}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/widgets", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.HandleAssignWidget(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, assign.calls)
}

func TestHandleRefreshWidget(t *testing.T) {
	refresh := &stubCommander[commands.RefreshWidgetInput]{}
	h := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	payload := commands.RefreshWidgetInput{Event: dashboard.WidgetEvent{AreaCode: dashboard.AreaMain}}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/widgets/refresh", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h.HandleRefreshWidget(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.last.Event.AreaCode != dashboard.AreaMain {
		t.Fatalf("expected event propagation")
	}
}

func TestUnconfiguredExecutorReportsNotImplemented(t *testing.T) {
	h := &Handlers{API: &CommandExecutor{}}
	mux := http.NewServeMux()
	h.Mount(mux, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/sessions/abc/notifications/read", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestMountedSessionFlow(t *testing.T) {
	ctx := context.Background()
	service, mux := newTestServer(t, nil)
	session, err := service.OpenSession(ctx, dashboard.ViewerContext{})
	require.NoError(t, err)

	rec := serve(mux, http.MethodPost, "/dashboard/sessions/"+session.ID+"/notifications/read", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result dashboard.DispatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Changed)
	assert.Equal(t, 0, result.Session.UnreadCount)
	require.NotNil(t, result.Toast)
	assert.Equal(t, "3 notifications marked as read", result.Toast.Message)

	rec = serve(mux, http.MethodPost, "/dashboard/sessions/"+session.ID+"/notifications/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Changed)
	assert.Equal(t, "No unread notifications", result.Toast.Message)

	rec = serve(mux, http.MethodPost, "/dashboard/sessions/"+session.ID+"/actions", `{"type":"toggle_sidebar"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Session.UI.SidebarCollapsed)

	rec = serve(mux, http.MethodGet, "/dashboard/sessions/"+session.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot dashboard.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, session.ID, snapshot.ID)
	assert.Equal(t, 0, snapshot.UnreadCount)
	assert.True(t, snapshot.UI.SidebarCollapsed)
}

func TestMountedErrorStatuses(t *testing.T) {
	ctx := context.Background()
	service, mux := newTestServer(t, nil)
	session, err := service.OpenSession(ctx, dashboard.ViewerContext{})
	require.NoError(t, err)

	rec := serve(mux, http.MethodGet, "/dashboard/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session not found")

	rec = serve(mux, http.MethodPost, "/dashboard/sessions/"+session.ID+"/actions", `{"type":"dance"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodPost, "/dashboard/sessions/"+session.ID+"/actions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMountedSessionsRejectOtherViewers(t *testing.T) {
	ctx := context.Background()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("sid")
		if err != nil {
			fmt.Fprint(w, `{"success": false}`)
			return
		}
		switch c.Value {
		case "alice":
			fmt.Fprint(w, `{"success": true, "user": {"id": 1, "username": "alice"}}`)
		case "bob":
			fmt.Fprint(w, `{"success": true, "user": {"id": 2, "username": "bob"}}`)
		default:
			fmt.Fprint(w, `{"success": false}`)
		}
	}))
	defer backend.Close()

	service, mux := newTestServer(t, api.NewClient(api.Config{BaseURL: backend.URL}))
	session, err := service.OpenSession(ctx, dashboard.ViewerContext{UserID: "1", Username: "alice"})
	require.NoError(t, err)

	as := func(sid, method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := as("bob", http.MethodPost, "/dashboard/sessions/"+session.ID+"/notifications/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = as("bob", http.MethodPost, "/dashboard/sessions/"+session.ID+"/actions", `{"type":"toggle_sidebar"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = as("bob", http.MethodGet, "/dashboard/sessions/"+session.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = as("bob", http.MethodGet, "/dashboard/events?session="+session.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = as("bob", http.MethodGet, "/dashboard/ws?session="+session.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	current, err := service.Session(ctx, dashboard.ViewerContext{UserID: "1"}, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Snapshot().UnreadCount)
	assert.False(t, current.UI.SidebarCollapsed)

	rec = as("alice", http.MethodPost, "/dashboard/sessions/"+session.ID+"/notifications/read", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMountedStreamRequiresOwnedSession(t *testing.T) {
	ctx := context.Background()
	service, mux := newTestServer(t, nil)
	session, err := service.OpenSession(ctx, dashboard.ViewerContext{})
	require.NoError(t, err)

	rec := serve(mux, http.MethodGet, "/dashboard/events", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(mux, http.MethodGet, "/dashboard/events?session=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	closed, cancel := context.WithCancel(ctx)
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/events?session="+session.ID, nil).WithContext(closed)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestLogoutForwardsCookiesAndRedirects(t *testing.T) {
	var loggedOut string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == api.DefaultLogoutPath {
			if c, err := r.Cookie("sid"); err == nil {
				loggedOut = c.Value
			}
			return
		}
		fmt.Fprint(w, `{"success": true, "user": {"id": 1}}`)
	}))
	defer backend.Close()

	_, mux := newTestServer(t, api.NewClient(api.Config{BaseURL: backend.URL}))
	req := httptest.NewRequest(http.MethodPost, "/dashboard/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "s3cr3t"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, "s3cr3t", loggedOut)
}

func TestMountedLayoutAndPage(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := serve(mux, http.MethodGet, "/dashboard/_layout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	areas, ok := payload["areas"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, areas, dashboard.AreaKPIs)

	rec = serve(mux, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "page", rec.Body.String())
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "error": "expired"}`)
	}))
	defer backend.Close()

	client := api.NewClient(api.Config{BaseURL: backend.URL})
	_, mux := newTestServer(t, client)

	rec := serve(mux, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuthForwardsCookiesAndSetsViewer(t *testing.T) {
	var gotCookie string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil {
			gotCookie = c.Value
		}
		fmt.Fprint(w, `{"success": true, "user": {"id": 42, "username": "asha", "email": "asha@example.com"}}`)
	}))
	defer backend.Close()

	var seen dashboard.ViewerContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ViewerFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAuth(api.NewClient(api.Config{BaseURL: backend.URL}), next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "s3cr3t"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "s3cr3t", gotCookie)
	assert.Equal(t, dashboard.ViewerContext{UserID: "42", Username: "asha", Email: "asha@example.com"}, seen)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", dashboard.ErrSessionNotFound), http.StatusNotFound},
		{dashboard.Action{Type: "dance"}.Validate(), http.StatusBadRequest},
		{commands.ErrSessionRequired, http.StatusBadRequest},
		{&dashboard.ConfigError{Err: errors.New("bad")}, http.StatusBadRequest},
		{errNotConfigured, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func newTestServer(t *testing.T, auth Authenticator) (*dashboard.Service, *http.ServeMux) {
	t.Helper()
	ctx := context.Background()
	store := dashboard.NewMemoryWidgetStore()
	registry := dashboard.NewRegistry()
	service := dashboard.NewService(dashboard.Options{WidgetStore: store, Providers: registry})
	require.NoError(t, dashboard.Bootstrap(ctx, store, registry, service))

	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service: service,
		Renderer: dashboard.RendererFunc(func(name string, data any, out ...io.Writer) (string, error) {
			if len(out) > 0 && out[0] != nil {
				_, _ = io.WriteString(out[0], "page")
			}
			return "page", nil
		}),
	})
	h := &Handlers{
		API:        NewCommandExecutor(service, nil),
		Controller: controller,
		Broadcast:  dashboard.NewBroadcastHook(),
	}
	if auth != nil {
		h.Auth = auth
	}
	mux := http.NewServeMux()
	h.Mount(mux, "/dashboard")
	return service, mux
}

func serve(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

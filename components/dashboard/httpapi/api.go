package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
	"github.com/nexusboard/nexusboard/components/dashboard/commands"
	"github.com/nexusboard/nexusboard/components/dashboard/queries"
)

// Handlers exposes the dashboard over net/http, backed by shared commands.
type Handlers struct {
	API        Executor
	Controller *dashboard.Controller
	Broadcast  *dashboard.BroadcastHook
	Auth       Authenticator
}

// Mount registers every handler on mux under base (default /dashboard).
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	base = "/" + strings.Trim(base, "/")
	if base == "/" {
		base = "/dashboard"
	}
	gate := func(fn http.HandlerFunc) http.Handler { return RequireAuth(h.Auth, fn) }

	if h.Controller != nil {
		mux.Handle("GET "+base, gate(h.HandlePage))
		mux.Handle("GET "+base+"/_layout", gate(h.HandleLayout))
	}
	mux.Handle("POST "+base+"/widgets", gate(h.HandleAssignWidget))
	mux.Handle("POST "+base+"/widgets/refresh", gate(h.HandleRefreshWidget))
	mux.Handle("GET "+base+"/sessions/{id}", gate(h.HandleSession))
	mux.Handle("POST "+base+"/sessions/{id}/actions", gate(h.HandleDispatch))
	mux.Handle("POST "+base+"/sessions/{id}/notifications/read", gate(h.HandleMarkAllRead))
	if h.Broadcast != nil {
		mux.Handle("GET "+base+"/ws", gate(h.ownedStream(h.Broadcast.ServeWebSocket)))
		mux.Handle("GET "+base+"/events", gate(h.ownedStream(h.Broadcast.ServeSSE)))
	}
	if h.Auth != nil {
		mux.Handle("POST "+base+"/logout", Logout(h.Auth))
	}
}

// ownedStream only lets a viewer subscribe to a session it opened.
func (h *Handlers) ownedStream(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get(dashboard.SessionQueryParam)
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, commands.ErrSessionRequired)
			return
		}
		viewer, _ := ViewerFrom(r.Context())
		_, err := h.API.Session(r.Context(), queries.SessionInput{SessionID: sessionID, Viewer: viewer})
		if err != nil {
			writeError(w, StatusFor(err), err)
			return
		}
		next(w, r)
	}
}

func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	viewer, _ := ViewerFrom(r.Context())
	var buf bytes.Buffer
	if err := h.Controller.RenderTemplate(r.Context(), viewer, &buf); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	viewer, _ := ViewerFrom(r.Context())
	payload, err := h.Controller.LayoutPayload(r.Context(), viewer)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handlers) HandleAssignWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Assign(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *Handlers) HandleRefreshWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	viewer, _ := ViewerFrom(r.Context())
	snapshot, err := h.API.Session(r.Context(), queries.SessionInput{SessionID: r.PathValue("id"), Viewer: viewer})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handlers) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	var action dashboard.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	viewer, _ := ViewerFrom(r.Context())
	result, err := h.API.Dispatch(r.Context(), commands.DispatchActionInput{
		SessionID: r.PathValue("id"),
		Action:    action,
		Viewer:    viewer,
	})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	viewer, _ := ViewerFrom(r.Context())
	result, err := h.API.MarkAllRead(r.Context(), commands.MarkAllReadInput{SessionID: r.PathValue("id"), Viewer: viewer})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var configErr *dashboard.ConfigError
	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidAction),
		errors.Is(err, commands.ErrSessionRequired),
		errors.As(err, &configErr):
		return http.StatusBadRequest
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

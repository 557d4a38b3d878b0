package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"
	"github.com/gorilla/websocket"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
	"github.com/nexusboard/nexusboard/components/dashboard/commands"
	"github.com/nexusboard/nexusboard/components/dashboard/httpapi"
	"github.com/nexusboard/nexusboard/components/dashboard/queries"
	"github.com/nexusboard/nexusboard/pkg/api"
)

// Router is the part of a go-router router the dashboard mounts on.
type Router interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// ViewerResolver converts a request into a dashboard.ViewerContext when no
// auth gate supplied one.
type ViewerResolver func(Context) dashboard.ViewerContext

// Config wires go-router with dashboard controllers, APIs, and hooks.
type Config struct {
	Router         Router
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Areas          *queries.AreaQuery
	Broadcast      *dashboard.BroadcastHook
	Auth           httpapi.Authenticator
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Layout    string
	Widgets   string
	Refresh   string
	Session   string
	Actions   string
	MarkRead  string
	Area      string
	WebSocket string
	Logout    string
}

type handler func(Context) error

type route struct {
	method  string
	path    string
	handler handler
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	for _, rt := range cfg.table() {
		wrapped := wrap(rt.handler)
		switch rt.method {
		case http.MethodGet:
			cfg.Router.Get(rt.path, wrapped)
		case http.MethodPost:
			cfg.Router.Post(rt.path, wrapped)
		}
	}
	if cfg.Broadcast != nil && cfg.API != nil {
		registerWebSocket(cfg.Router, cfg.Broadcast, join(cfg.basePath(), cfg.routes().WebSocket), cfg.streamAuthorizer())
	}
	return nil
}

func (cfg Config) table() []route {
	routes := cfg.routes()
	base := cfg.basePath()
	viewerOf := cfg.viewerFunc()

	table := []route{
		{http.MethodGet, join(base, routes.HTML), func(ctx Context) error {
			viewer, ok := viewerOf(ctx)
			if !ok {
				return nil
			}
			var buf bytes.Buffer
			if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, &buf); err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}},
		{http.MethodGet, join(base, routes.Layout), func(ctx Context) error {
			viewer, ok := viewerOf(ctx)
			if !ok {
				return nil
			}
			payload, err := cfg.Controller.LayoutPayload(ctx.Context(), viewer)
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, payload)
		}},
	}
	if cfg.Areas != nil {
		table = append(table, route{http.MethodGet, join(base, routes.Area), func(ctx Context) error {
			viewer, ok := viewerOf(ctx)
			if !ok {
				return nil
			}
			area, err := cfg.Areas.Query(ctx.Context(), queries.AreaInput{Viewer: viewer, AreaCode: ctx.Param("code")})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{
				"area_code": area.AreaCode,
				"widgets":   area.Widgets,
			})
		}})
	}
	if cfg.API != nil {
		table = append(table, apiRoutes(cfg.API, base, routes, viewerOf)...)
	}
	if cfg.Auth != nil {
		table = append(table, route{http.MethodPost, join(base, routes.Logout), func(ctx Context) error {
			nav := api.NavigatorFunc(func(_ context.Context, path string) {
				_ = ctx.Redirect(path, http.StatusFound)
			})
			cfg.Auth.Logout(api.WithNavigator(ctx.Context(), nav), api.WithHeader("Cookie", ctx.Header("Cookie")))
			return nil
		}})
	}
	return table
}

func apiRoutes(exec httpapi.Executor, base string, routes RouteConfig, viewerOf func(Context) (dashboard.ViewerContext, bool)) []route {
	gated := func(next func(Context, dashboard.ViewerContext) error) handler {
		return func(ctx Context) error {
			viewer, ok := viewerOf(ctx)
			if !ok {
				return nil
			}
			return next(ctx, viewer)
		}
	}
	return []route{
		{http.MethodPost, join(base, routes.Widgets), gated(func(ctx Context, _ dashboard.ViewerContext) error {
			var payload dashboard.AddWidgetRequest
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			if err := exec.Assign(ctx.Context(), payload); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusCreated, map[string]string{"status": "created"})
		})},
		{http.MethodPost, join(base, routes.Refresh), gated(func(ctx Context, _ dashboard.ViewerContext) error {
			var payload commands.RefreshWidgetInput
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			if err := exec.Refresh(ctx.Context(), payload); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
		})},
		{http.MethodGet, join(base, routes.Session), gated(func(ctx Context, viewer dashboard.ViewerContext) error {
			snapshot, err := exec.Session(ctx.Context(), queries.SessionInput{SessionID: ctx.Param("id"), Viewer: viewer})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, snapshot)
		})},
		{http.MethodPost, join(base, routes.Actions), gated(func(ctx Context, viewer dashboard.ViewerContext) error {
			var action dashboard.Action
			if err := json.Unmarshal(ctx.Body(), &action); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			result, err := exec.Dispatch(ctx.Context(), commands.DispatchActionInput{
				SessionID: ctx.Param("id"),
				Action:    action,
				Viewer:    viewer,
			})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, result)
		})},
		{http.MethodPost, join(base, routes.MarkRead), gated(func(ctx Context, viewer dashboard.ViewerContext) error {
			result, err := exec.MarkAllRead(ctx.Context(), commands.MarkAllReadInput{SessionID: ctx.Param("id"), Viewer: viewer})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, result)
		})},
	}
}

// registerWebSocket streams the events of one page session. The session is
// named by the session query parameter and must belong to the viewer.
func registerWebSocket(r Router, hook *dashboard.BroadcastHook, path string, authorize func(Context) (string, error)) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		sessionID, err := authorize(routerContext{ctx: ws})
		if err != nil {
			_ = ws.CloseWithStatus(websocket.ClosePolicyViolation, err.Error())
			return nil
		}
		events, cancel := hook.SubscribeSession(sessionID)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// streamAuthorizer checks a stream request and returns its session id. It
// writes no response, so it also serves upgraded connections.
func (cfg Config) streamAuthorizer() func(Context) (string, error) {
	return func(ctx Context) (string, error) {
		viewer, ok := cfg.resolveViewer(ctx)
		if !ok {
			return "", errUnauthorized
		}
		sessionID := ctx.Query(dashboard.SessionQueryParam)
		if sessionID == "" {
			return "", commands.ErrSessionRequired
		}
		if _, err := cfg.API.Session(ctx.Context(), queries.SessionInput{SessionID: sessionID, Viewer: viewer}); err != nil {
			return "", err
		}
		return sessionID, nil
	}
}

var errUnauthorized = errors.New("gorouter: unauthorized")

// resolveViewer identifies the caller without writing a response.
func (cfg Config) resolveViewer(ctx Context) (dashboard.ViewerContext, bool) {
	if cfg.Auth == nil {
		resolver := cfg.ViewerResolver
		if resolver == nil {
			resolver = defaultViewerResolver
		}
		return resolver(ctx), true
	}
	user, ok := cfg.Auth.CheckAuth(ctx.Context(), api.WithHeader("Cookie", ctx.Header("Cookie")))
	if !ok {
		return dashboard.ViewerContext{}, false
	}
	viewer := httpapi.ViewerFromUser(user)
	ctx.Locals("user_id", viewer.UserID)
	return viewer, true
}

// viewerFunc resolves the viewer for a request. With an auth gate configured
// a failed check answers with a redirect and reports false.
func (cfg Config) viewerFunc() func(Context) (dashboard.ViewerContext, bool) {
	return func(ctx Context) (dashboard.ViewerContext, bool) {
		viewer, ok := cfg.resolveViewer(ctx)
		if !ok {
			login := cfg.Auth.LoginPath()
			ctx.SetHeader("Location", login)
			_ = ctx.JSON(http.StatusFound, map[string]string{"redirect": login})
			return dashboard.ViewerContext{}, false
		}
		return viewer, true
	}
}

func defaultViewerResolver(ctx Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if v, ok := ctx.Locals("username").(string); ok {
		viewer.Username = v
	}
	if v, ok := ctx.Locals("email").(string); ok {
		viewer.Email = v
	}
	return viewer
}

func respondError(ctx Context, err error) error {
	return respondStatus(ctx, httpapi.StatusFor(err), err)
}

func respondStatus(ctx Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config) basePath() string {
	return strings.TrimSuffix(cfg.BasePath, "/")
}

func (cfg Config) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func join(base, path string) string {
	return base + path
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/refresh"
	}
	if routes.Session == "" {
		routes.Session = "/dashboard/sessions/:id"
	}
	if routes.Actions == "" {
		routes.Actions = "/dashboard/sessions/:id/actions"
	}
	if routes.MarkRead == "" {
		routes.MarkRead = "/dashboard/sessions/:id/notifications/read"
	}
	if routes.Area == "" {
		routes.Area = "/dashboard/areas/:code"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	if routes.Logout == "" {
		routes.Logout = "/dashboard/logout"
	}
	return routes
}

// Context is the slice of router.Context the handlers use.
type Context interface {
	Context() context.Context
	Body() []byte
	Param(name string, defaultValue ...string) string
	Query(name string, defaultValue ...string) string
	Header(name string) string
	Locals(key any, value ...any) any
	SetHeader(key, value string)
	Send(body []byte) error
	JSON(code int, v any) error
	Redirect(location string, status ...int) error
}

type routerContext struct {
	ctx router.Context
}

func wrap(h handler) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return h(routerContext{ctx: ctx})
	})
}

func (c routerContext) Context() context.Context {
	return c.ctx.Context()
}

func (c routerContext) Body() []byte {
	return c.ctx.Body()
}

func (c routerContext) Header(name string) string {
	return c.ctx.Header(name)
}

func (c routerContext) Param(name string, defaultValue ...string) string {
	return c.ctx.Param(name, defaultValue...)
}

func (c routerContext) Query(name string, defaultValue ...string) string {
	return c.ctx.Query(name, defaultValue...)
}

func (c routerContext) Redirect(location string, status ...int) error {
	return c.ctx.Redirect(location, status...)
}

func (c routerContext) Locals(key any, value ...any) any {
	return c.ctx.Locals(key, value...)
}

func (c routerContext) SetHeader(key, value string) {
	c.ctx.SetHeader(key, value)
}

func (c routerContext) Send(body []byte) error {
	return c.ctx.Send(body)
}

func (c routerContext) JSON(code int, v any) error {
	return c.ctx.JSON(code, v)
}

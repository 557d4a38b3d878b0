package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nexusboard/nexusboard/pkg/format"
)

// DefaultTemplate is the page template rendered by the controller.
const DefaultTemplate = "dashboard.html"

// NavItem is an entry of the sidebar navigation.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// DefaultNavItems is the sidebar navigation.
var DefaultNavItems = []NavItem{
	{Key: "dashboard", Label: "Dashboard", Icon: "fas fa-th-large"},
	{Key: "analytics", Label: "Analytics", Icon: "fas fa-chart-pie"},
	{Key: "customers", Label: "Customers", Icon: "fas fa-users"},
	{Key: "products", Label: "Products", Icon: "fas fa-box"},
	{Key: "orders", Label: "Orders", Icon: "fas fa-shopping-cart"},
	{Key: "reports", Label: "Reports", Icon: "fas fa-file-alt"},
	{Key: "settings", Label: "Settings", Icon: "fas fa-cog"},
}

// PageService is what the controller needs from the dashboard service.
type PageService interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
	OpenSession(ctx context.Context, viewer ViewerContext) (Session, error)
}

// ControllerOptions wires the controller.
type ControllerOptions struct {
	Service   PageService
	Renderer  Renderer
	Template  string
	Bindings  *ViewBindings
	BasePath  string
	Title     string
	Formatter format.Formatter
	Clock     func() time.Time
}

// Controller renders the dashboard page and its JSON layout.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Bindings == nil {
		if svc, ok := opts.Service.(interface{ Bindings() *ViewBindings }); ok {
			opts.Bindings = svc.Bindings()
		} else {
			opts.Bindings = DefaultViewBindings()
		}
	}
	if opts.BasePath == "" {
		opts.BasePath = "/dashboard"
	}
	opts.BasePath = strings.TrimSuffix(opts.BasePath, "/")
	if opts.Title == "" {
		opts.Title = "NexusBoard"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Controller{opts: opts}
}

// Render resolves the layout for a viewer and returns it to the caller.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.opts.Service == nil {
		return Layout{}, errors.New("dashboard: controller service not configured")
	}
	return c.opts.Service.ConfigureLayout(ctx, viewer)
}

// RenderTemplate opens a page session, resolves the layout and renders the
// page. Missing view bindings abort before anything is written.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Service == nil {
		return errors.New("dashboard: controller service not configured")
	}
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller renderer not configured")
	}
	if _, err := c.opts.Bindings.RequireAll(ChromeBindings()...); err != nil {
		return err
	}
	layout, err := c.opts.Service.ConfigureLayout(ctx, viewer)
	if err != nil {
		return err
	}
	session, err := c.opts.Service.OpenSession(ctx, viewer)
	if err != nil {
		return err
	}
	payload, err := c.pagePayload(viewer, session, layout)
	if err != nil {
		return err
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.opts.Template, err)
	}
	return nil
}

// LayoutPayload returns the JSON shape of the resolved layout.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return nil, err
	}
	areas := make(map[string]any, len(layout.Areas))
	for code, widgets := range layout.Areas {
		areas[code] = widgetPayloads(widgets)
	}
	return map[string]any{
		"areas":    areas,
		"bindings": c.opts.Bindings.IDs(),
	}, nil
}

func (c *Controller) pagePayload(viewer ViewerContext, session Session, layout Layout) (map[string]any, error) {
	now := c.opts.Clock()
	fy := format.CurrentFY(now.In(c.opts.Formatter.Location()))
	snapshot := session.Snapshot()

	regions := make(map[string]any, len(layout.Areas))
	for code, widgets := range layout.Areas {
		regions[regionKey(code)] = widgetPayloads(widgets)
	}

	nav := make([]map[string]any, 0, len(DefaultNavItems))
	for _, item := range DefaultNavItems {
		nav = append(nav, map[string]any{
			"key":   item.Key,
			"label": item.Label,
			"icon":  item.Icon,
			"class": classList("nav-item", item.Key == snapshot.UI.ActiveNav, "active"),
		})
	}

	payload := map[string]any{
		"title":         c.opts.Title,
		"viewer":        viewer,
		"session":       snapshot,
		"ids":           c.opts.Bindings.IDs(),
		"classes":       snapshot.Classes,
		"notifications": snapshot.Notifications,
		"unread_count":  snapshot.UnreadCount,
		"regions":       regions,
		"nav":           nav,
		"fiscal_year":   fy.Label,
		"today":         c.opts.Formatter.Date(now),
		"endpoints": map[string]string{
			"actions":  fmt.Sprintf("%s/sessions/%s/actions", c.opts.BasePath, session.ID),
			"read":     fmt.Sprintf("%s/sessions/%s/notifications/read", c.opts.BasePath, session.ID),
			"stream":   fmt.Sprintf("%s/ws?%s=%s", c.opts.BasePath, SessionQueryParam, session.ID),
			"snapshot": fmt.Sprintf("%s/sessions/%s", c.opts.BasePath, session.ID),
		},
	}
	return toTemplateData(payload)
}

func widgetPayloads(widgets []WidgetInstance) []map[string]any {
	out := make([]map[string]any, 0, len(widgets))
	for _, inst := range widgets {
		entry := map[string]any{
			"id":         inst.ID,
			"definition": inst.DefinitionID,
			"area":       inst.AreaCode,
			"position":   inst.Position,
			"config":     inst.Configuration,
		}
		if data, ok := inst.Metadata["data"]; ok {
			entry["data"] = data
		}
		out = append(out, entry)
	}
	return out
}

// regionKey shortens an area code to its last segment (nexus.dashboard.kpis → kpis).
func regionKey(code string) string {
	if idx := strings.LastIndex(code, "."); idx >= 0 {
		return code[idx+1:]
	}
	return code
}

// toTemplateData flattens payload into maps keyed by JSON names so
// templates address every value the same way.
func toTemplateData(payload map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode page payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("dashboard: decode page payload: %w", err)
	}
	return out, nil
}

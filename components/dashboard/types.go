package dashboard

import (
	"context"
	"time"
)

// WidgetStore persists areas, definitions and widget instances.
// Implementations ensure thread safety and idempotency.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// ProviderRegistry stores widget definitions and the providers that feed them.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket) about dashboard changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition models a region of the dashboard page.
type WidgetAreaDefinition struct {
	Code        string
	Name        string
	Description string
}

// WidgetDefinition describes a widget, its configuration schema and the
// view bindings the page must expose for it.
type WidgetDefinition struct {
	Code        string
	Name        string
	Description string
	Schema      map[string]any
	Category    string
	Bindings    []string
}

// WidgetInstance is a configured widget placed in an area.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition"`
	AreaCode      string         `json:"area"`
	Position      int            `json:"position"`
	Configuration map[string]any `json:"config,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Metadata      map[string]any
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ResolveAreaInput requests widget instances for a given area.
type ResolveAreaInput struct {
	AreaCode string
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string
	Widgets  []WidgetInstance
}

// ViewerContext is the authenticated user the page is rendered for.
type ViewerContext struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	AreaCode  string         `json:"area_code,omitempty"`
	Instance  WidgetInstance `json:"instance"`
	SessionID string         `json:"session_id,omitempty"`
	Reason    string         `json:"reason"`
	Payload   map[string]any `json:"payload,omitempty"`
	At        time.Time      `json:"at"`
}

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errInvalidArea        = errors.New("dashboard: area code is required")
	errInvalidDefinition  = errors.New("dashboard: definition id is required")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	WidgetStore     WidgetStore
	Providers       ProviderRegistry
	Dataset         DatasetProvider
	Sessions        SessionStore
	Bindings        *ViewBindings
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Areas           []string
	Clock           func() time.Time
}

// Service orchestrates dashboard widgets and page sessions.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Dataset == nil {
		opts.Dataset = DefaultDatasetProvider()
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry(WithDataset(opts.Dataset))
	}
	if opts.Sessions == nil {
		opts.Sessions = NewInMemorySessionStore(DefaultSessionTTL)
	}
	if opts.Bindings == nil {
		opts.Bindings = DefaultViewBindings()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Bindings exposes the view bindings pages are validated against.
func (s *Service) Bindings() *ViewBindings {
	return s.opts.Bindings
}

// Dataset exposes the dataset provider.
func (s *Service) Dataset() DatasetProvider {
	return s.opts.Dataset
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty"`
}

// AddWidget validates the configuration, creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.AreaCode == "" {
		return errInvalidArea
	}
	if req.DefinitionID == "" {
		return errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
	})
	if err != nil {
		return err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return err
	}
	instance.AreaCode = req.AreaCode
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: req.AreaCode,
		Instance: instance,
		Reason:   "add",
		At:       s.opts.Clock(),
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	})
	return nil
}

// ConfigureLayout resolves the widgets of every area and attaches provider data.
// A widget whose view bindings are not declared fails the whole layout.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{Areas: make(map[string][]WidgetInstance)}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: area})
		if err != nil {
			return Layout{}, err
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
			resolved.Widgets[i].Position = i
			if err := s.checkBindings(resolved.Widgets[i]); err != nil {
				return Layout{}, err
			}
		}
		layout.Areas[area] = s.attachProviderData(ctx, viewer, resolved.Widgets)
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: areaCode})
	if err != nil {
		return ResolvedArea{}, err
	}
	for i := range resolved.Widgets {
		resolved.Widgets[i].AreaCode = areaCode
		resolved.Widgets[i].Position = i
		if err := s.checkBindings(resolved.Widgets[i]); err != nil {
			return ResolvedArea{}, err
		}
	}
	resolved.Widgets = s.attachProviderData(ctx, viewer, resolved.Widgets)
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return resolved, nil
}

// OpenSession starts a page session with a fresh copy of the notifications.
func (s *Service) OpenSession(ctx context.Context, viewer ViewerContext) (Session, error) {
	data, err := s.opts.Dataset.Current(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("dashboard: load dataset: %w", err)
	}
	session, err := s.opts.Sessions.Open(ctx, viewer, data.Notifications)
	if err != nil {
		return Session{}, err
	}
	s.recordTelemetry(ctx, "dashboard.session.open", map[string]any{
		"viewer":     viewer.UserID,
		"session_id": session.ID,
		"unread":     session.Snapshot().UnreadCount,
	})
	return session, nil
}

// Session returns a live session owned by viewer. Sessions of other viewers
// are reported as ErrSessionNotFound.
func (s *Service) Session(ctx context.Context, viewer ViewerContext, id string) (Session, error) {
	session, err := s.opts.Sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !session.OwnedBy(viewer) {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// DispatchResult is the outcome of a UI action.
type DispatchResult struct {
	Session Snapshot   `json:"session"`
	Effects []Effect   `json:"effects"`
	Changed int        `json:"changed"`
	Toast   *ToastView `json:"toast,omitempty"`
}

// Dispatch applies action to the session's UI state and performs the
// resulting notification effects. Only the viewer that opened the session
// may dispatch to it.
func (s *Service) Dispatch(ctx context.Context, viewer ViewerContext, sessionID string, action Action) (DispatchResult, error) {
	if err := action.Validate(); err != nil {
		return DispatchResult{}, err
	}
	var (
		effects []Effect
		changed int
	)
	session, err := s.opts.Sessions.Update(ctx, sessionID, func(session *Session) error {
		if !session.OwnedBy(viewer) {
			return ErrSessionNotFound
		}
		next, fx := session.UI.Apply(action)
		session.UI = next
		effects = fx
		for _, effect := range fx {
			if effect == EffectNotificationsChanged && session.Notifications != nil {
				changed += session.Notifications.MarkAllRead()
			}
		}
		return nil
	})
	if err != nil {
		return DispatchResult{}, err
	}
	result := DispatchResult{
		Session: session.Snapshot(),
		Effects: effects,
		Changed: changed,
	}
	if result.Effects == nil {
		result.Effects = []Effect{}
	}
	if action.Type == ActionMarkAllRead {
		toast := markAllReadToast(changed).View()
		result.Toast = &toast
	}
	if changed > 0 {
		if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
			SessionID: sessionID,
			Reason:    "notifications.read",
			Payload:   map[string]any{"changed": changed, "unread_count": result.Session.UnreadCount},
			At:        s.opts.Clock(),
		}); err != nil {
			return DispatchResult{}, err
		}
	}
	s.recordTelemetry(ctx, "dashboard.session.action", map[string]any{
		"session_id": sessionID,
		"action":     string(action.Type),
		"changed":    changed,
	})
	return result, nil
}

// MarkAllRead clears every unread notification of the session.
func (s *Service) MarkAllRead(ctx context.Context, viewer ViewerContext, sessionID string) (DispatchResult, error) {
	return s.Dispatch(ctx, viewer, sessionID, Action{Type: ActionMarkAllRead})
}

func markAllReadToast(changed int) Toast {
	if changed == 0 {
		return NewToast("No unread notifications", ToastInfo)
	}
	if changed == 1 {
		return NewToast("1 notification marked as read", ToastSuccess)
	}
	return NewToast(fmt.Sprintf("%d notifications marked as read", changed), ToastSuccess)
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if event.At.IsZero() {
		event.At = s.opts.Clock()
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	if s.opts.ConfigValidator == nil || s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return fmt.Errorf("dashboard: unknown widget definition %s", definitionID)
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

// checkBindings fails with MissingBindingError when a widget needs an
// element the page does not declare.
func (s *Service) checkBindings(inst WidgetInstance) error {
	for _, name := range s.requiredBindings(inst) {
		if _, err := s.opts.Bindings.Require(name); err != nil {
			return &MissingBindingError{Name: name, Widget: inst.DefinitionID}
		}
	}
	return nil
}

func (s *Service) requiredBindings(inst WidgetInstance) []string {
	var names []string
	if def, ok := s.opts.Providers.Definition(inst.DefinitionID); ok {
		names = append(names, def.Bindings...)
	}
	if binding := stringValue(inst.Configuration["binding"], ""); binding != "" {
		names = append(names, binding)
	}
	return names
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return DefaultAreaCodes()
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance: inst,
			Viewer:   viewer,
			Bindings: s.opts.Bindings,
		})
		if err != nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"widget_id":     inst.ID,
				"error":         err.Error(),
			})
			continue
		}
		metadata := make(map[string]any, len(inst.Metadata)+1)
		for k, v := range inst.Metadata {
			metadata[k] = v
		}
		metadata["data"] = data
		enriched[i].Metadata = metadata
	}
	return enriched
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}

package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLayoutAttachesProviderData(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaMain: {
				{ID: "w1", DefinitionID: WidgetTransactions, Configuration: map[string]any{"limit": 2}},
				{ID: "w2", DefinitionID: WidgetProducts},
			},
		},
	}
	service := NewService(Options{WidgetStore: store})
	layout, err := service.ConfigureLayout(context.Background(), ViewerContext{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	widgets := layout.Areas[AreaMain]
	if len(widgets) != 2 {
		t.Fatalf("expected two widgets, got %#v", widgets)
	}
	if widgets[1].Position != 1 || widgets[1].AreaCode != AreaMain {
		t.Fatalf("expected area and position stamped, got %#v", widgets[1])
	}
	data, ok := widgets[0].Metadata["data"].(WidgetData)
	require.True(t, ok, "expected provider data on transactions widget")
	assert.Equal(t, "transactionsList", data["element_id"])
	items, ok := data["items"].([]TransactionView)
	require.True(t, ok)
	assert.Len(t, items, 2)

	for _, area := range DefaultAreaCodes() {
		if _, ok := layout.Areas[area]; !ok {
			t.Fatalf("expected area %s in layout", area)
		}
	}
}

func TestConfigureLayoutFailsOnMissingBinding(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaCharts: {{ID: "w1", DefinitionID: WidgetTrafficChart}},
		},
	}
	service := NewService(Options{
		WidgetStore: store,
		Bindings:    NewViewBindings(BindingTrafficChart),
	})
	_, err := service.ConfigureLayout(context.Background(), ViewerContext{})
	var missing *MissingBindingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, BindingTrafficLegend, missing.Name)
	assert.Equal(t, WidgetTrafficChart, missing.Widget)
}

func TestConfigureLayoutChecksConfiguredBinding(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaKPIs: {{ID: "k1", DefinitionID: WidgetKPICounter, Configuration: map[string]any{"metric": "users", "binding": "spark_missing"}}},
		},
	}
	service := NewService(Options{WidgetStore: store})
	_, err := service.ConfigureLayout(context.Background(), ViewerContext{})
	var missing *MissingBindingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "spark_missing", missing.Name)
}

func TestConfigureLayoutRecordsProviderErrors(t *testing.T) {
	store := &fakeWidgetStore{
		resolved: map[string][]WidgetInstance{
			AreaMain: {{ID: "w1", DefinitionID: "custom.widget"}},
		},
	}
	registry := NewRegistry()
	require.NoError(t, registry.RegisterDefinition(WidgetDefinition{Code: "custom.widget", Name: "Custom"}))
	require.NoError(t, registry.RegisterProvider("custom.widget", ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		return nil, errors.New("boom")
	})))
	telemetry := &testTelemetry{}
	service := NewService(Options{
		WidgetStore: store,
		Providers:   registry,
		Telemetry:   telemetry,
	})
	layout, err := service.ConfigureLayout(context.Background(), ViewerContext{})
	if err != nil {
		t.Fatalf("ConfigureLayout returned error: %v", err)
	}
	if _, ok := layout.Areas[AreaMain][0].Metadata["data"]; ok {
		t.Fatalf("expected no data for failing provider")
	}
	assert.Contains(t, telemetry.events, "dashboard.widget.provider_error")
}

func TestConfigureLayoutRequiresStore(t *testing.T) {
	service := NewService(Options{})
	if _, err := service.ConfigureLayout(context.Background(), ViewerContext{}); !errors.Is(err, errMissingWidgetStore) {
		t.Fatalf("expected missing store error, got %v", err)
	}
}

func TestResolveAreaRequiresCode(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	_, err := service.ResolveArea(context.Background(), ViewerContext{}, "")
	require.ErrorIs(t, err, errInvalidArea)
}

func TestAddWidgetEmitsRefreshHook(t *testing.T) {
	store := &fakeWidgetStore{
		createInstanceFn: func(input CreateWidgetInstanceInput) (WidgetInstance, error) {
			return WidgetInstance{ID: "instance-1", DefinitionID: input.DefinitionID}, nil
		},
	}
	hook := &collectingHook{}
	service := NewService(Options{
		WidgetStore: store,
		RefreshHook: hook,
	})
	position := 0
	req := AddWidgetRequest{
		DefinitionID:  WidgetKPICounter,
		AreaCode:      AreaKPIs,
		Configuration: map[string]any{"metric": "revenue"},
		Position:      &position,
	}
	if err := service.AddWidget(context.Background(), req); err != nil {
		t.Fatalf("AddWidget returned error: %v", err)
	}
	if len(hook.events) != 1 || hook.events[0].Reason != "add" {
		t.Fatalf("expected add event, got %#v", hook.events)
	}
	if len(store.assignCalls) != 1 || store.assignCalls[0].Position == nil {
		t.Fatalf("expected position forwarded, got %#v", store.assignCalls)
	}
}

func TestAddWidgetValidatesInputs(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	err := service.AddWidget(context.Background(), AddWidgetRequest{})
	require.ErrorIs(t, err, errInvalidArea)

	err = service.AddWidget(context.Background(), AddWidgetRequest{AreaCode: AreaMain})
	require.ErrorIs(t, err, errInvalidDefinition)

	err = service.AddWidget(context.Background(), AddWidgetRequest{AreaCode: AreaMain, DefinitionID: "unknown.widget"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown widget definition")
}

func TestAddWidgetRejectsInvalidConfiguration(t *testing.T) {
	store := &fakeWidgetStore{}
	service := NewService(Options{WidgetStore: store})
	err := service.AddWidget(context.Background(), AddWidgetRequest{
		DefinitionID:  WidgetKPICounter,
		AreaCode:      AreaKPIs,
		Configuration: map[string]any{},
	})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, store.assignCalls)
}

func TestOpenSessionCopiesNotifications(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	session, err := service.OpenSession(context.Background(), ViewerContext{UserID: "user-1"})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	snap := session.Snapshot()
	assert.Equal(t, 3, snap.UnreadCount)
	assert.Equal(t, "sidebar", snap.Classes[BindingSidebar])
	assert.Equal(t, DefaultNavItem, snap.UI.ActiveNav)

	other, err := service.OpenSession(context.Background(), ViewerContext{UserID: "user-2"})
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, other.ID)
}

func TestDispatchMarkAllRead(t *testing.T) {
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	at := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	service := NewService(Options{
		WidgetStore: &fakeWidgetStore{},
		RefreshHook: hook,
		Telemetry:   telemetry,
		Clock:       func() time.Time { return at },
	})
	ctx := context.Background()
	session, err := service.OpenSession(ctx, ViewerContext{UserID: "user-1"})
	require.NoError(t, err)

	result, err := service.MarkAllRead(ctx, ViewerContext{UserID: "user-1"}, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Changed)
	assert.Equal(t, 0, result.Session.UnreadCount)
	assert.Equal(t, []Effect{EffectNotificationsChanged}, result.Effects)
	require.NotNil(t, result.Toast)
	assert.Equal(t, "3 notifications marked as read", result.Toast.Message)
	assert.Equal(t, ToastSuccess, result.Toast.Kind)
	for _, view := range result.Session.Notifications {
		assert.False(t, view.Unread)
	}

	require.Len(t, hook.events, 1)
	assert.Equal(t, session.ID, hook.events[0].SessionID)
	assert.Equal(t, "notifications.read", hook.events[0].Reason)
	assert.Equal(t, at, hook.events[0].At)

	again, err := service.MarkAllRead(ctx, ViewerContext{UserID: "user-1"}, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Changed)
	require.NotNil(t, again.Toast)
	assert.Equal(t, "No unread notifications", again.Toast.Message)
	assert.Len(t, hook.events, 1, "no refresh when nothing changed")
	assert.Contains(t, telemetry.events, "dashboard.session.action")
}

func TestDispatchIsolatesSessions(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	ctx := context.Background()
	first, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)
	second, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	_, err = service.MarkAllRead(ctx, ViewerContext{}, first.ID)
	require.NoError(t, err)

	current, err := service.Session(ctx, ViewerContext{}, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Snapshot().UnreadCount)
}

func TestDispatchUpdatesUIState(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	ctx := context.Background()
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	result, err := service.Dispatch(ctx, ViewerContext{}, session.ID, Action{Type: ActionToggleNotifications})
	require.NoError(t, err)
	assert.True(t, result.Session.UI.NotifPanelOpen)
	assert.Equal(t, "notif-panel open", result.Session.Classes[BindingNotifPanel])
	assert.Nil(t, result.Toast)
	assert.Empty(t, result.Effects)

	result, err = service.Dispatch(ctx, ViewerContext{}, session.ID, Action{Type: ActionKeyDown, Key: "Escape"})
	require.NoError(t, err)
	assert.False(t, result.Session.UI.NotifPanelOpen)
	assert.False(t, result.Session.UI.OverlayActive)

	result, err = service.Dispatch(ctx, ViewerContext{}, session.ID, Action{Type: ActionKeyDown, Key: "k", Meta: true})
	require.NoError(t, err)
	assert.Equal(t, []Effect{EffectFocusSearch}, result.Effects)
}

func TestDispatchErrors(t *testing.T) {
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}})
	ctx := context.Background()
	_, err := service.Dispatch(ctx, ViewerContext{}, "missing", Action{Type: ActionToggleSidebar})
	require.ErrorIs(t, err, ErrSessionNotFound)

	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)
	_, err = service.Dispatch(ctx, ViewerContext{}, session.ID, Action{Type: "explode"})
	require.Error(t, err)
}

func TestSessionsAreScopedToTheirViewer(t *testing.T) {
	hook := &collectingHook{}
	service := NewService(Options{WidgetStore: &fakeWidgetStore{}, RefreshHook: hook})
	ctx := context.Background()
	alice := ViewerContext{UserID: "alice"}
	bob := ViewerContext{UserID: "bob"}
	session, err := service.OpenSession(ctx, alice)
	require.NoError(t, err)

	_, err = service.MarkAllRead(ctx, bob, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = service.Dispatch(ctx, bob, session.ID, Action{Type: ActionToggleSidebar})
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = service.Session(ctx, bob, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, hook.events)

	current, err := service.Session(ctx, alice, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Snapshot().UnreadCount)
	assert.False(t, current.UI.SidebarCollapsed)
}

func TestNotifyWidgetUpdatedTelemetry(t *testing.T) {
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := NewService(Options{
		WidgetStore: &fakeWidgetStore{},
		RefreshHook: hook,
		Telemetry:   telemetry,
	})
	event := WidgetEvent{AreaCode: AreaMain, Instance: WidgetInstance{ID: "w1"}, Reason: "custom"}
	if err := service.NotifyWidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("NotifyWidgetUpdated returned error: %v", err)
	}
	if len(telemetry.events) != 1 {
		t.Fatalf("expected telemetry recorded event")
	}
	if hook.events[0].At.IsZero() {
		t.Fatalf("expected event timestamp")
	}
}

type fakeWidgetStore struct {
	createInstanceFn  func(input CreateWidgetInstanceInput) (WidgetInstance, error)
	assignInstanceFn  func(input AssignWidgetInput) error
	resolveAreaFn     func(input ResolveAreaInput) (ResolvedArea, error)
	resolved          map[string][]WidgetInstance
	assignCalls       []AssignWidgetInput
	createdAreas      []string
	createdDefinition []string
}

func (f *fakeWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	f.createdAreas = append(f.createdAreas, def.Code)
	return true, nil
}

func (f *fakeWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	f.createdDefinition = append(f.createdDefinition, def.Code)
	return true, nil
}

func (f *fakeWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if f.createInstanceFn != nil {
		return f.createInstanceFn(input)
	}
	return WidgetInstance{ID: input.DefinitionID + "-instance", DefinitionID: input.DefinitionID}, nil
}

func (f *fakeWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	f.assignCalls = append(f.assignCalls, input)
	if f.assignInstanceFn != nil {
		return f.assignInstanceFn(input)
	}
	return nil
}

func (f *fakeWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	if f.resolveAreaFn != nil {
		return f.resolveAreaFn(input)
	}
	if widgets, ok := f.resolved[input.AreaCode]; ok {
		return ResolvedArea{AreaCode: input.AreaCode, Widgets: append([]WidgetInstance(nil), widgets...)}, nil
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: []WidgetInstance{}}, nil
}

type collectingHook struct {
	events []WidgetEvent
}

func (h *collectingHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.events = append(h.events, event)
	return nil
}

var _ RefreshHook = (*collectingHook)(nil)

type testTelemetry struct {
	events []string
}

func (t *testTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.events = append(t.events, event)
}

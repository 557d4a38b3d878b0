package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAction wraps every action validation failure.
var ErrInvalidAction = errors.New("dashboard: invalid action")

// ActionType names a user interaction on the dashboard page.
type ActionType string

const (
	ActionToggleSidebar       ActionType = "toggle_sidebar"
	ActionOpenMobileSidebar   ActionType = "open_mobile_sidebar"
	ActionClickOverlay        ActionType = "click_overlay"
	ActionSelectNav           ActionType = "select_nav"
	ActionClickProfile        ActionType = "click_profile"
	ActionClickDocument       ActionType = "click_document"
	ActionToggleNotifications ActionType = "toggle_notifications"
	ActionMarkAllRead         ActionType = "mark_all_read"
	ActionSelectPill          ActionType = "select_pill"
	ActionKeyDown             ActionType = "keydown"
)

// Action is an interaction reported by the page.
type Action struct {
	Type   ActionType `json:"type"`
	Target string     `json:"target,omitempty"`
	Key    string     `json:"key,omitempty"`
	Ctrl   bool       `json:"ctrl,omitempty"`
	Meta   bool       `json:"meta,omitempty"`
}

// Validate rejects unknown actions and actions missing their target.
func (a Action) Validate() error {
	switch a.Type {
	case ActionToggleSidebar, ActionOpenMobileSidebar, ActionClickOverlay,
		ActionClickProfile, ActionClickDocument, ActionToggleNotifications,
		ActionMarkAllRead:
		return nil
	case ActionSelectNav, ActionSelectPill:
		if strings.TrimSpace(a.Target) == "" {
			return fmt.Errorf("%w: %s requires a target", ErrInvalidAction, a.Type)
		}
		return nil
	case ActionKeyDown:
		if a.Key == "" {
			return fmt.Errorf("%w: %s requires a key", ErrInvalidAction, a.Type)
		}
		return nil
	case "":
		return fmt.Errorf("%w: type is required", ErrInvalidAction)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
}

// Effect is a side effect the caller performs after a state transition.
type Effect string

const (
	// EffectFocusSearch asks the page to focus the global search box.
	EffectFocusSearch Effect = "focus_search"
	// EffectNotificationsChanged asks the owner to mark every notification read.
	EffectNotificationsChanged Effect = "notifications_changed"
)

// Default navigation and chart range selections.
const (
	DefaultNavItem = "dashboard"
	DefaultPill    = "12M"
)

// UIState is the interactive state of one dashboard page.
type UIState struct {
	SidebarCollapsed  bool   `json:"sidebar_collapsed"`
	MobileSidebarOpen bool   `json:"mobile_sidebar_open"`
	OverlayActive     bool   `json:"overlay_active"`
	NotifPanelOpen    bool   `json:"notif_panel_open"`
	ProfileOpen       bool   `json:"profile_open"`
	ActiveNav         string `json:"active_nav"`
	ActivePill        string `json:"active_pill"`
}

// NewUIState returns the state of a freshly loaded page.
func NewUIState() UIState {
	return UIState{ActiveNav: DefaultNavItem, ActivePill: DefaultPill}
}

// Apply returns the state after action and the effects it triggers.
// Unrecognized actions leave the state unchanged.
func (s UIState) Apply(action Action) (UIState, []Effect) {
	next := s
	switch action.Type {
	case ActionToggleSidebar:
		next.SidebarCollapsed = !s.SidebarCollapsed
	case ActionOpenMobileSidebar:
		next.MobileSidebarOpen = true
		next.OverlayActive = true
	case ActionClickOverlay:
		next.MobileSidebarOpen = false
		next.OverlayActive = false
		next.NotifPanelOpen = false
	case ActionSelectNav:
		if action.Target == "" {
			return s, nil
		}
		next.ActiveNav = action.Target
		next.MobileSidebarOpen = false
		next.OverlayActive = false
	case ActionClickProfile:
		next.ProfileOpen = !s.ProfileOpen
	case ActionClickDocument:
		next.ProfileOpen = false
	case ActionToggleNotifications:
		// panel and overlay flip independently, so they can drift apart
		next.NotifPanelOpen = !s.NotifPanelOpen
		next.OverlayActive = !s.OverlayActive
	case ActionSelectPill:
		if action.Target == "" {
			return s, nil
		}
		next.ActivePill = action.Target
	case ActionMarkAllRead:
		return next, []Effect{EffectNotificationsChanged}
	case ActionKeyDown:
		return s.applyKey(action)
	}
	return next, nil
}

func (s UIState) applyKey(action Action) (UIState, []Effect) {
	if (action.Ctrl || action.Meta) && action.Key == "k" {
		return s, []Effect{EffectFocusSearch}
	}
	if action.Key == "Escape" {
		next := s
		next.MobileSidebarOpen = false
		next.OverlayActive = false
		next.NotifPanelOpen = false
		next.ProfileOpen = false
		return next, nil
	}
	return s, nil
}

// Classes resolves the CSS classes of the stateful page elements, keyed by binding name.
func (s UIState) Classes() map[string]string {
	sidebar := "sidebar"
	if s.SidebarCollapsed {
		sidebar += " collapsed"
	}
	if s.MobileSidebarOpen {
		sidebar += " mobile-open"
	}
	return map[string]string{
		BindingSidebar:        sidebar,
		BindingOverlay:        classList("overlay", s.OverlayActive, "active"),
		BindingNotifPanel:     classList("notif-panel", s.NotifPanelOpen, "open"),
		BindingProfileSection: classList("profile-section", s.ProfileOpen, "open"),
	}
}

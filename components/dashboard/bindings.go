package dashboard

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ettle/strcase"
)

// Page chrome bindings every dashboard page needs.
const (
	BindingSidebar        = "sidebar"
	BindingSidebarToggle  = "sidebar_toggle"
	BindingHamburgerMenu  = "hamburger_menu"
	BindingOverlay        = "overlay"
	BindingProfileSection = "profile_section"
	BindingNotifButton    = "notif_btn"
	BindingNotifPanel     = "notif_panel"
	BindingNotifList      = "notif_list"
	BindingMarkAllRead    = "mark_all_read"
	BindingGlobalSearch   = "global_search"
	BindingToastContainer = "toast_container"
)

// Widget bindings.
const (
	BindingRevenueChart      = "revenue_chart"
	BindingTrafficChart      = "traffic_chart"
	BindingTrafficLegend     = "traffic_legend"
	BindingTransactionsList  = "transactions_list"
	BindingActivityFeed      = "activity_feed"
	BindingProductsTableBody = "products_table_body"
	BindingSparkRevenue      = "spark_revenue"
	BindingSparkUsers        = "spark_users"
	BindingSparkOrders       = "spark_orders"
	BindingSparkChurn        = "spark_churn"
)

// ChromeBindings lists the bindings the page layout itself relies on.
func ChromeBindings() []string {
	return []string{
		BindingSidebar,
		BindingSidebarToggle,
		BindingHamburgerMenu,
		BindingOverlay,
		BindingProfileSection,
		BindingNotifButton,
		BindingNotifPanel,
		BindingNotifList,
		BindingMarkAllRead,
		BindingGlobalSearch,
		BindingToastContainer,
	}
}

// MissingBindingError reports a named view binding the page does not provide.
type MissingBindingError struct {
	Name   string
	Widget string
}

func (e *MissingBindingError) Error() string {
	if e.Widget != "" {
		return fmt.Sprintf("dashboard: widget %s requires view binding %q which is not declared", e.Widget, e.Name)
	}
	return fmt.Sprintf("dashboard: view binding %q is not declared", e.Name)
}

// Binding is a resolved view element.
type Binding struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ViewBindings maps logical binding names to DOM element ids.
type ViewBindings struct {
	mu  sync.RWMutex
	ids map[string]string
}

// NewViewBindings declares bindings whose ids derive from their names
// (notif_panel becomes notifPanel).
func NewViewBindings(names ...string) *ViewBindings {
	b := &ViewBindings{ids: make(map[string]string, len(names))}
	for _, name := range names {
		b.Declare(name, "")
	}
	return b
}

// DefaultViewBindings declares every binding the built-in page template renders.
func DefaultViewBindings() *ViewBindings {
	names := ChromeBindings()
	names = append(names,
		BindingRevenueChart,
		BindingTrafficChart,
		BindingTrafficLegend,
		BindingTransactionsList,
		BindingActivityFeed,
		BindingProductsTableBody,
		BindingSparkRevenue,
		BindingSparkUsers,
		BindingSparkOrders,
		BindingSparkChurn,
	)
	return NewViewBindings(names...)
}

// Declare adds a binding. An empty id is derived from the name.
func (b *ViewBindings) Declare(name, id string) {
	if name == "" {
		return
	}
	if id == "" {
		id = strcase.ToCamel(name)
	}
	b.mu.Lock()
	b.ids[name] = id
	b.mu.Unlock()
}

// Require resolves a binding or fails with MissingBindingError.
func (b *ViewBindings) Require(name string) (Binding, error) {
	if b == nil {
		return Binding{}, &MissingBindingError{Name: name}
	}
	b.mu.RLock()
	id, ok := b.ids[name]
	b.mu.RUnlock()
	if !ok {
		return Binding{}, &MissingBindingError{Name: name}
	}
	return Binding{Name: name, ID: id}, nil
}

// RequireAll resolves names in order, stopping at the first missing binding.
func (b *ViewBindings) RequireAll(names ...string) ([]Binding, error) {
	out := make([]Binding, 0, len(names))
	for _, name := range names {
		binding, err := b.Require(name)
		if err != nil {
			return nil, err
		}
		out = append(out, binding)
	}
	return out, nil
}

// ID returns the DOM id for name, or "" when undeclared.
func (b *ViewBindings) ID(name string) string {
	binding, err := b.Require(name)
	if err != nil {
		return ""
	}
	return binding.ID
}

// IDs returns a name → id snapshot for templates.
func (b *ViewBindings) IDs() map[string]string {
	if b == nil {
		return map[string]string{}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.ids))
	for name, id := range b.ids {
		out[name] = id
	}
	return out
}

// Names returns the declared binding names sorted.
func (b *ViewBindings) Names() []string {
	ids := b.IDs()
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package dashboard

import (
	"fmt"
	"sort"
	"sync"
)

// WidgetHook lets packages register widgets/providers during init().
type WidgetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []WidgetHook
)

// RegisterWidgetHook registers a hook executed against new registries.
func RegisterWidgetHook(h WidgetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements ProviderRegistry with hook support.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]WidgetDefinition
	providers   map[string]Provider
}

type registryConfig struct {
	dataset DatasetProvider
	charts  *ChartRenderer
}

// RegistryOption configures the built-in providers of a registry.
type RegistryOption func(*registryConfig)

// WithDataset feeds the built-in providers from dataset.
func WithDataset(dataset DatasetProvider) RegistryOption {
	return func(cfg *registryConfig) {
		if dataset != nil {
			cfg.dataset = dataset
		}
	}
}

// WithChartRenderer renders built-in charts with charts.
func WithChartRenderer(charts *ChartRenderer) RegistryOption {
	return func(cfg *registryConfig) {
		if charts != nil {
			cfg.charts = charts
		}
	}
}

// NewRegistry builds a registry with the built-in widgets and applies global hooks.
func NewRegistry(options ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.dataset == nil {
		cfg.dataset = DefaultDatasetProvider()
	}
	if cfg.charts == nil {
		cfg.charts = NewChartRenderer()
	}
	reg := &Registry{
		definitions: map[string]WidgetDefinition{},
		providers:   map[string]Provider{},
	}
	reg.registerDefaults(cfg)
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults(cfg registryConfig) {
	providers := defaultProviders(cfg.dataset, cfg.charts)
	for _, def := range DefaultWidgetDefinitions() {
		_ = r.RegisterDefinition(def)
		if provider, ok := providers[def.Code]; ok {
			_ = r.RegisterProvider(def.Code, provider)
		}
	}
}

// ApplyHooks executes registered widget hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("dashboard: widget definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return fmt.Errorf("dashboard: widget definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("dashboard: provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("dashboard: widget definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a widget provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Definitions returns all registered definitions ordered by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

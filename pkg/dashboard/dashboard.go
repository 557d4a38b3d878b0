// Package dashboard assembles a ready-to-serve nexusboard from a config.Config.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	core "github.com/nexusboard/nexusboard/components/dashboard"
	"github.com/nexusboard/nexusboard/components/dashboard/commands"
	"github.com/nexusboard/nexusboard/components/dashboard/httpapi"
	"github.com/nexusboard/nexusboard/components/dashboard/queries"
	"github.com/nexusboard/nexusboard/pkg/api"
	"github.com/nexusboard/nexusboard/pkg/config"
	"github.com/nexusboard/nexusboard/pkg/format"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// App is every collaborator a transport needs, wired from one config.
type App struct {
	Config     config.Config
	Store      *core.MemoryWidgetStore
	Registry   *core.Registry
	Service    *Service
	Controller *core.Controller
	Broadcast  *core.BroadcastHook
	Executor   *httpapi.CommandExecutor
	Areas      *queries.AreaQuery
	// Client is nil unless auth is enabled.
	Client *api.Client
}

// Option customizes App construction.
type Option func(*appOptions)

type appOptions struct {
	telemetry core.Telemetry
	renderer  core.Renderer
	dataset   core.DatasetProvider
}

// WithTelemetry records service and command events on t.
func WithTelemetry(t core.Telemetry) Option {
	return func(o *appOptions) { o.telemetry = t }
}

// WithRenderer replaces the embedded go-template page renderer.
func WithRenderer(r core.Renderer) Option {
	return func(o *appOptions) { o.renderer = r }
}

// WithDataset overrides dataset.path.
func WithDataset(d core.DatasetProvider) Option {
	return func(o *appOptions) { o.dataset = d }
}

// New builds the service graph and seeds the default layout.
func New(ctx context.Context, cfg config.Config, options ...Option) (*App, error) {
	var o appOptions
	for _, opt := range options {
		opt(&o)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	dataset := o.dataset
	if dataset == nil && cfg.Dataset.Path != "" {
		dataset = core.NewFileDatasetProvider(cfg.Dataset.Path)
	}
	if dataset == nil {
		dataset = core.DefaultDatasetProvider()
	}

	charts := core.NewChartRenderer(
		core.WithChartCache(core.NewChartCache(cfg.Charts.CacheTTL)),
		core.WithChartTheme(cfg.Charts.Theme),
		core.WithChartAssetsHost(core.ResolveEChartsAssetsHost(cfg.Charts.AssetsHost)),
	)
	registry := core.NewRegistry(core.WithDataset(dataset), core.WithChartRenderer(charts))
	store := core.NewMemoryWidgetStore()
	hook := core.NewBroadcastHook()

	service := core.NewService(core.Options{
		WidgetStore: store,
		Providers:   registry,
		Dataset:     dataset,
		Sessions:    core.NewInMemorySessionStore(cfg.Sessions.TTL),
		RefreshHook: hook,
		Telemetry:   o.telemetry,
	})
	seed := commands.NewSeedDashboardCommand(store, registry, service, o.telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: true, WarmDataset: true}); err != nil {
		return nil, fmt.Errorf("dashboard: seed: %w", err)
	}

	renderer := o.renderer
	if renderer == nil {
		renderer, err = core.NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("dashboard: template renderer: %w", err)
		}
	}
	controller := core.NewController(core.ControllerOptions{
		Service:   service,
		Renderer:  renderer,
		BasePath:  strings.TrimSuffix(cfg.Server.BasePath, "/") + "/dashboard",
		Formatter: format.NewFormatter(loc),
	})

	app := &App{
		Config:     cfg,
		Store:      store,
		Registry:   registry,
		Service:    service,
		Controller: controller,
		Broadcast:  hook,
		Executor:   httpapi.NewCommandExecutor(service, o.telemetry),
		Areas:      queries.NewAreaQuery(service),
	}
	if cfg.Auth.Enabled {
		app.Client = api.NewClient(api.Config{
			BaseURL:    cfg.Backend.BaseURL,
			LoginPath:  cfg.Auth.LoginPath,
			UserPath:   cfg.Auth.UserPath,
			LogoutPath: cfg.Auth.LogoutPath,
		})
	}
	return app, nil
}

// Authenticator returns the auth gate, or nil when auth is disabled.
func (a *App) Authenticator() httpapi.Authenticator {
	if a.Client == nil {
		return nil
	}
	return a.Client
}

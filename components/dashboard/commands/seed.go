package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

// SeedDashboardInput selects which startup steps run. Areas and widget
// definitions are always registered.
type SeedDashboardInput struct {
	// SeedLayout places DefaultSeedWidgets; it needs a service.
	SeedLayout bool `json:"seed_layout"`
	// WarmDataset loads the service dataset once so a broken file fails
	// before the first page is served.
	WarmDataset bool `json:"warm_dataset"`
}

// SeedDashboardCommand prepares an empty widget store for serving.
type SeedDashboardCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies; registry and service may be nil.
func NewSeedDashboardCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the requested steps in order: dataset, registration, layout.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.store == nil {
		return errors.New("seed command requires widget store")
	}
	if (msg.SeedLayout || msg.WarmDataset) && c.service == nil {
		return errors.New("seed command requires service to seed layout or warm dataset")
	}

	payload := map[string]any{"seed_layout": msg.SeedLayout}
	if msg.WarmDataset {
		data, err := c.service.Dataset().Current(ctx)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		payload["notifications"] = len(data.Notifications)
		payload["transactions"] = len(data.Transactions)
		payload["products"] = len(data.Products)
	}

	if msg.SeedLayout {
		if err := dashboard.Bootstrap(ctx, c.store, c.registry, c.service); err != nil {
			return err
		}
		payload["widgets"] = len(dashboard.DefaultSeedWidgets())
	} else {
		if err := dashboard.RegisterAreas(ctx, c.store); err != nil {
			return err
		}
		if err := dashboard.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashboard.seed", payload)
	return nil
}

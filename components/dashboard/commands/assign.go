package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

type widgetAdder interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) error
}

// AssignWidgetCommand places one more widget into an area, e.g. an extra
// KPI counter in dashboard.AreaKPIs. The service broadcasts the change.
type AssignWidgetCommand struct {
	service   widgetAdder
	telemetry Telemetry
}

func NewAssignWidgetCommand(service widgetAdder, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.AddWidgetRequest] = (*AssignWidgetCommand)(nil)

// Execute trims the identifiers and adds the widget.
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg dashboard.AddWidgetRequest) error {
	if c.service == nil {
		return errors.New("assign command requires service")
	}
	msg.DefinitionID = strings.TrimSpace(msg.DefinitionID)
	msg.AreaCode = strings.TrimSpace(msg.AreaCode)
	if err := c.service.AddWidget(ctx, msg); err != nil {
		return err
	}
	payload := map[string]any{
		"definition_id": msg.DefinitionID,
		"area_code":     msg.AreaCode,
	}
	if msg.Position != nil {
		payload["position"] = *msg.Position
	}
	c.telemetry.Record(ctx, "dashboard.widget.assign", payload)
	return nil
}

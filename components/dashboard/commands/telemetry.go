package commands

import (
	"context"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

// Telemetry is the dashboard event sink; commands and the service share one recorder.
type Telemetry = dashboard.Telemetry

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return dashboard.TelemetryFunc(func(context.Context, string, map[string]any) {})
	}
	return t
}

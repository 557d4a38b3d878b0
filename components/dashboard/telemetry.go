package dashboard

import "context"

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function into Telemetry.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls f.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

// MultiTelemetry records every event on each sink in order.
type MultiTelemetry []Telemetry

// Record forwards to every non-nil sink.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		if sink != nil {
			sink.Record(ctx, event, payload)
		}
	}
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

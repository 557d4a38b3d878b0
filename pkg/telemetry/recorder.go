package telemetry

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Recorder logs dashboard events and counts them per event name.
type Recorder struct {
	logger *zap.Logger
	events *prometheus.CounterVec
}

// NewRecorder registers nexusboard_events_total on reg. A nil reg uses the
// default registerer; a nil logger discards log output.
func NewRecorder(logger *zap.Logger, reg prometheus.Registerer) (*Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexusboard_events_total",
		Help: "Dashboard events recorded, by event name.",
	}, []string{"event"})
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &Recorder{logger: logger, events: events}, nil
}

// Record implements the dashboard Telemetry hook.
func (r *Recorder) Record(_ context.Context, event string, payload map[string]any) {
	r.events.WithLabelValues(event).Inc()
	if ce := r.logger.Check(zap.DebugLevel, event); ce != nil {
		ce.Write(fields(payload)...)
	}
}

// Counter exposes the event counter for tests and custom collectors.
func (r *Recorder) Counter() *prometheus.CounterVec {
	return r.events
}

func fields(payload map[string]any) []zap.Field {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, payload[k]))
	}
	return out
}

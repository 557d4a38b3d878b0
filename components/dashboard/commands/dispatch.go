package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

// ErrSessionRequired is returned when a session command carries no id.
var ErrSessionRequired = errors.New("session id is required")

type sessionService interface {
	Dispatch(ctx context.Context, viewer dashboard.ViewerContext, sessionID string, action dashboard.Action) (dashboard.DispatchResult, error)
	MarkAllRead(ctx context.Context, viewer dashboard.ViewerContext, sessionID string) (dashboard.DispatchResult, error)
}

// DispatchActionInput is a UI interaction reported by a page session.
// Viewer is filled by the transport and must match the session owner.
type DispatchActionInput struct {
	SessionID string                  `json:"session_id"`
	Action    dashboard.Action        `json:"action"`
	Viewer    dashboard.ViewerContext `json:"-"`
}

// DispatchActionCommand applies page interactions to a session.
type DispatchActionCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewDispatchActionCommand creates the command.
func NewDispatchActionCommand(service sessionService, telemetry Telemetry) *DispatchActionCommand {
	return &DispatchActionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DispatchActionInput] = (*DispatchActionCommand)(nil)

// Execute applies the action and discards the resulting session snapshot.
func (c *DispatchActionCommand) Execute(ctx context.Context, msg DispatchActionInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run applies the action and returns the updated session.
func (c *DispatchActionCommand) Run(ctx context.Context, msg DispatchActionInput) (dashboard.DispatchResult, error) {
	if c.service == nil {
		return dashboard.DispatchResult{}, errors.New("dispatch command requires service")
	}
	if msg.SessionID == "" {
		return dashboard.DispatchResult{}, ErrSessionRequired
	}
	result, err := c.service.Dispatch(ctx, msg.Viewer, msg.SessionID, msg.Action)
	if err != nil {
		return dashboard.DispatchResult{}, err
	}
	c.telemetry.Record(ctx, "dashboard.action.dispatch", map[string]any{
		"session_id": msg.SessionID,
		"action":     string(msg.Action.Type),
	})
	return result, nil
}

// MarkAllReadInput identifies the session whose notifications are cleared.
type MarkAllReadInput struct {
	SessionID string                  `json:"session_id"`
	Viewer    dashboard.ViewerContext `json:"-"`
}

// MarkAllReadCommand clears every unread notification of a session.
type MarkAllReadCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewMarkAllReadCommand creates the command.
func NewMarkAllReadCommand(service sessionService, telemetry Telemetry) *MarkAllReadCommand {
	return &MarkAllReadCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MarkAllReadInput] = (*MarkAllReadCommand)(nil)

// Execute marks notifications read and discards the result.
func (c *MarkAllReadCommand) Execute(ctx context.Context, msg MarkAllReadInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run marks notifications read and reports how many changed.
func (c *MarkAllReadCommand) Run(ctx context.Context, msg MarkAllReadInput) (dashboard.DispatchResult, error) {
	if c.service == nil {
		return dashboard.DispatchResult{}, errors.New("mark read command requires service")
	}
	if msg.SessionID == "" {
		return dashboard.DispatchResult{}, ErrSessionRequired
	}
	result, err := c.service.MarkAllRead(ctx, msg.Viewer, msg.SessionID)
	if err != nil {
		return dashboard.DispatchResult{}, err
	}
	c.telemetry.Record(ctx, "dashboard.notifications.read", map[string]any{
		"session_id": msg.SessionID,
		"changed":    result.Changed,
	})
	return result, nil
}

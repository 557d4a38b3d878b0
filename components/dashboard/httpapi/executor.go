package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
	"github.com/nexusboard/nexusboard/components/dashboard/commands"
	"github.com/nexusboard/nexusboard/components/dashboard/queries"
)

var errNotConfigured = errors.New("httpapi: command not configured")

// Executor is what the transports need from the command layer.
type Executor interface {
	Assign(ctx context.Context, req dashboard.AddWidgetRequest) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	Dispatch(ctx context.Context, input commands.DispatchActionInput) (dashboard.DispatchResult, error)
	MarkAllRead(ctx context.Context, input commands.MarkAllReadInput) (dashboard.DispatchResult, error)
	Session(ctx context.Context, input queries.SessionInput) (dashboard.Snapshot, error)
}

// Runner is a commander that also reports its result.
type Runner[T, R any] interface {
	Run(ctx context.Context, msg T) (R, error)
}

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	AssignCommander  gocommand.Commander[dashboard.AddWidgetRequest]
	RefreshCommander gocommand.Commander[commands.RefreshWidgetInput]
	DispatchRunner   Runner[commands.DispatchActionInput, dashboard.DispatchResult]
	MarkReadRunner   Runner[commands.MarkAllReadInput, dashboard.DispatchResult]
	SessionQuerier   gocommand.Querier[queries.SessionInput, dashboard.Snapshot]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command and query against one service.
func NewCommandExecutor(service *dashboard.Service, telemetry dashboard.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		AssignCommander:  commands.NewAssignWidgetCommand(service, telemetry),
		RefreshCommander: commands.NewRefreshWidgetCommand(service, telemetry),
		DispatchRunner:   commands.NewDispatchActionCommand(service, telemetry),
		MarkReadRunner:   commands.NewMarkAllReadCommand(service, telemetry),
		SessionQuerier:   queries.NewSessionQuery(service),
	}
}

func (e *CommandExecutor) Assign(ctx context.Context, req dashboard.AddWidgetRequest) error {
	if e.AssignCommander == nil {
		return errNotConfigured
	}
	return e.AssignCommander.Execute(ctx, req)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	if e.RefreshCommander == nil {
		return errNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Dispatch(ctx context.Context, input commands.DispatchActionInput) (dashboard.DispatchResult, error) {
	if e.DispatchRunner == nil {
		return dashboard.DispatchResult{}, errNotConfigured
	}
	return e.DispatchRunner.Run(ctx, input)
}

func (e *CommandExecutor) MarkAllRead(ctx context.Context, input commands.MarkAllReadInput) (dashboard.DispatchResult, error) {
	if e.MarkReadRunner == nil {
		return dashboard.DispatchResult{}, errNotConfigured
	}
	return e.MarkReadRunner.Run(ctx, input)
}

func (e *CommandExecutor) Session(ctx context.Context, input queries.SessionInput) (dashboard.Snapshot, error) {
	if e.SessionQuerier == nil {
		return dashboard.Snapshot{}, errNotConfigured
	}
	return e.SessionQuerier.Query(ctx, input)
}

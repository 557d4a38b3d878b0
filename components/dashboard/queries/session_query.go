package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

type sessionService interface {
	Session(ctx context.Context, viewer dashboard.ViewerContext, id string) (dashboard.Session, error)
}

// SessionInput identifies a page session and the viewer asking for it.
type SessionInput struct {
	SessionID string                  `json:"session_id"`
	Viewer    dashboard.ViewerContext `json:"-"`
}

// SessionQuery returns the current snapshot of a page session.
type SessionQuery struct {
	service sessionService
}

// NewSessionQuery builds the query.
func NewSessionQuery(service sessionService) *SessionQuery {
	return &SessionQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.Snapshot] = (*SessionQuery)(nil)

// Query loads the session snapshot.
func (q *SessionQuery) Query(ctx context.Context, input SessionInput) (dashboard.Snapshot, error) {
	if input.SessionID == "" {
		return dashboard.Snapshot{}, errors.New("session id is required")
	}
	session, err := q.service.Session(ctx, input.Viewer, input.SessionID)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

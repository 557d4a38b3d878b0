package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

type stubAreaService struct {
	calls    int
	lastArea string
}

func (s *stubAreaService) ResolveArea(_ context.Context, _ dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error) {
	s.calls++
	s.lastArea = areaCode
	return dashboard.ResolvedArea{AreaCode: areaCode}, nil
}

func TestAreaQueryExpandsRegionKeys(t *testing.T) {
	service := &stubAreaService{}
	query := NewAreaQuery(service)
	resolved, err := query.Query(context.Background(), AreaInput{AreaCode: "main"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
	assert.Equal(t, dashboard.AreaMain, resolved.AreaCode)

	_, err = query.Query(context.Background(), AreaInput{AreaCode: "custom.area"})
	require.NoError(t, err)
	assert.Equal(t, "custom.area", service.lastArea)
}

func TestExpandAreaCode(t *testing.T) {
	assert.Equal(t, dashboard.AreaKPIs, ExpandAreaCode("kpis"))
	assert.Equal(t, dashboard.AreaSidebar, ExpandAreaCode(" sidebar "))
	assert.Equal(t, "unknown", ExpandAreaCode("unknown"))
}

func TestSessionQuery(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	session, err := service.OpenSession(context.Background(), dashboard.ViewerContext{UserID: "7"})
	require.NoError(t, err)

	query := NewSessionQuery(service)
	snap, err := query.Query(context.Background(), SessionInput{SessionID: session.ID, Viewer: dashboard.ViewerContext{UserID: "7"}})
	require.NoError(t, err)
	assert.Equal(t, session.ID, snap.ID)
	assert.Equal(t, 3, snap.UnreadCount)

	_, err = query.Query(context.Background(), SessionInput{SessionID: session.ID, Viewer: dashboard.ViewerContext{UserID: "8"}})
	require.ErrorIs(t, err, dashboard.ErrSessionNotFound)

	_, err = query.Query(context.Background(), SessionInput{SessionID: "missing"})
	require.ErrorIs(t, err, dashboard.ErrSessionNotFound)
	_, err = query.Query(context.Background(), SessionInput{})
	require.Error(t, err)
}

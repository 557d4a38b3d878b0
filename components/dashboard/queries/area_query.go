package queries

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
)

// AreaInput identifies an area request for a viewer. AreaCode may be the
// full code or its region key (kpis, charts, main, sidebar).
type AreaInput struct {
	Viewer   dashboard.ViewerContext
	AreaCode string
}

type areaService interface {
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// AreaQuery fetches the widgets of one dashboard area.
type AreaQuery struct {
	service areaService
}

// NewAreaQuery builds the query.
func NewAreaQuery(service areaService) *AreaQuery {
	return &AreaQuery{service: service}
}

var _ gocommand.Querier[AreaInput, dashboard.ResolvedArea] = (*AreaQuery)(nil)

// Query resolves an individual area for the viewer.
func (q *AreaQuery) Query(ctx context.Context, input AreaInput) (dashboard.ResolvedArea, error) {
	return q.service.ResolveArea(ctx, input.Viewer, ExpandAreaCode(input.AreaCode))
}

// ExpandAreaCode maps a region key to its built-in area code; other values pass through.
func ExpandAreaCode(code string) string {
	code = strings.TrimSpace(code)
	if strings.Contains(code, ".") {
		return code
	}
	for _, area := range dashboard.DefaultAreaCodes() {
		if strings.HasSuffix(area, "."+code) {
			return area
		}
	}
	return code
}

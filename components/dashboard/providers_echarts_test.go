package dashboard

import (
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartRendererRevenueChart(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer(WithChartAssetsHost("https://cdn.example.com/echarts/"))
	html, err := renderer.RevenueChart("revenueChart", DefaultDataset().Revenue)
	require.NoError(t, err)

	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "revenueChart")
	assert.Contains(t, html, "Expenses")
	assert.Equal(t, types.ThemeWesteros, renderer.Theme())
}

func TestChartRendererTrafficChart(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer(WithChartTheme(types.ThemeMacarons))
	html, err := renderer.TrafficChart("trafficChart", DefaultDataset().Traffic)
	require.NoError(t, err)

	assert.Contains(t, html, "trafficChart")
	assert.Contains(t, html, "Direct")
	assert.Equal(t, types.ThemeMacarons, renderer.Theme())
}

func TestChartRendererSparkline(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer()
	html, err := renderer.Sparkline("sparkUsers", []float64{1, 2, 3}, "rgba(139, 92, 246, 1)")
	require.NoError(t, err)
	assert.Contains(t, html, "sparkUsers")
	assert.Contains(t, html, "echarts")
}

func TestChartRendererMemoizesByData(t *testing.T) {
	t.Parallel()
	cache := NewChartCache(DefaultChartCacheTTL)
	renderer := NewChartRenderer(WithChartCache(cache))

	first, err := renderer.Sparkline("sparkOrders", []float64{1, 2, 3}, "#10b981")
	require.NoError(t, err)
	second, err := renderer.Sparkline("sparkOrders", []float64{1, 2, 3}, "#10b981")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	_, err = renderer.Sparkline("sparkOrders", []float64{3, 2, 1}, "#10b981")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestChartRendererWithoutCache(t *testing.T) {
	t.Parallel()
	renderer := NewChartRenderer(WithChartCache(nil))
	html, err := renderer.RevenueChart("revenueChart", RevenueSeries{
		Labels:   []string{"Jan"},
		Revenue:  []float64{1},
		Expenses: []float64{2},
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "revenueChart"))
}

func TestFadeColor(t *testing.T) {
	assert.Equal(t, "rgba(99, 102, 241, 0.15)", fadeColor("rgba(99, 102, 241, 1)", "0.15"))
}

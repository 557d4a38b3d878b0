package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	revenueChartHeight = "280px"
	trafficChartHeight = "220px"
	sparklineHeight    = "40px"
	// DefaultChartCacheTTL is how long rendered chart markup is reused.
	DefaultChartCacheTTL = 5 * time.Minute
)

var (
	revenueColor  = "#6366f1"
	expensesColor = "#8b5cf6"
)

// ChartRenderer renders server-side chart HTML with go-echarts.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache. A nil cache disables memoization.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with its own TTL cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache:      NewChartCache(DefaultChartCacheTTL),
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Theme returns the configured theme.
func (r *ChartRenderer) Theme() string {
	return r.theme
}

// RevenueChart renders the revenue vs expenses line chart into element chartID.
func (r *ChartRenderer) RevenueChart(chartID string, series RevenueSeries) (string, error) {
	if len(series.Labels) == 0 {
		return "", fmt.Errorf("dashboard: revenue chart requires labels")
	}
	return r.memo(renderKey("revenue", chartID, series), func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(r.initOpts(chartID, revenueChartHeight)),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		)
		line.SetXAxis(series.Labels)
		line.AddSeries("Revenue", toLineData(series.Labels, series.Revenue),
			charts.WithLineStyleOpts(opts.LineStyle{Color: revenueColor, Width: 2.5}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: "rgba(99, 102, 241, 0.3)"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: revenueColor}),
		)
		line.AddSeries("Expenses", toLineData(series.Labels, series.Expenses),
			charts.WithLineStyleOpts(opts.LineStyle{Color: expensesColor, Width: 2, Type: "dashed"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: "rgba(139, 92, 246, 0.2)"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: expensesColor}),
		)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(false),
		}))
		return renderChart(line)
	})
}

// TrafficChart renders the traffic share doughnut into element chartID.
func (r *ChartRenderer) TrafficChart(chartID string, slices []TrafficSlice) (string, error) {
	if len(slices) == 0 {
		return "", fmt.Errorf("dashboard: traffic chart requires at least one slice")
	}
	return r.memo(renderKey("traffic", chartID, slices), func() (string, error) {
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithInitializationOpts(r.initOpts(chartID, trafficChartHeight)),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{b}: {c}%"}),
		)
		pie.AddSeries("Traffic", toPieData(slices),
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"72%", "92%"}}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
		return renderChart(pie)
	})
}

// Sparkline renders an axis-less trend line into element chartID.
func (r *ChartRenderer) Sparkline(chartID string, values []float64, color string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("dashboard: sparkline %s has no values", chartID)
	}
	return r.memo(renderKey("spark", chartID, map[string]any{"values": values, "color": color}), func() (string, error) {
		labels := make([]string, len(values))
		for i := range values {
			labels[i] = strconv.Itoa(i)
		}
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(r.initOpts(chartID, sparklineHeight)),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(false)}),
			charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
			charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(false)}),
		)
		line.SetXAxis(labels)
		line.AddSeries("trend", toLineData(labels, values),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: fadeColor(color, "0.3")}),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		)
		return renderChart(line)
	})
}

func (r *ChartRenderer) memo(key string, render func() (string, error)) (string, error) {
	if r.cache == nil {
		return render()
	}
	return r.cache.GetOrRender(key+":"+r.theme, render)
}

func (r *ChartRenderer) initOpts(chartID, height string) opts.Initialization {
	initOpts := opts.Initialization{
		ChartID: chartID,
		Theme:   r.theme,
		Width:   "100%",
		Height:  height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return initOpts
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("dashboard: render chart: %w", err)
	}
	return buf.String(), nil
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, value := range values {
		name := ""
		if i < len(labels) {
			name = labels[i]
		}
		data[i] = opts.LineData{Name: name, Value: value}
	}
	return data
}

func toPieData(slices []TrafficSlice) []opts.PieData {
	data := make([]opts.PieData, len(slices))
	for i, slice := range slices {
		name := slice.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:      name,
			Value:     slice.Value,
			ItemStyle: &opts.ItemStyle{Color: slice.Color},
		}
	}
	return data
}

// fadeColor turns an opaque rgba(...,1) color into the given alpha.
func fadeColor(color, alpha string) string {
	if strings.HasSuffix(color, "1)") {
		return strings.TrimSuffix(color, "1)") + alpha + ")"
	}
	return color
}

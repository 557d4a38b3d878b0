package dashboard

import (
	"context"
	"fmt"
)

// defaultProviders binds every built-in widget to dataset and charts.
func defaultProviders(dataset DatasetProvider, charts *ChartRenderer) map[string]Provider {
	return map[string]Provider{
		WidgetKPICounter:   &kpiCounterProvider{dataset: dataset, charts: charts},
		WidgetRevenueChart: &revenueChartProvider{dataset: dataset, charts: charts},
		WidgetTrafficChart: &trafficChartProvider{dataset: dataset, charts: charts},
		WidgetTransactions: listProvider(dataset, BindingTransactionsList, func(d Dataset, limit int) (string, any) {
			return "items", RenderTransactions(truncate(d.Transactions, limit))
		}),
		WidgetActivityFeed: listProvider(dataset, BindingActivityFeed, func(d Dataset, limit int) (string, any) {
			return "items", RenderActivities(truncate(d.Activities, limit))
		}),
		WidgetProducts: listProvider(dataset, BindingProductsTableBody, func(d Dataset, limit int) (string, any) {
			return "rows", RenderProducts(truncate(d.Products, limit))
		}),
		WidgetStatRings: ProviderFunc(func(ctx context.Context, _ WidgetContext) (WidgetData, error) {
			data, err := dataset.Current(ctx)
			if err != nil {
				return nil, err
			}
			rings := make([]map[string]any, 0, len(data.Rings))
			for _, ring := range data.Rings {
				anim := NewRingAnimation(ring)
				rings = append(rings, map[string]any{
					"label":      ring.Label,
					"value":      ring.Value,
					"color":      ring.Color,
					"start":      anim.StateAt(0),
					"dash_array": ring.DashArray,
					"delay_ms":   anim.Delay.Milliseconds(),
				})
			}
			return WidgetData{"rings": rings}, nil
		}),
	}
}

type kpiCounterProvider struct {
	dataset DatasetProvider
	charts  *ChartRenderer
}

func (p *kpiCounterProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	metric := stringValue(meta.Instance.Configuration["metric"], "")
	data, err := p.dataset.Current(ctx)
	if err != nil {
		return nil, err
	}
	kpi, ok := data.KPI(metric)
	if !ok {
		return nil, fmt.Errorf("dashboard: kpi %q not found in dataset", metric)
	}
	anim := NewCounterAnimation(kpi)
	out := WidgetData{
		"key":          kpi.Key,
		"label":        kpi.Label,
		"count":        kpi.Target,
		"decimal":      kpi.Decimal,
		"prefix":       kpi.Prefix,
		"suffix":       kpi.Suffix,
		"start_text":   anim.TextAt(0),
		"final_text":   anim.FinalText(),
		"duration_ms":  anim.Duration.Milliseconds(),
		"delay_ms":     anim.Delay.Milliseconds(),
		"change":       kpi.Change,
		"change_class": "kpi-change " + polarity(kpi.Positive),
	}
	if binding := stringValue(meta.Instance.Configuration["binding"], ""); binding != "" {
		target, err := meta.Bindings.Require(binding)
		if err != nil {
			return nil, err
		}
		html, err := p.charts.Sparkline(target.ID, kpi.Sparkline, kpi.Color)
		if err != nil {
			return nil, err
		}
		out["sparkline_id"] = target.ID
		out["sparkline_html"] = html
	}
	return out, nil
}

type revenueChartProvider struct {
	dataset DatasetProvider
	charts  *ChartRenderer
}

func (p *revenueChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	target, err := meta.Bindings.Require(BindingRevenueChart)
	if err != nil {
		return nil, err
	}
	data, err := p.dataset.Current(ctx)
	if err != nil {
		return nil, err
	}
	html, err := p.charts.RevenueChart(target.ID, data.Revenue)
	if err != nil {
		return nil, err
	}
	pills := stringSliceValue(meta.Instance.Configuration["pills"])
	if len(pills) == 0 {
		pills = append([]string(nil), DefaultPills...)
	}
	return WidgetData{
		"chart_id":   target.ID,
		"chart_html": html,
		"pills":      pills,
		"theme":      p.charts.Theme(),
	}, nil
}

type trafficChartProvider struct {
	dataset DatasetProvider
	charts  *ChartRenderer
}

func (p *trafficChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	bindings, err := meta.Bindings.RequireAll(BindingTrafficChart, BindingTrafficLegend)
	if err != nil {
		return nil, err
	}
	data, err := p.dataset.Current(ctx)
	if err != nil {
		return nil, err
	}
	html, err := p.charts.TrafficChart(bindings[0].ID, data.Traffic)
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_id":   bindings[0].ID,
		"chart_html": html,
		"legend_id":  bindings[1].ID,
		"legend":     RenderTrafficLegend(data.Traffic),
		"theme":      p.charts.Theme(),
	}, nil
}

// listProvider renders a dataset list into the element named by binding.
func listProvider(dataset DatasetProvider, binding string, render func(Dataset, int) (string, any)) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		target, err := meta.Bindings.Require(binding)
		if err != nil {
			return nil, err
		}
		data, err := dataset.Current(ctx)
		if err != nil {
			return nil, err
		}
		key, views := render(data, intValue(meta.Instance.Configuration["limit"]))
		return WidgetData{
			"element_id": target.ID,
			key:          views,
		}, nil
	})
}

func truncate[T any](items []T, limit int) []T {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringSliceValue(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intValue(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return 0
	}
}

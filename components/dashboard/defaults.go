package dashboard

// Widget definition codes.
const (
	WidgetKPICounter   = "nexus.widget.kpi_counter"
	WidgetRevenueChart = "nexus.widget.revenue_chart"
	WidgetTrafficChart = "nexus.widget.traffic_chart"
	WidgetTransactions = "nexus.widget.transactions"
	WidgetActivityFeed = "nexus.widget.activity_feed"
	WidgetProducts     = "nexus.widget.products"
	WidgetStatRings    = "nexus.widget.stat_rings"
)

// Area codes.
const (
	AreaKPIs    = "nexus.dashboard.kpis"
	AreaCharts  = "nexus.dashboard.charts"
	AreaMain    = "nexus.dashboard.main"
	AreaSidebar = "nexus.dashboard.sidebar"
)

// DefaultPills are the range selectors above the revenue chart.
var DefaultPills = []string{"12M", "6M", "30D", "7D"}

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaKPIs, Name: "KPI strip", Description: "Animated summary counters"},
	{Code: AreaCharts, Name: "Charts", Description: "Revenue and traffic charts"},
	{Code: AreaMain, Name: "Main", Description: "Transactions and top products"},
	{Code: AreaSidebar, Name: "Sidebar", Description: "Activity feed and stat rings"},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:        WidgetKPICounter,
		Name:        "KPI Counter",
		Description: "Counts a key metric up from zero with a sparkline",
		Category:    "stats",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"metric"},
			"properties": map[string]any{
				"metric":  map[string]any{"type": "string", "minLength": 1},
				"binding": map[string]any{"type": "string", "minLength": 1},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetRevenueChart,
		Name:        "Revenue Chart",
		Description: "Revenue vs expenses over the last twelve months",
		Category:    "charts",
		Bindings:    []string{BindingRevenueChart},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pills": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    map[string]any{"type": "string", "minLength": 1},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetTrafficChart,
		Name:        "Traffic Sources",
		Description: "Doughnut of traffic share with a custom legend",
		Category:    "charts",
		Bindings:    []string{BindingTrafficChart, BindingTrafficLegend},
		Schema:      objectSchema(nil),
	},
	{
		Code:        WidgetTransactions,
		Name:        "Recent Transactions",
		Description: "Latest ledger entries",
		Category:    "lists",
		Bindings:    []string{BindingTransactionsList},
		Schema:      objectSchema(limitProperty()),
	},
	{
		Code:        WidgetActivityFeed,
		Name:        "Activity Feed",
		Description: "What the team has been doing",
		Category:    "activity",
		Bindings:    []string{BindingActivityFeed},
		Schema:      objectSchema(limitProperty()),
	},
	{
		Code:        WidgetProducts,
		Name:        "Top Products",
		Description: "Best selling products with growth",
		Category:    "lists",
		Bindings:    []string{BindingProductsTableBody},
		Schema:      objectSchema(limitProperty()),
	},
	{
		Code:        WidgetStatRings,
		Name:        "Stat Rings",
		Description: "Circular progress gauges",
		Category:    "stats",
		Schema:      objectSchema(nil),
	},
}

func limitProperty() map[string]any {
	return map[string]any{
		"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50},
	}
}

func objectSchema(props map[string]any) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

var defaultSeedConfigs = []AddWidgetRequest{
	{DefinitionID: WidgetKPICounter, AreaCode: AreaKPIs, Configuration: map[string]any{"metric": "revenue", "binding": BindingSparkRevenue}},
	{DefinitionID: WidgetKPICounter, AreaCode: AreaKPIs, Configuration: map[string]any{"metric": "users", "binding": BindingSparkUsers}},
	{DefinitionID: WidgetKPICounter, AreaCode: AreaKPIs, Configuration: map[string]any{"metric": "orders", "binding": BindingSparkOrders}},
	{DefinitionID: WidgetKPICounter, AreaCode: AreaKPIs, Configuration: map[string]any{"metric": "churn", "binding": BindingSparkChurn}},
	{DefinitionID: WidgetRevenueChart, AreaCode: AreaCharts, Configuration: map[string]any{}},
	{DefinitionID: WidgetTrafficChart, AreaCode: AreaCharts, Configuration: map[string]any{}},
	{DefinitionID: WidgetTransactions, AreaCode: AreaMain, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetProducts, AreaCode: AreaMain, Configuration: map[string]any{}},
	{DefinitionID: WidgetActivityFeed, AreaCode: AreaSidebar, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetStatRings, AreaCode: AreaSidebar, Configuration: map[string]any{}},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultAreaCodes returns the built-in area codes in page order.
func DefaultAreaCodes() []string {
	out := make([]string, len(defaultAreaDefinitions))
	for i, area := range defaultAreaDefinitions {
		out[i] = area.Code
	}
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	for i, def := range defaultWidgetDefinitions {
		def.Bindings = append([]string(nil), def.Bindings...)
		out[i] = def
	}
	return out
}

// DefaultSeedWidgets returns starter widget configurations.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		copyCfg.Configuration = make(map[string]any, len(cfg.Configuration))
		for k, v := range cfg.Configuration {
			copyCfg.Configuration[k] = v
		}
		out[i] = copyCfg
	}
	return out
}

// DefaultDataset is the demo data the dashboard ships with.
func DefaultDataset() Dataset {
	return Dataset{
		Notifications: []Notification{
			{Icon: "fas fa-chart-line", Severity: SeverityInfo, Title: "Revenue Milestone", Description: "Monthly revenue exceeded $80K target by 5.3%", Time: "2 min ago", Unread: true},
			{Icon: "fas fa-user-plus", Severity: SeveritySuccess, Title: "New Enterprise Client", Description: "TechCorp signed a $12K annual plan", Time: "15 min ago", Unread: true},
			{Icon: "fas fa-exclamation-triangle", Severity: SeverityWarning, Title: "Server Load Alert", Description: "CPU utilization reached 87% on us-east-1", Time: "1 hour ago", Unread: true},
			{Icon: "fas fa-check-circle", Severity: SeveritySuccess, Title: "Deployment Complete", Description: "v2.4.1 deployed to production successfully", Time: "3 hours ago"},
			{Icon: "fas fa-bell", Severity: SeverityInfo, Title: "Scheduled Maintenance", Description: "Database maintenance window tonight at 2 AM UTC", Time: "5 hours ago"},
		},
		Transactions: []Transaction{
			{Icon: "fas fa-arrow-down", Kind: TransactionIncome, Name: "Enterprise Subscription", Date: "Feb 20, 2026", Amount: "+$4,200", Positive: true},
			{Icon: "fas fa-arrow-up", Kind: TransactionExpense, Name: "AWS Infrastructure", Date: "Feb 19, 2026", Amount: "-$1,840"},
			{Icon: "fas fa-exchange-alt", Kind: TransactionTransfer, Name: "Payroll Transfer", Date: "Feb 18, 2026", Amount: "-$12,500"},
			{Icon: "fas fa-arrow-down", Kind: TransactionIncome, Name: "Pro Plan Upgrade x3", Date: "Feb 17, 2026", Amount: "+$897", Positive: true},
			{Icon: "fas fa-arrow-up", Kind: TransactionExpense, Name: "Marketing Ads", Date: "Feb 16, 2026", Amount: "-$2,300"},
		},
		Activities: []ActivityEntry{
			{Avatar: avatarURL("sarah"), Text: "<strong>Sarah Chen</strong> deployed <strong>v2.4.1</strong> to production", Time: "5 min ago"},
			{Avatar: avatarURL("marcus"), Text: "<strong>Marcus Johnson</strong> closed 3 support tickets", Time: "22 min ago"},
			{Avatar: avatarURL("priya"), Text: "<strong>Priya Patel</strong> updated the billing dashboard", Time: "1 hour ago"},
			{Avatar: avatarURL("david"), Text: "<strong>David Kim</strong> added new API endpoint <strong>/v3/analytics</strong>", Time: "3 hours ago"},
			{Avatar: avatarURL("emma"), Text: "<strong>Emma Wilson</strong> onboarded 2 new enterprise clients", Time: "5 hours ago"},
		},
		Products: []ProductRow{
			{Name: "NexusBoard Pro", Color: "#6366f1", Sales: "1,248", Revenue: "$48,920", Growth: "+18.2%", Positive: true},
			{Name: "CloudSync Plus", Color: "#8b5cf6", Sales: "892", Revenue: "$32,100", Growth: "+12.5%", Positive: true},
			{Name: "DataVault Enterprise", Color: "#ec4899", Sales: "567", Revenue: "$28,450", Growth: "+8.7%", Positive: true},
			{Name: "API Gateway", Color: "#14b8a6", Sales: "423", Revenue: "$15,680", Growth: "-2.3%"},
			{Name: "DevKit Starter", Color: "#f59e0b", Sales: "1,890", Revenue: "$9,450", Growth: "+24.1%", Positive: true},
		},
		KPIs: []KPI{
			{Key: "revenue", Label: "Total Revenue", Target: 84254, Prefix: "$", Change: "+12.5%", Positive: true,
				Sparkline: []float64{42, 48, 45, 52, 58, 56, 62, 68, 64, 72, 78, 84}, Color: "rgba(99, 102, 241, 1)"},
			{Key: "users", Label: "Active Users", Target: 2847, Change: "+8.2%", Positive: true,
				Sparkline: []float64{18, 21, 19, 23, 20, 24, 22, 26, 25, 27, 28, 29}, Color: "rgba(139, 92, 246, 1)"},
			{Key: "orders", Label: "New Orders", Target: 1432, Change: "+5.7%", Positive: true,
				Sparkline: []float64{90, 105, 95, 110, 120, 115, 125, 130, 128, 135, 140, 143}, Color: "rgba(16, 185, 129, 1)"},
			{Key: "churn", Label: "Churn Rate", Target: 4.8, Decimal: true, Suffix: "%", Change: "-0.4%", Positive: true,
				Sparkline: []float64{6.2, 5.8, 6.0, 5.5, 5.3, 5.6, 5.1, 5.0, 5.2, 4.9, 4.8, 4.8}, Color: "rgba(245, 158, 11, 1)"},
		},
		Rings: []StatRing{
			{Label: "Conversion", Value: "68%", DashArray: "68, 100", Color: "#6366f1"},
			{Label: "Retention", Value: "82%", DashArray: "82, 100", Color: "#8b5cf6"},
			{Label: "Satisfaction", Value: "94%", DashArray: "94, 100", Color: "#10b981"},
		},
		Revenue: RevenueSeries{
			Labels:   []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
			Revenue:  []float64{42000, 48000, 45000, 52000, 58000, 56000, 62000, 68000, 64000, 72000, 78000, 84254},
			Expenses: []float64{28000, 32000, 30000, 35000, 38000, 36000, 40000, 42000, 39000, 44000, 47000, 52000},
		},
		Traffic: []TrafficSlice{
			{Label: "Direct", Value: 35, Color: "#6366f1"},
			{Label: "Organic", Value: 28, Color: "#8b5cf6"},
			{Label: "Referral", Value: 20, Color: "#ec4899"},
			{Label: "Social", Value: 17, Color: "#14b8a6"},
		},
	}
}

func avatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}

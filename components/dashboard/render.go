package dashboard

import (
	"fmt"
	"html/template"
	"strings"
)

// NotificationView is a notification with its CSS classes resolved.
type NotificationView struct {
	Class       string `json:"class"`
	IconClass   string `json:"icon_class"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Unread      bool   `json:"unread"`
}

// TransactionView is a ledger row ready for the template.
type TransactionView struct {
	IconClass   string `json:"icon_class"`
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	AmountClass string `json:"amount_class"`
}

// ActivityView is a feed item. Text is trusted markup and rendered unescaped.
type ActivityView struct {
	Avatar string        `json:"avatar"`
	Text   template.HTML `json:"text"`
	Time   string        `json:"time"`
}

// ProductView is a top products table row.
type ProductView struct {
	Name        string `json:"name"`
	SwatchStyle string `json:"swatch_style"`
	Sales       string `json:"sales"`
	Revenue     string `json:"revenue"`
	Growth      string `json:"growth"`
	GrowthClass string `json:"growth_class"`
}

// LegendItemView is one entry of the traffic chart legend.
type LegendItemView struct {
	DotStyle string `json:"dot_style"`
	Label    string `json:"label"`
}

// RenderNotifications maps notifications to views, preserving order.
func RenderNotifications(items []Notification) []NotificationView {
	out := make([]NotificationView, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationView{
			Class:       classList("notif-item", n.Unread, "unread"),
			IconClass:   "notif-icon " + string(n.Severity),
			Icon:        n.Icon,
			Title:       n.Title,
			Description: n.Description,
			Time:        n.Time,
			Unread:      n.Unread,
		})
	}
	return out
}

// RenderTransactions maps ledger entries to views.
func RenderTransactions(items []Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(items))
	for _, t := range items {
		out = append(out, TransactionView{
			IconClass:   "transaction-icon " + string(t.Kind),
			Icon:        t.Icon,
			Name:        t.Name,
			Date:        t.Date,
			Amount:      t.Amount,
			AmountClass: "transaction-amount " + polarity(t.Positive),
		})
	}
	return out
}

// RenderActivities maps feed entries to views.
func RenderActivities(items []ActivityEntry) []ActivityView {
	out := make([]ActivityView, 0, len(items))
	for _, a := range items {
		out = append(out, ActivityView{
			Avatar: a.Avatar,
			Text:   template.HTML(a.Text), //nolint:gosec // dataset-authored markup
			Time:   a.Time,
		})
	}
	return out
}

// RenderProducts maps product rows to views.
func RenderProducts(items []ProductRow) []ProductView {
	out := make([]ProductView, 0, len(items))
	for _, p := range items {
		out = append(out, ProductView{
			Name:        p.Name,
			SwatchStyle: "background:" + p.Color,
			Sales:       p.Sales,
			Revenue:     p.Revenue,
			Growth:      p.Growth,
			GrowthClass: "growth-badge " + polarity(p.Positive),
		})
	}
	return out
}

// RenderTrafficLegend builds the custom legend shown beside the doughnut.
func RenderTrafficLegend(items []TrafficSlice) []LegendItemView {
	out := make([]LegendItemView, 0, len(items))
	for _, s := range items {
		out = append(out, LegendItemView{
			DotStyle: "background:" + s.Color,
			Label:    fmt.Sprintf("%s (%s%%)", s.Label, trimFloat(s.Value)),
		})
	}
	return out
}

func polarity(positive bool) string {
	if positive {
		return "positive"
	}
	return "negative"
}

func classList(base string, enabled bool, extra string) string {
	if !enabled {
		return base
	}
	return base + " " + extra
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

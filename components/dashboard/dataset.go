package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Severity categorizes a notification for styling.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TransactionIncome   TransactionKind = "income"
	TransactionExpense  TransactionKind = "expense"
	TransactionTransfer TransactionKind = "transfer"
)

// Notification is a single entry of the notification panel.
type Notification struct {
	Icon        string   `json:"icon" yaml:"icon"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Time        string   `json:"time" yaml:"time"`
	Unread      bool     `json:"unread" yaml:"unread"`
}

// Transaction is a recent ledger row. Amount is already signed and formatted.
type Transaction struct {
	Icon     string          `json:"icon" yaml:"icon"`
	Kind     TransactionKind `json:"kind" yaml:"kind"`
	Name     string          `json:"name" yaml:"name"`
	Date     string          `json:"date" yaml:"date"`
	Amount   string          `json:"amount" yaml:"amount"`
	Positive bool            `json:"positive" yaml:"positive"`
}

// ActivityEntry is a feed item. Text is trusted markup authored with the dataset.
type ActivityEntry struct {
	Avatar string `json:"avatar" yaml:"avatar"`
	Text   string `json:"text" yaml:"text"`
	Time   string `json:"time" yaml:"time"`
}

// ProductRow is a row of the top products table.
type ProductRow struct {
	Name     string `json:"name" yaml:"name"`
	Color    string `json:"color" yaml:"color"`
	Sales    string `json:"sales" yaml:"sales"`
	Revenue  string `json:"revenue" yaml:"revenue"`
	Growth   string `json:"growth" yaml:"growth"`
	Positive bool   `json:"positive" yaml:"positive"`
}

// KPI describes an animated summary card with its sparkline.
type KPI struct {
	Key       string    `json:"key" yaml:"key"`
	Label     string    `json:"label" yaml:"label"`
	Target    float64   `json:"target" yaml:"target"`
	Decimal   bool      `json:"decimal" yaml:"decimal"`
	Prefix    string    `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix    string    `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Change    string    `json:"change,omitempty" yaml:"change,omitempty"`
	Positive  bool      `json:"positive" yaml:"positive"`
	Sparkline []float64 `json:"sparkline" yaml:"sparkline"`
	Color     string    `json:"color" yaml:"color"`
}

// StatRing is a circular progress gauge drawn with an SVG dash array.
type StatRing struct {
	Label     string `json:"label" yaml:"label"`
	Value     string `json:"value" yaml:"value"`
	DashArray string `json:"dash_array" yaml:"dash_array"`
	Color     string `json:"color" yaml:"color"`
}

// RevenueSeries feeds the dual-series revenue chart.
type RevenueSeries struct {
	Labels   []string  `json:"labels" yaml:"labels"`
	Revenue  []float64 `json:"revenue" yaml:"revenue"`
	Expenses []float64 `json:"expenses" yaml:"expenses"`
}

// TrafficSlice is one categorical share of the traffic doughnut.
type TrafficSlice struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color" yaml:"color"`
}

// Dataset is everything the dashboard page displays.
type Dataset struct {
	Notifications []Notification  `json:"notifications" yaml:"notifications"`
	Transactions  []Transaction   `json:"transactions" yaml:"transactions"`
	Activities    []ActivityEntry `json:"activities" yaml:"activities"`
	Products      []ProductRow    `json:"products" yaml:"products"`
	KPIs          []KPI           `json:"kpis" yaml:"kpis"`
	Rings         []StatRing      `json:"rings" yaml:"rings"`
	Revenue       RevenueSeries   `json:"revenue" yaml:"revenue"`
	Traffic       []TrafficSlice  `json:"traffic" yaml:"traffic"`
}

// DatasetProvider supplies the dataset the dashboard renders.
type DatasetProvider interface {
	Current(ctx context.Context) (Dataset, error)
}

// DatasetProviderFunc adapts a function into a DatasetProvider.
type DatasetProviderFunc func(ctx context.Context) (Dataset, error)

// Current calls f.
func (f DatasetProviderFunc) Current(ctx context.Context) (Dataset, error) {
	return f(ctx)
}

// StaticDatasetProvider always serves a copy of the same dataset.
type StaticDatasetProvider struct {
	data Dataset
}

// NewStaticDatasetProvider wraps data.
func NewStaticDatasetProvider(data Dataset) *StaticDatasetProvider {
	return &StaticDatasetProvider{data: data.Clone()}
}

// DefaultDatasetProvider serves DefaultDataset.
func DefaultDatasetProvider() DatasetProvider {
	return NewStaticDatasetProvider(DefaultDataset())
}

// Current returns a defensive copy of the dataset.
func (p *StaticDatasetProvider) Current(context.Context) (Dataset, error) {
	return p.data.Clone(), nil
}

// FileDatasetProvider loads a YAML dataset from disk once and serves it afterwards.
type FileDatasetProvider struct {
	path string
	once sync.Once
	data Dataset
	err  error
}

// NewFileDatasetProvider builds a provider for the YAML file at path.
func NewFileDatasetProvider(path string) *FileDatasetProvider {
	return &FileDatasetProvider{path: path}
}

// Current loads the file on first use.
func (p *FileDatasetProvider) Current(context.Context) (Dataset, error) {
	p.once.Do(func() {
		p.data, p.err = ReadDataset(p.path)
	})
	if p.err != nil {
		return Dataset{}, p.err
	}
	return p.data.Clone(), nil
}

// ReadDataset decodes and validates a dataset file.
func ReadDataset(path string) (Dataset, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return Dataset{}, fmt.Errorf("dashboard: open dataset %s: %w", path, err)
	}
	defer f.Close()
	data, err := DecodeDataset(f)
	if err != nil {
		return Dataset{}, fmt.Errorf("dashboard: decode dataset %s: %w", path, err)
	}
	return data, nil
}

// DecodeDataset reads a YAML (or JSON) dataset, rejecting unknown fields.
func DecodeDataset(r io.Reader) (Dataset, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var data Dataset
	if err := decoder.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, errors.New("dashboard: dataset is empty")
		}
		return Dataset{}, fmt.Errorf("dashboard: parse dataset: %w", err)
	}
	if err := data.Validate(); err != nil {
		return Dataset{}, err
	}
	return data, nil
}

// EncodeDataset writes data as YAML with two-space indentation.
func EncodeDataset(w io.Writer, data Dataset) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("dashboard: encode dataset: %w", err)
	}
	return encoder.Close()
}

// Validate checks the structural constraints renderers rely on.
func (d Dataset) Validate() error {
	if n := len(d.Revenue.Labels); n > 0 {
		if len(d.Revenue.Revenue) != n || len(d.Revenue.Expenses) != n {
			return fmt.Errorf("dashboard: revenue series must have %d points (revenue=%d expenses=%d)", n, len(d.Revenue.Revenue), len(d.Revenue.Expenses))
		}
	}
	seen := make(map[string]struct{}, len(d.KPIs))
	for idx, kpi := range d.KPIs {
		if kpi.Key == "" {
			return fmt.Errorf("dashboard: kpi at index %d is missing key", idx)
		}
		if _, ok := seen[kpi.Key]; ok {
			return fmt.Errorf("dashboard: dataset duplicates kpi %s", kpi.Key)
		}
		seen[kpi.Key] = struct{}{}
	}
	for idx, n := range d.Notifications {
		switch n.Severity {
		case SeverityInfo, SeveritySuccess, SeverityWarning:
		default:
			return fmt.Errorf("dashboard: notification %d has unknown severity %q", idx, n.Severity)
		}
	}
	for idx, tx := range d.Transactions {
		switch tx.Kind {
		case TransactionIncome, TransactionExpense, TransactionTransfer:
		default:
			return fmt.Errorf("dashboard: transaction %d has unknown kind %q", idx, tx.Kind)
		}
	}
	return nil
}

// KPI looks up a KPI by key.
func (d Dataset) KPI(key string) (KPI, bool) {
	for _, kpi := range d.KPIs {
		if kpi.Key == key {
			return kpi, true
		}
	}
	return KPI{}, false
}

// Clone deep-copies the dataset so callers can mutate their copy freely.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Notifications: append([]Notification(nil), d.Notifications...),
		Transactions:  append([]Transaction(nil), d.Transactions...),
		Activities:    append([]ActivityEntry(nil), d.Activities...),
		Products:      append([]ProductRow(nil), d.Products...),
		Rings:         append([]StatRing(nil), d.Rings...),
		Traffic:       append([]TrafficSlice(nil), d.Traffic...),
		Revenue: RevenueSeries{
			Labels:   append([]string(nil), d.Revenue.Labels...),
			Revenue:  append([]float64(nil), d.Revenue.Revenue...),
			Expenses: append([]float64(nil), d.Revenue.Expenses...),
		},
	}
	if d.KPIs != nil {
		out.KPIs = make([]KPI, len(d.KPIs))
		for i, kpi := range d.KPIs {
			kpi.Sparkline = append([]float64(nil), kpi.Sparkline...)
			out.KPIs[i] = kpi
		}
	}
	return out
}

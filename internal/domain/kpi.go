package domain

import (
	"strings"
	"time"
)

// MatchMode selects how a cohort compares its include terms.
type MatchMode string

const (
	MatchContains  MatchMode = "contains"
	MatchExactList MatchMode = "exactList"
)

// CohortField names the transaction field a cohort classifies.
type CohortField string

const (
	FieldBrand   CohortField = "brand"
	FieldProduct CohortField = "product"
)

// Cohort is a named product/brand classification rule.
// Exclude terms are always substring matches and always win over include terms.
type Cohort struct {
	Key          string      `json:"key" yaml:"key"`
	Field        CohortField `json:"field" yaml:"field"`
	IncludeTerms []string    `json:"include_terms" yaml:"include"`
	ExcludeTerms []string    `json:"exclude_terms,omitempty" yaml:"exclude,omitempty"`
	MatchMode    MatchMode   `json:"match_mode" yaml:"match_mode"`
}

type Metric string

const (
	MetricSum           Metric = "sum"
	MetricCount         Metric = "count"
	MetricDistinctCount Metric = "distinctCount"
)

// Measure is the numeric field summed by sum metrics and compared by thresholds.
type Measure string

const (
	MeasureVolume Measure = "volume"
	MeasureValue  Measure = "value"
)

type ThresholdOp string

const (
	OpAtLeast  ThresholdOp = ">="
	OpLessThan ThresholdOp = "<"
)

// Threshold is a qualification gate applied at the finest grouping level.
type Threshold struct {
	Op    ThresholdOp `json:"op" yaml:"op"`
	Value float64     `json:"value" yaml:"value"`
}

// Passes reports whether v satisfies the threshold.
func (t Threshold) Passes(v float64) bool {
	switch t.Op {
	case OpLessThan:
		return v < t.Value
	default:
		return v >= t.Value
	}
}

// KpiKind selects the resolver that evaluates a definition.
type KpiKind string

const (
	KindAggregate KpiKind = "aggregate"
	KindUnbilled  KpiKind = "unbilled"
)

// GroupingKey names a transaction field a KPI can group by.
type GroupingKey string

const (
	KeySalesExec    GroupingKey = "salesExec"
	KeyCustomer     GroupingKey = "customer"
	KeyCustomerCode GroupingKey = "customerCode"
	KeyCustomerName GroupingKey = "customerName"
	KeyBrand        GroupingKey = "brand"
	KeyMasterBrand  GroupingKey = "masterBrand"
	KeyProduct      GroupingKey = "product"
	KeyWeek         GroupingKey = "week"
	KeyMonth        GroupingKey = "month"
	KeyState        GroupingKey = "state"
	KeyDistrict     GroupingKey = "district"
)

var groupingKeyLabels = map[GroupingKey]string{
	KeySalesExec:    "Sales Executive Name",
	KeyCustomer:     "Customer",
	KeyCustomerCode: "Customer Code",
	KeyCustomerName: "Customer Name",
	KeyBrand:        "Brand Name",
	KeyMasterBrand:  "Master Brand Name",
	KeyProduct:      "Product Name",
	KeyWeek:         "Week",
	KeyMonth:        "Month",
	KeyState:        "State Name",
	KeyDistrict:     "District Name",
}

// Valid reports whether k is a known grouping key.
func (k GroupingKey) Valid() bool {
	_, ok := groupingKeyLabels[k]
	return ok
}

// Label returns the column header used for k.
func (k GroupingKey) Label() string {
	if label, ok := groupingKeyLabels[k]; ok {
		return label
	}
	return string(k)
}

// IsCustomer reports whether k identifies a customer.
func (k GroupingKey) IsCustomer() bool {
	return k == KeyCustomer || k == KeyCustomerCode || k == KeyCustomerName
}

// KpiDefinition is one entry of the KPI catalog.
type KpiDefinition struct {
	ID               string        `json:"id" yaml:"-"`
	ShortKey         string        `json:"short_key" yaml:"short_key"`
	DisplayName      string        `json:"display_name" yaml:"name"`
	Kind             KpiKind       `json:"kind" yaml:"kind,omitempty"`
	GroupingKeys     []GroupingKey `json:"grouping_keys" yaml:"grouping_keys"`
	Cohort           *Cohort       `json:"cohort,omitempty" yaml:"cohort,omitempty"`
	CoreProductsOnly bool          `json:"core_products_only" yaml:"core_products_only,omitempty"`
	Metric           Metric        `json:"metric" yaml:"metric"`
	Measure          Measure       `json:"measure" yaml:"measure,omitempty"`
	Threshold        *Threshold    `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	EmptyKeyLabel    string        `json:"empty_key_label,omitempty" yaml:"empty_key_label,omitempty"`
	Limit            int           `json:"limit,omitempty" yaml:"limit,omitempty"`
	IconName         string        `json:"icon_name,omitempty" yaml:"icon,omitempty"`
	Active           bool          `json:"active" yaml:"active"`
	DisplayOrder     int           `json:"display_order" yaml:"display_order"`
	CreatedAt        time.Time     `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time     `json:"updated_at" yaml:"-"`
}

// ReportedKeys returns the keys a result row is reported by. With a threshold the
// last grouping key is the qualification level and is rolled up.
func (d KpiDefinition) ReportedKeys() []GroupingKey {
	if d.Threshold != nil && len(d.GroupingKeys) > 1 {
		return d.GroupingKeys[:len(d.GroupingKeys)-1]
	}
	return d.GroupingKeys
}

// Headers returns the column headers of the result table.
func (d KpiDefinition) Headers() []string {
	keys := d.ReportedKeys()
	if d.Kind == KindUnbilled {
		keys = []GroupingKey{KeySalesExec}
	}
	headers := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		headers = append(headers, k.Label())
	}
	return append(headers, d.DisplayName)
}

// KpiResultRow is one group of a KPI result. Never persisted.
type KpiResultRow struct {
	GroupKeyValues []string `json:"group_key_values"`
	MetricValue    float64  `json:"metric_value"`
}

// Label joins the group key values for display.
func (r KpiResultRow) Label() string {
	return strings.Join(r.GroupKeyValues, " / ")
}

// KpiResult is an evaluated definition.
type KpiResult struct {
	ShortKey    string         `json:"short_key"`
	DisplayName string         `json:"display_name"`
	IconName    string         `json:"icon_name,omitempty"`
	Headers     []string       `json:"headers"`
	Rows        []KpiResultRow `json:"rows"`
}

// DrilldownItem is one contribution behind a KPI result row.
type DrilldownItem struct {
	Label string  `json:"label"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// UnbilledCustomer is a master customer below the billing threshold.
type UnbilledCustomer struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	SalesExec string  `json:"sales_exec"`
	Volume    float64 `json:"volume"`
}

// UnbilledResult holds the per-salesperson count and the shortfall detail behind it.
type UnbilledResult struct {
	BySalesExec []KpiResultRow                `json:"by_sales_exec"`
	Detail      map[string][]UnbilledCustomer `json:"detail"`
}

// Report is the full dashboard for one window.
type Report struct {
	Window      Window      `json:"window"`
	TotalVolume float64     `json:"total_volume"`
	Results     []KpiResult `json:"results"`
	GeneratedAt time.Time   `json:"generated_at"`
}

package kpi

import (
	"github.com/andresuchdata/salesperf/backend-go/internal/classify"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// DefaultBillingThreshold is the core volume, in liters, below which a master
// customer is under-billed and at or above which a customer is high-volume.
const DefaultBillingThreshold = 9.0

// DefaultDefinitions returns the seed catalog in display order.
func DefaultDefinitions() []domain.KpiDefinition {
	bySE := []domain.GroupingKey{domain.KeySalesExec}
	bySECustomer := []domain.GroupingKey{domain.KeySalesExec, domain.KeyCustomer}
	cohort := func(c domain.Cohort) *domain.Cohort { return &c }
	atLeast := func(v float64) *domain.Threshold {
		return &domain.Threshold{Op: domain.OpAtLeast, Value: v}
	}

	defs := []domain.KpiDefinition{
		{
			ShortKey:      "volumeBySE",
			DisplayName:   "Volume by Sales Exec",
			GroupingKeys:  bySE,
			Metric:        domain.MetricSum,
			Measure:       domain.MeasureVolume,
			EmptyKeyLabel: "Unknown",
			IconName:      "BarChart3",
		},
		{
			ShortKey:     "activCount",
			DisplayName:  "'Activ' Customer Count",
			GroupingKeys: bySE,
			Cohort:       cohort(classify.Activ()),
			Metric:       domain.MetricDistinctCount,
			Measure:      domain.MeasureVolume,
			IconName:     "Users",
		},
		{
			ShortKey:     "power1Count",
			DisplayName:  "Power1 Customers ≥ 5L",
			GroupingKeys: bySECustomer,
			Cohort:       cohort(classify.Power1()),
			Metric:       domain.MetricCount,
			Measure:      domain.MeasureVolume,
			Threshold:    atLeast(5),
			IconName:     "TrendingUp",
		},
		{
			ShortKey:     "magnatecCount",
			DisplayName:  "Magnatec Customers ≥ 5L",
			GroupingKeys: bySECustomer,
			Cohort:       cohort(classify.Magnatec()),
			Metric:       domain.MetricCount,
			Measure:      domain.MeasureVolume,
			Threshold:    atLeast(5),
			IconName:     "TrendingUp",
		},
		{
			ShortKey:     "crbCount",
			DisplayName:  "CRB Turbomax Customers ≥ 5L",
			GroupingKeys: bySECustomer,
			Cohort:       cohort(classify.CRBTurbomax()),
			Metric:       domain.MetricCount,
			Measure:      domain.MeasureVolume,
			Threshold:    atLeast(5),
			IconName:     "TrendingUp",
		},
		{
			ShortKey:         "highVolCount",
			DisplayName:      "High-Volume Core Customers (≥ 9L)",
			GroupingKeys:     bySECustomer,
			CoreProductsOnly: true,
			Metric:           domain.MetricCount,
			Measure:          domain.MeasureVolume,
			Threshold:        atLeast(DefaultBillingThreshold),
			IconName:         "TrendingUp",
		},
		{
			ShortKey:     "autocareCount",
			DisplayName:  "Autocare Customers (≥ 5L)",
			GroupingKeys: bySECustomer,
			Cohort:       cohort(classify.Autocare()),
			Metric:       domain.MetricCount,
			Measure:      domain.MeasureVolume,
			Threshold:    atLeast(5),
			IconName:     "Package",
		},
		{
			ShortKey:     "weeklySales",
			DisplayName:  "Weekly Sales Volume",
			GroupingKeys: []domain.GroupingKey{domain.KeyWeek},
			Metric:       domain.MetricSum,
			Measure:      domain.MeasureVolume,
			IconName:     "BarChart3",
		},
		{
			ShortKey:      "volByBrand",
			DisplayName:   "Volume by Brand",
			GroupingKeys:  []domain.GroupingKey{domain.KeyBrand},
			Metric:        domain.MetricSum,
			Measure:       domain.MeasureVolume,
			EmptyKeyLabel: "Not Classified",
			IconName:      "Package",
		},
		{
			ShortKey:      "topCustomers",
			DisplayName:   "Top 10 Customers by Value",
			GroupingKeys:  []domain.GroupingKey{domain.KeyCustomerName},
			Metric:        domain.MetricSum,
			Measure:       domain.MeasureValue,
			EmptyKeyLabel: "Unknown",
			Limit:         10,
			IconName:      "FileText",
		},
		{
			ShortKey:         "unbilled",
			DisplayName:      "Unbilled Customers (< 9L)",
			Kind:             domain.KindUnbilled,
			GroupingKeys:     bySE,
			CoreProductsOnly: true,
			Metric:           domain.MetricCount,
			Measure:          domain.MeasureVolume,
			Threshold:        &domain.Threshold{Op: domain.OpLessThan, Value: DefaultBillingThreshold},
			IconName:         "AlertCircle",
		},
	}

	for i := range defs {
		defs[i].Active = true
		defs[i].DisplayOrder = i + 1
		Normalize(&defs[i])
	}
	return defs
}

// WithBillingThreshold returns the seed catalog with the 9L core volume gates
// (high-volume qualification and unbilled shortfall) moved to threshold.
func WithBillingThreshold(threshold float64) []domain.KpiDefinition {
	defs := DefaultDefinitions()
	if threshold <= 0 {
		return defs
	}
	for i := range defs {
		t := defs[i].Threshold
		if defs[i].CoreProductsOnly && t != nil && t.Value == DefaultBillingThreshold {
			defs[i].Threshold = &domain.Threshold{Op: t.Op, Value: threshold}
		}
	}
	return defs
}

package kpi

import (
	"context"
	"sort"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// DrillQuery is the query behind one result row: the same filter as def,
// regrouped one level finer and restricted to groupValues. Qualification
// gating is dropped so every contributing group shows its full measure.
func DrillQuery(def domain.KpiDefinition, groupValues []string) Query {
	reported := def.ReportedKeys()
	next := nextFinerKey(reported)

	q := QueryFor(def)
	q.GroupingKeys = append(append([]domain.GroupingKey(nil), reported...), next)
	q.Metric = domain.MetricSum
	q.Threshold = nil
	q.Limit = 0
	q.Prefix = groupValues
	if next == domain.KeyCustomer {
		q.LabelKey = domain.KeyCustomerName
	}
	if def.Threshold != nil {
		// qualification kpis never bucket blank keys
		q.EmptyKeyLabel = ""
	}
	return q
}

func nextFinerKey(reported []domain.GroupingKey) domain.GroupingKey {
	hasCustomer := false
	for _, k := range reported {
		if k.IsCustomer() {
			hasCustomer = true
		}
	}
	if hasCustomer {
		return domain.KeyProduct
	}
	return domain.KeyCustomer
}

// Drilldown returns the contributions behind the result row identified by
// groupValues. An unknown group yields an empty list.
func (e *Engine) Drilldown(ctx context.Context, rows []domain.TransactionLine, def domain.KpiDefinition, groupValues ...string) ([]domain.DrilldownItem, error) {
	if len(groupValues) == 0 {
		return []domain.DrilldownItem{}, nil
	}
	q := DrillQuery(def, groupValues)
	groups, err := e.accumulate(ctx, rows, q)
	if err != nil {
		return nil, err
	}

	items := make([]domain.DrilldownItem, 0, len(groups))
	for _, acc := range groups {
		key := acc.keys[len(acc.keys)-1]
		label := acc.label
		if label == "" {
			label = key
		}
		items = append(items, domain.DrilldownItem{Label: label, Key: key, Value: acc.sum})
	}
	SortItems(items)
	return items, nil
}

// DrilldownLines returns the transaction lines behind one drill-down item.
func (e *Engine) DrilldownLines(ctx context.Context, rows []domain.TransactionLine, def domain.KpiDefinition, groupValues []string, itemKey string) ([]domain.TransactionLine, error) {
	var q Query
	if def.Kind == domain.KindUnbilled {
		q = Query{
			GroupingKeys:     []domain.GroupingKey{domain.KeyCustomerCode},
			CoreProductsOnly: def.CoreProductsOnly,
			Cohort:           def.Cohort,
			Prefix:           []string{itemKey},
		}
	} else {
		if len(groupValues) != len(def.ReportedKeys()) {
			return []domain.TransactionLine{}, nil
		}
		prefix := append(append([]string(nil), groupValues...), itemKey)
		q = DrillQuery(def, prefix)
	}

	lines, err := e.Lines(ctx, rows, q)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].DocumentDate.Equal(lines[j].DocumentDate) {
			return lines[i].DocumentDate.Before(lines[j].DocumentDate)
		}
		return lines[i].DocumentNo < lines[j].DocumentNo
	})
	return lines, nil
}

// SortItems orders items by value descending, ties by label.
func SortItems(items []domain.DrilldownItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		if items[i].Label != items[j].Label {
			return items[i].Label < items[j].Label
		}
		return items[i].Key < items[j].Key
	})
}

package kpi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Unbilled flags every master customer whose core volume is strictly below
// threshold. coreLines must already be restricted to core products and the
// reporting window. Customers are attributed to their master salesperson, and
// customers without any line count with volume 0.
func Unbilled(customers []domain.CustomerRecord, coreLines []domain.TransactionLine, threshold float64) domain.UnbilledResult {
	volumeByCode := make(map[string]float64)
	for _, l := range coreLines {
		code := strings.TrimSpace(l.CustomerCode)
		if code == "" {
			continue
		}
		volumeByCode[code] += l.Volume
	}

	result := domain.UnbilledResult{
		BySalesExec: make([]domain.KpiResultRow, 0),
		Detail:      make(map[string][]domain.UnbilledCustomer),
	}
	seen := make(map[string]bool, len(customers))
	for _, c := range customers {
		code := strings.TrimSpace(c.Code)
		se := strings.TrimSpace(c.AssignedSalesExec)
		if code == "" || se == "" || seen[code] {
			continue
		}
		seen[code] = true

		vol := volumeByCode[code]
		if vol >= threshold {
			continue
		}
		result.Detail[se] = append(result.Detail[se], domain.UnbilledCustomer{
			Code:      code,
			Name:      strings.TrimSpace(c.Name),
			SalesExec: se,
			Volume:    vol,
		})
	}

	for se, detail := range result.Detail {
		sort.Slice(detail, func(i, j int) bool {
			if detail[i].Volume != detail[j].Volume {
				return detail[i].Volume > detail[j].Volume
			}
			return detail[i].Code < detail[j].Code
		})
		result.BySalesExec = append(result.BySalesExec, domain.KpiResultRow{
			GroupKeyValues: []string{se},
			MetricValue:    float64(len(detail)),
		})
	}
	SortRows(result.BySalesExec)
	return result
}

// Unbilled evaluates an unbilled definition: rows go through the definition's
// filter before the master join.
func (e *Engine) Unbilled(ctx context.Context, customers []domain.CustomerRecord, rows []domain.TransactionLine, def domain.KpiDefinition) (domain.UnbilledResult, error) {
	threshold := DefaultBillingThreshold
	if def.Threshold != nil {
		threshold = def.Threshold.Value
	}
	q := Query{
		CoreProductsOnly: def.CoreProductsOnly,
		Cohort:           def.Cohort,
	}
	lines, err := e.Lines(ctx, rows, q)
	if err != nil {
		return domain.UnbilledResult{}, err
	}
	return Unbilled(customers, lines, threshold), nil
}

// UnbilledItems looks up the precomputed shortfall records of one salesperson.
func UnbilledItems(result domain.UnbilledResult, salesExec string) []domain.DrilldownItem {
	detail := result.Detail[strings.TrimSpace(salesExec)]
	items := make([]domain.DrilldownItem, 0, len(detail))
	for _, d := range detail {
		items = append(items, domain.DrilldownItem{
			Label: fmt.Sprintf("%s (%s)", d.Name, d.Code),
			Key:   d.Code,
			Value: d.Volume,
		})
	}
	SortItems(items)
	return items
}

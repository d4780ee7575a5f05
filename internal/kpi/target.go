package kpi

import (
	"sort"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/classify"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Targets computes achieved core volume for each agreement within its own
// inclusive date range. A zero target yields 0%.
func Targets(agreements []domain.Agreement, lines []domain.TransactionLine) domain.TargetSummary {
	byCode := coreLinesByCode(lines)

	summary := domain.TargetSummary{Results: make([]domain.TargetResult, 0, len(agreements))}
	for _, a := range agreements {
		var achieved float64
		for _, l := range byCode[strings.TrimSpace(a.CustomerCode)] {
			if a.Covers(l) {
				achieved += l.Volume
			}
		}
		summary.Results = append(summary.Results, domain.TargetResult{
			Agreement:      a,
			AchievedVolume: achieved,
			AchievementPct: domain.AchievementPct(achieved, a.TargetVolume),
		})
		summary.TotalTarget += a.TargetVolume
		summary.TotalAchieved += achieved
	}
	summary.OverallPct = domain.AchievementPct(summary.TotalAchieved, summary.TotalTarget)
	return summary
}

// TargetProducts breaks an agreement's achieved volume down by product.
func TargetProducts(a domain.Agreement, lines []domain.TransactionLine) []domain.DrilldownItem {
	byProduct := make(map[string]float64)
	for _, l := range lines {
		if !a.Covers(l) || !classify.IsCoreProduct(l) {
			continue
		}
		name := strings.TrimSpace(l.ProductName)
		if name == "" {
			name = "Unknown"
		}
		byProduct[name] += l.Volume
	}

	items := make([]domain.DrilldownItem, 0, len(byProduct))
	for name, vol := range byProduct {
		items = append(items, domain.DrilldownItem{Label: name, Key: name, Value: vol})
	}
	SortItems(items)
	return items
}

// TargetInvoices lists the lines of one product behind an agreement.
func TargetInvoices(a domain.Agreement, lines []domain.TransactionLine, product string) []domain.TransactionLine {
	product = strings.TrimSpace(product)
	out := make([]domain.TransactionLine, 0)
	for _, l := range lines {
		if !a.Covers(l) || !classify.IsCoreProduct(l) {
			continue
		}
		name := strings.TrimSpace(l.ProductName)
		if name == "" {
			name = "Unknown"
		}
		if name == product {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DocumentDate.Equal(out[j].DocumentDate) {
			return out[i].DocumentDate.Before(out[j].DocumentDate)
		}
		return out[i].DocumentNo < out[j].DocumentNo
	})
	return out
}

// AgreementWindow is the smallest window covering every agreement.
func AgreementWindow(agreements []domain.Agreement) domain.Window {
	var w domain.Window
	for _, a := range agreements {
		start := domain.StartOfDay(a.StartDate)
		end := domain.StartOfDay(a.EndDate).AddDate(0, 0, 1)
		if w.From.IsZero() || start.Before(w.From) {
			w.From = start
		}
		if w.To.IsZero() || end.After(w.To) {
			w.To = end
		}
	}
	return w
}

func coreLinesByCode(lines []domain.TransactionLine) map[string][]domain.TransactionLine {
	out := make(map[string][]domain.TransactionLine)
	for _, l := range lines {
		code := strings.TrimSpace(l.CustomerCode)
		if code == "" || !classify.IsCoreProduct(l) {
			continue
		}
		out[code] = append(out[code], l)
	}
	return out
}

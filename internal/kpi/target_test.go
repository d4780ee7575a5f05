package kpi

import (
	"testing"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dated(l domain.TransactionLine, t time.Time) domain.TransactionLine {
	l.DocumentDate = t
	return l
}

func TestTargets(t *testing.T) {
	agreements := []domain.Agreement{
		{ID: "1", CustomerCode: "C1", StartDate: day(2025, 1, 1), EndDate: day(2025, 3, 31), TargetVolume: 100},
		{ID: "2", CustomerCode: "C2", StartDate: day(2025, 1, 1), EndDate: day(2025, 12, 31), TargetVolume: 0},
	}
	lines := []domain.TransactionLine{
		dated(line("A", "C1", "One", "GTX", "GTX 1L", 20), day(2025, 1, 1)),
		dated(line("A", "C1", "One", "GTX", "GTX 1L", 25), time.Date(2025, 3, 31, 18, 30, 0, 0, time.UTC)),
		dated(line("A", "C1", "One", "GTX", "GTX 1L", 50), day(2025, 4, 1)),
		dated(line("A", "C1", "One", "AUTO CARE EXTERIOR", "SHAMPOO", 50), day(2025, 2, 1)),
		dated(line("A", "C1", "One", "GTX", "CHAIN LUBE 100ML", 50), day(2025, 2, 1)),
		dated(line("A", "C2", "Two", "GTX", "GTX 1L", 10), day(2025, 2, 1)),
	}

	summary := Targets(agreements, lines)
	if len(summary.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(summary.Results))
	}
	first := summary.Results[0]
	if first.AchievedVolume != 45 || first.AchievementPct != 45 {
		t.Fatalf("got %v (%v%%), want 45 (45%%)", first.AchievedVolume, first.AchievementPct)
	}
	second := summary.Results[1]
	if second.AchievedVolume != 10 || second.AchievementPct != 0 {
		t.Fatalf("zero target: got %v (%v%%), want 10 (0%%)", second.AchievedVolume, second.AchievementPct)
	}
	if summary.TotalTarget != 100 || summary.TotalAchieved != 55 || summary.OverallPct != 55 {
		t.Fatalf("got %+v", summary)
	}
}

func TestTargetProductsAndInvoices(t *testing.T) {
	a := domain.Agreement{CustomerCode: "C1", StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 31), TargetVolume: 10}
	lines := []domain.TransactionLine{
		dated(line("A", "C1", "One", "GTX", "GTX 1L", 2), day(2025, 1, 5)),
		dated(line("A", "C1", "One", "GTX", "GTX 1L", 3), day(2025, 1, 2)),
		dated(line("A", "C1", "One", "GTX", "EDGE 4L", 4), day(2025, 1, 3)),
		dated(line("A", "C1", "One", "GTX", "EDGE 4L", 9), day(2025, 2, 3)),
	}
	products := TargetProducts(a, lines)
	if len(products) != 2 || products[0].Key != "GTX 1L" || products[0].Value != 5 {
		t.Fatalf("got %+v", products)
	}

	invoices := TargetInvoices(a, lines, "GTX 1L")
	if len(invoices) != 2 || invoices[0].Volume != 3 {
		t.Fatalf("got %+v, want two lines ordered by date", invoices)
	}
}

func TestAgreementWindow(t *testing.T) {
	w := AgreementWindow([]domain.Agreement{
		{StartDate: day(2025, 2, 1), EndDate: day(2025, 2, 28)},
		{StartDate: day(2025, 1, 15), EndDate: day(2025, 2, 10)},
	})
	if !w.From.Equal(day(2025, 1, 15)) || !w.To.Equal(day(2025, 3, 1)) {
		t.Fatalf("got %v", w)
	}
}

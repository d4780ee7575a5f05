package kpi

import (
	"context"
	"testing"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

func TestUnbilledCountsCustomersWithoutSales(t *testing.T) {
	customers := []domain.CustomerRecord{
		{Code: "X", Name: "Xavier", AssignedSalesExec: "A"},
		{Code: "Y", Name: "Yash", AssignedSalesExec: "A"},
		{Code: "W", Name: "Wheels", AssignedSalesExec: "A"},
	}
	rows := scenarioLines()

	result, err := NewEngine(0, 0).Unbilled(context.Background(), customers, rows, seed(t, "unbilled"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := valueFor(result.BySalesExec, "A"); v != 2 {
		t.Fatalf("unbilled[A]: got %v, want 2", v)
	}
	detail := result.Detail["A"]
	if len(detail) != 2 || detail[0].Code != "X" || detail[0].Volume != 4 || detail[1].Code != "W" || detail[1].Volume != 0 {
		t.Fatalf("got %+v, want X(4) then W(0)", detail)
	}
}

func TestUnbilledAttributesToMasterSalesperson(t *testing.T) {
	customers := []domain.CustomerRecord{
		{Code: "C1", Name: "One", AssignedSalesExec: "Master"},
		{Code: "C1", Name: "Duplicate", AssignedSalesExec: "Other"},
		{Code: "", Name: "No Code", AssignedSalesExec: "Master"},
		{Code: "C2", Name: "No SE", AssignedSalesExec: " "},
	}
	rows := []domain.TransactionLine{line("Invoice SE", "C1", "One", "GTX", "GTX 1L", 3)}

	result := Unbilled(customers, rows, DefaultBillingThreshold)
	if len(result.BySalesExec) != 1 {
		t.Fatalf("got %v, want a single salesperson", result.BySalesExec)
	}
	if v, _ := valueFor(result.BySalesExec, "Master"); v != 1 {
		t.Fatalf("unbilled[Master]: got %v, want 1", v)
	}
}

func TestUnbilledThresholdIsStrict(t *testing.T) {
	customers := []domain.CustomerRecord{{Code: "C1", Name: "One", AssignedSalesExec: "A"}}
	rows := []domain.TransactionLine{line("A", "C1", "One", "GTX", "GTX 1L", 9)}

	result := Unbilled(customers, rows, DefaultBillingThreshold)
	if len(result.BySalesExec) != 0 {
		t.Fatalf("a customer at exactly the threshold is billed, got %v", result.BySalesExec)
	}
}

func TestUnbilledItems(t *testing.T) {
	customers := []domain.CustomerRecord{
		{Code: "X", Name: "Xavier", AssignedSalesExec: "A"},
		{Code: "W", Name: "Wheels", AssignedSalesExec: "A"},
	}
	snap := Snapshot{Customers: customers, Lines: scenarioLines()}
	items, err := NewEngine(0, 0).DrilldownSnapshot(context.Background(), snap, seed(t, "unbilled"), "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].Label != "Xavier (X)" || items[1].Label != "Wheels (W)" {
		t.Fatalf("got %+v", items)
	}
}

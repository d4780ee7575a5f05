package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(context.Background(), "sqlite3", ":memory:", 2)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func invoice(no, se, code string, day int, vol float64, current bool) domain.TransactionLine {
	return domain.TransactionLine{
		DocumentNo:    no,
		DocumentDate:  time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		CustomerCode:  code,
		CustomerName:  "Customer " + code,
		SalesExecName: se,
		BrandName:     "GTX",
		ProductName:   "GTX 20W-40 1L",
		Volume:        vol,
		Value:         vol * 250,
		IsCurrentYear: current,
	}
}

func TestKpiCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, def := range kpi.DefaultDefinitions() {
		def := def
		if err := db.CreateKpi(ctx, &def); err != nil {
			t.Fatalf("create %s: %v", def.ShortKey, err)
		}
	}

	dup := kpi.DefaultDefinitions()[0]
	if err := db.CreateKpi(ctx, &dup); !errors.Is(err, domain.ErrDuplicateShortKey) {
		t.Fatalf("got %v, want ErrDuplicateShortKey", err)
	}

	defs, err := db.ListKpis(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 11 || defs[0].ShortKey != "volumeBySE" || defs[10].ShortKey != "unbilled" {
		t.Fatalf("got %d definitions in unexpected order", len(defs))
	}

	power1, err := db.GetKpi(ctx, "power1Count")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if power1.Cohort == nil || power1.Cohort.MatchMode != domain.MatchExactList || len(power1.Cohort.IncludeTerms) != 7 {
		t.Fatalf("cohort did not round trip: %+v", power1.Cohort)
	}
	if power1.Threshold == nil || power1.Threshold.Value != 5 || len(power1.GroupingKeys) != 2 {
		t.Fatalf("threshold or keys did not round trip: %+v", power1)
	}

	power1.Active = false
	if err := db.UpdateKpi(ctx, power1); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := db.GetKpi(ctx, "power1Count")
	if again.Active {
		t.Fatalf("update was not persisted")
	}

	if err := db.DeleteKpi(ctx, "power1Count"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetKpi(ctx, "power1Count"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := db.DeleteKpi(ctx, "power1Count"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTransactionsWindowAndScope(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	lines := []domain.TransactionLine{
		invoice("INV-1", "Alice", "C1", 1, 4, true),
		invoice("INV-2", "alice ", "C2", 15, 9, true),
		invoice("INV-3", "Bob", "C3", 31, 5, false),
		invoice("INV-4", "Bob", "C3", 31, 5, false),
		invoice("INV-5", "Carol", "C4", 20, 1, true),
	}
	n, err := db.InsertTransactions(ctx, lines)
	if err != nil || n != 5 {
		t.Fatalf("insert: n=%d err=%v", n, err)
	}

	window := domain.Window{
		From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	all, err := db.TransactionsInWindow(ctx, window, domain.ScopeAll())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d lines, want 3 inside the half-open window", len(all))
	}
	if !all[0].DocumentDate.Equal(lines[0].DocumentDate) || all[1].Volume != 9 {
		t.Fatalf("lines did not round trip: %+v", all[0])
	}

	scoped, err := db.TransactionsInWindow(ctx, domain.Window{}, domain.ScopeNames("ALICE"))
	if err != nil {
		t.Fatalf("load scoped: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("got %d lines, want 2 for Alice", len(scoped))
	}

	none, err := db.TransactionsInWindow(ctx, domain.Window{}, domain.ScopeNames())
	if err != nil || len(none) != 0 {
		t.Fatalf("empty scope: got %d lines, err %v", len(none), err)
	}

	byCustomer, err := db.TransactionsForCustomers(ctx, []string{"C3"}, domain.Window{})
	if err != nil || len(byCustomer) != 2 {
		t.Fatalf("by customer: got %d lines, err %v", len(byCustomer), err)
	}

	page, total, err := db.SearchInvoices(ctx, domain.InvoiceSearchFilter{Query: "inv-", PageSize: 2, Page: 2}, domain.ScopeAll())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("got total %d page %d, want 5 and 2", total, len(page))
	}

	removed, err := db.ClearInvoices(ctx, repository.InvoicesHistorical)
	if err != nil || removed != 2 {
		t.Fatalf("clear historical: removed %d err %v", removed, err)
	}
}

func TestReplaceDatasets(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	first := []domain.CustomerRecord{
		{Code: "C1", Name: "Acme Motors", AssignedSalesExec: "Alice", City: "Pune"},
		{Code: "C2", Name: "Bolt Garage", AssignedSalesExec: "Bob", City: "Nagpur"},
		{Code: "C3", Name: "Crank Works", AssignedSalesExec: "Alice", City: "Pune"},
	}
	if n, err := db.ReplaceCustomers(ctx, first); err != nil || n != 3 {
		t.Fatalf("replace: n=%d err=%v", n, err)
	}
	if n, err := db.ReplaceCustomers(ctx, first[:1]); err != nil || n != 1 {
		t.Fatalf("replace again: n=%d err=%v", n, err)
	}
	customers, err := db.Customers(ctx, domain.ScopeAll())
	if err != nil || len(customers) != 1 || customers[0].Code != "C1" {
		t.Fatalf("got %+v err %v, want only C1", customers, err)
	}

	found, total, err := db.SearchCustomers(ctx, domain.CustomerSearchFilter{Query: "pune"}, domain.ScopeNames("Alice"))
	if err != nil || total != 1 || len(found) != 1 {
		t.Fatalf("search customers: got %d/%d err %v", len(found), total, err)
	}

	stock := []domain.StockLine{{ProductCode: "P1", ProductName: "GTX 1L", Quantity: 12}, {ProductCode: "P2", ProductName: "EDGE 4L", Quantity: 3}}
	if _, err := db.ReplaceStock(ctx, stock); err != nil {
		t.Fatalf("replace stock: %v", err)
	}
	items, total, err := db.ListStock(ctx, domain.StockFilter{Query: "gtx"})
	if err != nil || total != 1 || items[0].Quantity != 12 {
		t.Fatalf("list stock: got %+v total %d err %v", items, total, err)
	}

	orders := []domain.OrderLine{
		{OrderNo: "SO-1", OrderDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), SalesExecName: "Alice", Status: "Open"},
		{OrderNo: "SO-2", OrderDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), SalesExecName: "Alice", Status: "Closed"},
	}
	if _, err := db.ReplaceOrders(ctx, orders); err != nil {
		t.Fatalf("replace orders: %v", err)
	}
	open, total, err := db.ListOrders(ctx, domain.OrderFilter{Status: "open"}, domain.ScopeAll())
	if err != nil || total != 1 || open[0].OrderNo != "SO-1" {
		t.Fatalf("list orders: got %+v total %d err %v", open, total, err)
	}

	if n, err := db.ClearDataset(ctx, domain.SchemaStock); err != nil || n != 2 {
		t.Fatalf("clear stock: n=%d err=%v", n, err)
	}
}

func TestAgreementsAndImportRuns(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	agreements := []domain.Agreement{
		{CustomerCode: "C1", CustomerName: "Acme", StartDate: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), TargetVolume: 100},
		{CustomerCode: "C2", CustomerName: "Bolt", StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), TargetVolume: 50},
		{CustomerCode: "C3", CustomerName: "Crank", StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), TargetVolume: 25},
	}
	if n, err := db.InsertAgreements(ctx, agreements); err != nil || n != 3 {
		t.Fatalf("insert: n=%d err=%v", n, err)
	}
	got, err := db.GetAgreement(ctx, agreements[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StartDate.Hour() != 0 || got.TargetVolume != 100 {
		t.Fatalf("got %+v", got)
	}
	got.TargetVolume = 120
	if err := db.UpdateAgreement(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := db.DeleteAgreement(ctx, agreements[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := db.ListAgreements(ctx)
	if err != nil || len(list) != 2 || list[0].TargetVolume != 120 {
		t.Fatalf("list: got %+v err %v", list, err)
	}

	run := &domain.ImportRun{Schema: domain.SchemaInvoices, FileName: "march.xlsx"}
	if err := db.CreateImportRun(ctx, run); err != nil {
		t.Fatalf("create run: %v", err)
	}
	run.Status = domain.ImportCompleted
	run.Inserted = 10
	if err := db.FinishImportRun(ctx, run); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	runs, err := db.ListImportRuns(ctx, 5)
	if err != nil || len(runs) != 1 || runs[0].Status != domain.ImportCompleted || runs[0].CompletedAt == nil {
		t.Fatalf("runs: got %+v err %v", runs, err)
	}
}

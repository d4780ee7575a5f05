package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

type fakeImporter struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string][]error
}

func (f *fakeImporter) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[req.FileName]++
	if errs := f.failures[req.FileName]; len(errs) > 0 {
		f.failures[req.FileName] = errs[1:]
		return nil, errs[0]
	}
	return &domain.ImportResult{Schema: req.Schema, FileName: req.FileName, Inserted: 2}, nil
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("a,b\n1,2\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestDetectSchema(t *testing.T) {
	cases := map[string]domain.ImportSchema{
		"Sales_Invoice_2025-03.xlsx": domain.SchemaInvoices,
		"customer_master.csv":        domain.SchemaCustomers,
		"stock 10-03.xlsx":           domain.SchemaStock,
		"open_orders.csv":            domain.SchemaOrders,
		"WBC agreements.xlsx":        domain.SchemaAgreements,
	}
	for name, want := range cases {
		got, ok := DetectSchema(name)
		if !ok || got != want {
			t.Fatalf("%s: got %q (%v), want %q", name, got, ok, want)
		}
	}
	if _, ok := DetectSchema("notes.txt"); ok {
		t.Fatalf("expected no schema for notes.txt")
	}
}

func TestPlanKeepsLastReplaceFile(t *testing.T) {
	jobs := Plan("", []string{"stock_0310.csv", "stock_0301.csv", "invoices_a.csv", "invoices_b.csv", "readme.md"})

	status := make(map[string]FileJobStatus)
	for _, j := range jobs {
		status[j.FilePath] = j.Status
	}
	want := map[string]FileJobStatus{
		"stock_0301.csv": FileStatusSkipped,
		"stock_0310.csv": FileStatusQueued,
		"invoices_a.csv": FileStatusQueued,
		"invoices_b.csv": FileStatusQueued,
		"readme.md":      FileStatusSkipped,
	}
	for f, s := range want {
		if status[f] != s {
			t.Fatalf("%s: got %q, want %q", f, status[f], s)
		}
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	files := writeFiles(t, "invoices_a.csv", "invoices_b.csv", "customers.csv")
	imp := &fakeImporter{failures: map[string][]error{
		"invoices_a.csv": {errors.New("connection reset")},
		"customers.csv":  {&domain.SchemaMismatchError{Schema: "customer", Missing: []string{"Customer Code"}}},
	}}
	cfg := DefaultConfig("test")
	cfg.RetryBackoff = 0

	o := NewOrchestrator(imp, cfg)
	var done int
	o.OnFileDone(func(*FileJob) { done++ })

	summary, err := o.Run(context.Background(), "", files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Completed != 2 || summary.Failed != 1 || summary.Inserted != 4 {
		t.Fatalf("got %+v", summary)
	}
	if done != 3 {
		t.Fatalf("got %d callbacks, want 3", done)
	}
	if imp.calls["invoices_a.csv"] != 2 {
		t.Fatalf("got %d attempts, want 2", imp.calls["invoices_a.csv"])
	}
	if imp.calls["customers.csv"] != 1 {
		t.Fatalf("validation errors must not be retried, got %d attempts", imp.calls["customers.csv"])
	}
}

func TestRunGivesUpAfterRetryAttempts(t *testing.T) {
	files := writeFiles(t, "orders.csv")
	boom := errors.New("db down")
	imp := &fakeImporter{failures: map[string][]error{"orders.csv": {boom, boom, boom, boom}}}
	cfg := DefaultConfig("test")
	cfg.RetryBackoff = 0
	cfg.RetryAttempts = 2

	summary, err := NewOrchestrator(imp, cfg).Run(context.Background(), domain.SchemaOrders, files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 || summary.Jobs[0].Attempts != 2 || summary.Jobs[0].ErrorMessage != "db down" {
		t.Fatalf("got %+v", summary.Jobs[0])
	}
}

func TestRunCancelled(t *testing.T) {
	files := writeFiles(t, "invoices.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOrchestrator(&fakeImporter{}, DefaultConfig("test")).Run(ctx, "", files)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

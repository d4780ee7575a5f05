package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_invoices.csv", "a_stock.xlsx", "notes.txt", "sub/orders.xlsm"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := collectFiles([]string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a_stock.xlsx"),
		filepath.Join(dir, "b_invoices.csv"),
		filepath.Join(dir, "sub/orders.xlsm"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestObjectRelativePath(t *testing.T) {
	cases := []struct{ prefix, key, want string }{
		{"", "a/b.csv", "a/b.csv"},
		{"uploads/", "uploads/invoices/x.csv", "invoices/x.csv"},
		{"uploads/x.csv", "uploads/x.csv", "uploads/x.csv"},
	}
	for _, tc := range cases {
		if got := objectRelativePath(tc.prefix, tc.key); got != tc.want {
			t.Fatalf("objectRelativePath(%q, %q) = %q, want %q", tc.prefix, tc.key, got, tc.want)
		}
	}
}

func TestFormatMetric(t *testing.T) {
	volume := domain.KpiDefinition{Metric: domain.MetricSum, Measure: domain.MeasureVolume}
	count := domain.KpiDefinition{Metric: domain.MetricDistinctCount}

	if got := formatMetric(12, volume); got != "12 L" {
		t.Fatalf("got %q, want %q", got, "12 L")
	}
	if got := formatMetric(3, count); got != "3" {
		t.Fatalf("got %q, want %q", got, "3")
	}
}

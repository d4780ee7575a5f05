package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

func TestArchiveKey(t *testing.T) {
	at := time.Date(2025, 3, 10, 14, 5, 9, 0, time.UTC)
	got := ArchiveKey("uploads", domain.SchemaInvoices, `C:\exports\March sales.xlsx`, at)
	want := "uploads/invoices/2025/03/10/140509-March_sales.xlsx"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewDisabled(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Backend: "none"})
	if err != nil || s != nil {
		t.Fatalf("got %v, %v; want nil, nil", s, err)
	}
	if _, err := New(context.Background(), config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Fatalf("expected an error for an unknown backend")
	}
}

func TestLocalClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(ctx, config.StorageConfig{Backend: "local", LocalDir: root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := "uploads/stock/2025/03/10/090000-stock.csv"
	if err := s.UploadObject(ctx, key, []byte("Product Name,Qty\nGTX,4\n")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	objects, err := s.ListObjects(ctx, "uploads/stock/2025/03/10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != key {
		t.Fatalf("got %+v, want one object %q", objects, key)
	}

	dest := filepath.Join(t.TempDir(), "out", "stock.csv")
	if err := s.DownloadObject(ctx, key, dest); err != nil {
		t.Fatalf("download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "Product Name,Qty\nGTX,4\n" {
		t.Fatalf("got %q", data)
	}
}

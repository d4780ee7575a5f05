package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"12.5", 12.5, true},
		{"1,234.50", 1234.5, true},
		{"₹ 2,000", 2000, true},
		{"-3", -3, true},
		{"n/a", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseNumber(%q): got %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-03-10", day(2025, 3, 10), true},
		{"2025-03-10T18:45:00Z", day(2025, 3, 10), true},
		{"10/03/2025", day(2025, 3, 10), true},
		{"10-03-2025", day(2025, 3, 10), true},
		{"12/31/2025", day(2025, 12, 31), true},
		{"10-Mar-2025", day(2025, 3, 10), true},
		{"45726", day(2025, 3, 10), true},
		{"45726.75", day(2025, 3, 10), true},
		{"1", day(1899, 12, 31), true},
		{"0", time.Time{}, false},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Fatalf("ParseDate(%q): got %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDateAmbiguousSlashIsDayFirst(t *testing.T) {
	got, ok := ParseDate("03/04/2025")
	if !ok || !got.Equal(time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v,%v, want 2025-04-03", got, ok)
	}
	got, ok = ParseDate("03/04/25")
	if !ok || !got.Equal(time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v,%v, want 2025-04-03", got, ok)
	}
}

const invoiceCSV = `Invoice Number,Date,Customer Code,Customer Name,Sales Executive,Product Brand Name,Product Name,Volume,Total Value
INV-1,10/03/2025,C1,Acme Motors,Alice,GTX,GTX 20W-40 1L,"1,200.5",2500
INV-2,,C2,Bolt Garage,Bob,MAGNATEC,MAG 1L,5,100
,11/03/2025,C3,Crank Works,Bob,GTX,GTX 1L,5,100
,,,,,,,,
INV-3,45727,C3,Crank Works,Bob,GTX,GTX 1L,abc,100
`

func TestInvoicesFromCSV(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	p, err := Parse(domain.SchemaInvoices, "march.csv", []byte(invoiceCSV), Options{IsCurrentYear: true, Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Total != 4 || p.Len() != 2 || len(p.Rejected) != 2 {
		t.Fatalf("got total %d valid %d rejected %d, want 4/2/2", p.Total, p.Len(), len(p.Rejected))
	}
	if p.Rejected[0].Row != 3 || p.Rejected[1].Row != 4 {
		t.Fatalf("got reject rows %+v, want 3 and 4", p.Rejected)
	}
	if p.Coerced != 1 {
		t.Fatalf("got %d coerced cells, want 1", p.Coerced)
	}

	first := p.Invoices[0]
	if first.Volume != 1200.5 || first.SalesExecName != "Alice" || first.BrandName != "GTX" || first.FiscalYear != "2025" || !first.IsCurrentYear {
		t.Fatalf("got %+v", first)
	}
	if p.Invoices[1].Volume != 0 || !p.Invoices[1].DocumentDate.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %+v", p.Invoices[1])
	}
}

func TestAliasFallbackPerRow(t *testing.T) {
	csv := "Invoice No,Invoice Number,Invoice Date\n,INV-9,2025-01-01\nINV-8,,2025-01-02\n"
	p, err := Parse(domain.SchemaInvoices, "x.csv", []byte(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 2 || p.Invoices[0].DocumentNo != "INV-9" || p.Invoices[1].DocumentNo != "INV-8" {
		t.Fatalf("got %+v", p.Invoices)
	}
}

func TestSchemaMismatch(t *testing.T) {
	_, err := Parse(domain.SchemaCustomers, "c.csv", []byte("Name,City\nAcme,Pune\n"), Options{})
	var mismatch *domain.SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want SchemaMismatchError", err)
	}
	if len(mismatch.Missing) != 2 {
		t.Fatalf("got missing %v, want code and name", mismatch.Missing)
	}
}

func TestEmptyImport(t *testing.T) {
	csv := "SO No,SO Date,Status\n,2025-01-01,\nSO-1,garbage,\n"
	p, err := Parse(domain.SchemaOrders, "o.csv", []byte(csv), Options{})
	var empty *domain.EmptyImportError
	if !errors.As(err, &empty) {
		t.Fatalf("got %v, want EmptyImportError", err)
	}
	if empty.Rejected != 2 || p == nil || len(p.Rejected) != 2 {
		t.Fatalf("got %+v / %+v", empty, p)
	}
}

func TestOrdersDefaultStatusAndHeaderCase(t *testing.T) {
	csv := " so no ,ORDER DATE,DSR Name,Quantity,Status\nSO-1,01/02/2025,Alice,4,\nSO-2,01/02/2025,Alice,2,Closed\n"
	p, err := Parse(domain.SchemaOrders, "o.csv", []byte(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Orders[0].Status != domain.DefaultOrderStatus || p.Orders[1].Status != "Closed" {
		t.Fatalf("got %+v", p.Orders)
	}
	if p.Orders[0].OrderDate.Month() != time.February {
		t.Fatalf("day-first date expected, got %v", p.Orders[0].OrderDate)
	}
}

func TestAgreementsRejectInvertedRange(t *testing.T) {
	csv := "Customer Code,Start Date,End Date,Target Volume\nC1,2025-01-01,2025-06-30,100\nC2,2025-06-30,2025-01-01,50\n"
	p, err := Parse(domain.SchemaAgreements, "a.csv", []byte(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 || p.Agreements[0].TargetVolume != 100 || !strings.Contains(p.Rejected[0].Reason, "before") {
		t.Fatalf("got %+v rejects %+v", p.Agreements, p.Rejected)
	}
}

func TestStockFromXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Item Code", "Item Name", "Qty(EA/Ltrs/Kg)", "Pack/Size", "Brand"},
		{"P1", "GTX 20W-40", 120.5, "1L", "GTX"},
		{"P2", "", 3, "4L", "EDGE"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	p, err := Parse(domain.SchemaStock, "stock.bin", buf.Bytes(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 || p.Stock[0].Quantity != 120.5 || p.Stock[0].ProductCode != "P1" {
		t.Fatalf("got %+v", p.Stock)
	}
	if len(p.Rejected) != 1 || p.Rejected[0].Row != 3 {
		t.Fatalf("got rejects %+v", p.Rejected)
	}
}

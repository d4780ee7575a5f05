package ingest

import (
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Result is the outcome of canonicalizing one table.
type Result[T any] struct {
	Records  []T
	Total    int
	Rejected []domain.Reject
	// Coerced counts non-blank numeric cells that could not be parsed and were read as 0.
	Coerced int
}

// Options tune invoice canonicalization.
type Options struct {
	IsCurrentYear bool
	Now           func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// builder turns one row into a record, or returns a reject reason.
type builder[T any] func(r row, coerced *int) (T, string)

// canonicalize maps table rows through build. Fully blank rows are skipped
// without being counted. A required field with no column at all is a
// SchemaMismatchError; zero valid rows is an EmptyImportError.
func canonicalize[T any](t *Table, schema domain.ImportSchema, build builder[T]) (Result[T], error) {
	s, ok := SchemaFor(schema)
	if !ok {
		return Result[T]{}, fmt.Errorf("unknown import schema %q", schema)
	}
	b, missing := s.bind(t.Header)
	if len(missing) > 0 {
		return Result[T]{}, &domain.SchemaMismatchError{Schema: schema.Label(), Missing: missing}
	}

	res := Result[T]{Records: make([]T, 0, len(t.Rows))}
	for i, record := range t.Rows {
		if blank(record) {
			continue
		}
		res.Total++
		rec, reason := build(row{record: record, b: b}, &res.Coerced)
		if reason != "" {
			res.Rejected = append(res.Rejected, domain.Reject{Row: i + 2, Reason: reason})
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		return res, &domain.EmptyImportError{Schema: schema.Label(), Rejected: len(res.Rejected)}
	}
	return res, nil
}

func number(r row, field string, coerced *int) float64 {
	v, ok := ParseNumber(r.get(field))
	if !ok {
		*coerced++
	}
	return v
}

// Invoices canonicalizes invoice lines. Rows need a document number and a parseable date.
func Invoices(t *Table, opts Options) (Result[domain.TransactionLine], error) {
	defaultFY := strconv.Itoa(opts.now().Year())
	return canonicalize[domain.TransactionLine](t, domain.SchemaInvoices, func(r row, coerced *int) (domain.TransactionLine, string) {
		no := r.get(fDocumentNo)
		if no == "" {
			return domain.TransactionLine{}, "missing invoice number"
		}
		rawDate := r.get(fDocumentDate)
		date, ok := ParseDate(rawDate)
		if !ok {
			return domain.TransactionLine{}, fmt.Sprintf("invalid invoice date %q", rawDate)
		}
		fy := r.get(fFiscalYear)
		if fy == "" {
			fy = defaultFY
		}
		return domain.TransactionLine{
			DocumentNo:      no,
			DocumentDate:    date,
			CustomerCode:    r.get(fCustomerCode),
			CustomerName:    r.get(fCustomerName),
			SalesExecName:   r.get(fSalesExec),
			MasterBrandName: r.get(fMasterBrand),
			BrandName:       r.get(fBrand),
			ProductName:     r.get(fProduct),
			Volume:          number(r, fVolume, coerced),
			Value:           number(r, fValue, coerced),
			StateName:       r.get(fState),
			DistrictName:    r.get(fDistrict),
			FiscalYear:      fy,
			IsCurrentYear:   opts.IsCurrentYear,
		}, ""
	})
}

// Customers canonicalizes the customer master. Rows need a code and a name.
func Customers(t *Table) (Result[domain.CustomerRecord], error) {
	return canonicalize[domain.CustomerRecord](t, domain.SchemaCustomers, func(r row, _ *int) (domain.CustomerRecord, string) {
		c := domain.CustomerRecord{
			Code:              r.get(fCustomerCode),
			Name:              r.get(fCustomerName),
			AssignedSalesExec: r.get(fSalesExec),
			City:              r.get(fCity),
			Address:           r.get(fAddress),
			Phone:             r.get(fPhone),
			GST:               r.get(fGST),
			Category:          r.get(fCategory),
		}
		switch {
		case c.Code == "":
			return c, "missing customer code"
		case c.Name == "":
			return c, "missing customer name"
		}
		return c, ""
	})
}

// Stock canonicalizes a stock snapshot. Rows need a product name.
func Stock(t *Table) (Result[domain.StockLine], error) {
	return canonicalize[domain.StockLine](t, domain.SchemaStock, func(r row, coerced *int) (domain.StockLine, string) {
		s := domain.StockLine{
			ProductCode: r.get(fProductCode),
			ProductName: r.get(fProduct),
			Quantity:    number(r, fQuantity, coerced),
			PackSize:    r.get(fPackSize),
			Brand:       r.get(fBrand),
		}
		if s.ProductName == "" {
			return s, "missing product name"
		}
		return s, ""
	})
}

// Orders canonicalizes sales orders. Rows need an order number and a parseable date.
func Orders(t *Table) (Result[domain.OrderLine], error) {
	return canonicalize[domain.OrderLine](t, domain.SchemaOrders, func(r row, coerced *int) (domain.OrderLine, string) {
		no := r.get(fOrderNo)
		if no == "" {
			return domain.OrderLine{}, "missing order number"
		}
		rawDate := r.get(fOrderDate)
		date, ok := ParseDate(rawDate)
		if !ok {
			return domain.OrderLine{}, fmt.Sprintf("invalid order date %q", rawDate)
		}
		status := r.get(fStatus)
		if status == "" {
			status = domain.DefaultOrderStatus
		}
		return domain.OrderLine{
			OrderNo:       no,
			OrderDate:     date,
			CustomerCode:  r.get(fCustomerCode),
			CustomerName:  r.get(fCustomerName),
			SalesExecName: r.get(fSalesExec),
			ProductName:   r.get(fProduct),
			Quantity:      number(r, fQuantity, coerced),
			Status:        status,
		}, ""
	})
}

// Agreements canonicalizes volume agreements. Rows need a customer code and a
// valid date range; the end date may not precede the start date.
func Agreements(t *Table) (Result[domain.Agreement], error) {
	return canonicalize[domain.Agreement](t, domain.SchemaAgreements, func(r row, coerced *int) (domain.Agreement, string) {
		a := domain.Agreement{
			CustomerCode: r.get(fCustomerCode),
			CustomerName: r.get(fCustomerName),
			TargetVolume: number(r, fTarget, coerced),
		}
		if a.CustomerCode == "" {
			return a, "missing customer code"
		}
		var ok bool
		if a.StartDate, ok = ParseDate(r.get(fStartDate)); !ok {
			return a, fmt.Sprintf("invalid start date %q", r.get(fStartDate))
		}
		if a.EndDate, ok = ParseDate(r.get(fEndDate)); !ok {
			return a, fmt.Sprintf("invalid end date %q", r.get(fEndDate))
		}
		if a.EndDate.Before(a.StartDate) {
			return a, "end date before start date"
		}
		return a, ""
	})
}

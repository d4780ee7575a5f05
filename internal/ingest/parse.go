package ingest

import (
	"fmt"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Parsed holds the canonical records of one upload. Only the slice matching
// Schema is populated.
type Parsed struct {
	Schema     domain.ImportSchema
	Invoices   []domain.TransactionLine
	Customers  []domain.CustomerRecord
	Stock      []domain.StockLine
	Orders     []domain.OrderLine
	Agreements []domain.Agreement

	Total    int
	Rejected []domain.Reject
	Coerced  int
}

// Len is the number of valid records.
func (p *Parsed) Len() int {
	return len(p.Invoices) + len(p.Customers) + len(p.Stock) + len(p.Orders) + len(p.Agreements)
}

// Parse decodes and canonicalizes an upload for schema. On EmptyImportError
// the returned Parsed still carries the reject list.
func Parse(schema domain.ImportSchema, name string, data []byte, opts Options) (*Parsed, error) {
	t, err := ReadTable(name, data)
	if err != nil {
		return nil, err
	}

	p := &Parsed{Schema: schema}
	switch schema {
	case domain.SchemaInvoices:
		res, err := Invoices(t, opts)
		p.Invoices, p.Total, p.Rejected, p.Coerced = res.Records, res.Total, res.Rejected, res.Coerced
		return p, err
	case domain.SchemaCustomers:
		res, err := Customers(t)
		p.Customers, p.Total, p.Rejected, p.Coerced = res.Records, res.Total, res.Rejected, res.Coerced
		return p, err
	case domain.SchemaStock:
		res, err := Stock(t)
		p.Stock, p.Total, p.Rejected, p.Coerced = res.Records, res.Total, res.Rejected, res.Coerced
		return p, err
	case domain.SchemaOrders:
		res, err := Orders(t)
		p.Orders, p.Total, p.Rejected, p.Coerced = res.Records, res.Total, res.Rejected, res.Coerced
		return p, err
	case domain.SchemaAgreements:
		res, err := Agreements(t)
		p.Agreements, p.Total, p.Rejected, p.Coerced = res.Records, res.Total, res.Rejected, res.Coerced
		return p, err
	}
	return nil, fmt.Errorf("unknown import schema %q", schema)
}

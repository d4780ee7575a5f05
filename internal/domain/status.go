package domain

import "strings"

// ImportSchema names a bulk-import target.
type ImportSchema string

const (
	SchemaInvoices   ImportSchema = "invoices"
	SchemaCustomers  ImportSchema = "customers"
	SchemaStock      ImportSchema = "stock"
	SchemaOrders     ImportSchema = "orders"
	SchemaAgreements ImportSchema = "agreements"
)

var importSchemaLabels = map[ImportSchema]string{
	SchemaInvoices:   "invoice",
	SchemaCustomers:  "customer",
	SchemaStock:      "stock",
	SchemaOrders:     "order",
	SchemaAgreements: "agreement",
}

// Label returns the singular noun used in import messages.
func (s ImportSchema) Label() string {
	if label, ok := importSchemaLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseImportSchema resolves a schema name (case-insensitive).
func ParseImportSchema(name string) (ImportSchema, bool) {
	s := ImportSchema(strings.ToLower(strings.TrimSpace(name)))
	_, ok := importSchemaLabels[s]
	return s, ok
}

// ImportRunStatus tracks a bulk import.
type ImportRunStatus string

const (
	ImportPending   ImportRunStatus = "pending"
	ImportCompleted ImportRunStatus = "completed"
	ImportFailed    ImportRunStatus = "failed"
)

// DefaultOrderStatus is used when an order row has no status.
const DefaultOrderStatus = "Open"

// Replaces reports whether an import of s swaps the whole dataset instead of appending.
func (s ImportSchema) Replaces() bool {
	switch s {
	case SchemaCustomers, SchemaStock, SchemaOrders:
		return true
	}
	return false
}

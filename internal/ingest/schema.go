package ingest

import (
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Field lists the accepted column names of one canonical field, in priority order.
type Field struct {
	Name     string
	Aliases  []string
	Required bool
}

// Schema is the alias table of one import target.
type Schema struct {
	Name   domain.ImportSchema
	Fields []Field
}

const (
	fDocumentNo   = "documentNo"
	fDocumentDate = "documentDate"
	fCustomerCode = "customerCode"
	fCustomerName = "customerName"
	fSalesExec    = "salesExec"
	fMasterBrand  = "masterBrand"
	fBrand        = "brand"
	fProduct      = "product"
	fVolume       = "volume"
	fValue        = "value"
	fState        = "state"
	fDistrict     = "district"
	fFiscalYear   = "fiscalYear"

	fCity     = "city"
	fAddress  = "address"
	fPhone    = "phone"
	fGST      = "gst"
	fCategory = "category"

	fProductCode = "productCode"
	fQuantity    = "quantity"
	fPackSize    = "packSize"

	fOrderNo   = "orderNo"
	fOrderDate = "orderDate"
	fStatus    = "status"

	fStartDate = "startDate"
	fEndDate   = "endDate"
	fTarget    = "targetVolume"
)

var schemas = map[domain.ImportSchema]Schema{
	domain.SchemaInvoices: {
		Name: domain.SchemaInvoices,
		Fields: []Field{
			{Name: fDocumentNo, Aliases: []string{"Invoice No", "Invoice Number", "Document No", "Bill No"}, Required: true},
			{Name: fDocumentDate, Aliases: []string{"Invoice Date", "Date", "Document Date", "Bill Date"}, Required: true},
			{Name: fCustomerCode, Aliases: []string{"Customer Code"}},
			{Name: fCustomerName, Aliases: []string{"Customer Name"}},
			{Name: fSalesExec, Aliases: []string{"Sales Executive Name", "Sales Executive", "DSR Name"}},
			{Name: fMasterBrand, Aliases: []string{"Master Brand Name"}},
			{Name: fBrand, Aliases: []string{"Product Brand Name", "Brand Name", "Brand"}},
			{Name: fProduct, Aliases: []string{"Product Name", "Item Name"}},
			{Name: fVolume, Aliases: []string{"Product Volume", "Volume", "Volume (L)"}},
			{Name: fValue, Aliases: []string{"Total Value incl VAT/GST", "Total Value", "Value"}},
			{Name: fState, Aliases: []string{"State Name", "State"}},
			{Name: fDistrict, Aliases: []string{"District Name", "District"}},
			{Name: fFiscalYear, Aliases: []string{"Fiscal Year", "FY"}},
		},
	},
	domain.SchemaCustomers: {
		Name: domain.SchemaCustomers,
		Fields: []Field{
			{Name: fCustomerCode, Aliases: []string{"Customer Code"}, Required: true},
			{Name: fCustomerName, Aliases: []string{"Customer Name"}, Required: true},
			{Name: fSalesExec, Aliases: []string{"Sales Executive", "Sales Executive Name"}},
			{Name: fCity, Aliases: []string{"City"}},
			{Name: fAddress, Aliases: []string{"Address"}},
			{Name: fPhone, Aliases: []string{"Phone", "Mobile"}},
			{Name: fGST, Aliases: []string{"GST", "GSTIN"}},
			{Name: fCategory, Aliases: []string{"Category"}},
		},
	},
	domain.SchemaStock: {
		Name: domain.SchemaStock,
		Fields: []Field{
			{Name: fProductCode, Aliases: []string{"Product Code", "Item Code", "Material Code", "SKU Code"}},
			{Name: fProduct, Aliases: []string{"Product Name", "Item Name", "Material Name", "SKU Name"}, Required: true},
			{Name: fQuantity, Aliases: []string{"Qty(EA/Ltrs/Kg)", "Qty (EA/Ltrs/Kg)", "Quantity", "Qty", "Closing Qty"}},
			{Name: fPackSize, Aliases: []string{"Pack/Size", "Pack Size", "Packsize"}},
			{Name: fBrand, Aliases: []string{"Brand", "Brand Name"}},
		},
	},
	domain.SchemaOrders: {
		Name: domain.SchemaOrders,
		Fields: []Field{
			{Name: fOrderNo, Aliases: []string{"SO No", "Order No"}, Required: true},
			{Name: fOrderDate, Aliases: []string{"SO Date", "Order Date"}, Required: true},
			{Name: fCustomerCode, Aliases: []string{"Customer Code"}},
			{Name: fCustomerName, Aliases: []string{"Customer Name"}},
			{Name: fSalesExec, Aliases: []string{"DSR Name", "Sales Executive"}},
			{Name: fProduct, Aliases: []string{"Product Name"}},
			{Name: fQuantity, Aliases: []string{"Quantity", "Qty"}},
			{Name: fStatus, Aliases: []string{"Status"}},
		},
	},
	domain.SchemaAgreements: {
		Name: domain.SchemaAgreements,
		Fields: []Field{
			{Name: fCustomerCode, Aliases: []string{"Customer Code"}, Required: true},
			{Name: fCustomerName, Aliases: []string{"Customer Name"}},
			{Name: fStartDate, Aliases: []string{"Agreement Start Date", "Start Date"}, Required: true},
			{Name: fEndDate, Aliases: []string{"Agreement End Date", "End Date"}, Required: true},
			{Name: fTarget, Aliases: []string{"Target Volume", "Target", "Target (L)"}, Required: true},
		},
	},
}

// SchemaFor returns the alias table of an import target.
func SchemaFor(name domain.ImportSchema) (Schema, bool) {
	s, ok := schemas[name]
	return s, ok
}

// binding maps each canonical field to the column indexes of its aliases
// present in one header, in alias priority order.
type binding map[string][]int

// bind resolves the header against the schema. Header matching ignores case
// and surrounding whitespace. Missing lists required fields with no column at all.
func (s Schema) bind(header []string) (b binding, missing []string) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}

	b = make(binding, len(s.Fields))
	for _, f := range s.Fields {
		for _, alias := range f.Aliases {
			if i, ok := index[normalizeHeader(alias)]; ok {
				b[f.Name] = append(b[f.Name], i)
			}
		}
		if f.Required && len(b[f.Name]) == 0 {
			missing = append(missing, strings.Join(f.Aliases, " / "))
		}
	}
	return b, missing
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// row reads canonical fields from one record.
type row struct {
	record []string
	b      binding
}

// get returns the first non-blank value among the field's aliases.
func (r row) get(field string) string {
	for _, i := range r.b[field] {
		if i < len(r.record) {
			if v := strings.TrimSpace(r.record[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

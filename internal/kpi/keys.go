package kpi

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// keySep joins composite key values; it cannot appear in spreadsheet text.
const keySep = "\x1f"

// FieldValue extracts the raw value of a grouping key from a line.
func FieldValue(line domain.TransactionLine, key domain.GroupingKey) string {
	switch key {
	case domain.KeySalesExec:
		return line.SalesExecName
	case domain.KeyCustomer:
		return line.CustomerKey()
	case domain.KeyCustomerCode:
		return line.CustomerCode
	case domain.KeyCustomerName:
		return line.CustomerName
	case domain.KeyBrand:
		return line.BrandName
	case domain.KeyMasterBrand:
		return line.MasterBrandName
	case domain.KeyProduct:
		return line.ProductName
	case domain.KeyWeek:
		if line.DocumentDate.IsZero() {
			return ""
		}
		year, week := line.DocumentDate.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case domain.KeyMonth:
		if line.DocumentDate.IsZero() {
			return ""
		}
		return line.DocumentDate.Format("2006-01")
	case domain.KeyState:
		return line.StateName
	case domain.KeyDistrict:
		return line.DistrictName
	}
	return ""
}

func measureValue(line domain.TransactionLine, m domain.Measure) float64 {
	if m == domain.MeasureValue {
		return line.Value
	}
	return line.Volume
}

func joinKey(values []string) string {
	return strings.Join(values, keySep)
}

// compareKeys orders key tuples lexically, element by element.
func compareKeys(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

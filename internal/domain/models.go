// backend-go/internal/domain/models.go
package domain

import (
	"strings"
	"time"
)

// TransactionLine is one product on one invoice. Lines are immutable once ingested.
type TransactionLine struct {
	ID              int64     `json:"id,omitempty" db:"id"`
	DocumentNo      string    `json:"document_no" db:"document_no"`
	DocumentDate    time.Time `json:"document_date" db:"document_date"`
	CustomerCode    string    `json:"customer_code" db:"customer_code"`
	CustomerName    string    `json:"customer_name" db:"customer_name"`
	SalesExecName   string    `json:"sales_exec_name" db:"sales_exec_name"`
	MasterBrandName string    `json:"master_brand_name,omitempty" db:"master_brand_name"`
	BrandName       string    `json:"brand_name" db:"brand_name"`
	ProductName     string    `json:"product_name" db:"product_name"`
	Volume          float64   `json:"volume" db:"volume"`
	Value           float64   `json:"value" db:"value"`
	StateName       string    `json:"state_name,omitempty" db:"state_name"`
	DistrictName    string    `json:"district_name,omitempty" db:"district_name"`
	FiscalYear      string    `json:"fiscal_year,omitempty" db:"fiscal_year"`
	IsCurrentYear   bool      `json:"is_current_year" db:"is_current_year"`
}

// CustomerKey is the identity used for distinct-customer counting:
// the customer code when present, otherwise the customer name.
func (l TransactionLine) CustomerKey() string {
	if code := strings.TrimSpace(l.CustomerCode); code != "" {
		return code
	}
	return strings.TrimSpace(l.CustomerName)
}

// CustomerRecord is one row of the customer master.
type CustomerRecord struct {
	ID                int64  `json:"id,omitempty" db:"id"`
	Code              string `json:"code" db:"customer_code"`
	Name              string `json:"name" db:"customer_name"`
	AssignedSalesExec string `json:"assigned_sales_exec" db:"sales_executive"`
	City              string `json:"city,omitempty" db:"city"`
	Address           string `json:"address,omitempty" db:"address"`
	Phone             string `json:"phone,omitempty" db:"phone"`
	GST               string `json:"gst,omitempty" db:"gst"`
	Category          string `json:"category,omitempty" db:"category"`
}

// StockLine is one product of a stock snapshot.
type StockLine struct {
	ID          int64   `json:"id,omitempty" db:"id"`
	ProductCode string  `json:"product_code" db:"product_code"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	PackSize    string  `json:"pack_size,omitempty" db:"pack_size"`
	Brand       string  `json:"brand,omitempty" db:"brand"`
}

// OrderLine is one product on a sales order.
type OrderLine struct {
	ID            int64     `json:"id,omitempty" db:"id"`
	OrderNo       string    `json:"order_no" db:"order_no"`
	OrderDate     time.Time `json:"order_date" db:"order_date"`
	CustomerCode  string    `json:"customer_code" db:"customer_code"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	SalesExecName string    `json:"sales_exec_name" db:"sales_exec_name"`
	ProductName   string    `json:"product_name" db:"product_name"`
	Quantity      float64   `json:"quantity" db:"quantity"`
	Status        string    `json:"status" db:"status"`
}

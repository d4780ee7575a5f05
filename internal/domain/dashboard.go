package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Window is a half-open date range [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// MonthWindow returns the calendar month offset months away from now
// (0 = current month, -1 = previous month).
func MonthWindow(now time.Time, offset int) Window {
	start := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	return Window{From: start, To: start.AddDate(0, 1, 0)}
}

// LastNDays returns the window covering the n days ending with today.
func LastNDays(now time.Time, n int) Window {
	if n <= 0 {
		n = 1
	}
	today := StartOfDay(now)
	return Window{From: today.AddDate(0, 0, -(n - 1)), To: today.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the window. A zero bound is open.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// String renders the window for cache keys and logs.
func (w Window) String() string {
	from, to := "-", "-"
	if !w.From.IsZero() {
		from = w.From.Format(dateLayout)
	}
	if !w.To.IsZero() {
		to = w.To.Format(dateLayout)
	}
	return from + ".." + to
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InvoiceSearchFilter narrows the invoice search page.
type InvoiceSearchFilter struct {
	Window   Window
	Query    string
	Page     int
	PageSize int
}

// CustomerSearchFilter narrows the customer master search.
type CustomerSearchFilter struct {
	Query    string
	Page     int
	PageSize int
}

// OrderFilter narrows the open orders list.
type OrderFilter struct {
	Status   string
	Query    string
	Page     int
	PageSize int
}

// StockFilter narrows the stock list.
type StockFilter struct {
	Query    string
	Page     int
	PageSize int
}

// Offset returns the row offset for a 1-based page.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// NormalizeQuery trims and uppercases a free-text search term.
func NormalizeQuery(q string) string {
	return strings.ToUpper(strings.TrimSpace(q))
}

// Page is one page of a search result.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// RecentBilling is the billing digest of a short trailing window.
type RecentBilling struct {
	Window      Window            `json:"window"`
	Lines       []TransactionLine `json:"lines"`
	TotalVolume float64           `json:"total_volume"`
	TotalValue  float64           `json:"total_value"`
	Invoices    int               `json:"invoices"`
	Customers   int               `json:"customers"`
}

// Validate rejects a window with both bounds set and To not after From.
func (w Window) Validate() error {
	if !w.From.IsZero() && !w.To.IsZero() && !w.To.After(w.From) {
		return &InvalidWindowError{Window: w}
	}
	return nil
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ClampPageSize applies the default and the upper bound to a requested page size.
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return min(size, MaxPageSize)
}

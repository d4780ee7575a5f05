package service

import (
	"context"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
)

// SearchService backs the invoice, customer, order and stock lookup pages.
type SearchService struct {
	sales repository.SalesRepository
	now   func() time.Time
}

func NewSearchService(sales repository.SalesRepository) *SearchService {
	return &SearchService{sales: sales, now: time.Now}
}

func (s *SearchService) Invoices(ctx context.Context, filter domain.InvoiceSearchFilter, scope domain.Scope) (*domain.Page[domain.TransactionLine], error) {
	if err := filter.Window.Validate(); err != nil {
		return nil, err
	}
	items, total, err := s.sales.SearchInvoices(ctx, filter, scope)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, filter.Page, filter.PageSize), nil
}

func (s *SearchService) Customers(ctx context.Context, filter domain.CustomerSearchFilter, scope domain.Scope) (*domain.Page[domain.CustomerRecord], error) {
	items, total, err := s.sales.SearchCustomers(ctx, filter, scope)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, filter.Page, filter.PageSize), nil
}

func (s *SearchService) Orders(ctx context.Context, filter domain.OrderFilter, scope domain.Scope) (*domain.Page[domain.OrderLine], error) {
	items, total, err := s.sales.ListOrders(ctx, filter, scope)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, filter.Page, filter.PageSize), nil
}

func (s *SearchService) Stock(ctx context.Context, filter domain.StockFilter) (*domain.Page[domain.StockLine], error) {
	items, total, err := s.sales.ListStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, filter.Page, filter.PageSize), nil
}

// RecentBilling lists the lines billed over the last days days, today included.
func (s *SearchService) RecentBilling(ctx context.Context, days int, scope domain.Scope) (*domain.RecentBilling, error) {
	if days <= 0 {
		days = 7
	}
	window := domain.LastNDays(s.now(), days)
	lines, err := s.sales.TransactionsInWindow(ctx, window, scope)
	if err != nil {
		return nil, err
	}
	lines = scope.FilterTransactions(lines)

	digest := &domain.RecentBilling{Window: window, Lines: lines}
	invoices := make(map[string]bool)
	customers := make(map[string]bool)
	for _, l := range lines {
		digest.TotalVolume += l.Volume
		digest.TotalValue += l.Value
		if doc := strings.TrimSpace(l.DocumentNo); doc != "" {
			invoices[doc] = true
		}
		if key := l.CustomerKey(); key != "" {
			customers[key] = true
		}
	}
	digest.TotalVolume = Round2(digest.TotalVolume)
	digest.TotalValue = Round2(digest.TotalValue)
	digest.Invoices = len(invoices)
	digest.Customers = len(customers)
	return digest, nil
}

func newPage[T any](items []T, total, page, size int) *domain.Page[T] {
	if page < 1 {
		page = 1
	}
	if items == nil {
		items = make([]T, 0)
	}
	return &domain.Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: domain.ClampPageSize(size),
	}
}

// backend-go/internal/repository/repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// InvoiceRange selects which invoice lines ClearInvoices removes.
type InvoiceRange string

const (
	InvoicesAll        InvoiceRange = "all"
	InvoicesCurrent    InvoiceRange = "current"
	InvoicesHistorical InvoiceRange = "historical"
)

// KpiRepository persists the KPI catalog.
type KpiRepository interface {
	ListKpis(ctx context.Context) ([]domain.KpiDefinition, error)
	GetKpi(ctx context.Context, shortKey string) (*domain.KpiDefinition, error)
	CreateKpi(ctx context.Context, def *domain.KpiDefinition) error
	UpdateKpi(ctx context.Context, def *domain.KpiDefinition) error
	DeleteKpi(ctx context.Context, shortKey string) error
}

// SalesRepository holds the imported datasets. Read methods apply the
// caller's scope before returning rows.
type SalesRepository interface {
	TransactionsInWindow(ctx context.Context, window domain.Window, scope domain.Scope) ([]domain.TransactionLine, error)
	TransactionsForCustomers(ctx context.Context, codes []string, window domain.Window) ([]domain.TransactionLine, error)
	Customers(ctx context.Context, scope domain.Scope) ([]domain.CustomerRecord, error)

	InsertTransactions(ctx context.Context, lines []domain.TransactionLine) (int, error)
	ReplaceCustomers(ctx context.Context, customers []domain.CustomerRecord) (int, error)
	ReplaceStock(ctx context.Context, stock []domain.StockLine) (int, error)
	ReplaceOrders(ctx context.Context, orders []domain.OrderLine) (int, error)

	SearchInvoices(ctx context.Context, filter domain.InvoiceSearchFilter, scope domain.Scope) ([]domain.TransactionLine, int, error)
	SearchCustomers(ctx context.Context, filter domain.CustomerSearchFilter, scope domain.Scope) ([]domain.CustomerRecord, int, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter, scope domain.Scope) ([]domain.OrderLine, int, error)
	ListStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockLine, int, error)

	ClearInvoices(ctx context.Context, r InvoiceRange) (int64, error)
	ClearDataset(ctx context.Context, schema domain.ImportSchema) (int64, error)
}

type AgreementRepository interface {
	ListAgreements(ctx context.Context) ([]domain.Agreement, error)
	GetAgreement(ctx context.Context, id string) (*domain.Agreement, error)
	InsertAgreements(ctx context.Context, agreements []domain.Agreement) (int, error)
	UpdateAgreement(ctx context.Context, a *domain.Agreement) error
	DeleteAgreement(ctx context.Context, id string) error
}

type ImportRunRepository interface {
	CreateImportRun(ctx context.Context, run *domain.ImportRun) error
	FinishImportRun(ctx context.Context, run *domain.ImportRun) error
	ListImportRuns(ctx context.Context, limit int) ([]domain.ImportRun, error)
}

// Store is everything the services need from persistence.
type Store interface {
	KpiRepository
	SalesRepository
	AgreementRepository
	ImportRunRepository
	Close() error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/ingest"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	"github.com/andresuchdata/salesperf/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// ImportService canonicalizes uploads and stores them. Customers, stock and
// orders replace their dataset; invoices and agreements append.
type ImportService struct {
	sales      repository.SalesRepository
	agreements repository.AgreementRepository
	runs       repository.ImportRunRepository
	archive    storage.ObjectStorage
	prefix     string
	cache      cache.ReportCache
	now        func() time.Time
}

func NewImportService(
	sales repository.SalesRepository,
	agreements repository.AgreementRepository,
	runs repository.ImportRunRepository,
	archive storage.ObjectStorage,
	prefix string,
	cacheImpl cache.ReportCache,
) *ImportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &ImportService{
		sales:      sales,
		agreements: agreements,
		runs:       runs,
		archive:    archive,
		prefix:     prefix,
		cache:      cacheImpl,
		now:        time.Now,
	}
}

// Import parses, archives and stores one file, recording an import run.
// Validation failures return the partial result with its reject list.
func (s *ImportService) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResult, error) {
	if _, ok := domain.ParseImportSchema(string(req.Schema)); !ok {
		return nil, &domain.InvalidRequestError{Field: "schema", Reason: fmt.Sprintf("unknown import schema %q", req.Schema)}
	}

	run := &domain.ImportRun{Schema: req.Schema, FileName: req.FileName}
	if err := s.runs.CreateImportRun(ctx, run); err != nil {
		return nil, err
	}

	result := &domain.ImportResult{
		RunID:    run.ID,
		Schema:   req.Schema,
		FileName: req.FileName,
		Rejected: []domain.Reject{},
	}

	start := s.now()
	parsed, err := ingest.Parse(req.Schema, req.FileName, req.Data, ingest.Options{
		IsCurrentYear: req.IsCurrentYear,
		Now:           s.now,
	})
	if parsed != nil {
		result.Total = parsed.Total
		result.Rejected = parsed.Rejected
		result.Coerced = parsed.Coerced
		if result.Rejected == nil {
			result.Rejected = []domain.Reject{}
		}
	}
	if err != nil {
		s.finish(ctx, run, result, err)
		return result, err
	}

	if s.archive != nil {
		key := storage.ArchiveKey(s.prefix, req.Schema, req.FileName, start)
		if err := s.archive.UploadObject(ctx, key, req.Data); err != nil {
			log.Warn().Err(err).Str("schema", string(req.Schema)).Str("key", key).Msg("import: archive upload failed")
		} else {
			result.ObjectKey = key
		}
	}

	inserted, err := s.store(ctx, parsed)
	result.Inserted = inserted
	if err != nil {
		err = fmt.Errorf("store %s records: %w", req.Schema.Label(), err)
		s.finish(ctx, run, result, err)
		return result, err
	}

	s.finish(ctx, run, result, nil)
	s.invalidate(ctx)

	log.Info().
		Str("schema", string(req.Schema)).
		Str("file", req.FileName).
		Int("rows", result.Total).
		Int("inserted", result.Inserted).
		Int("rejected", len(result.Rejected)).
		Int("coerced", result.Coerced).
		Dur("duration", time.Since(start)).
		Msg("import completed")

	return result, nil
}

func (s *ImportService) store(ctx context.Context, p *ingest.Parsed) (int, error) {
	switch p.Schema {
	case domain.SchemaInvoices:
		return s.sales.InsertTransactions(ctx, p.Invoices)
	case domain.SchemaCustomers:
		return s.sales.ReplaceCustomers(ctx, p.Customers)
	case domain.SchemaStock:
		return s.sales.ReplaceStock(ctx, p.Stock)
	case domain.SchemaOrders:
		return s.sales.ReplaceOrders(ctx, p.Orders)
	case domain.SchemaAgreements:
		return s.agreements.InsertAgreements(ctx, p.Agreements)
	}
	return 0, fmt.Errorf("unknown import schema %q", p.Schema)
}

func (s *ImportService) finish(ctx context.Context, run *domain.ImportRun, result *domain.ImportResult, cause error) {
	run.ObjectKey = result.ObjectKey
	run.Inserted = result.Inserted
	run.Rejected = len(result.Rejected)
	run.Status = domain.ImportCompleted
	if cause != nil {
		run.Status = domain.ImportFailed
		run.ErrorMessage = cause.Error()
	}
	if err := s.runs.FinishImportRun(ctx, run); err != nil {
		log.Error().Err(err).Str("run", run.ID).Msg("import: failed to record import run")
	}
}

func (s *ImportService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("import: cache invalidation failed")
	}
}

// ClearInvoices deletes invoice lines in range r.
func (s *ImportService) ClearInvoices(ctx context.Context, r repository.InvoiceRange) (int64, error) {
	switch r {
	case repository.InvoicesAll, repository.InvoicesCurrent, repository.InvoicesHistorical:
	default:
		return 0, &domain.InvalidRequestError{Field: "range", Reason: "must be all, current or historical"}
	}
	n, err := s.sales.ClearInvoices(ctx, r)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	log.Info().Str("range", string(r)).Int64("rows", n).Msg("invoices cleared")
	return n, nil
}

// ClearDataset empties the customer master, stock or orders.
func (s *ImportService) ClearDataset(ctx context.Context, schema domain.ImportSchema) (int64, error) {
	if !schema.Replaces() {
		return 0, &domain.InvalidRequestError{Field: "dataset", Reason: fmt.Sprintf("%q cannot be cleared", schema)}
	}
	n, err := s.sales.ClearDataset(ctx, schema)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	log.Info().Str("schema", string(schema)).Int64("rows", n).Msg("dataset cleared")
	return n, nil
}

func (s *ImportService) ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	return s.runs.ListImportRuns(ctx, limit)
}

// IsEmptyImport reports whether err means the file had no valid rows.
func IsEmptyImport(err error) bool {
	var empty *domain.EmptyImportError
	return errors.As(err, &empty)
}

package service

import (
	"context"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReportService evaluates the KPI catalog over scoped, window-bounded snapshots.
// Every call fetches its own rows; nothing is shared between requests except
// the optional report cache.
type ReportService struct {
	sales   repository.SalesRepository
	catalog *catalog.Catalog
	engine  *kpi.Engine
	cache   cache.ReportCache
}

func NewReportService(sales repository.SalesRepository, cat *catalog.Catalog, engine *kpi.Engine, cacheImpl cache.ReportCache) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if engine == nil {
		engine = kpi.NewEngine(kpi.DefaultShardSize, kpi.DefaultWorkers)
	}
	return &ReportService{sales: sales, catalog: cat, engine: engine, cache: cacheImpl}
}

// RunReport evaluates every visible definition for window and scope.
func (s *ReportService) RunReport(ctx context.Context, window domain.Window, scope domain.Scope) (*domain.Report, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	if report, ok, err := s.cache.GetReport(ctx, window, scope); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: cache get failed")
	}

	defs, err := s.catalog.Visible(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snap, err := s.snapshot(ctx, window, scope, defs...)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.Report(ctx, snap, defs)
	if err != nil {
		return nil, err
	}
	roundReport(report)

	log.Info().
		Str("window", window.String()).
		Int("kpis", len(defs)).
		Int("rows", len(snap.Lines)).
		Dur("duration", time.Since(start)).
		Msg("report evaluated")

	if err := s.cache.SetReport(ctx, window, scope, report); err != nil {
		log.Warn().Err(err).Msg("report: cache set failed")
	}
	return report, nil
}

// RunKPI evaluates one definition, active or not.
func (s *ReportService) RunKPI(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope) (*domain.KpiResult, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	def, err := s.catalog.Get(ctx, shortKey)
	if err != nil {
		return nil, err
	}

	if result, ok, err := s.cache.GetResult(ctx, def.ShortKey, window, scope); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Str("kpi", def.ShortKey).Msg("report: cache get result failed")
	}

	snap, err := s.snapshot(ctx, window, scope, *def)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Evaluate(ctx, snap, *def)
	if err != nil {
		return nil, err
	}
	roundRows(result.Rows)

	if err := s.cache.SetResult(ctx, def.ShortKey, window, scope, &result); err != nil {
		log.Warn().Err(err).Str("kpi", def.ShortKey).Msg("report: cache set result failed")
	}
	return &result, nil
}

// Drilldown returns the contributions behind one result row.
func (s *ReportService) Drilldown(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope, groupValues ...string) ([]domain.DrilldownItem, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	def, err := s.catalog.Get(ctx, shortKey)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, window, scope, *def)
	if err != nil {
		return nil, err
	}

	items, err := s.engine.DrilldownSnapshot(ctx, snap, *def, groupValues...)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Value = Round2(items[i].Value)
	}
	return items, nil
}

// DrilldownLines returns the transaction lines behind one drill-down item.
func (s *ReportService) DrilldownLines(ctx context.Context, shortKey string, window domain.Window, scope domain.Scope, groupValues []string, itemKey string) ([]domain.TransactionLine, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	def, err := s.catalog.Get(ctx, shortKey)
	if err != nil {
		return nil, err
	}

	lines, err := s.sales.TransactionsInWindow(ctx, window, scope)
	if err != nil {
		return nil, err
	}
	return s.engine.DrilldownLines(ctx, scope.FilterTransactions(lines), *def, groupValues, itemKey)
}

// snapshot loads the rows the given definitions need. The customer master is
// only read when an unbilled definition is among them.
func (s *ReportService) snapshot(ctx context.Context, window domain.Window, scope domain.Scope, defs ...domain.KpiDefinition) (kpi.Snapshot, error) {
	snap := kpi.Snapshot{Window: window}

	lines, err := s.sales.TransactionsInWindow(ctx, window, scope)
	if err != nil {
		return snap, err
	}
	snap.Lines = scope.FilterTransactions(lines)

	for _, def := range defs {
		if def.Kind != domain.KindUnbilled {
			continue
		}
		customers, err := s.sales.Customers(ctx, scope)
		if err != nil {
			return snap, err
		}
		snap.Customers = scope.FilterCustomers(customers)
		break
	}
	return snap, nil
}

func roundReport(report *domain.Report) {
	report.TotalVolume = Round2(report.TotalVolume)
	for i := range report.Results {
		roundRows(report.Results[i].Rows)
	}
}

func roundRows(rows []domain.KpiResultRow) {
	for i := range rows {
		rows[i].MetricValue = Round2(rows[i].MetricValue)
	}
}

package kpi

import (
	"context"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Snapshot is the scoped, window-bounded row set one request computes over.
type Snapshot struct {
	Window    domain.Window
	Lines     []domain.TransactionLine
	Customers []domain.CustomerRecord
}

// Evaluate runs one definition against a snapshot.
func (e *Engine) Evaluate(ctx context.Context, snap Snapshot, def domain.KpiDefinition) (domain.KpiResult, error) {
	result := domain.KpiResult{
		ShortKey:    def.ShortKey,
		DisplayName: def.DisplayName,
		IconName:    def.IconName,
		Headers:     def.Headers(),
	}

	if def.Kind == domain.KindUnbilled {
		unbilled, err := e.Unbilled(ctx, snap.Customers, snap.Lines, def)
		if err != nil {
			return result, err
		}
		result.Rows = unbilled.BySalesExec
		return result, nil
	}

	rows, err := e.Aggregate(ctx, snap.Lines, QueryFor(def))
	if err != nil {
		return result, err
	}
	result.Rows = rows
	return result, nil
}

// Report evaluates every definition in order.
func (e *Engine) Report(ctx context.Context, snap Snapshot, defs []domain.KpiDefinition) (*domain.Report, error) {
	report := &domain.Report{
		Window:      snap.Window,
		TotalVolume: Total(snap.Lines, domain.MeasureVolume),
		Results:     make([]domain.KpiResult, 0, len(defs)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, def := range defs {
		result, err := e.Evaluate(ctx, snap, def)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// DrilldownSnapshot resolves the drill-down of any definition kind.
func (e *Engine) DrilldownSnapshot(ctx context.Context, snap Snapshot, def domain.KpiDefinition, groupValues ...string) ([]domain.DrilldownItem, error) {
	if def.Kind == domain.KindUnbilled {
		if len(groupValues) == 0 {
			return []domain.DrilldownItem{}, nil
		}
		unbilled, err := e.Unbilled(ctx, snap.Customers, snap.Lines, def)
		if err != nil {
			return nil, err
		}
		return UnbilledItems(unbilled, groupValues[0]), nil
	}
	return e.Drilldown(ctx, snap.Lines, def, groupValues...)
}

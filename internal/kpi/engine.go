package kpi

import (
	"context"
	"sort"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/classify"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultShardSize = 5000
	DefaultWorkers   = 4

	cancelCheckEvery = 1024
)

// Query is the engine form of a KPI definition: filter, group, reduce and
// optionally qualify. Summary and drill-down views are both Queries over the
// same rows, differing only in grouping depth and prefix.
type Query struct {
	GroupingKeys     []domain.GroupingKey
	Metric           domain.Metric
	Measure          domain.Measure
	Cohort           *domain.Cohort
	CoreProductsOnly bool
	Threshold        *domain.Threshold
	EmptyKeyLabel    string
	Limit            int

	// Prefix keeps only rows whose leading key values equal it.
	Prefix []string
	// LabelKey records the first non-blank value of that field for each group.
	LabelKey domain.GroupingKey
}

// QueryFor builds the query that evaluates def.
func QueryFor(def domain.KpiDefinition) Query {
	return Query{
		GroupingKeys:     def.GroupingKeys,
		Metric:           def.Metric,
		Measure:          def.Measure,
		Cohort:           def.Cohort,
		CoreProductsOnly: def.CoreProductsOnly,
		Threshold:        def.Threshold,
		EmptyKeyLabel:    def.EmptyKeyLabel,
		Limit:            def.Limit,
	}
}

// Engine evaluates queries over in-memory row snapshots. It holds no row state;
// one Engine is safe for concurrent requests.
type Engine struct {
	shardSize int
	workers   int
}

func NewEngine(shardSize, workers int) *Engine {
	if shardSize <= 0 {
		shardSize = DefaultShardSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{shardSize: shardSize, workers: workers}
}

// Aggregate filters, groups and reduces rows. Results are sorted by metric value
// descending, ties by group key ascending. Empty input yields an empty result.
func (e *Engine) Aggregate(ctx context.Context, rows []domain.TransactionLine, q Query) ([]domain.KpiResultRow, error) {
	groups, err := e.accumulate(ctx, rows, q)
	if err != nil {
		return nil, err
	}
	return finalize(groups, q), nil
}

// Lines returns the rows that feed q, in input order.
func (e *Engine) Lines(ctx context.Context, rows []domain.TransactionLine, q Query) ([]domain.TransactionLine, error) {
	p := newPlan(q)
	out := make([]domain.TransactionLine, 0)
	for i, row := range rows {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !p.match(row) {
			continue
		}
		if _, ok := p.keys(row); !ok {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// accumulate reduces rows into per-group partials, sharding across workers when
// the snapshot is large. Partials merge associatively so the result does not
// depend on shard boundaries.
func (e *Engine) accumulate(ctx context.Context, rows []domain.TransactionLine, q Query) (partial, error) {
	p := newPlan(q)
	if len(rows) <= e.shardSize || e.workers == 1 {
		return p.accumulate(ctx, rows)
	}

	shards := (len(rows) + e.shardSize - 1) / e.shardSize
	parts := make([]partial, shards)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < shards; i++ {
		start := i * e.shardSize
		end := min(start+e.shardSize, len(rows))
		g.Go(func() error {
			part, err := p.accumulate(gctx, rows[start:end])
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := parts[0]
	for _, part := range parts[1:] {
		merged.merge(part)
	}
	return merged, nil
}

type plan struct {
	q         Query
	rule      *classify.Rule
	dropBlank bool
}

func newPlan(q Query) *plan {
	p := &plan{
		q:         q,
		dropBlank: q.Threshold != nil || strings.TrimSpace(q.EmptyKeyLabel) == "",
	}
	if q.Cohort != nil {
		rule := classify.Compile(*q.Cohort)
		p.rule = &rule
	}
	return p
}

func (p *plan) match(line domain.TransactionLine) bool {
	if p.q.CoreProductsOnly && !classify.IsCoreProduct(line) {
		return false
	}
	if p.rule != nil && !p.rule.Match(line) {
		return false
	}
	return true
}

// keys builds the composite group key. Blank values either fall into the
// EmptyKeyLabel bucket or drop the row; thresholded queries always drop.
func (p *plan) keys(line domain.TransactionLine) ([]string, bool) {
	values := make([]string, len(p.q.GroupingKeys))
	for i, k := range p.q.GroupingKeys {
		v := strings.TrimSpace(FieldValue(line, k))
		if v == "" {
			if p.dropBlank {
				return nil, false
			}
			v = p.q.EmptyKeyLabel
		}
		values[i] = v
	}
	for i, want := range p.q.Prefix {
		if i >= len(values) || values[i] != want {
			return nil, false
		}
	}
	return values, true
}

func (p *plan) accumulate(ctx context.Context, rows []domain.TransactionLine) (partial, error) {
	groups := make(partial)
	distinct := p.q.Metric == domain.MetricDistinctCount && p.q.Threshold == nil
	for i, row := range rows {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !p.match(row) {
			continue
		}
		values, ok := p.keys(row)
		if !ok {
			continue
		}

		k := joinKey(values)
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{keys: values}
			groups[k] = acc
		}
		acc.sum += measureValue(row, p.q.Measure)
		acc.count++
		if distinct {
			if id := row.CustomerKey(); id != "" {
				if acc.ids == nil {
					acc.ids = make(map[string]struct{})
				}
				acc.ids[id] = struct{}{}
			}
		}
		if p.q.LabelKey != "" && acc.label == "" {
			acc.label = strings.TrimSpace(FieldValue(row, p.q.LabelKey))
		}
	}
	return groups, nil
}

// accumulator carries full precision; rounding happens only at presentation.
type accumulator struct {
	keys  []string
	label string
	sum   float64
	count int
	ids   map[string]struct{}
}

func (a *accumulator) value(m domain.Metric) float64 {
	switch m {
	case domain.MetricCount:
		return float64(a.count)
	case domain.MetricDistinctCount:
		return float64(len(a.ids))
	default:
		return a.sum
	}
}

type partial map[string]*accumulator

func (p partial) merge(other partial) {
	for k, b := range other {
		a, ok := p[k]
		if !ok {
			p[k] = b
			continue
		}
		a.sum += b.sum
		a.count += b.count
		if a.label == "" {
			a.label = b.label
		}
		if len(b.ids) > 0 {
			if a.ids == nil {
				a.ids = make(map[string]struct{}, len(b.ids))
			}
			for id := range b.ids {
				a.ids[id] = struct{}{}
			}
		}
	}
}

// finalize turns partials into result rows. With a threshold, groups at the
// finest key are qualified on their summed measure and then counted per parent key.
func finalize(groups partial, q Query) []domain.KpiResultRow {
	rows := make([]domain.KpiResultRow, 0, len(groups))

	switch {
	case q.Threshold != nil && len(q.GroupingKeys) > 1:
		depth := len(q.GroupingKeys) - 1
		parents := make(map[string]int)
		for _, acc := range groups {
			if !q.Threshold.Passes(acc.sum) {
				continue
			}
			k := joinKey(acc.keys[:depth])
			idx, ok := parents[k]
			if !ok {
				idx = len(rows)
				parents[k] = idx
				rows = append(rows, domain.KpiResultRow{
					GroupKeyValues: append([]string(nil), acc.keys[:depth]...),
				})
			}
			rows[idx].MetricValue++
		}
	case q.Threshold != nil:
		for _, acc := range groups {
			if q.Threshold.Passes(acc.sum) {
				rows = append(rows, domain.KpiResultRow{GroupKeyValues: acc.keys, MetricValue: acc.value(q.Metric)})
			}
		}
	default:
		for _, acc := range groups {
			rows = append(rows, domain.KpiResultRow{GroupKeyValues: acc.keys, MetricValue: acc.value(q.Metric)})
		}
	}

	SortRows(rows)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows
}

// SortRows orders rows by metric value descending, ties by key ascending.
func SortRows(rows []domain.KpiResultRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MetricValue != rows[j].MetricValue {
			return rows[i].MetricValue > rows[j].MetricValue
		}
		return compareKeys(rows[i].GroupKeyValues, rows[j].GroupKeyValues) < 0
	})
}

// Total sums a measure over rows.
func Total(rows []domain.TransactionLine, m domain.Measure) float64 {
	var total float64
	for _, r := range rows {
		total += measureValue(r, m)
	}
	return total
}

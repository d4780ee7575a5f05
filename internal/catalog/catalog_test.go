package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository/sqlstore"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	db, err := sqlstore.Connect(context.Background(), "sqlite3", ":memory:", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	n, err := c.SeedDefaults(ctx)
	if err != nil || n != 11 {
		t.Fatalf("first seed: n=%d err=%v", n, err)
	}
	n, err = c.SeedDefaults(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second seed: n=%d err=%v", n, err)
	}
}

func TestCreateValidatesAndOrders(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	if _, err := c.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := c.Create(ctx, domain.KpiDefinition{
		ShortKey:     "bad",
		DisplayName:  "Bad",
		GroupingKeys: []domain.GroupingKey{"region"},
	})
	var invalid *domain.InvalidCohortDefinitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidCohortDefinitionError", err)
	}

	created, err := c.Create(ctx, domain.KpiDefinition{
		ShortKey:      "volByState",
		DisplayName:   "Volume by State",
		GroupingKeys:  []domain.GroupingKey{domain.KeyState},
		EmptyKeyLabel: "Unknown",
		Active:        true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.DisplayOrder != 12 || created.ID == "" {
		t.Fatalf("got order %d id %q", created.DisplayOrder, created.ID)
	}

	if _, err := c.Update(ctx, "activCount", domain.KpiDefinition{
		DisplayName:  "'Activ' Customers",
		GroupingKeys: []domain.GroupingKey{domain.KeySalesExec},
		Metric:       domain.MetricDistinctCount,
		Cohort:       &domain.Cohort{IncludeTerms: []string{"ACTIV"}},
		DisplayOrder: 2,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	visible, err := c.Visible(ctx)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(visible) != 11 {
		t.Fatalf("got %d visible, want 11 after deactivating activCount", len(visible))
	}
	if visible[len(visible)-1].ShortKey != "volByState" {
		t.Fatalf("got last %q, want volByState", visible[len(visible)-1].ShortKey)
	}

	if _, err := c.Update(ctx, "missing", domain.KpiDefinition{DisplayName: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

const sampleCatalog = `kpis:
  - short_key: magnatecBig
    name: Magnatec Customers >= 20L
    grouping_keys: [salesExec, customer]
    cohort:
      key: magnatec
    metric: count
    threshold:
      op: ">="
      value: 20
    active: true
    display_order: 1
  - short_key: volByDistrict
    name: Volume by District
    grouping_keys: [district]
    metric: sum
    empty_key_label: Unknown
    active: true
    display_order: 2
`

func TestDecodeCatalogFile(t *testing.T) {
	defs, err := Decode([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].Cohort == nil || len(defs[0].Cohort.IncludeTerms) != 3 {
		t.Fatalf("built-in cohort was not resolved: %+v", defs[0].Cohort)
	}
	if defs[1].Measure != domain.MeasureVolume || defs[1].Kind != domain.KindAggregate {
		t.Fatalf("defaults not applied: %+v", defs[1])
	}

	if _, err := Decode([]byte("kpis:\n  - short_key: x\n    name: X\n    grouping_keys: [nowhere]\n")); !domain.IsValidationError(err) {
		t.Fatalf("got %v, want validation error", err)
	}
	if _, err := Decode([]byte("kpis:\n  - short_key: x\n    colour: red\n")); err == nil {
		t.Fatalf("unknown fields must be rejected")
	}
}

func TestWriteAndLoadFile(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)
	if _, err := c.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	defs, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := WriteFile(path, defs); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(defs) || loaded[2].Cohort.MatchMode != domain.MatchExactList {
		t.Fatalf("catalog did not round trip")
	}

	other := newCatalog(t)
	n, err := other.Import(ctx, loaded, false)
	if err != nil || n != 11 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
}

type countingCache struct {
	cache.ReportCache
	invalidations int
}

func (c *countingCache) InvalidateAll(ctx context.Context) error {
	c.invalidations++
	return nil
}

func TestWritesInvalidateReportCache(t *testing.T) {
	ctx := context.Background()
	rc := &countingCache{ReportCache: cache.NewNoopReportCache()}
	c := newCatalog(t).WithCache(rc)

	def := domain.KpiDefinition{
		ShortKey:     "volByMonth",
		DisplayName:  "Volume by Month",
		GroupingKeys: []domain.GroupingKey{domain.KeyMonth},
		Active:       true,
	}
	if _, err := c.Create(ctx, def); err != nil {
		t.Fatalf("create: %v", err)
	}
	def.DisplayName = "Monthly Volume"
	if _, err := c.Update(ctx, def.ShortKey, def); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.Delete(ctx, def.ShortKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(ctx, def.ShortKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if rc.invalidations != 3 {
		t.Fatalf("got %d invalidations, want 3", rc.invalidations)
	}
}

package kpi

import (
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

func TestDefaultDefinitionsAreValid(t *testing.T) {
	seen := make(map[string]bool)
	for i, def := range DefaultDefinitions() {
		if err := Validate(def); err != nil {
			t.Fatalf("%s: %v", def.ShortKey, err)
		}
		if seen[def.ShortKey] {
			t.Fatalf("duplicate short key %q", def.ShortKey)
		}
		seen[def.ShortKey] = true
		if def.DisplayOrder != i+1 || !def.Active {
			t.Fatalf("%s: got order %d active %v", def.ShortKey, def.DisplayOrder, def.Active)
		}
	}
	if len(seen) != 11 {
		t.Fatalf("got %d seeds, want 11", len(seen))
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() domain.KpiDefinition {
		return domain.KpiDefinition{
			ShortKey:     "custom",
			DisplayName:  "Custom",
			Kind:         domain.KindAggregate,
			GroupingKeys: []domain.GroupingKey{domain.KeySalesExec, domain.KeyCustomer},
			Metric:       domain.MetricCount,
			Measure:      domain.MeasureVolume,
			Threshold:    &domain.Threshold{Op: domain.OpAtLeast, Value: 5},
			Cohort:       &domain.Cohort{Key: "c", Field: domain.FieldBrand, IncludeTerms: []string{"GTX"}, MatchMode: domain.MatchContains},
		}
	}
	if err := Validate(base()); err != nil {
		t.Fatalf("base definition should be valid: %v", err)
	}

	cases := map[string]func(d *domain.KpiDefinition){
		"bad short key":     func(d *domain.KpiDefinition) { d.ShortKey = "9lives" },
		"no name":           func(d *domain.KpiDefinition) { d.DisplayName = "" },
		"unknown metric":    func(d *domain.KpiDefinition) { d.Metric = "avg" },
		"unknown key":       func(d *domain.KpiDefinition) { d.GroupingKeys = []domain.GroupingKey{"region", domain.KeyCustomer} },
		"repeated key":      func(d *domain.KpiDefinition) { d.GroupingKeys = []domain.GroupingKey{domain.KeyCustomer, domain.KeyCustomer} },
		"no keys":           func(d *domain.KpiDefinition) { d.GroupingKeys = nil },
		"bad op":            func(d *domain.KpiDefinition) { d.Threshold.Op = ">" },
		"nan threshold":     func(d *domain.KpiDefinition) { d.Threshold.Value = math.NaN() },
		"single key gate":   func(d *domain.KpiDefinition) { d.GroupingKeys = []domain.GroupingKey{domain.KeySalesExec} },
		"sum with gate":     func(d *domain.KpiDefinition) { d.Metric = domain.MetricSum },
		"empty include":     func(d *domain.KpiDefinition) { d.Cohort.IncludeTerms = []string{" ", ""} },
		"unknown mode":      func(d *domain.KpiDefinition) { d.Cohort.MatchMode = "regex" },
		"unknown field":     func(d *domain.KpiDefinition) { d.Cohort.Field = "state" },
		"negative limit":    func(d *domain.KpiDefinition) { d.Limit = -1 },
		"unbilled gte":      func(d *domain.KpiDefinition) { d.Kind = domain.KindUnbilled; d.GroupingKeys = []domain.GroupingKey{domain.KeySalesExec} },
		"unbilled by brand": func(d *domain.KpiDefinition) { d.Kind = domain.KindUnbilled; d.Threshold.Op = domain.OpLessThan; d.GroupingKeys = []domain.GroupingKey{domain.KeyBrand} },
	}
	for name, mutate := range cases {
		def := base()
		c := *def.Cohort
		def.Cohort = &c
		th := *def.Threshold
		def.Threshold = &th
		mutate(&def)

		err := Validate(def)
		var invalid *domain.InvalidCohortDefinitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: got %v, want InvalidCohortDefinitionError", name, err)
		}
		if !domain.IsValidationError(err) {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	def := domain.KpiDefinition{
		ShortKey:     " gtx ",
		DisplayName:  "GTX",
		GroupingKeys: []domain.GroupingKey{domain.KeyBrand},
		Cohort:       &domain.Cohort{IncludeTerms: []string{"GTX"}},
	}
	Normalize(&def)
	if def.ShortKey != "gtx" || def.Kind != domain.KindAggregate || def.Metric != domain.MetricSum || def.Measure != domain.MeasureVolume {
		t.Fatalf("got %+v", def)
	}
	if def.Cohort.Key != "gtx" || def.Cohort.Field != domain.FieldBrand || def.Cohort.MatchMode != domain.MatchContains {
		t.Fatalf("got cohort %+v", def.Cohort)
	}
	if err := Validate(def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithBillingThreshold(t *testing.T) {
	defs := WithBillingThreshold(12)
	moved := 0
	for _, d := range defs {
		if d.Threshold != nil && d.Threshold.Value == 12 {
			moved++
			if !d.CoreProductsOnly {
				t.Fatalf("%s: non-core threshold moved", d.ShortKey)
			}
		}
	}
	if moved != 2 {
		t.Fatalf("got %d moved thresholds, want 2", moved)
	}
	if DefaultDefinitions()[5].Threshold.Value != DefaultBillingThreshold {
		t.Fatalf("seed catalog must not be mutated")
	}
}

package kpi

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

var shortKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Normalize fills defaults a stored definition may omit.
func Normalize(def *domain.KpiDefinition) {
	def.ShortKey = strings.TrimSpace(def.ShortKey)
	def.DisplayName = strings.TrimSpace(def.DisplayName)
	if def.Kind == "" {
		def.Kind = domain.KindAggregate
	}
	if def.Measure == "" {
		def.Measure = domain.MeasureVolume
	}
	if def.Metric == "" {
		def.Metric = domain.MetricSum
	}
	if def.Kind == domain.KindUnbilled {
		if len(def.GroupingKeys) == 0 {
			def.GroupingKeys = []domain.GroupingKey{domain.KeySalesExec}
		}
		def.Metric = domain.MetricCount
	}
	if def.Cohort != nil {
		if def.Cohort.Field == "" {
			def.Cohort.Field = domain.FieldBrand
		}
		if def.Cohort.MatchMode == "" {
			def.Cohort.MatchMode = domain.MatchContains
		}
		if def.Cohort.Key == "" {
			def.Cohort.Key = def.ShortKey
		}
	}
}

// Validate rejects definitions the engine cannot evaluate. It runs when a
// definition is written, never at query time.
func Validate(def domain.KpiDefinition) error {
	invalid := func(format string, args ...any) error {
		return &domain.InvalidCohortDefinitionError{ShortKey: def.ShortKey, Reason: fmt.Sprintf(format, args...)}
	}

	if !shortKeyPattern.MatchString(def.ShortKey) {
		return invalid("short key must start with a letter and contain only letters, digits or underscores")
	}
	if def.DisplayName == "" {
		return invalid("display name is required")
	}

	switch def.Kind {
	case domain.KindAggregate, domain.KindUnbilled:
	default:
		return invalid("unknown kind %q", def.Kind)
	}
	switch def.Metric {
	case domain.MetricSum, domain.MetricCount, domain.MetricDistinctCount:
	default:
		return invalid("unknown metric %q", def.Metric)
	}
	switch def.Measure {
	case domain.MeasureVolume, domain.MeasureValue:
	default:
		return invalid("unknown measure %q", def.Measure)
	}

	if len(def.GroupingKeys) == 0 {
		return invalid("at least one grouping key is required")
	}
	seen := make(map[domain.GroupingKey]bool, len(def.GroupingKeys))
	for _, k := range def.GroupingKeys {
		if !k.Valid() {
			return invalid("unknown grouping key %q", k)
		}
		if seen[k] {
			return invalid("grouping key %q repeated", k)
		}
		seen[k] = true
	}

	if def.Threshold != nil {
		t := def.Threshold
		if t.Op != domain.OpAtLeast && t.Op != domain.OpLessThan {
			return invalid("threshold operator must be >= or <, got %q", t.Op)
		}
		if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) || t.Value < 0 {
			return invalid("threshold value must be a non-negative number")
		}
		if def.Kind == domain.KindAggregate {
			if len(def.GroupingKeys) < 2 {
				return invalid("a threshold needs a reported key and a qualification key")
			}
			if def.Metric == domain.MetricSum {
				return invalid("thresholded kpis count qualifying groups; use count or distinctCount")
			}
		}
	}

	if def.Kind == domain.KindUnbilled {
		if def.Threshold == nil || def.Threshold.Op != domain.OpLessThan {
			return invalid("unbilled kpis need a < threshold")
		}
		if len(def.GroupingKeys) != 1 || def.GroupingKeys[0] != domain.KeySalesExec {
			return invalid("unbilled kpis are reported by salesExec")
		}
	}

	if def.Cohort != nil {
		c := def.Cohort
		switch c.MatchMode {
		case domain.MatchContains, domain.MatchExactList:
		default:
			return invalid("unknown match mode %q", c.MatchMode)
		}
		switch c.Field {
		case domain.FieldBrand, domain.FieldProduct:
		default:
			return invalid("unknown cohort field %q", c.Field)
		}
		if !hasTerm(c.IncludeTerms) {
			return invalid("cohort %q has no include terms", c.Key)
		}
	}

	if def.Limit < 0 {
		return invalid("limit must not be negative")
	}
	return nil
}

func hasTerm(terms []string) bool {
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

package classify

import (
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Rule is a compiled cohort. Terms are normalized once so matching a row
// costs only string comparisons.
type Rule struct {
	key     string
	field   domain.CohortField
	mode    domain.MatchMode
	include []string
	exclude []string
	exact   map[string]struct{}
}

// Compile normalizes the cohort terms. Blank terms are dropped, so a cohort
// whose include list is empty after normalization matches nothing.
func Compile(c domain.Cohort) Rule {
	r := Rule{
		key:   c.Key,
		field: c.Field,
		mode:  c.MatchMode,
	}
	if r.field == "" {
		r.field = domain.FieldBrand
	}
	if r.mode == "" {
		r.mode = domain.MatchContains
	}
	for _, t := range c.ExcludeTerms {
		if t = normalize(t); t != "" {
			r.exclude = append(r.exclude, t)
		}
	}
	if r.mode == domain.MatchExactList {
		r.exact = make(map[string]struct{}, len(c.IncludeTerms))
	}
	for _, t := range c.IncludeTerms {
		t = normalize(t)
		if t == "" {
			continue
		}
		if r.exact != nil {
			r.exact[t] = struct{}{}
			continue
		}
		r.include = append(r.include, t)
	}
	return r
}

// Key returns the cohort key the rule was compiled from.
func (r Rule) Key() string { return r.key }

// Match reports whether line belongs to the cohort.
func (r Rule) Match(line domain.TransactionLine) bool {
	return r.MatchValue(FieldValue(line, r.field))
}

// MatchValue classifies a raw field value. Exclusion is checked first and wins.
func (r Rule) MatchValue(value string) bool {
	v := normalize(value)
	if v == "" {
		return false
	}
	for _, t := range r.exclude {
		if strings.Contains(v, t) {
			return false
		}
	}
	if r.exact != nil {
		_, ok := r.exact[v]
		return ok
	}
	for _, t := range r.include {
		if strings.Contains(v, t) {
			return true
		}
	}
	return false
}

// Matches is the uncompiled form of Rule.Match.
func Matches(line domain.TransactionLine, c domain.Cohort) bool {
	return Compile(c).Match(line)
}

// FieldValue returns the field a cohort classifies.
func FieldValue(line domain.TransactionLine, field domain.CohortField) string {
	if field == domain.FieldProduct {
		return line.ProductName
	}
	return line.BrandName
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

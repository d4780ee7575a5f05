package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/andresuchdata/salesperf/backend-go/internal/classify"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"gopkg.in/yaml.v3"
)

// File is the YAML form of a catalog. A cohort may reference a built-in by
// key alone ("cohort: {key: magnatec}").
type File struct {
	KPIs []domain.KpiDefinition `yaml:"kpis"`
}

// Decode parses and validates a catalog document.
func Decode(data []byte) ([]domain.KpiDefinition, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.KPIs))
	for i := range f.KPIs {
		def := &f.KPIs[i]
		resolveBuiltinCohort(def)
		kpi.Normalize(def)
		if err := kpi.Validate(*def); err != nil {
			return nil, err
		}
		if seen[def.ShortKey] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateShortKey, def.ShortKey)
		}
		seen[def.ShortKey] = true
	}
	return f.KPIs, nil
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) ([]domain.KpiDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Decode(data)
}

// Encode renders defs as a catalog document.
func Encode(defs []domain.KpiDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{KPIs: defs}); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteFile(path string, defs []domain.KpiDefinition) error {
	data, err := Encode(defs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func resolveBuiltinCohort(def *domain.KpiDefinition) {
	if def.Cohort == nil || len(def.Cohort.IncludeTerms) > 0 {
		return
	}
	if builtin, ok := classify.Builtin(def.Cohort.Key); ok {
		def.Cohort = &builtin
	}
}

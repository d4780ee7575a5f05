// cmd/analytics/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/ingest"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
)

// analytics evaluates the KPI catalog straight from export files, without a
// database. Useful for checking a month's numbers before importing them.
func main() {
	invoices := flag.String("invoices", "", "Comma separated invoice export files")
	customers := flag.String("customers", "", "Customer master file (needed for unbilled)")
	catalogFile := flag.String("catalog", "", "YAML catalog file (default: built-in definitions)")
	threshold := flag.Float64("billing-threshold", kpi.DefaultBillingThreshold, "Core volume gate in litres")
	month := flag.String("month", time.Now().Format("2006-01"), "Calendar month to report (YYYY-MM)")
	out := flag.String("out", "", "Write the report JSON here instead of stdout")
	flag.Parse()

	if *invoices == "" {
		logger.Log.Fatal().Msg("at least one invoice file is required (use -invoices)")
	}

	start, err := time.Parse("2006-01", *month)
	if err != nil {
		logger.Log.Fatal().Str("month", *month).Msg("month must be YYYY-MM")
	}
	window := domain.MonthWindow(start, 0)

	defs, err := loadDefinitions(*catalogFile, *threshold)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load kpi catalog")
	}

	snap := kpi.Snapshot{Window: window}
	for _, path := range strings.Split(*invoices, ",") {
		parsed, err := parseFile(domain.SchemaInvoices, strings.TrimSpace(path))
		if err != nil {
			logger.Log.Fatal().Err(err).Str("file", path).Msg("Failed to parse invoices")
		}
		for _, line := range parsed.Invoices {
			if window.Contains(line.DocumentDate) {
				snap.Lines = append(snap.Lines, line)
			}
		}
	}
	if *customers != "" {
		parsed, err := parseFile(domain.SchemaCustomers, *customers)
		if err != nil {
			logger.Log.Fatal().Err(err).Str("file", *customers).Msg("Failed to parse customers")
		}
		snap.Customers = parsed.Customers
	}

	start = time.Now()
	report, err := kpi.NewEngine(0, 0).Report(context.Background(), snap, defs)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to evaluate report")
	}
	logger.Log.Info().
		Str("window", window.String()).
		Int("lines", len(snap.Lines)).
		Int("kpis", len(defs)).
		Dur("took", time.Since(start)).
		Msg("report evaluated")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to encode report")
	}
	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Log.Fatal().Err(err).Str("file", *out).Msg("Failed to write report")
	}
}

func loadDefinitions(path string, threshold float64) ([]domain.KpiDefinition, error) {
	var defs []domain.KpiDefinition
	if path == "" {
		defs = kpi.WithBillingThreshold(threshold)
	} else {
		loaded, err := catalog.LoadFile(path)
		if err != nil {
			return nil, err
		}
		defs = loaded
	}

	active := defs[:0]
	for _, d := range defs {
		if d.Active {
			active = append(active, d)
		}
	}
	return active, nil
}

func parseFile(schema domain.ImportSchema, path string) (*ingest.Parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := ingest.Parse(schema, filepath.Base(path), data, ingest.Options{IsCurrentYear: true})
	if parsed != nil && len(parsed.Rejected) > 0 {
		logger.Log.Warn().Str("file", path).Int("rejected", len(parsed.Rejected)).Msg("rows rejected")
	}
	return parsed, err
}

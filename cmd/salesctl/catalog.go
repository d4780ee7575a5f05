package main

import (
	"fmt"

	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-kpis",
		Usage: "Seed the KPI catalog from the built-in definitions or a YAML file",
		Flags: append(dbFlags(),
			&cli.StringFlag{
				Name:    "catalog-file",
				Usage:   "YAML catalog file to load instead of the built-in definitions",
				EnvVars: []string{"APP_CATALOG_FILE"},
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "Replace definitions whose short key already exists",
			},
		),
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			cat := catalogFrom(c)

			path := c.String("catalog-file")
			if path == "" && !c.Bool("overwrite") {
				n, err := cat.SeedDefaults(c.Context)
				if err != nil {
					return fmt.Errorf("seed defaults: %w", err)
				}
				logger.Log.Info().Int("added", n).Msg("seeded default kpi definitions")
				return nil
			}

			defs, err := loadDefinitions(path)
			if err != nil {
				return err
			}
			n, err := cat.Import(c.Context, defs, c.Bool("overwrite"))
			if err != nil {
				return err
			}
			logger.Log.Info().Int("written", n).Int("definitions", len(defs)).Msg("kpi catalog loaded")
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-kpis",
		Usage: "Write the stored KPI catalog to a YAML file",
		Flags: append(dbFlags(),
			&cli.StringFlag{
				Name:  "out",
				Usage: "Destination file",
				Value: "kpis.yaml",
			},
		),
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			defs, err := catalogFrom(c).List(c.Context)
			if err != nil {
				return err
			}
			if err := catalog.WriteFile(c.String("out"), defs); err != nil {
				return err
			}
			logger.Log.Info().Int("definitions", len(defs)).Str("file", c.String("out")).Msg("kpi catalog exported")
			return nil
		},
	}
}

// loadDefinitions reads path, or returns the built-in definitions when path is empty.
func loadDefinitions(path string) ([]domain.KpiDefinition, error) {
	if path == "" {
		return kpi.WithBillingThreshold(config.Load().KPI.BillingThreshold), nil
	}
	return catalog.LoadFile(path)
}

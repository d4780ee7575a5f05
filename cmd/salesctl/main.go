// salesctl is the operator CLI: schema migration, KPI catalog seeding, bulk
// imports from disk or object storage, ad hoc reports and dataset clears.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db-driver",
			Usage:   "Database driver (postgres, pgx or sqlite3)",
			EnvVars: []string{"DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "db-url",
			Usage:   "Database connection string, or the file path for sqlite3",
			EnvVars: []string{"DATABASE_URL"},
		},
	}
}

// databaseConfig layers the command line over the environment configuration.
func databaseConfig(c *cli.Context, cfg *config.Config) config.DatabaseConfig {
	db := cfg.Database
	if driver := c.String("db-driver"); driver != "" {
		db.Driver = driver
	}
	if url := c.String("db-url"); url != "" {
		if db.Driver == "sqlite3" {
			db.SQLitePath = url
		} else {
			db.URL = url
		}
	}
	return db
}

func initDB(c *cli.Context) error {
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := sqlstore.Open(c.Context, databaseConfig(c, cfg), cfg.Import.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sqlstore.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func storeFrom(c *cli.Context) *sqlstore.DB {
	return c.Context.Value(dbKey).(*sqlstore.DB)
}

func catalogFrom(c *cli.Context) *catalog.Catalog {
	cfg := config.Load()
	return catalog.New(storeFrom(c)).
		WithBillingThreshold(cfg.KPI.BillingThreshold).
		WithCache(reportCache())
}

// reportCache connects to the shared report cache so CLI imports invalidate
// what the server has cached.
func reportCache() cache.ReportCache {
	c, err := cache.NewReportCache(config.Load().Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable")
		return cache.NewNoopReportCache()
	}
	return c
}

func main() {
	app := &cli.App{
		Name:  "salesctl",
		Usage: "Manage the sales performance database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create missing tables and indexes",
				Flags:  dbFlags(),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					logger.Log.Info().Str("driver", storeFrom(c).DriverName()).Msg("schema is up to date")
					return nil
				},
			},
			seedCommand(),
			exportCommand(),
			importCommand(),
			importS3Command(),
			reportCommand(),
			clearCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("salesctl failed")
	}
}

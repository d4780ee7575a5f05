// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/api"
	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/andresuchdata/salesperf/backend-go/internal/storage"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := sqlstore.Open(ctx, cfg.Database, cfg.Import.BatchSize)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	cat := catalog.New(db).
		WithBillingThreshold(cfg.KPI.BillingThreshold).
		WithCache(reportCache)
	if err := seedCatalog(ctx, cat, cfg.App.CatalogFile); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to seed kpi catalog")
	}

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize upload archive")
	}

	services := &api.Services{
		Reports:    service.NewReportService(db, cat, kpi.NewEngine(cfg.KPI.ShardSize, cfg.KPI.Workers), reportCache),
		Catalog:    cat,
		Imports:    service.NewImportService(db, db, db, archive, cfg.Storage.Prefix, reportCache),
		Agreements: service.NewAgreementService(db, db),
		Search:     service.NewSearchService(db),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// seedCatalog adds the built-in KPI definitions, or those of the configured
// catalog file, that are not stored yet.
func seedCatalog(ctx context.Context, cat *catalog.Catalog, path string) error {
	if path == "" {
		n, err := cat.SeedDefaults(ctx)
		if err == nil && n > 0 {
			logger.Log.Info().Int("added", n).Msg("Seeded default kpi definitions")
		}
		return err
	}

	defs, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	n, err := cat.Import(ctx, defs, false)
	if err == nil {
		logger.Log.Info().Int("added", n).Str("file", path).Msg("Loaded kpi catalog file")
	}
	return err
}

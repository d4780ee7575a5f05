// cmd/api runs the Google Drive sync daemon: it pulls new spreadsheets from a
// shared folder on a cron schedule and imports them through the batch pipeline.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/cache"
	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/drive"
	"github.com/andresuchdata/salesperf/backend-go/internal/pipeline"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/andresuchdata/salesperf/backend-go/internal/storage"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Drive.CredentialsJSON == "" {
		logger.Log.Fatal().Msg("DRIVE_CREDENTIALS_JSON is required")
	}

	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	folderID, err := resolveFolder(ctx, driveService, cfg.Drive.FolderID)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to resolve Drive folder")
	}

	db, err := sqlstore.Open(ctx, cfg.Database, cfg.Import.BatchSize)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, imports will not invalidate it")
		reportCache = cache.NewNoopReportCache()
	}
	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize upload archive")
	}

	importer := service.NewImportService(db, db, db, archive, cfg.Storage.Prefix, reportCache)
	orchestrator := pipeline.NewOrchestrator(importer, pipeline.DefaultConfig("drive-sync"))
	syncer := drive.NewSyncer(driveService, orchestrator, drive.SyncOptions{
		FolderID:    folderID,
		DownloadDir: cfg.Drive.DownloadDir,
	})

	stopCron, err := syncer.Schedule(ctx, cfg.Drive.SyncSchedule)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("schedule", cfg.Drive.SyncSchedule).Msg("Invalid sync schedule")
	}
	defer stopCron()

	r := mux.NewRouter()
	drive.NewHandler(driveService, syncer, folderID).RegisterRoutes(r)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info().Str("addr", srv.Addr).Str("folder", folderID).Str("schedule", cfg.Drive.SyncSchedule).Msg("Drive sync daemon starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down drive sync daemon...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// resolveFolder accepts either a folder ID or a slash separated folder path.
func resolveFolder(ctx context.Context, svc *drive.Service, folder string) (string, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return "", fmt.Errorf("DRIVE_FOLDER_ID is required")
	}
	if !strings.Contains(folder, "/") {
		return folder, nil
	}
	return svc.FindFolderByPath(ctx, folder)
}

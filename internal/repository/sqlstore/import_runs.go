package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/google/uuid"
)

func (db *DB) CreateImportRun(ctx context.Context, run *domain.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = domain.ImportPending
	}
	_, err := db.NamedExecContext(ctx, `INSERT INTO import_runs (id, schema_name, file_name, object_key,
		inserted, rejected, status, error_message, started_at, completed_at) VALUES (:id, :schema_name,
		:file_name, :object_key, :inserted, :rejected, :status, :error_message, :started_at, :completed_at)`, run)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (db *DB) FinishImportRun(ctx context.Context, run *domain.ImportRun) error {
	if run.CompletedAt == nil {
		now := time.Now().UTC()
		run.CompletedAt = &now
	}
	res, err := db.NamedExecContext(ctx, `UPDATE import_runs SET object_key = :object_key,
		inserted = :inserted, rejected = :rejected, status = :status, error_message = :error_message,
		completed_at = :completed_at WHERE id = :id`, run)
	if err != nil {
		return fmt.Errorf("failed to finish import run %s: %w", run.ID, err)
	}
	return requireAffected(res)
}

func (db *DB) ListImportRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := make([]domain.ImportRun, 0)
	query := db.Rebind(`SELECT id, schema_name, file_name, object_key, inserted, rejected, status,
		error_message, started_at, completed_at FROM import_runs ORDER BY started_at DESC LIMIT ?`)
	if err := db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}

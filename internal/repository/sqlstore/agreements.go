package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const agreementColumns = `id, customer_code, customer_name, start_date, end_date, target_volume, created_at`

func (db *DB) ListAgreements(ctx context.Context) ([]domain.Agreement, error) {
	agreements := make([]domain.Agreement, 0)
	query := `SELECT ` + agreementColumns + ` FROM wbc_agreements ORDER BY customer_name, start_date`
	if err := db.SelectContext(ctx, &agreements, query); err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}
	return agreements, nil
}

func (db *DB) GetAgreement(ctx context.Context, id string) (*domain.Agreement, error) {
	var a domain.Agreement
	query := db.Rebind(`SELECT ` + agreementColumns + ` FROM wbc_agreements WHERE id = ?`)
	if err := db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get agreement %s: %w", id, err)
	}
	return &a, nil
}

func (db *DB) InsertAgreements(ctx context.Context, agreements []domain.Agreement) (int, error) {
	now := time.Now().UTC()
	for i := range agreements {
		prepareAgreement(&agreements[i], now)
	}
	query := `INSERT INTO wbc_agreements (` + agreementColumns + `) VALUES (:id, :customer_code,
		:customer_name, :start_date, :end_date, :target_volume, :created_at)`

	var inserted int
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		n, err := insertBatches(ctx, tx, query, agreements, db.batchSize)
		inserted = n
		return err
	})
	return inserted, err
}

func (db *DB) UpdateAgreement(ctx context.Context, a *domain.Agreement) error {
	prepareAgreement(a, time.Now().UTC())
	res, err := db.NamedExecContext(ctx, `UPDATE wbc_agreements SET customer_code = :customer_code,
		customer_name = :customer_name, start_date = :start_date, end_date = :end_date,
		target_volume = :target_volume WHERE id = :id`, a)
	if err != nil {
		return fmt.Errorf("failed to update agreement %s: %w", a.ID, err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteAgreement(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM wbc_agreements WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete agreement %s: %w", id, err)
	}
	return requireAffected(res)
}

func prepareAgreement(a *domain.Agreement, now time.Time) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.StartDate = domain.StartOfDay(a.StartDate)
	a.EndDate = domain.StartOfDay(a.EndDate)
}

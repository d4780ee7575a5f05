package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type kpiRow struct {
	ID               string         `db:"id"`
	ShortKey         string         `db:"short_key"`
	DisplayName      string         `db:"display_name"`
	Kind             string         `db:"kind"`
	GroupingKeys     string         `db:"grouping_keys"`
	Cohort           sql.NullString `db:"cohort"`
	CoreProductsOnly bool           `db:"core_products_only"`
	Metric           string         `db:"metric"`
	Measure          string         `db:"measure"`
	Threshold        sql.NullString `db:"threshold"`
	EmptyKeyLabel    string         `db:"empty_key_label"`
	LimitRows        int            `db:"limit_rows"`
	IconName         string         `db:"icon_name"`
	Active           bool           `db:"active"`
	DisplayOrder     int            `db:"display_order"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const kpiColumns = `id, short_key, display_name, kind, grouping_keys, cohort, core_products_only,
	metric, measure, threshold, empty_key_label, limit_rows, icon_name, active, display_order,
	created_at, updated_at`

func toKpiRow(def *domain.KpiDefinition) (kpiRow, error) {
	keys, err := json.Marshal(def.GroupingKeys)
	if err != nil {
		return kpiRow{}, fmt.Errorf("encode grouping keys: %w", err)
	}
	row := kpiRow{
		ID:               def.ID,
		ShortKey:         def.ShortKey,
		DisplayName:      def.DisplayName,
		Kind:             string(def.Kind),
		GroupingKeys:     string(keys),
		CoreProductsOnly: def.CoreProductsOnly,
		Metric:           string(def.Metric),
		Measure:          string(def.Measure),
		EmptyKeyLabel:    def.EmptyKeyLabel,
		LimitRows:        def.Limit,
		IconName:         def.IconName,
		Active:           def.Active,
		DisplayOrder:     def.DisplayOrder,
		CreatedAt:        def.CreatedAt.UTC(),
		UpdatedAt:        def.UpdatedAt.UTC(),
	}
	if def.Cohort != nil {
		b, err := json.Marshal(def.Cohort)
		if err != nil {
			return kpiRow{}, fmt.Errorf("encode cohort: %w", err)
		}
		row.Cohort = sql.NullString{String: string(b), Valid: true}
	}
	if def.Threshold != nil {
		b, err := json.Marshal(def.Threshold)
		if err != nil {
			return kpiRow{}, fmt.Errorf("encode threshold: %w", err)
		}
		row.Threshold = sql.NullString{String: string(b), Valid: true}
	}
	return row, nil
}

func (r kpiRow) definition() (domain.KpiDefinition, error) {
	def := domain.KpiDefinition{
		ID:               r.ID,
		ShortKey:         r.ShortKey,
		DisplayName:      r.DisplayName,
		Kind:             domain.KpiKind(r.Kind),
		CoreProductsOnly: r.CoreProductsOnly,
		Metric:           domain.Metric(r.Metric),
		Measure:          domain.Measure(r.Measure),
		EmptyKeyLabel:    r.EmptyKeyLabel,
		Limit:            r.LimitRows,
		IconName:         r.IconName,
		Active:           r.Active,
		DisplayOrder:     r.DisplayOrder,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.GroupingKeys), &def.GroupingKeys); err != nil {
		return def, fmt.Errorf("decode grouping keys of %s: %w", r.ShortKey, err)
	}
	if r.Cohort.Valid && r.Cohort.String != "" {
		def.Cohort = &domain.Cohort{}
		if err := json.Unmarshal([]byte(r.Cohort.String), def.Cohort); err != nil {
			return def, fmt.Errorf("decode cohort of %s: %w", r.ShortKey, err)
		}
	}
	if r.Threshold.Valid && r.Threshold.String != "" {
		def.Threshold = &domain.Threshold{}
		if err := json.Unmarshal([]byte(r.Threshold.String), def.Threshold); err != nil {
			return def, fmt.Errorf("decode threshold of %s: %w", r.ShortKey, err)
		}
	}
	return def, nil
}

func (db *DB) ListKpis(ctx context.Context) ([]domain.KpiDefinition, error) {
	var rows []kpiRow
	query := `SELECT ` + kpiColumns + ` FROM kpi_configs ORDER BY display_order, short_key`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list kpis: %w", err)
	}

	defs := make([]domain.KpiDefinition, 0, len(rows))
	for _, r := range rows {
		def, err := r.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (db *DB) GetKpi(ctx context.Context, shortKey string) (*domain.KpiDefinition, error) {
	var row kpiRow
	query := db.Rebind(`SELECT ` + kpiColumns + ` FROM kpi_configs WHERE short_key = ?`)
	if err := db.GetContext(ctx, &row, query, shortKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kpi %s: %w", shortKey, err)
	}
	def, err := row.definition()
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (db *DB) CreateKpi(ctx context.Context, def *domain.KpiDefinition) error {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now

	row, err := toKpiRow(def)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM kpi_configs WHERE short_key = ?`), def.ShortKey); err != nil {
			return fmt.Errorf("failed to check short key: %w", err)
		}
		if n > 0 {
			return domain.ErrDuplicateShortKey
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO kpi_configs (`+kpiColumns+`) VALUES (
			:id, :short_key, :display_name, :kind, :grouping_keys, :cohort, :core_products_only,
			:metric, :measure, :threshold, :empty_key_label, :limit_rows, :icon_name, :active,
			:display_order, :created_at, :updated_at)`, row)
		if err != nil {
			return fmt.Errorf("failed to insert kpi %s: %w", def.ShortKey, err)
		}
		return nil
	})
}

func (db *DB) UpdateKpi(ctx context.Context, def *domain.KpiDefinition) error {
	def.UpdatedAt = time.Now().UTC()
	row, err := toKpiRow(def)
	if err != nil {
		return err
	}
	res, err := db.NamedExecContext(ctx, `UPDATE kpi_configs SET
		display_name = :display_name, kind = :kind, grouping_keys = :grouping_keys, cohort = :cohort,
		core_products_only = :core_products_only, metric = :metric, measure = :measure,
		threshold = :threshold, empty_key_label = :empty_key_label, limit_rows = :limit_rows,
		icon_name = :icon_name, active = :active, display_order = :display_order, updated_at = :updated_at
		WHERE short_key = :short_key`, row)
	if err != nil {
		return fmt.Errorf("failed to update kpi %s: %w", def.ShortKey, err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteKpi(ctx context.Context, shortKey string) error {
	res, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM kpi_configs WHERE short_key = ?`), shortKey)
	if err != nil {
		return fmt.Errorf("failed to delete kpi %s: %w", shortKey, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

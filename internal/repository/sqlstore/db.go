package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const defaultBatchSize = 500

// DB is the sqlx-backed store. Queries are written with '?' placeholders and
// rebound for the active driver, so the same SQL serves postgres, pgx and sqlite3.
type DB struct {
	*sqlx.DB
	sem       *semaphore.Weighted
	batchSize int
}

// Open connects with the configured driver and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, batchSize int) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}
	return Connect(ctx, driver, cfg.DSN(), batchSize)
}

// Connect opens a pool for driver/dsn and migrates it.
func Connect(ctx context.Context, driver, dsn string, batchSize int) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == "sqlite3" {
		// one writer; :memory: databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	store := &DB{
		DB:        db,
		sem:       semaphore.NewWeighted(10),
		batchSize: batchSize,
	}
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Migrate creates missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (db *DB) isSQLite() bool {
	return db.DriverName() == "sqlite3"
}

// scopeClause restricts a salesperson column to the scope. ok is false when
// the scope can match nothing.
func scopeClause(column string, names []string) (string, []any, bool) {
	upper := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			upper = append(upper, n)
		}
	}
	if len(upper) == 0 {
		return "", nil, false
	}
	clause, args, err := sqlx.In(fmt.Sprintf("UPPER(TRIM(%s)) IN (?)", column), upper)
	if err != nil {
		return "", nil, false
	}
	return clause, args, true
}

func likePattern(q string) string {
	return "%" + strings.ToUpper(strings.TrimSpace(q)) + "%"
}

func pageSize(size int) int {
	return domain.ClampPageSize(size)
}

var _ repository.Store = (*DB)(nil)

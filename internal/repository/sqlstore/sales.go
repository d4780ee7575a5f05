package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

const invoiceColumns = `id, document_no, document_date, customer_code, customer_name, sales_exec_name,
	master_brand_name, brand_name, product_name, volume, value, state_name, district_name,
	fiscal_year, is_current_year`

const customerColumns = `id, customer_code, customer_name, sales_executive, city, address, phone, gst, category`

// whereBuilder collects AND-ed clauses written with '?' placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) window(column string, window domain.Window) {
	if !window.From.IsZero() {
		w.add(column+" >= ?", window.From.UTC())
	}
	if !window.To.IsZero() {
		w.add(column+" < ?", window.To.UTC())
	}
}

// scope adds the salesperson restriction and reports false when nothing can match.
func (w *whereBuilder) scope(column string, scope domain.Scope) bool {
	if scope.All {
		return true
	}
	clause, args, ok := scopeClause(column, scope.AllowedNames)
	if !ok {
		return false
	}
	w.add(clause, args...)
	return true
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (db *DB) TransactionsInWindow(ctx context.Context, window domain.Window, scope domain.Scope) ([]domain.TransactionLine, error) {
	var w whereBuilder
	w.window("document_date", window)
	if !w.scope("sales_exec_name", scope) {
		return []domain.TransactionLine{}, nil
	}

	lines := make([]domain.TransactionLine, 0)
	query := db.Rebind(`SELECT ` + invoiceColumns + ` FROM sales_invoices` + w.String() + ` ORDER BY id`)
	if err := db.SelectContext(ctx, &lines, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return lines, nil
}

func (db *DB) TransactionsForCustomers(ctx context.Context, codes []string, window domain.Window) ([]domain.TransactionLine, error) {
	if len(codes) == 0 {
		return []domain.TransactionLine{}, nil
	}
	var w whereBuilder
	w.window("document_date", window)
	in, args, err := sqlx.In("TRIM(customer_code) IN (?)", codes)
	if err != nil {
		return nil, err
	}
	w.add(in, args...)

	lines := make([]domain.TransactionLine, 0)
	query := db.Rebind(`SELECT ` + invoiceColumns + ` FROM sales_invoices` + w.String() + ` ORDER BY document_date, document_no`)
	if err := db.SelectContext(ctx, &lines, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to load customer transactions: %w", err)
	}
	return lines, nil
}

func (db *DB) Customers(ctx context.Context, scope domain.Scope) ([]domain.CustomerRecord, error) {
	var w whereBuilder
	if !w.scope("sales_executive", scope) {
		return []domain.CustomerRecord{}, nil
	}
	customers := make([]domain.CustomerRecord, 0)
	query := db.Rebind(`SELECT ` + customerColumns + ` FROM customer_master` + w.String() + ` ORDER BY id`)
	if err := db.SelectContext(ctx, &customers, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	return customers, nil
}

func (db *DB) InsertTransactions(ctx context.Context, lines []domain.TransactionLine) (int, error) {
	for i := range lines {
		lines[i].DocumentDate = lines[i].DocumentDate.UTC()
	}
	query := `INSERT INTO sales_invoices (document_no, document_date, customer_code, customer_name,
		sales_exec_name, master_brand_name, brand_name, product_name, volume, value, state_name,
		district_name, fiscal_year, is_current_year) VALUES (:document_no, :document_date,
		:customer_code, :customer_name, :sales_exec_name, :master_brand_name, :brand_name,
		:product_name, :volume, :value, :state_name, :district_name, :fiscal_year, :is_current_year)`

	var inserted int
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		n, err := insertBatches(ctx, tx, query, lines, db.batchSize)
		inserted = n
		return err
	})
	return inserted, err
}

func (db *DB) ReplaceCustomers(ctx context.Context, customers []domain.CustomerRecord) (int, error) {
	query := `INSERT INTO customer_master (customer_code, customer_name, sales_executive, city,
		address, phone, gst, category) VALUES (:customer_code, :customer_name, :sales_executive,
		:city, :address, :phone, :gst, :category)`
	return db.replace(ctx, "customer_master", query, customers)
}

func (db *DB) ReplaceStock(ctx context.Context, stock []domain.StockLine) (int, error) {
	query := `INSERT INTO stock_items (product_code, product_name, quantity, pack_size, brand)
		VALUES (:product_code, :product_name, :quantity, :pack_size, :brand)`
	return db.replace(ctx, "stock_items", query, stock)
}

func (db *DB) ReplaceOrders(ctx context.Context, orders []domain.OrderLine) (int, error) {
	for i := range orders {
		orders[i].OrderDate = orders[i].OrderDate.UTC()
	}
	query := `INSERT INTO sales_orders (order_no, order_date, customer_code, customer_name,
		sales_exec_name, product_name, quantity, status) VALUES (:order_no, :order_date,
		:customer_code, :customer_name, :sales_exec_name, :product_name, :quantity, :status)`
	return db.replace(ctx, "sales_orders", query, orders)
}

// replace swaps a whole dataset inside one transaction.
func (db *DB) replace(ctx context.Context, table, query string, rows any) (int, error) {
	var inserted int
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		var err error
		switch v := rows.(type) {
		case []domain.CustomerRecord:
			inserted, err = insertBatches(ctx, tx, query, v, db.batchSize)
		case []domain.StockLine:
			inserted, err = insertBatches(ctx, tx, query, v, db.batchSize)
		case []domain.OrderLine:
			inserted, err = insertBatches(ctx, tx, query, v, db.batchSize)
		default:
			err = fmt.Errorf("unsupported dataset %T", rows)
		}
		return err
	})
	return inserted, err
}

// insertBatches runs a named bulk insert batchSize rows at a time.
func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T, batchSize int) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return inserted, fmt.Errorf("failed to insert rows %d-%d: %w", start+1, end, err)
		}
		inserted += end - start
	}
	return inserted, nil
}

func (db *DB) SearchInvoices(ctx context.Context, filter domain.InvoiceSearchFilter, scope domain.Scope) ([]domain.TransactionLine, int, error) {
	var w whereBuilder
	w.window("document_date", filter.Window)
	if !w.scope("sales_exec_name", scope) {
		return []domain.TransactionLine{}, 0, nil
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := likePattern(q)
		w.add("(UPPER(document_no) LIKE ? OR UPPER(customer_name) LIKE ? OR UPPER(customer_code) LIKE ?)", p, p, p)
	}

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(`SELECT COUNT(*) FROM sales_invoices`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	size := pageSize(filter.PageSize)
	args := append(append([]any{}, w.args...), size, domain.Offset(filter.Page, size))
	lines := make([]domain.TransactionLine, 0)
	query := db.Rebind(`SELECT ` + invoiceColumns + ` FROM sales_invoices` + w.String() +
		` ORDER BY document_date DESC, document_no LIMIT ? OFFSET ?`)
	if err := db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search invoices: %w", err)
	}
	return lines, total, nil
}

func (db *DB) SearchCustomers(ctx context.Context, filter domain.CustomerSearchFilter, scope domain.Scope) ([]domain.CustomerRecord, int, error) {
	var w whereBuilder
	if !w.scope("sales_executive", scope) {
		return []domain.CustomerRecord{}, 0, nil
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := likePattern(q)
		w.add("(UPPER(customer_code) LIKE ? OR UPPER(customer_name) LIKE ? OR UPPER(city) LIKE ?)", p, p, p)
	}

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(`SELECT COUNT(*) FROM customer_master`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	size := pageSize(filter.PageSize)
	args := append(append([]any{}, w.args...), size, domain.Offset(filter.Page, size))
	customers := make([]domain.CustomerRecord, 0)
	query := db.Rebind(`SELECT ` + customerColumns + ` FROM customer_master` + w.String() +
		` ORDER BY customer_name LIMIT ? OFFSET ?`)
	if err := db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, total, nil
}

func (db *DB) ListOrders(ctx context.Context, filter domain.OrderFilter, scope domain.Scope) ([]domain.OrderLine, int, error) {
	var w whereBuilder
	if !w.scope("sales_exec_name", scope) {
		return []domain.OrderLine{}, 0, nil
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		w.add("UPPER(status) = ?", strings.ToUpper(status))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := likePattern(q)
		w.add("(UPPER(order_no) LIKE ? OR UPPER(customer_name) LIKE ? OR UPPER(product_name) LIKE ?)", p, p, p)
	}

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(`SELECT COUNT(*) FROM sales_orders`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	size := pageSize(filter.PageSize)
	args := append(append([]any{}, w.args...), size, domain.Offset(filter.Page, size))
	orders := make([]domain.OrderLine, 0)
	query := db.Rebind(`SELECT id, order_no, order_date, customer_code, customer_name, sales_exec_name,
		product_name, quantity, status FROM sales_orders` + w.String() +
		` ORDER BY order_date DESC, order_no LIMIT ? OFFSET ?`)
	if err := db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (db *DB) ListStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockLine, int, error) {
	var w whereBuilder
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := likePattern(q)
		w.add("(UPPER(product_name) LIKE ? OR UPPER(product_code) LIKE ? OR UPPER(brand) LIKE ?)", p, p, p)
	}

	var total int
	if err := db.GetContext(ctx, &total, db.Rebind(`SELECT COUNT(*) FROM stock_items`+w.String()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count stock: %w", err)
	}

	size := pageSize(filter.PageSize)
	args := append(append([]any{}, w.args...), size, domain.Offset(filter.Page, size))
	stock := make([]domain.StockLine, 0)
	query := db.Rebind(`SELECT id, product_code, product_name, quantity, pack_size, brand FROM stock_items` +
		w.String() + ` ORDER BY product_name LIMIT ? OFFSET ?`)
	if err := db.SelectContext(ctx, &stock, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list stock: %w", err)
	}
	return stock, total, nil
}

func (db *DB) ClearInvoices(ctx context.Context, r repository.InvoiceRange) (int64, error) {
	query := `DELETE FROM sales_invoices`
	var args []any
	switch r {
	case repository.InvoicesCurrent:
		query += ` WHERE is_current_year = ?`
		args = append(args, true)
	case repository.InvoicesHistorical:
		query += ` WHERE is_current_year = ?`
		args = append(args, false)
	case repository.InvoicesAll, "":
	default:
		return 0, fmt.Errorf("unknown invoice range %q", r)
	}
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear invoices: %w", err)
	}
	return res.RowsAffected()
}

var clearTables = map[domain.ImportSchema]string{
	domain.SchemaInvoices:   "sales_invoices",
	domain.SchemaCustomers:  "customer_master",
	domain.SchemaStock:      "stock_items",
	domain.SchemaOrders:     "sales_orders",
	domain.SchemaAgreements: "wbc_agreements",
}

func (db *DB) ClearDataset(ctx context.Context, schema domain.ImportSchema) (int64, error) {
	table, ok := clearTables[schema]
	if !ok {
		return 0, fmt.Errorf("unknown dataset %q", schema)
	}
	res, err := db.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return res.RowsAffected()
}

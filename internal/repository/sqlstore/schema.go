package sqlstore

import "strings"

var schemaTemplate = []string{
	`CREATE TABLE IF NOT EXISTS kpi_configs (
		id TEXT PRIMARY KEY,
		short_key TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		grouping_keys TEXT NOT NULL,
		cohort TEXT,
		core_products_only BOOLEAN NOT NULL DEFAULT FALSE,
		metric TEXT NOT NULL,
		measure TEXT NOT NULL,
		threshold TEXT,
		empty_key_label TEXT NOT NULL DEFAULT '',
		limit_rows INTEGER NOT NULL DEFAULT 0,
		icon_name TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_invoices (
		id {{serial}},
		document_no TEXT NOT NULL DEFAULT '',
		document_date TIMESTAMP NOT NULL,
		customer_code TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		sales_exec_name TEXT NOT NULL DEFAULT '',
		master_brand_name TEXT NOT NULL DEFAULT '',
		brand_name TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL DEFAULT '',
		volume {{real}} NOT NULL DEFAULT 0,
		value {{real}} NOT NULL DEFAULT 0,
		state_name TEXT NOT NULL DEFAULT '',
		district_name TEXT NOT NULL DEFAULT '',
		fiscal_year TEXT NOT NULL DEFAULT '',
		is_current_year BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_invoices_date ON sales_invoices (document_date)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_invoices_customer ON sales_invoices (customer_code)`,
	`CREATE TABLE IF NOT EXISTS customer_master (
		id {{serial}},
		customer_code TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		sales_executive TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		gst TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS stock_items (
		id {{serial}},
		product_code TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL DEFAULT '',
		quantity {{real}} NOT NULL DEFAULT 0,
		pack_size TEXT NOT NULL DEFAULT '',
		brand TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sales_orders (
		id {{serial}},
		order_no TEXT NOT NULL DEFAULT '',
		order_date TIMESTAMP NOT NULL,
		customer_code TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		sales_exec_name TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL DEFAULT '',
		quantity {{real}} NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Open'
	)`,
	`CREATE TABLE IF NOT EXISTS wbc_agreements (
		id TEXT PRIMARY KEY,
		customer_code TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		target_volume {{real}} NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		schema_name TEXT NOT NULL,
		file_name TEXT NOT NULL DEFAULT '',
		object_key TEXT NOT NULL DEFAULT '',
		inserted INTEGER NOT NULL DEFAULT 0,
		rejected INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
}

func schemaStatements(driver string) []string {
	serial, real := "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	if driver == "sqlite3" {
		serial, real = "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	}
	r := strings.NewReplacer("{{serial}}", serial, "{{real}}", real)

	out := make([]string, len(schemaTemplate))
	for i, stmt := range schemaTemplate {
		out[i] = r.Replace(stmt)
	}
	return out
}

package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg := FromViper(v)

	if cfg.KPI.BillingThreshold != 9 || cfg.KPI.ShardSize != 5000 || cfg.KPI.Workers != 4 {
		t.Fatalf("got kpi config %+v", cfg.KPI)
	}
	if cfg.Import.BatchSize != 500 {
		t.Fatalf("got batch size %d, want 500", cfg.Import.BatchSize)
	}
	if cfg.Storage.Backend != "none" || cfg.Database.Driver != "postgres" {
		t.Fatalf("got storage %q driver %q", cfg.Storage.Backend, cfg.Database.Driver)
	}
}

func TestOverridesAndDSN(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("DB_DRIVER", "SQLITE3")
	v.Set("DB_SQLITE_PATH", "/tmp/sales.db")
	v.Set("SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	cfg := FromViper(v)

	if got := cfg.Database.DSN(); got != "/tmp/sales.db" {
		t.Fatalf("got %q, want sqlite path", got)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("got origins %v", cfg.Server.AllowedOrigins)
	}

	pg := DatabaseConfig{Driver: "pgx", URL: "postgres://u:p@h/db"}
	if got := pg.DSN(); got != "postgres://u:p@h/db" {
		t.Fatalf("got %q", got)
	}
	pg.URL = ""
	pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode = "h", "5432", "u", "p", "db", "disable"
	if got := pg.DSN(); got != "host=h port=5432 user=u password=p dbname=db sslmode=disable" {
		t.Fatalf("got %q", got)
	}
}

package database

import (
	"io/fs"
	"strings"
	"testing"

	"budgetbuddy/internal/config"
)

func TestConfigDSN(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "budget",
		DBPassword: "p@ss word",
		DBName:     "budgetbuddy",
		DBSSLMode:  "disable",
	})

	if dsn := cfg.DSN(); !strings.Contains(dsn, "host=db") || !strings.Contains(dsn, "dbname=budgetbuddy") {
		t.Errorf("unexpected DSN %q", dsn)
	}

	want := "postgres://budget:p%40ss%20word@db:5432/budgetbuddy?sslmode=disable"
	if got := cfg.MigrationURL(); got != want {
		t.Errorf("MigrationURL() = %q, want %q", got, want)
	}
}

func TestConfigDatabaseURLWins(t *testing.T) {
	url := "postgres://u:p@host:6543/app?sslmode=require"
	cfg := NewConfig(&config.Config{DatabaseURL: url, DBHost: "ignored"})

	if cfg.DSN() != url || cfg.MigrationURL() != url {
		t.Errorf("expected DATABASE_URL to be used verbatim, got %q / %q", cfg.DSN(), cfg.MigrationURL())
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	var ups, downs int
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups++
		case strings.HasSuffix(f, ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("expected matching up/down migrations, got %d up and %d down", ups, downs)
	}

	up, err := fs.ReadFile(migrationFiles, "migrations/000001_init_schema.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"CHECK (amount > 0)", "CHECK (end_date >= start_date)", "ON DELETE RESTRICT", "idx_categories_user_name"} {
		if !strings.Contains(string(up), want) {
			t.Errorf("initial migration is missing %q", want)
		}
	}
}

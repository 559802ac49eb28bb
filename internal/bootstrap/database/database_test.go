package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fieldcheck/internal/bootstrap/config"
)

func TestWithPragmas(t *testing.T) {
	cases := []struct {
		name string
		dsn  string
		want string
	}{
		{"memory", ":memory:", ":memory:"},
		{"explicit pragma", "a.sqlite?_pragma=busy_timeout(100)", "a.sqlite?_pragma=busy_timeout(100)"},
		{"plain file", "a.sqlite", "a.sqlite?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"},
		{"existing query", "file:a.sqlite?cache=shared", "file:a.sqlite?cache=shared&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithPragmas(tc.dsn); got != tc.want {
				t.Fatalf("WithPragmas(%q) = %q, want %q", tc.dsn, got, tc.want)
			}
		})
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "records.sqlite")
	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	defer sqlDB.Close()

	var mode string
	if err := db.Raw("PRAGMA journal_mode").Scan(&mode).Error; err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "postgres", DSN: "x"}); err == nil {
		t.Fatal("Open() accepted postgres")
	}
}

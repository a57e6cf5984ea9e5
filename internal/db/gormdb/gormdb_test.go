package gormdb

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm/logger"
)

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(&Config{
		Driver:       DriverSQLite,
		FilePath:     filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	p := Pinger{DB: db}
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := Close(db); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail after Close")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(&Config{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.LogLevel
	}{
		{"silent", logger.Silent},
		{"error", logger.Error},
		{"info", logger.Info},
		{"warn", logger.Warn},
		{"", logger.Warn},
	}
	for _, tc := range tests {
		if got := logLevel(tc.in); got != tc.want {
			t.Errorf("logLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

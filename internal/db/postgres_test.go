package db

import (
	"os"
	"testing"
)

func TestOpen_EmptyDSN(t *testing.T) {
	pool, err := Open("")
	if err == nil {
		if pool != nil {
			pool.Close()
		}
		t.Fatal("Open with empty DSN should return error")
	}
	if pool != nil {
		t.Error("Open should return nil pool when error occurs")
	}
}

func TestOpen_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"invalid-dsn", "://localhost/test", "postgres://"} {
		pool, err := Open(dsn)
		if err == nil {
			if pool != nil {
				pool.Close()
			}
			t.Errorf("Open with invalid DSN %q should return error", dsn)
		}
	}
}

func TestOpen_Success(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := Open(dsn)
	if err != nil {
		t.Skipf("database connection failed: %v", err)
	}
	defer pool.Close()

	var result int
	if err := pool.QueryRow("SELECT 1").Scan(&result); err != nil {
		t.Errorf("should be able to query database: %v", err)
	}
	if result != 1 {
		t.Errorf("query result = %d, want 1", result)
	}
}

package storage

import (
	"database/sql"
	"testing"
	"time"

	"github.com/eink-server/eink-display-server/internal/config"
)

// sql.Open does not dial, so pool configuration is observable without a
// running database.
func TestConfigurePool(t *testing.T) {
	db, err := sql.Open("postgres", "postgres://localhost/display?sslmode=disable")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	configurePool(db, config.DatabaseConfig{
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: time.Hour,
	})

	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Errorf("MaxOpenConnections = %d, want 7", got)
	}
}

func TestConfigurePoolZeroKeepsDefaults(t *testing.T) {
	db, err := sql.Open("postgres", "postgres://localhost/display?sslmode=disable")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	configurePool(db, config.DatabaseConfig{})

	// 0 means unlimited, the database/sql default.
	if got := db.Stats().MaxOpenConnections; got != 0 {
		t.Errorf("MaxOpenConnections = %d, want 0", got)
	}
}

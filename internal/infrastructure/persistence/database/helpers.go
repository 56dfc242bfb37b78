// Package database provides database helper functions
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
)

// EnsureDataDirectory creates the parent directory of the database file
func EnsureDataDirectory(dataSourceName string) error {
	dir := filepath.Dir(dataSourceName)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}

// TestConnection verifies the run-history database is reachable
func TestConnection(dataSourceName string) error {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("connection test query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}
	return nil
}

// TestConnectionWithLogger verifies the run-history database is reachable with logging
func TestConnectionWithLogger(dataSourceName string, logger *logging.ChanneledLogger) error {
	start := time.Now()
	logger.Database().Debug("Testing run-history database connection", "path", dataSourceName)

	if err := TestConnection(dataSourceName); err != nil {
		logger.Database().Error("Run-history database test failed", "error", err.Error(), "path", dataSourceName)
		return err
	}

	logger.Database().Info("Run-history database connection test successful", "path", dataSourceName, "duration", time.Since(start))
	return nil
}

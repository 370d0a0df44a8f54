package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ddonindia/lodestarr/internal/config"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var db *sql.DB

// Init initializes the SQLite database connection and runs migrations
func Init(dbPath string) error {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	db, err = sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite handles concurrency via WAL
	db.SetMaxIdleConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations
	if err := runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Register setup checker with config package
	config.SetupCompletedChecker = IsSetupCompleted

	log.Info().Str("path", dbPath).Msg("Database initialized")
	return nil
}

// IsSetupCompleted checks if the setup wizard has been completed
func IsSetupCompleted() bool {
	if db == nil {
		return false
	}
	value, err := GetSetting("setup_completed")
	if err != nil {
		return false
	}
	return value == "true"
}

// Get returns the database connection
func Get() *sql.DB {
	if db == nil {
		log.Fatal().Msg("Database not initialized")
	}
	return db
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// runMigrations executes all SQL migration files in order
func runMigrations() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Sort migrations by filename
	var migrationFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			migrationFiles = append(migrationFiles, entry.Name())
		}
	}
	sort.Strings(migrationFiles)

	// Execute each migration
	for _, filename := range migrationFiles {
		content, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		log.Debug().Str("file", filename).Msg("Running migration")

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	return nil
}

// GetSetting retrieves a setting value by key
func GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetIndexerSetting retrieves a per-indexer override value by key
func GetIndexerSetting(indexerID, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM indexer_settings WHERE indexer_id = ? AND key = ?", indexerID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetIndexerSetting sets a per-indexer override value
func SetIndexerSetting(indexerID, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO indexer_settings (indexer_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(indexer_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, indexerID, key, value)
	return err
}

// GetIndexerSettings retrieves all override values for one indexer
func GetIndexerSettings(indexerID string) (map[string]string, error) {
	rows, err := db.Query("SELECT key, value FROM indexer_settings WHERE indexer_id = ?", indexerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// LogSearch records a completed search for the history/stats endpoints.
func LogSearch(indexerID, mode, query string, resultCount int, durationMS int64, searchErr string) error {
	_, err := db.Exec(`
		INSERT INTO search_logs (indexer_id, mode, query, result_count, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, nullableString(indexerID), mode, query, resultCount, durationMS, nullableString(searchErr))
	return err
}

// GetSearchHistory returns the most recent search log entries.
func GetSearchHistory(limit int) ([]map[string]interface{}, error) {
	rows, err := db.Query(`
		SELECT id, indexer_id, mode, query, result_count, duration_ms, error, created_at
		FROM search_logs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		var id int64
		var indexerID, query, searchErr sql.NullString
		var mode string
		var resultCount int
		var durationMS int64
		var createdAt string

		if err := rows.Scan(&id, &indexerID, &mode, &query, &resultCount, &durationMS, &searchErr, &createdAt); err != nil {
			return nil, err
		}

		entry := map[string]interface{}{
			"id":           id,
			"indexer_id":   indexerID.String,
			"mode":         mode,
			"query":        query.String,
			"result_count": resultCount,
			"duration_ms":  durationMS,
			"created_at":   createdAt,
		}
		if searchErr.Valid {
			entry["error"] = searchErr.String
		}
		out = append(out, entry)
	}
	return out, nil
}

// LogDownload records a completed download proxy request.
func LogDownload(indexerID, targetURL, status, downloadErr string) error {
	_, err := db.Exec(`
		INSERT INTO download_logs (indexer_id, target_url, status, error)
		VALUES (?, ?, ?, ?)
	`, indexerID, targetURL, status, nullableString(downloadErr))
	return err
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// GetStats returns aggregate stats about search activity for the dashboard.
func GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalSearches int64
	if err := db.QueryRow("SELECT COUNT(*) FROM search_logs").Scan(&totalSearches); err != nil {
		return nil, err
	}
	stats["total_searches"] = totalSearches

	var totalResults sql.NullInt64
	if err := db.QueryRow("SELECT SUM(result_count) FROM search_logs").Scan(&totalResults); err != nil {
		return nil, err
	}
	stats["total_results"] = totalResults.Int64

	var totalDownloads int64
	if err := db.QueryRow("SELECT COUNT(*) FROM download_logs").Scan(&totalDownloads); err != nil {
		return nil, err
	}
	stats["total_downloads"] = totalDownloads

	rows, err := db.Query(`
		SELECT indexer_id, COUNT(*) as count
		FROM search_logs
		WHERE indexer_id IS NOT NULL
		GROUP BY indexer_id
		ORDER BY count DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byIndexer := make(map[string]int64)
	for rows.Next() {
		var indexerID string
		var count int64
		if err := rows.Scan(&indexerID, &count); err != nil {
			return nil, err
		}
		byIndexer[indexerID] = count
	}
	stats["searches_by_indexer"] = byIndexer

	return stats, nil
}

// LogActivity logs an activity event
func LogActivity(eventType string, details string) error {
	_, err := db.Exec(`
		INSERT INTO activity_log (event_type, details, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, eventType, details)
	return err
}

package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages SQLite persistence for per-provider search counts.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store with the database at ~/.websearch/stats.db.
// The directory and database file are created if they don't exist.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".websearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .websearch directory: %w", err)
	}

	return NewStoreWithPath(filepath.Join(dir, "stats.db"))
}

// NewStoreWithPath creates a new Store with a custom database path.
// This is useful for testing.
func NewStoreWithPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS search_counts (
			provider TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER DEFAULT 0,
			PRIMARY KEY (provider, date)
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Increment increments the count for the given provider for today's date.
func (s *Store) Increment(provider string) error {
	today := time.Now().Format("2006-01-02")

	upsertSQL := `
		INSERT INTO search_counts (provider, date, count)
		VALUES (?, ?, 1)
		ON CONFLICT(provider, date) DO UPDATE SET count = count + 1;
	`
	if _, err := s.db.Exec(upsertSQL, provider, today); err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}

	return nil
}

// GetTotalByProvider returns the cumulative count for a provider across all dates.
func (s *Store) GetTotalByProvider(provider string) (int64, error) {
	var total int64
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(count), 0) FROM search_counts WHERE provider = ?",
		provider,
	)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total for provider %s: %w", provider, err)
	}
	return total, nil
}

// GetAllTotals returns a map of cumulative counts keyed by provider.
func (s *Store) GetAllTotals() (map[string]int64, error) {
	result := make(map[string]int64)

	rows, err := s.db.Query(
		"SELECT provider, COALESCE(SUM(count), 0) FROM search_counts GROUP BY provider",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		var total int64
		if err := rows.Scan(&provider, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[provider] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

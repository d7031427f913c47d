package db

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Kubambe/webscraper2/models"
)

// Store persists scraped records to a relational database. Supported
// drivers are "postgres" and "sqlite3".
type Store struct {
	conn   *sql.DB
	driver string
	log    zerolog.Logger
}

// Open connects to the database and makes sure the scraped_data table
// exists.
func Open(driver, dsn string, log zerolog.Logger) (*Store, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{conn: conn, driver: driver, log: log}
	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// initSchema creates the scraped_data table if it doesn't exist.
func (s *Store) initSchema() error {
	stmt := `
		CREATE TABLE IF NOT EXISTS scraped_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			element_type TEXT,
			attribute TEXT,
			value TEXT
		)`
	if s.driver == "postgres" {
		stmt = `
		CREATE TABLE IF NOT EXISTS scraped_data (
			id SERIAL PRIMARY KEY,
			element_type TEXT,
			attribute TEXT,
			value TEXT
		)`
	}

	if _, err := s.conn.Exec(stmt); err != nil {
		return fmt.Errorf("failed to create scraped_data table: %w", err)
	}
	return nil
}

// Save inserts one row per captured (element, attribute, value) triple.
// The insert runs in a single transaction so a write failure never
// leaves a partial batch behind.
func (s *Store) Save(results models.AggregateResult) error {
	rows := results.Rows()
	if len(rows) == 0 {
		s.log.Info().Msg("no records to save")
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	insert := `INSERT INTO scraped_data (element_type, attribute, value) VALUES (?, ?, ?)`
	if s.driver == "postgres" {
		insert = `INSERT INTO scraped_data (element_type, attribute, value) VALUES ($1, $2, $3)`
	}

	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row[0], row[1], row[2]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.log.Info().Int("rows", len(rows)).Msg("results saved to database")
	return nil
}

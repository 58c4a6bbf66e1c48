// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
)

// MemoryPath keeps the query log in memory for the lifetime of the process
const MemoryPath = ":memory:"

// QueryRepository defines the interface for query log persistence operations
type QueryRepository interface {
	RecordQuery(rec entities.QueryRecord) error
	RecentQueries(limit int) ([]entities.QueryRecord, error)
	CountByOutcome() (map[string]int, error)
	Close() error
}

// SQLiteQueryRepository implements QueryRepository using SQLite
type SQLiteQueryRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteQueryRepository creates and initializes a new SQLite repository.
// An empty path or MemoryPath keeps the log in memory.
func NewSQLiteQueryRepository(dbPath string) (*SQLiteQueryRepository, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	log.Info("Opening query log", "path", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS query_log (
		id TEXT PRIMARY KEY,
		asked_at DATETIME NOT NULL,
		question TEXT NOT NULL,
		intent TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_asked_at ON query_log(asked_at);
	CREATE INDEX IF NOT EXISTS idx_outcome ON query_log(outcome);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteQueryRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteQueryRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordQuery stores one query record. Missing ID and time are filled in.
func (r *SQLiteQueryRepository) RecordQuery(rec entities.QueryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AskedAt.IsZero() {
		rec.AskedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO query_log(id, asked_at, question, intent, outcome, error)
		VALUES(?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.AskedAt.UTC(),
		rec.Question,
		string(rec.Intent),
		rec.Outcome,
		sql.NullString{String: rec.Error, Valid: rec.Error != ""},
	)
	if err != nil {
		return fmt.Errorf("failed to insert query %s: %w", rec.ID, err)
	}
	return nil
}

// RecentQueries returns the newest records first
func (r *SQLiteQueryRepository) RecentQueries(limit int) ([]entities.QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, asked_at, question, intent, outcome, error
		FROM query_log
		ORDER BY asked_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent queries: %w", err)
	}
	defer rows.Close()

	var result []entities.QueryRecord
	for rows.Next() {
		var (
			rec       entities.QueryRecord
			intent    string
			errorText sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.AskedAt, &rec.Question, &intent, &rec.Outcome, &errorText); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.Intent = entities.Intent(intent)
		rec.Error = errorText.String
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return result, nil
}

// CountByOutcome returns the number of records per outcome
func (r *SQLiteQueryRepository) CountByOutcome() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM query_log GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count queries: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[outcome] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return counts, nil
}

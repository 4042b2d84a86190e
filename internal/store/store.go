package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
)

// Schema is the durable contract between the loader and everything
// downstream: five tables plus the derived views. Column names are part
// of the export/validator contract.
const schema = `
CREATE TABLE IF NOT EXISTS grid_capacity (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_source TEXT NOT NULL,
    page_number INTEGER,
    capacity_mw REAL,
    capacity_unit TEXT,
    description TEXT,
    project_name TEXT,
    location TEXT,
    status TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS grid_connections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_source TEXT NOT NULL,
    page_number INTEGER,
    connection_type TEXT,
    description TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS grid_constraints (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_source TEXT NOT NULL,
    page_number INTEGER,
    constraint_type TEXT,
    description TEXT,
    location TEXT,
    impact TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS investment_projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_source TEXT NOT NULL,
    page_number INTEGER,
    description TEXT,
    investment_amount REAL,
    currency TEXT,
    timeline TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS document_metadata (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT UNIQUE NOT NULL,
    pages_processed INTEGER,
    capacity_points INTEGER,
    connection_points INTEGER,
    constraint_points INTEGER,
    investment_points INTEGER,
    analysis_date DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const views = `
CREATE VIEW IF NOT EXISTS high_capacity_projects AS
SELECT
    project_name,
    location,
    SUM(capacity_mw) AS total_capacity_mw,
    COUNT(*) AS data_points,
    GROUP_CONCAT(DISTINCT document_source) AS sources
FROM grid_capacity
WHERE capacity_mw > %.0f
GROUP BY project_name, location
ORDER BY total_capacity_mw DESC;

CREATE VIEW IF NOT EXISTS connection_summary AS
SELECT
    connection_type,
    COUNT(*) AS requirement_count,
    GROUP_CONCAT(DISTINCT document_source) AS sources
FROM grid_connections
GROUP BY connection_type
ORDER BY requirement_count DESC;

CREATE VIEW IF NOT EXISTS investment_timeline AS
SELECT
    timeline,
    COUNT(*) AS project_count,
    SUM(investment_amount) AS total_investment,
    currency
FROM investment_projects
WHERE timeline IS NOT NULL
GROUP BY timeline, currency
ORDER BY timeline;
`

// ExpectedTables lists the five tables the schema owns, in a fixed order
// shared with the cohesion validator.
var ExpectedTables = []string{
	"grid_capacity",
	"grid_connections",
	"grid_constraints",
	"investment_projects",
	"document_metadata",
}

// Store is the file-backed relational store. Single writer, single
// reader; no concurrent invocation is supported.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	maxDescriptionLen int
}

// Open creates or opens the store and applies the schema. A store that
// cannot be opened for writing is a fatal condition for the invocation.
func Open(path string, maxDescriptionLen int, highCapacityMW float64, log *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(views, highCapacityMW)); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply views: %w", err)
	}

	if maxDescriptionLen <= 0 {
		maxDescriptionLen = 500
	}
	return &Store{db: db, log: log, maxDescriptionLen: maxDescriptionLen}, nil
}

// OpenRead opens an existing store read-only, without touching the
// schema. The cohesion validator uses this so its audit stays
// side-effect-free. A missing file is an error.
func OpenRead(path string, log *slog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store not found: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open store read-only: %w", err)
	}
	return &Store{db: db, log: log, maxDescriptionLen: 500}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Truncate caps a text field to at most n bytes as a straight prefix
// cut, backing off so a multi-byte rune is never split.
func Truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

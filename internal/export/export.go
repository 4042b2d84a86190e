package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/gridintel/internal/store"
)

// File names are a public contract: the cohesion validator and the
// dashboard configuration reference them by name.
const (
	CapacityFile    = "grid_capacity.csv"
	ConnectionsFile = "grid_connections.csv"
	ConstraintsFile = "grid_constraints.csv"
	InvestmentsFile = "grid_investments.csv"
)

// target maps one export file to the query producing it. Only the
// capacity query filters rows (non-null values only); every other export
// preserves its source row count exactly.
type target struct {
	filename string
	query    string
}

var targets = []target{
	{CapacityFile, `
        SELECT id, document_source, page_number, capacity_mw, capacity_unit,
               description, project_name, location, status, created_at
        FROM grid_capacity
        WHERE capacity_mw IS NOT NULL
        ORDER BY capacity_mw DESC`},
	{ConnectionsFile, `SELECT connection_type, requirement_count, sources FROM connection_summary`},
	{ConstraintsFile, `
        SELECT id, document_source, page_number, constraint_type,
               description, location, impact, created_at
        FROM grid_constraints
        ORDER BY id`},
	{InvestmentsFile, `SELECT timeline, project_count, total_investment, currency FROM investment_timeline`},
}

// Exporter flattens the structured store into CSV files.
type Exporter struct {
	store *store.Store
	dir   string
	log   *slog.Logger
}

func New(st *store.Store, dir string, log *slog.Logger) *Exporter {
	return &Exporter{store: st, dir: dir, log: log}
}

// Summary reports per-file row counts from one export run.
type Summary struct {
	Files     int            `json:"files"`
	RowCounts map[string]int `json:"row_counts"`
}

// All writes every export file and returns per-file row counts. Header
// rows come straight from the query column set.
func (e *Exporter) All() (*Summary, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	summary := &Summary{RowCounts: make(map[string]int)}
	for _, t := range targets {
		n, err := e.writeOne(t)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", t.filename, err)
		}
		summary.Files++
		summary.RowCounts[t.filename] = n
		e.log.Info("exported", "file", t.filename, "rows", n)
	}
	return summary, nil
}

func (e *Exporter) writeOne(t target) (int, error) {
	headers, rows, err := e.store.Select(t.query)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(filepath.Join(e.dir, t.filename))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

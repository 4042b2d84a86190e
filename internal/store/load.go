package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dgallion1/gridintel/internal/classify"
)

// Load persists one document's classified records in a single
// transaction and upserts the document_metadata row. Typed record tables
// are append-only: reloading a filename appends new rows, only the
// metadata row is replaced. A malformed record is skipped with a warning;
// schema-level failures roll back and abort.
func (s *Store) Load(res *classify.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertCapacity(tx, res.Capacity); err != nil {
		return err
	}
	if err := s.insertConnections(tx, res.Connections); err != nil {
		return err
	}
	if err := s.insertConstraints(tx, res.Constraints); err != nil {
		return err
	}
	if err := s.insertInvestments(tx, res.Investments); err != nil {
		return err
	}

	_, err = tx.Exec(`
        INSERT INTO document_metadata
            (filename, pages_processed, capacity_points, connection_points, constraint_points, investment_points)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(filename) DO UPDATE SET
            pages_processed = excluded.pages_processed,
            capacity_points = excluded.capacity_points,
            connection_points = excluded.connection_points,
            constraint_points = excluded.constraint_points,
            investment_points = excluded.investment_points,
            analysis_date = CURRENT_TIMESTAMP`,
		res.Source, res.PagesProcessed,
		len(res.Capacity), len(res.Connections), len(res.Constraints), len(res.Investments))
	if err != nil {
		return fmt.Errorf("upsert document metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}

	s.log.Info("document loaded", "filename", res.Source,
		"pages", res.PagesProcessed, "records", res.RecordCount())
	return nil
}

func (s *Store) insertCapacity(tx *sql.Tx, records []classify.CapacityRecord) error {
	for _, rec := range records {
		if rec.Source == "" {
			s.log.Warn("skipping capacity record without source", "page", rec.Page)
			continue
		}
		var unit any
		if rec.ValueMW != nil {
			unit = rec.Unit
		}
		_, err := tx.Exec(`
            INSERT INTO grid_capacity
                (document_source, page_number, capacity_mw, capacity_unit, description, project_name, location, status)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.Source, rec.Page, nullFloat(rec.ValueMW), unit,
			Truncate(rec.Description, s.maxDescriptionLen),
			nullString(rec.ProjectName), nullString(rec.Location), rec.Status)
		if err != nil {
			if isSchemaError(err) {
				return fmt.Errorf("insert capacity record: %w", err)
			}
			s.log.Warn("skipping malformed capacity record", "source", rec.Source, "error", err)
		}
	}
	return nil
}

func (s *Store) insertConnections(tx *sql.Tx, records []classify.ConnectionRecord) error {
	for _, rec := range records {
		if rec.Source == "" {
			s.log.Warn("skipping connection record without source", "page", rec.Page)
			continue
		}
		_, err := tx.Exec(`
            INSERT INTO grid_connections (document_source, page_number, connection_type, description)
            VALUES (?, ?, ?, ?)`,
			rec.Source, rec.Page, string(rec.Type), Truncate(rec.Description, s.maxDescriptionLen))
		if err != nil {
			if isSchemaError(err) {
				return fmt.Errorf("insert connection record: %w", err)
			}
			s.log.Warn("skipping malformed connection record", "source", rec.Source, "error", err)
		}
	}
	return nil
}

func (s *Store) insertConstraints(tx *sql.Tx, records []classify.ConstraintRecord) error {
	for _, rec := range records {
		if rec.Source == "" {
			s.log.Warn("skipping constraint record without source", "page", rec.Page)
			continue
		}
		_, err := tx.Exec(`
            INSERT INTO grid_constraints (document_source, page_number, constraint_type, description, location, impact)
            VALUES (?, ?, ?, ?, ?, ?)`,
			rec.Source, rec.Page, string(rec.Type), Truncate(rec.Description, s.maxDescriptionLen),
			nullString(rec.Location), nullString(rec.Impact))
		if err != nil {
			if isSchemaError(err) {
				return fmt.Errorf("insert constraint record: %w", err)
			}
			s.log.Warn("skipping malformed constraint record", "source", rec.Source, "error", err)
		}
	}
	return nil
}

func (s *Store) insertInvestments(tx *sql.Tx, records []classify.InvestmentRecord) error {
	for _, rec := range records {
		if rec.Source == "" {
			s.log.Warn("skipping investment record without source", "page", rec.Page)
			continue
		}
		_, err := tx.Exec(`
            INSERT INTO investment_projects (document_source, page_number, description, investment_amount, currency, timeline)
            VALUES (?, ?, ?, ?, ?, ?)`,
			rec.Source, rec.Page, Truncate(rec.Description, s.maxDescriptionLen),
			nullFloat(rec.Amount), nullString(rec.Currency), nullString(rec.Timeline))
		if err != nil {
			if isSchemaError(err) {
				return fmt.Errorf("insert investment record: %w", err)
			}
			s.log.Warn("skipping malformed investment record", "source", rec.Source, "error", err)
		}
	}
	return nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// isSchemaError distinguishes store corruption (fatal) from a bad row
// (skippable).
func isSchemaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "database disk image is malformed")
}

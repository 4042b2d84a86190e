package store

import (
	"database/sql"
	"fmt"
)

// Tables returns the names of user tables present in the store.
func (s *Store) Tables() ([]string, error) {
	return s.objectNames("table")
}

// Views returns the names of views present in the store.
func (s *Store) Views() ([]string, error) {
	return s.objectNames("view")
}

func (s *Store) objectNames(kind string) ([]string, error) {
	rows, err := s.db.Query(`
        SELECT name FROM sqlite_master
        WHERE type = ? AND name NOT LIKE 'sqlite_%'
        ORDER BY name`, kind)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the row count of a table or view.
func (s *Store) Count(table string) (int, error) {
	var n int
	// Table names come from our own fixed schema lists, never user input.
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// CountNonNullCapacity returns how many capacity rows carry a value.
func (s *Store) CountNonNullCapacity() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM grid_capacity WHERE capacity_mw IS NOT NULL").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count non-null capacity: %w", err)
	}
	return n, nil
}

// Columns returns a table's column names via PRAGMA table_info.
func (s *Store) Columns(table string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &primaryKey); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// Select runs a read-only query and returns the column headers plus all
// rows rendered as strings, NULLs as empty strings. The export stage and
// tests share this reader.
func (s *Store) Select(query string, args ...any) ([]string, [][]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(headers))
		scan := make([]any, len(headers))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(headers))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		out = append(out, row)
	}
	return headers, out, rows.Err()
}

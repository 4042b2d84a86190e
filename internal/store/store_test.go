package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/gridintel/internal/classify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.db")
	st, err := Open(path, 500, 100, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func fixtureResult() *classify.Result {
	return &classify.Result{
		Source:         "plan.pdf",
		PagesProcessed: 12,
		Capacity: []classify.CapacityRecord{
			{Source: "plan.pdf", Page: 1, ValueMW: fptr(400), Unit: "MW", Description: "400 MW line", ProjectName: sptr("transmission line"), Location: sptr("Finland")},
			{Source: "plan.pdf", Page: 2, Description: "capacity mentioned without number"},
		},
		Connections: []classify.ConnectionRecord{
			{Source: "plan.pdf", Page: 3, Type: classify.ConnectionTransmission, Description: "transmission connection"},
		},
		Constraints: []classify.ConstraintRecord{
			{Source: "plan.pdf", Page: 4, Type: classify.ConstraintCongestion, Description: "congestion in the west", Location: sptr("Sweden")},
		},
		Investments: []classify.InvestmentRecord{
			{Source: "plan.pdf", Page: 5, Description: "500 million investment", Amount: fptr(500), Currency: sptr("million"), Timeline: sptr("2026-2028")},
		},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	st := openTestStore(t)

	tables, err := st.Tables()
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	if len(tables) != len(ExpectedTables) {
		t.Fatalf("expected %d tables, got %d: %v", len(ExpectedTables), len(tables), tables)
	}
	for _, want := range ExpectedTables {
		found := false
		for _, got := range tables {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing table %s", want)
		}
	}

	viewNames, err := st.Views()
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(viewNames) != 3 {
		t.Errorf("expected 3 views, got %d: %v", len(viewNames), viewNames)
	}
}

func TestLoad_InsertsAllCategories(t *testing.T) {
	st := openTestStore(t)

	if err := st.Load(fixtureResult()); err != nil {
		t.Fatalf("load: %v", err)
	}

	counts := map[string]int{
		"grid_capacity":       2,
		"grid_connections":    1,
		"grid_constraints":    1,
		"investment_projects": 1,
		"document_metadata":   1,
	}
	for table, want := range counts {
		n, err := st.Count(table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != want {
			t.Errorf("%s: expected %d rows, got %d", table, want, n)
		}
	}

	nonNull, err := st.CountNonNullCapacity()
	if err != nil {
		t.Fatalf("count non-null capacity: %v", err)
	}
	if nonNull != 1 {
		t.Errorf("expected 1 non-null capacity row, got %d", nonNull)
	}
}

func TestLoad_ReloadUpsertsMetadataAndAppendsRecords(t *testing.T) {
	st := openTestStore(t)

	res := fixtureResult()
	if err := st.Load(res); err != nil {
		t.Fatalf("first load: %v", err)
	}
	res.PagesProcessed = 15
	if err := st.Load(res); err != nil {
		t.Fatalf("second load: %v", err)
	}

	// Metadata stays a single row per filename.
	meta, err := st.Count("document_metadata")
	if err != nil {
		t.Fatal(err)
	}
	if meta != 1 {
		t.Errorf("expected 1 metadata row after reload, got %d", meta)
	}

	_, rows, err := st.Select("SELECT pages_processed FROM document_metadata WHERE filename = ?", "plan.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != "15" {
		t.Errorf("expected updated pages_processed 15, got %v", rows)
	}

	// Typed tables are append-only.
	capRows, err := st.Count("grid_capacity")
	if err != nil {
		t.Fatal(err)
	}
	if capRows != 4 {
		t.Errorf("expected 4 capacity rows after reload, got %d", capRows)
	}
}

func TestLoad_EmptyDocumentStillGetsMetadataRow(t *testing.T) {
	st := openTestStore(t)

	res := &classify.Result{Source: "blank.pdf", PagesProcessed: 0}
	if err := st.Load(res); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, rows, err := st.Select("SELECT filename, pages_processed FROM document_metadata")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != "blank.pdf" || rows[0][1] != "0" {
		t.Errorf("unexpected metadata rows %v", rows)
	}

	for _, table := range []string{"grid_capacity", "grid_connections", "grid_constraints", "investment_projects"} {
		n, err := st.Count(table)
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s: expected no rows for empty document, got %d", table, n)
		}
	}
}

func TestLoad_SkipsRecordsWithoutSource(t *testing.T) {
	st := openTestStore(t)

	res := &classify.Result{
		Source:         "doc.pdf",
		PagesProcessed: 1,
		Capacity: []classify.CapacityRecord{
			{Source: "", Page: 1, Description: "orphan record"},
			{Source: "doc.pdf", Page: 1, Description: "valid record"},
		},
	}
	if err := st.Load(res); err != nil {
		t.Fatalf("load: %v", err)
	}

	n, err := st.Count("grid_capacity")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected only the sourced record, got %d rows", n)
	}
}

func TestLoad_TruncatesLongDescriptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.db")
	st, err := Open(path, 40, 100, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	long := strings.Repeat("capacity ", 20)
	res := &classify.Result{
		Source:         "doc.pdf",
		PagesProcessed: 1,
		Capacity: []classify.CapacityRecord{
			{Source: "doc.pdf", Page: 1, Description: long},
		},
	}
	if err := st.Load(res); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, rows, err := st.Select("SELECT description FROM grid_capacity")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := rows[0][0]; len(got) != 40 {
		t.Errorf("expected 40-byte description prefix, got %d bytes: %q", len(got), got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short text untouched", "grid", 10, "grid"},
		{"exact length untouched", "grid", 4, "grid"},
		{"plain cut", "grid capacity", 4, "grid"},
		{"multi-byte rune not split", "€€€", 4, "€"}, // each € is 3 bytes
		{"zero keeps nothing", "grid", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestViews_AggregateLoadedData(t *testing.T) {
	st := openTestStore(t)
	if err := st.Load(fixtureResult()); err != nil {
		t.Fatalf("load: %v", err)
	}

	// 400 MW clears the 100 MW threshold configured in openTestStore.
	headers, rows, err := st.Select("SELECT * FROM high_capacity_projects")
	if err != nil {
		t.Fatalf("query view: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 high capacity row, got %d", len(rows))
	}
	if headers[0] != "project_name" {
		t.Errorf("unexpected first view column %q", headers[0])
	}

	_, rows, err = st.Select("SELECT connection_type, requirement_count FROM connection_summary")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != string(classify.ConnectionTransmission) {
		t.Errorf("unexpected connection summary %v", rows)
	}

	_, rows, err = st.Select("SELECT timeline, project_count FROM investment_timeline")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != "2026-2028" {
		t.Errorf("unexpected investment timeline %v", rows)
	}
}

func TestOpenRead_MissingStoreFails(t *testing.T) {
	_, err := OpenRead(filepath.Join(t.TempDir(), "absent.db"), testLogger())
	if err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestColumns(t *testing.T) {
	st := openTestStore(t)

	cols, err := st.Columns("grid_capacity")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	want := []string{"id", "document_source", "page_number", "capacity_mw", "capacity_unit",
		"description", "project_name", "location", "status", "created_at"}
	if len(cols) != len(want) {
		t.Fatalf("expected %d columns, got %d: %v", len(want), len(cols), cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("column %d: expected %q, got %q", i, want[i], cols[i])
		}
	}
}

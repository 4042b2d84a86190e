package export

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/gridintel/internal/classify"
	"github.com/dgallion1/gridintel/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func loadedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "grid.db"), 500, 100, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	res := &classify.Result{
		Source:         "plan.pdf",
		PagesProcessed: 5,
		Capacity: []classify.CapacityRecord{
			{Source: "plan.pdf", Page: 1, ValueMW: fptr(400), Unit: "MW", Description: "400 MW line"},
			{Source: "plan.pdf", Page: 2, ValueMW: fptr(1500), Unit: "MW", Description: "1.5 GW interconnector"},
			{Source: "plan.pdf", Page: 3, Description: "capacity without a number"},
		},
		Connections: []classify.ConnectionRecord{
			{Source: "plan.pdf", Page: 1, Type: classify.ConnectionTransmission, Description: "transmission connection"},
			{Source: "plan.pdf", Page: 2, Type: classify.ConnectionTransmission, Description: "another transmission connection"},
		},
		Constraints: []classify.ConstraintRecord{
			{Source: "plan.pdf", Page: 4, Type: classify.ConstraintCongestion, Description: "congestion"},
		},
		Investments: []classify.InvestmentRecord{
			{Source: "plan.pdf", Page: 5, Description: "investment", Amount: fptr(500), Currency: sptr("million"), Timeline: sptr("2026")},
		},
	}
	if err := st.Load(res); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return st
}

func readExport(t *testing.T, dir, name string) ([]string, [][]string) {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("open export %s: %v", name, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export %s: %v", name, err)
	}
	if len(records) == 0 {
		t.Fatalf("export %s is empty", name)
	}
	return records[0], records[1:]
}

func TestAll_WritesEveryFile(t *testing.T) {
	st := loadedStore(t)
	dir := t.TempDir()

	sum, err := New(st, dir, testLogger()).All()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if sum.Files != 4 {
		t.Errorf("expected 4 files, got %d", sum.Files)
	}
	for _, name := range []string{CapacityFile, ConnectionsFile, ConstraintsFile, InvestmentsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing export file %s: %v", name, err)
		}
	}
}

func TestCapacityExport_FiltersAndSorts(t *testing.T) {
	st := loadedStore(t)
	dir := t.TempDir()

	sum, err := New(st, dir, testLogger()).All()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	// The null-valued capacity row is excluded.
	if sum.RowCounts[CapacityFile] != 2 {
		t.Errorf("expected 2 capacity rows, got %d", sum.RowCounts[CapacityFile])
	}

	headers, rows := readExport(t, dir, CapacityFile)
	want := []string{"id", "document_source", "page_number", "capacity_mw", "capacity_unit",
		"description", "project_name", "location", "status", "created_at"}
	if len(headers) != len(want) {
		t.Fatalf("expected %d header columns, got %d: %v", len(want), len(headers), headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d: expected %q, got %q", i, want[i], headers[i])
		}
	}

	// Descending capacity order.
	if rows[0][3] != "1500" {
		t.Errorf("expected largest capacity first, got %q", rows[0][3])
	}
}

func TestConnectionsExport_UsesSummaryView(t *testing.T) {
	st := loadedStore(t)
	dir := t.TempDir()

	if _, err := New(st, dir, testLogger()).All(); err != nil {
		t.Fatalf("export: %v", err)
	}

	headers, rows := readExport(t, dir, ConnectionsFile)
	want := []string{"connection_type", "requirement_count", "sources"}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d: expected %q, got %q", i, want[i], headers[i])
		}
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 aggregated row, got %d", len(rows))
	}
	if rows[0][0] != string(classify.ConnectionTransmission) || rows[0][1] != "2" {
		t.Errorf("unexpected aggregation %v", rows[0])
	}
}

func TestInvestmentsExport_TimelineView(t *testing.T) {
	st := loadedStore(t)
	dir := t.TempDir()

	if _, err := New(st, dir, testLogger()).All(); err != nil {
		t.Fatalf("export: %v", err)
	}

	headers, rows := readExport(t, dir, InvestmentsFile)
	want := []string{"timeline", "project_count", "total_investment", "currency"}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d: expected %q, got %q", i, want[i], headers[i])
		}
	}
	if len(rows) != 1 || rows[0][0] != "2026" {
		t.Errorf("unexpected timeline rows %v", rows)
	}
}

func TestAll_EmptyStoreStillWritesHeaders(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "grid.db"), 500, 100, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	dir := t.TempDir()

	sum, err := New(st, dir, testLogger()).All()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if sum.Files != 4 {
		t.Errorf("expected 4 files, got %d", sum.Files)
	}

	headers, rows := readExport(t, dir, ConstraintsFile)
	if len(headers) == 0 {
		t.Error("expected header row in empty export")
	}
	if len(rows) != 0 {
		t.Errorf("expected no data rows, got %d", len(rows))
	}
}

package harvest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/gridintel/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHarvester(t *testing.T, rules *config.Rules) *Harvester {
	t.Helper()
	cfg := config.Load()
	cfg.DocumentsDir = filepath.Join(t.TempDir(), "tso_documents")
	h := New(cfg, rules, testLogger())
	h.sleep = func(time.Duration) {} // no politeness delays in tests
	return h
}

func rulesForServer(baseURL string) *config.Rules {
	rules := config.DefaultRules()
	rules.Sources = map[string]config.SourceProfile{
		"Finland": {
			Name:         "Fingrid",
			DocumentURLs: []string{baseURL + "/grid/"},
			PDFPatterns:  []string{`.*development.*plan.*\.pdf`},
		},
	}
	return rules
}

const listingHTML = `<html><body>
<a href="/docs/grid_development_plan_2026.pdf">Development plan</a>
<a href="/docs/Network_Development_Plan.PDF">Uppercase extension</a>
<a href="/docs/annual_report_2025.pdf">Annual report</a>
<a href="/docs/development_plan_page.html">HTML page</a>
<a href="relative_development_plan.pdf">Relative link</a>
</body></html>`

func TestDiscover_FiltersByPatternAndExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML)
	}))
	defer srv.Close()

	h := testHarvester(t, rulesForServer(srv.URL))

	found, err := h.Discover(context.Background(), "Finland")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	// The annual report misses the pattern, the HTML page misses the
	// extension; the uppercase extension and relative link both match.
	if len(found) != 3 {
		t.Fatalf("expected 3 discoveries, got %d: %+v", len(found), found)
	}
	names := map[string]bool{}
	for _, d := range found {
		names[d.Filename] = true
		if d.Country != "Finland" || d.TSO != "Fingrid" {
			t.Errorf("unexpected attribution %+v", d)
		}
	}
	for _, want := range []string{
		"grid_development_plan_2026.pdf",
		"Network_Development_Plan.PDF",
		"relative_development_plan.pdf",
	} {
		if !names[want] {
			t.Errorf("missing discovery %s", want)
		}
	}
}

func TestDiscover_UnknownCountry(t *testing.T) {
	h := testHarvester(t, rulesForServer("http://unused.test"))
	if _, err := h.Discover(context.Background(), "Atlantis"); err == nil {
		t.Fatal("expected error for unconfigured country")
	}
}

func TestDiscover_FailedPageIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken/" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, listingHTML)
	}))
	defer srv.Close()

	rules := rulesForServer(srv.URL)
	profile := rules.Sources["Finland"]
	profile.DocumentURLs = []string{srv.URL + "/broken/", srv.URL + "/grid/"}
	rules.Sources["Finland"] = profile

	h := testHarvester(t, rules)
	found, err := h.Discover(context.Background(), "Finland")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(found) != 3 {
		t.Errorf("expected discoveries from the healthy page, got %d", len(found))
	}
}

func TestDownload_WritesPDFPayload(t *testing.T) {
	payload := "%PDF-1.7\nfake body"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	h := testHarvester(t, rulesForServer(srv.URL))
	disc := Discovery{Country: "Finland", Filename: "grid plan (2026).pdf", URL: srv.URL + "/doc.pdf"}

	local, err := h.Download(context.Background(), disc)
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	// Unsafe filename characters are replaced.
	if filepath.Base(local) != "grid_plan__2026_.pdf" {
		t.Errorf("unexpected local name %q", filepath.Base(local))
	}
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != payload {
		t.Errorf("payload mismatch: %q", data)
	}
}

func TestDownload_RejectsNonPDFContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf") // lying header
		fmt.Fprint(w, "<html>not a pdf</html>")
	}))
	defer srv.Close()

	h := testHarvester(t, rulesForServer(srv.URL))
	disc := Discovery{Country: "Finland", Filename: "fake.pdf", URL: srv.URL + "/fake.pdf"}

	if _, err := h.Download(context.Background(), disc); err == nil {
		t.Fatal("expected magic header rejection")
	}
	if _, err := os.Stat(filepath.Join(h.cfg.DocumentsDir, "Finland", "fake.pdf")); !os.IsNotExist(err) {
		t.Errorf("rejected payload should not persist, stat err = %v", err)
	}
}

func TestDownload_IsIdempotent(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, "%PDF-1.7 body")
	}))
	defer srv.Close()

	h := testHarvester(t, rulesForServer(srv.URL))
	disc := Discovery{Country: "Finland", Filename: "plan.pdf", URL: srv.URL + "/plan.pdf"}

	first, err := h.Download(context.Background(), disc)
	if err != nil {
		t.Fatalf("first download: %v", err)
	}
	second, err := h.Download(context.Background(), disc)
	if err != nil {
		t.Fatalf("second download: %v", err)
	}

	if first != second {
		t.Errorf("expected same local path, got %q and %q", first, second)
	}
	if requests != 1 {
		t.Errorf("expected 1 HTTP request, got %d", requests)
	}
}

func TestHarvestCountry_CollectsPerDocumentFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/grid/":
			fmt.Fprint(w, `<html><body>
<a href="/docs/good_development_plan.pdf">good</a>
<a href="/docs/bad_development_plan.pdf">bad</a>
</body></html>`)
		case "/docs/good_development_plan.pdf":
			fmt.Fprint(w, "%PDF-1.7 ok")
		default:
			fmt.Fprint(w, "not a pdf at all")
		}
	}))
	defer srv.Close()

	h := testHarvester(t, rulesForServer(srv.URL))
	sum, err := h.HarvestCountry(context.Background(), "Finland")
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}

	if sum.Discovered != 2 {
		t.Errorf("expected 2 discovered, got %d", sum.Discovered)
	}
	if sum.Downloaded != 1 {
		t.Errorf("expected 1 downloaded, got %d", sum.Downloaded)
	}
	if sum.Failed != 1 || len(sum.Errors) != 1 {
		t.Errorf("expected 1 failure recorded, got %d (%v)", sum.Failed, sum.Errors)
	}
	if len(sum.LocalPaths) != 1 {
		t.Fatalf("expected 1 local path, got %v", sum.LocalPaths)
	}
	if _, err := os.Stat(sum.LocalPaths[0]); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

// Package pipeline orchestrates the full intelligence run: harvest,
// per-document analysis, store loading, CSV export, and the cohesion
// audit over the produced artifacts.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dgallion1/gridintel/internal/classify"
	"github.com/dgallion1/gridintel/internal/cohesion"
	"github.com/dgallion1/gridintel/internal/config"
	"github.com/dgallion1/gridintel/internal/export"
	"github.com/dgallion1/gridintel/internal/extract"
	"github.com/dgallion1/gridintel/internal/harvest"
	"github.com/dgallion1/gridintel/internal/snapshot"
	"github.com/dgallion1/gridintel/internal/store"
)

const (
	intelligenceReportFile = "grid_intelligence_report.md"
	cohesionReportFile     = "cohesion_report.md"
	cohesionReportHTMLFile = "cohesion_report.html"
	cohesionReportJSONFile = "cohesion_report.json"
)

// Runner wires the pipeline stages together. Each stage can also run
// standalone through its own method.
type Runner struct {
	cfg   config.Config
	rules *config.Rules
	log   *slog.Logger
}

func New(cfg config.Config, rules *config.Rules, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, rules: rules, log: log}
}

// Harvest discovers and downloads documents for every configured
// source country.
func (r *Runner) Harvest(ctx context.Context) []*harvest.CountrySummary {
	h := harvest.New(r.cfg, r.rules, r.log)
	return h.HarvestAll(ctx)
}

// Analyze extracts and classifies every harvested document, writes the
// analysis snapshot, and renders the intelligence report. Documents
// that fail extraction are logged and skipped; they do not abort the
// run.
func (r *Runner) Analyze(ctx context.Context) (*snapshot.Snapshot, error) {
	extractor := extract.New(r.log, r.cfg.PDFFallbackPdftotext)
	classifier := classify.New(r.rules, r.cfg.MVAPowerFactor)
	snap := snapshot.New(uuid.NewString())

	paths, err := documentPaths(r.cfg.DocumentsDir)
	if err != nil {
		return nil, err
	}
	r.log.Info("analysis started", "run_id", snap.RunID, "documents", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := extractor.File(path)
		if err != nil {
			r.log.Warn("extraction failed, skipping document", "path", path, "error", err)
			continue
		}
		res := classifier.Document(doc)
		snap.Add(res)
		r.log.Info("document analyzed",
			"document", res.Source,
			"pages", res.PagesProcessed,
			"records", res.RecordCount())
	}

	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := snap.Write(r.cfg.SnapshotPath()); err != nil {
		return nil, err
	}

	reportPath := filepath.Join(r.cfg.DataDir, intelligenceReportFile)
	if err := os.WriteFile(reportPath, []byte(intelligenceReport(snap)), 0o644); err != nil {
		return nil, fmt.Errorf("write intelligence report: %w", err)
	}

	r.log.Info("analysis complete",
		"documents", snap.DocumentsAnalyzed,
		"capacity_points", len(snap.Capacity),
		"connection_points", len(snap.Connections),
		"constraint_points", len(snap.Constraints),
		"investment_points", len(snap.Investments))
	return snap, nil
}

// Load reads the analysis snapshot and loads every document's records
// into the structured store. Returns the number of documents loaded.
func (r *Runner) Load() (int, error) {
	snap, err := snapshot.Read(r.cfg.SnapshotPath())
	if err != nil {
		return 0, err
	}

	st, err := store.Open(r.cfg.StorePath, r.cfg.MaxDescriptionLen, r.cfg.HighCapacityMW, r.log)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	loaded := 0
	for _, res := range snap.Results() {
		if err := st.Load(res); err != nil {
			return loaded, fmt.Errorf("load %s: %w", res.Source, err)
		}
		loaded++
	}
	r.log.Info("store load complete", "documents", loaded)
	return loaded, nil
}

// Export writes the flat CSV exports and the dashboard configuration.
func (r *Runner) Export() (*export.Summary, error) {
	st, err := store.OpenRead(r.cfg.StorePath, r.log)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	sum, err := export.New(st, r.cfg.ExportDir(), r.log).All()
	if err != nil {
		return nil, err
	}
	if err := r.writeDashboardConfig(); err != nil {
		return nil, err
	}
	return sum, nil
}

// Validate runs the read-only cohesion audit and renders its report in
// markdown, HTML, and JSON alongside the other artifacts.
func (r *Runner) Validate() (*cohesion.Report, error) {
	rep := cohesion.New(r.cfg, r.rules, r.log).Run()

	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	md := rep.Markdown()
	if err := os.WriteFile(filepath.Join(r.cfg.DataDir, cohesionReportFile), []byte(md), 0o644); err != nil {
		return nil, fmt.Errorf("write cohesion report: %w", err)
	}
	html, err := rep.HTML()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(r.cfg.DataDir, cohesionReportHTMLFile), html, 0o644); err != nil {
		return nil, fmt.Errorf("write cohesion report html: %w", err)
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cohesion report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.cfg.DataDir, cohesionReportJSONFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("write cohesion report json: %w", err)
	}
	return rep, nil
}

// Run executes the full pipeline end to end and returns the final
// cohesion report.
func (r *Runner) Run(ctx context.Context) (*cohesion.Report, error) {
	summaries := r.Harvest(ctx)
	for _, sum := range summaries {
		r.log.Info("country harvested",
			"country", sum.Country,
			"tso", sum.TSO,
			"discovered", sum.Discovered,
			"downloaded", sum.Downloaded,
			"failed", len(sum.Errors))
	}

	if _, err := r.Analyze(ctx); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if _, err := r.Load(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if _, err := r.Export(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	rep, err := r.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return rep, nil
}

// documentPaths lists the harvested documents in deterministic order.
func documentPaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".docx":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan documents dir: %w", err)
	}
	return paths, nil
}

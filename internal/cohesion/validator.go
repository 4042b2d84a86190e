package cohesion

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/gridintel/internal/config"
	"github.com/dgallion1/gridintel/internal/export"
	"github.com/dgallion1/gridintel/internal/snapshot"
	"github.com/dgallion1/gridintel/internal/store"
)

// Stage names, in pipeline order.
const (
	StageIngestion  = "ingestion"
	StageProcessing = "processing"
	StageDatabase   = "database"
	StageExports    = "exports"
	StageDashboard  = "dashboard"
)

// coreExports are the files whose presence the export stage and the
// export-to-dashboard flow are judged on.
var coreExports = []string{
	export.CapacityFile,
	export.ConnectionsFile,
	export.InvestmentsFile,
}

// StageResult is one stage's audit outcome.
type StageResult struct {
	Name   string          `json:"name"`
	Status StageStatus     `json:"status"`
	Score  float64         `json:"score"`
	Counts map[string]int  `json:"counts,omitempty"`
	Flags  map[string]bool `json:"flags,omitempty"`
}

// IntegrationResult is one pairwise-flow check: three booleans, scored
// by how many are satisfied.
type IntegrationResult struct {
	Name   string          `json:"name"`
	Score  float64         `json:"score"`
	Checks map[string]bool `json:"checks"`
}

// Report is the complete cohesion audit: a composite score, per-pillar
// scores, per-stage detail, and the ordered gap list.
type Report struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	Score            float64             `json:"cohesion_score"`
	DataFlowScore    float64             `json:"data_flow_score"`
	IntegrationScore float64             `json:"integration_score"`
	OutputScore      float64             `json:"output_consistency_score"`
	Stages           []StageResult       `json:"stages"`
	Integrations     []IntegrationResult `json:"integration_points"`
	Gaps             []string            `json:"gaps_identified"`
}

// Stage returns a stage result by name.
func (r *Report) Stage(name string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// Validator audits the pipeline's on-disk artifacts. It is strictly
// read-only: a low score is a correct result, never an error.
type Validator struct {
	cfg   config.Config
	rules *config.Rules
	log   *slog.Logger
}

func New(cfg config.Config, rules *config.Rules, log *slog.Logger) *Validator {
	return &Validator{cfg: cfg, rules: rules, log: log}
}

// Run performs the complete audit and builds the report.
func (v *Validator) Run() *Report {
	report := &Report{GeneratedAt: time.Now()}

	report.Stages = []StageResult{
		v.checkIngestion(),
		v.checkProcessing(),
		v.checkDatabase(),
		v.checkExports(),
		v.checkDashboard(),
	}
	for i := range report.Stages {
		report.Stages[i].Score = report.Stages[i].Status.Score()
	}

	report.Integrations = []IntegrationResult{
		v.checkFormatConsistency(),
		v.checkAnalysisToStore(),
		v.checkStoreToExport(),
		v.checkExportToDashboard(),
	}

	report.DataFlowScore = meanStageScore(report.Stages)
	report.IntegrationScore = meanIntegrationScore(report.Integrations)
	report.OutputScore = v.outputScore(report)
	report.Score = round1(report.DataFlowScore*weightDataFlow +
		report.IntegrationScore*weightIntegration +
		report.OutputScore*weightOutput)

	report.Gaps = v.identifyGaps(report)

	v.log.Info("cohesion audit complete", "score", report.Score, "gaps", len(report.Gaps))
	return report
}

// checkIngestion audits stage 1: source profiles configured and
// documents actually harvested.
func (v *Validator) checkIngestion() StageResult {
	res := StageResult{Name: StageIngestion, Counts: make(map[string]int)}

	res.Counts["sources_configured"] = len(v.rules.Sources)
	res.Counts["documents_on_disk"] = countHarvested(v.cfg.DocumentsDir)

	if snap, err := snapshot.Read(v.cfg.SnapshotPath()); err == nil {
		res.Counts["documents_processed"] = snap.DocumentsAnalyzed
		res.Counts["data_points_extracted"] = len(snap.Capacity)
	}

	switch {
	case res.Counts["sources_configured"] >= 3 && res.Counts["documents_processed"] > 0:
		res.Status = StatusComplete
	case res.Counts["sources_configured"] >= 3:
		res.Status = StatusConfigured
	default:
		res.Status = StatusIncomplete
	}
	return res
}

// checkProcessing audits stage 2: the analysis snapshot and its
// category coverage.
func (v *Validator) checkProcessing() StageResult {
	res := StageResult{Name: StageProcessing, Flags: make(map[string]bool)}

	snap, err := snapshot.Read(v.cfg.SnapshotPath())
	if err == nil {
		res.Flags["analysis_complete"] = snap.DocumentsAnalyzed > 0
		res.Flags["extraction_successful"] = len(snap.Capacity) > 0
		res.Flags["categorization_working"] = len(snap.Connections) > 0 &&
			len(snap.Constraints) > 0 && len(snap.Investments) > 0
	}

	switch {
	case res.Flags["analysis_complete"] && res.Flags["extraction_successful"] && res.Flags["categorization_working"]:
		res.Status = StatusComplete
	case res.Flags["analysis_complete"]:
		res.Status = StatusPartial
	default:
		res.Status = StatusFailed
	}
	return res
}

// checkDatabase audits stage 3: store presence, table count, and how
// many of the expected tables hold rows.
func (v *Validator) checkDatabase() StageResult {
	res := StageResult{Name: StageDatabase, Counts: make(map[string]int)}

	st, err := store.OpenRead(v.cfg.StorePath, v.log)
	if err != nil {
		res.Status = StatusMissing
		return res
	}
	defer st.Close()

	tables, err := st.Tables()
	if err != nil {
		res.Status = StatusFailed
		return res
	}
	res.Counts["tables_created"] = len(tables)

	if viewNames, err := st.Views(); err == nil {
		res.Counts["views_created"] = len(viewNames)
	}

	populated := 0
	for _, table := range store.ExpectedTables {
		n, err := st.Count(table)
		if err != nil {
			v.log.Warn("could not count table", "table", table, "error", err)
			continue
		}
		if n > 0 {
			populated++
		}
	}
	res.Counts["tables_populated"] = populated

	switch {
	case len(tables) >= 5 && populated >= 4:
		res.Status = StatusComplete
	default:
		res.Status = StatusPartial
	}
	return res
}

// checkExports audits stage 4: the core CSV files and their structure.
func (v *Validator) checkExports() StageResult {
	res := StageResult{Name: StageExports, Counts: make(map[string]int)}

	created, consistent := 0, 0
	for _, name := range coreExports {
		headers, rows, err := readCSV(filepath.Join(v.cfg.ExportDir(), name))
		if err != nil {
			continue
		}
		created++
		if rows > 0 && len(headers) > 2 {
			consistent++
		}
	}
	res.Counts["csv_files_created"] = created
	res.Counts["files_consistent"] = consistent

	switch {
	case created >= 3 && consistent >= 3:
		res.Status = StatusComplete
	case created >= 2:
		res.Status = StatusPartial
	default:
		res.Status = StatusIncomplete
	}
	return res
}

// checkDashboard audits stage 5: the dashboard configuration artifact.
func (v *Validator) checkDashboard() StageResult {
	res := StageResult{Name: StageDashboard, Counts: make(map[string]int)}

	cfg, err := readDashboardConfig(v.cfg.DashboardConfigPath())
	if err != nil {
		res.Status = StatusMissing
		return res
	}
	res.Counts["widget_definitions"] = len(cfg.Widgets)
	res.Counts["data_source_mappings"] = len(cfg.DataSources)

	if len(cfg.Widgets) >= 3 && len(cfg.DataSources) >= 3 {
		res.Status = StatusReady
	} else {
		res.Status = StatusConfigured
	}
	return res
}

func (v *Validator) outputScore(report *Report) float64 {
	exportScore := 60.0
	if s := report.Stage(StageExports); s != nil && s.Status == StatusComplete {
		exportScore = 100
	}
	dashboardScore := 80.0
	if s := report.Stage(StageDashboard); s != nil && s.Status == StatusReady {
		dashboardScore = 100
	}
	return (exportScore + dashboardScore) / 2
}

func (v *Validator) identifyGaps(report *Report) []string {
	var gaps []string

	for _, stage := range report.Stages {
		if stage.Status.IsGap() {
			gaps = append(gaps, fmt.Sprintf("Data Flow Gap: %s - %s", stage.Name, stage.Status))
		}
	}
	for _, check := range report.Integrations {
		if check.Score < 80 {
			gaps = append(gaps, fmt.Sprintf("Integration Gap: %s - Score: %.1f%%", check.Name, check.Score))
		}
	}

	// The two most load-bearing artifacts get direct existence checks so
	// the common failure modes are immediately actionable.
	if report.Score < 90 {
		if _, err := os.Stat(v.cfg.StorePath); err != nil {
			gaps = append(gaps, "Database Missing: core store file not found")
		}
		var missing []string
		for _, name := range []string{export.CapacityFile, export.ConnectionsFile} {
			if _, err := os.Stat(filepath.Join(v.cfg.ExportDir(), name)); err != nil {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, "Export Files Missing: "+strings.Join(missing, ", "))
		}
	}
	return gaps
}

func meanStageScore(stages []StageResult) float64 {
	if len(stages) == 0 {
		return 0
	}
	var sum float64
	for _, s := range stages {
		sum += s.Score
	}
	return sum / float64(len(stages))
}

func meanIntegrationScore(checks []IntegrationResult) float64 {
	if len(checks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range checks {
		sum += c.Score
	}
	return sum / float64(len(checks))
}

func scoreChecks(checks map[string]bool) float64 {
	n := 0
	for _, ok := range checks {
		if ok {
			n++
		}
	}
	return round1(float64(n) * perCheckWeight)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// countHarvested counts document files under the harvest directory.
func countHarvested(dir string) int {
	n := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".docx":
			n++
		}
		return nil
	})
	return n
}

// readCSV returns a file's header row and data row count.
func readCSV(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("empty csv: %s", path)
	}
	return records[0], len(records) - 1, nil
}

// dashboardConfig is the minimal read-side view of the dashboard
// configuration artifact.
type dashboardConfig struct {
	DataSources []map[string]any `json:"data_sources"`
	Widgets     []map[string]any `json:"widgets"`
}

func readDashboardConfig(path string) (*dashboardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg dashboardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

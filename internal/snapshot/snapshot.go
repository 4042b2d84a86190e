// Package snapshot defines the analysis snapshot artifact written after
// classification and read by the loader and the cohesion validator. Its
// JSON shape is a cross-stage contract.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dgallion1/gridintel/internal/classify"
)

// Snapshot aggregates every document's classification output from one
// analysis run.
type Snapshot struct {
	RunID             string                      `json:"run_id,omitempty"`
	GeneratedAt       time.Time                   `json:"generated_at"`
	DocumentsAnalyzed int                         `json:"documents_analyzed"`
	Capacity          []classify.CapacityRecord   `json:"capacity_data"`
	Connections       []classify.ConnectionRecord `json:"connection_data"`
	Constraints       []classify.ConstraintRecord `json:"constraint_data"`
	Investments       []classify.InvestmentRecord `json:"investment_data"`
	Documents         map[string]DocumentSummary  `json:"document_summaries"`
}

// DocumentSummary records per-document processing counts.
type DocumentSummary struct {
	PagesProcessed   int `json:"pages_processed"`
	CapacityPoints   int `json:"capacity_points"`
	ConnectionPoints int `json:"connection_points"`
	ConstraintPoints int `json:"constraint_points"`
	InvestmentPoints int `json:"investment_points"`
}

// New builds an empty snapshot ready to accumulate results.
func New(runID string) *Snapshot {
	return &Snapshot{
		RunID:       runID,
		GeneratedAt: time.Now(),
		Documents:   make(map[string]DocumentSummary),
	}
}

// Add merges one document's classification result.
func (s *Snapshot) Add(res *classify.Result) {
	s.DocumentsAnalyzed++
	s.Capacity = append(s.Capacity, res.Capacity...)
	s.Connections = append(s.Connections, res.Connections...)
	s.Constraints = append(s.Constraints, res.Constraints...)
	s.Investments = append(s.Investments, res.Investments...)
	s.Documents[res.Source] = DocumentSummary{
		PagesProcessed:   res.PagesProcessed,
		CapacityPoints:   len(res.Capacity),
		ConnectionPoints: len(res.Connections),
		ConstraintPoints: len(res.Constraints),
		InvestmentPoints: len(res.Investments),
	}
}

// Results converts the snapshot back into per-document classification
// results for loading.
func (s *Snapshot) Results() []*classify.Result {
	byDoc := make(map[string]*classify.Result, len(s.Documents))
	order := make([]string, 0, len(s.Documents))

	get := func(source string) *classify.Result {
		if res, ok := byDoc[source]; ok {
			return res
		}
		res := &classify.Result{Source: source}
		if sum, ok := s.Documents[source]; ok {
			res.PagesProcessed = sum.PagesProcessed
		}
		byDoc[source] = res
		order = append(order, source)
		return res
	}

	// Documents with zero records still need a metadata row.
	for source := range s.Documents {
		get(source)
	}
	for _, rec := range s.Capacity {
		res := get(rec.Source)
		res.Capacity = append(res.Capacity, rec)
	}
	for _, rec := range s.Connections {
		res := get(rec.Source)
		res.Connections = append(res.Connections, rec)
	}
	for _, rec := range s.Constraints {
		res := get(rec.Source)
		res.Constraints = append(res.Constraints, rec)
	}
	for _, rec := range s.Investments {
		res := get(rec.Source)
		res.Investments = append(res.Investments, rec)
	}

	sort.Strings(order)
	results := make([]*classify.Result, 0, len(order))
	for _, source := range order {
		results = append(results, byDoc[source])
	}
	return results
}

// Write serializes the snapshot to path.
func (s *Snapshot) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot from path.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if s.Documents == nil {
		s.Documents = make(map[string]DocumentSummary)
	}
	return &s, nil
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/gridintel/internal/export"
)

// dashboardSource maps one exported CSV into the dashboard.
type dashboardSource struct {
	Name      string   `json:"name"`
	File      string   `json:"file"`
	Type      string   `json:"type"`
	KeyFields []string `json:"key_fields"`
}

// dashboardWidget is one visualization definition. Only the fields a
// given widget type needs are set.
type dashboardWidget struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Field       string `json:"field,omitempty"`
	Aggregation string `json:"aggregation,omitempty"`
	Data        string `json:"data,omitempty"`
	XField      string `json:"x_field,omitempty"`
	YField      string `json:"y_field,omitempty"`
	DateField   string `json:"date_field,omitempty"`
	ValueField  string `json:"value_field,omitempty"`
}

type dashboardConfig struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DataSources []dashboardSource `json:"data_sources"`
	Widgets     []dashboardWidget `json:"widgets"`
}

// writeDashboardConfig generates the dashboard configuration bound to
// the exported CSVs.
func (r *Runner) writeDashboardConfig() error {
	cfg := dashboardConfig{
		Title:       "European Grid Queue Intelligence Dashboard",
		Description: "Analysis of European TSO grid connection queues and capacity constraints",
		DataSources: []dashboardSource{
			{
				Name:      "Grid Capacity Data",
				File:      export.CapacityFile,
				Type:      "Table",
				KeyFields: []string{"capacity_mw", "project_name", "location"},
			},
			{
				Name:      "Connection Requirements",
				File:      export.ConnectionsFile,
				Type:      "Table",
				KeyFields: []string{"connection_type", "requirement_count"},
			},
			{
				Name:      "Investment Timeline",
				File:      export.InvestmentsFile,
				Type:      "Table",
				KeyFields: []string{"timeline", "project_count", "total_investment"},
			},
		},
		Widgets: []dashboardWidget{
			{
				Type:        "indicator",
				Title:       "Total Grid Capacity Analyzed",
				Field:       "capacity_mw",
				Aggregation: "sum",
			},
			{
				Type:   "bar_chart",
				Title:  "Connection Types Distribution",
				Data:   export.ConnectionsFile,
				XField: "connection_type",
				YField: "requirement_count",
			},
			{
				Type:       "timeline",
				Title:      "Investment Timeline",
				Data:       export.InvestmentsFile,
				DateField:  "timeline",
				ValueField: "total_investment",
			},
		},
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dashboard config: %w", err)
	}
	path := r.cfg.DashboardConfigPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dashboard config: %w", err)
	}
	r.log.Info("dashboard config written", "path", path,
		"data_sources", len(cfg.DataSources), "widgets", len(cfg.Widgets))
	return nil
}

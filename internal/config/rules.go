package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Rules holds the versioned classification and harvesting data: keyword
// vocabularies, the location gazetteer, and per-country TSO source
// profiles. Loaded once at startup and treated as immutable afterwards.
type Rules struct {
	Vocabularies      Vocabularies             `yaml:"vocabularies"`
	Gazetteer         []string                 `yaml:"gazetteer"`
	ProjectIndicators []string                 `yaml:"project_indicators"`
	Sources           map[string]SourceProfile `yaml:"sources"`
}

// Vocabularies are the four keyword lists driving sentence classification.
type Vocabularies struct {
	Capacity   []string `yaml:"capacity"`
	Connection []string `yaml:"connection"`
	Constraint []string `yaml:"constraint"`
	Investment []string `yaml:"investment"`
}

// SourceProfile describes one country's TSO document pages.
type SourceProfile struct {
	Name         string   `yaml:"name"`
	DocumentURLs []string `yaml:"document_urls"`
	PDFPatterns  []string `yaml:"pdf_patterns"`
}

// LoadRules reads a rules YAML file, or returns the built-in defaults
// when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return &r, nil
}

// Validate checks the rule set has everything classification depends on.
func (r *Rules) Validate() error {
	if len(r.Vocabularies.Capacity) == 0 {
		return fmt.Errorf("capacity vocabulary is empty")
	}
	if len(r.Vocabularies.Connection) == 0 {
		return fmt.Errorf("connection vocabulary is empty")
	}
	if len(r.Vocabularies.Constraint) == 0 {
		return fmt.Errorf("constraint vocabulary is empty")
	}
	if len(r.Vocabularies.Investment) == 0 {
		return fmt.Errorf("investment vocabulary is empty")
	}
	if len(r.Gazetteer) == 0 {
		return fmt.Errorf("gazetteer is empty")
	}
	for country, profile := range r.Sources {
		if len(profile.DocumentURLs) == 0 {
			return fmt.Errorf("source %s has no document URLs", country)
		}
		if len(profile.PDFPatterns) == 0 {
			return fmt.Errorf("source %s has no PDF patterns", country)
		}
	}
	return nil
}

// SourceCountries returns the configured country names in stable order.
func (r *Rules) SourceCountries() []string {
	countries := make([]string, 0, len(r.Sources))
	for country := range r.Sources {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}

// DefaultRules returns the compiled-in rule set covering the Nordic and
// central European TSOs.
func DefaultRules() *Rules {
	return &Rules{
		Vocabularies: Vocabularies{
			Capacity: []string{
				"capacity", "MW", "GW", "transmission capacity", "grid capacity",
				"available capacity", "thermal capacity", "power transfer",
				"transfer capacity",
			},
			Connection: []string{
				"connection", "connecting", "connection queue", "application",
				"connection process", "grid connection", "connection agreement",
				"connection terms", "connection point",
			},
			Constraint: []string{
				"constraint", "congestion", "bottleneck", "limitation",
				"thermal limit", "voltage limit", "stability limit",
			},
			Investment: []string{
				"investment", "development", "upgrade", "reinforcement",
				"expansion", "new line", "substation", "transformer",
			},
		},
		Gazetteer: []string{
			"Finland", "Sweden", "Norway", "Denmark", "Estonia",
			"Pori", "Helsinki", "Tampere", "Oulu", "Turku",
			"Northern Finland", "Southern Finland", "Western Finland",
		},
		ProjectIndicators: []string{
			"line", "connection", "link", "project", "development",
		},
		Sources: map[string]SourceProfile{
			"Finland": {
				Name: "Fingrid",
				DocumentURLs: []string{
					"https://www.fingrid.fi/en/grid/grid-development/",
					"https://www.fingrid.fi/en/grid/grid-development/grid-development-plan/",
					"https://www.fingrid.fi/en/grid/connecting-to-the-grid/",
					"https://www.fingrid.fi/en/grid/grid-development/investment-plan/",
				},
				PDFPatterns: []string{
					`.*development.*plan.*\.pdf`,
					`.*investment.*plan.*\.pdf`,
					`.*grid.*plan.*\.pdf`,
					`.*connection.*guide.*\.pdf`,
					`.*capacity.*analysis.*\.pdf`,
				},
			},
			"Sweden": {
				Name: "Svenska kraftnät",
				DocumentURLs: []string{
					"https://www.svk.se/en/stakeholders/grid-development/",
					"https://www.svk.se/en/stakeholders/planning-of-the-electricity-system/",
				},
				PDFPatterns: []string{
					`.*network.*development.*\.pdf`,
					`.*grid.*development.*\.pdf`,
					`.*planning.*report.*\.pdf`,
					`.*capacity.*analysis.*\.pdf`,
				},
			},
			"Norway": {
				Name: "Statnett",
				DocumentURLs: []string{
					"https://www.statnett.no/en/for-stakeholders-in-the-power-industry/grid-development/",
				},
				PDFPatterns: []string{
					`.*grid.*development.*\.pdf`,
					`.*system.*development.*\.pdf`,
					`.*network.*plan.*\.pdf`,
				},
			},
			"Denmark": {
				Name: "Energinet",
				DocumentURLs: []string{
					"https://energinet.dk/en/electricity/electricity-market/",
					"https://energinet.dk/en/electricity/system-data/",
				},
				PDFPatterns: []string{
					`.*system.*plan.*\.pdf`,
					`.*development.*plan.*\.pdf`,
					`.*transmission.*plan.*\.pdf`,
				},
			},
			"Germany": {
				Name: "German TSOs",
				DocumentURLs: []string{
					"https://www.netzentwicklungsplan.de/en/",
					"https://www.tennet.eu/electricity-market/grid-development/",
				},
				PDFPatterns: []string{
					`.*netzentwicklungsplan.*\.pdf`,
					`.*network.*development.*plan.*\.pdf`,
					`.*grid.*development.*\.pdf`,
					`.*NEP.*\.pdf`,
				},
			},
			"Netherlands": {
				Name: "TenneT Nederland",
				DocumentURLs: []string{
					"https://www.tennet.eu/electricity-market/grid-development/",
					"https://www.tennet.eu/our-grid/onshore-grid/onshore-projects/",
				},
				PDFPatterns: []string{
					`.*system.*development.*\.pdf`,
					`.*grid.*development.*\.pdf`,
					`.*investment.*plan.*\.pdf`,
				},
			},
		},
	}
}

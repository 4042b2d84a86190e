package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Artifact locations
	DataDir      string
	DocumentsDir string
	StorePath    string

	// Harvester
	DiscoveryTimeout time.Duration
	DownloadTimeout  time.Duration
	PolitenessDelay  time.Duration
	DocumentDelay    time.Duration
	UserAgent        string

	// Classification / load policy
	MaxDescriptionLen int
	MVAPowerFactor    float64
	HighCapacityMW    float64

	// Cohesion policy
	ExportTolerance float64

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	dataDir := envOr("GRIDINTEL_DATA_DIR", "data")

	cfg := Config{
		DataDir:      dataDir,
		DocumentsDir: envOr("GRIDINTEL_DOCS_DIR", filepath.Join(dataDir, "tso_documents")),
		StorePath:    envOr("GRIDINTEL_STORE_PATH", filepath.Join(dataDir, "grid_intelligence.db")),

		DiscoveryTimeout: envDuration("GRIDINTEL_DISCOVERY_TIMEOUT", 30*time.Second),
		DownloadTimeout:  envDuration("GRIDINTEL_DOWNLOAD_TIMEOUT", 60*time.Second),
		PolitenessDelay:  envDuration("GRIDINTEL_POLITENESS_DELAY", 2*time.Second),
		DocumentDelay:    envDuration("GRIDINTEL_DOCUMENT_DELAY", 3*time.Second),
		UserAgent:        envOr("GRIDINTEL_USER_AGENT", "gridintel/1.0 (grid document research)"),

		MaxDescriptionLen: envInt("GRIDINTEL_MAX_DESCRIPTION_LEN", 500),
		MVAPowerFactor:    envFloat("GRIDINTEL_MVA_POWER_FACTOR", 0.95),
		HighCapacityMW:    envFloat("GRIDINTEL_HIGH_CAPACITY_MW", 100),

		ExportTolerance: envFloat("GRIDINTEL_EXPORT_TOLERANCE", 0.80),

		PDFFallbackPdftotext: envBool("GRIDINTEL_PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxDescriptionLen <= 0 {
		cfg.MaxDescriptionLen = 500
	}
	if cfg.PolitenessDelay < 0 {
		cfg.PolitenessDelay = 0
	}
	if cfg.DocumentDelay < 0 {
		cfg.DocumentDelay = 0
	}

	return cfg
}

// SnapshotPath is the analysis snapshot JSON, the cross-stage artifact
// the loader consumes and the cohesion validator inspects.
func (c Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "grid_analysis.json")
}

// DashboardConfigPath is the generated dashboard configuration JSON.
func (c Config) DashboardConfigPath() string {
	return filepath.Join(c.DataDir, "dashboard_config.json")
}

// ExportDir is where the flat CSV exports land.
func (c Config) ExportDir() string {
	return c.DataDir
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.StorePath == "" {
		return fmt.Errorf("store path is required")
	}
	if c.MVAPowerFactor <= 0 || c.MVAPowerFactor > 1 {
		return fmt.Errorf("MVA power factor must be in (0, 1], got %v", c.MVAPowerFactor)
	}
	if c.ExportTolerance <= 0 || c.ExportTolerance > 1 {
		return fmt.Errorf("export tolerance must be in (0, 1], got %v", c.ExportTolerance)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

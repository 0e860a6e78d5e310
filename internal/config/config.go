// File path: internal/config/config.go

// Package config loads the library manifest. Settings merge in order:
// built-in defaults, the library.yaml manifest, PARTSDB_* environment
// variables, then command line flags (applied by the caller). The tool runs
// with zero configuration: every field has a working default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultManifest is the manifest filename looked up in the working
// directory when no -config flag is given.
const DefaultManifest = "library.yaml"

// Config describes one parts library build.
type Config struct {
	// Name and Description label the library inside KiCad.
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// CSVDir holds the category CSV files.
	CSVDir string `yaml:"csv_dir"`
	// Database and Descriptor are the output artifact paths.
	Database   string `yaml:"database"`
	Descriptor string `yaml:"descriptor"`

	// Symbols points at a .kicad_sym file or a directory of them;
	// Footprints at a .pretty directory or a directory containing them.
	// Both are optional and only used for reference checking.
	Symbols    string `yaml:"symbols"`
	Footprints string `yaml:"footprints"`

	// VisibleColumns are marked visible_on_add in the descriptor.
	VisibleColumns []string `yaml:"visible_columns"`
	// TimeoutSeconds is the ODBC timeout written to the descriptor.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// CheckReferences enables the symbol/footprint resolution pass.
	CheckReferences bool `yaml:"check_references"`
}

func Default() Config {
	return Config{
		Name:           "Parts Library",
		Description:    "Auto-generated component database",
		CSVDir:         ".",
		Database:       "components.db",
		Descriptor:     "components.kicad_dbl",
		VisibleColumns: []string{"value", "rating"},
		TimeoutSeconds: 2,
	}
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Name) != "" {
		result.Name = strings.TrimSpace(override.Name)
	}
	if strings.TrimSpace(override.Description) != "" {
		result.Description = strings.TrimSpace(override.Description)
	}
	if strings.TrimSpace(override.CSVDir) != "" {
		result.CSVDir = strings.TrimSpace(override.CSVDir)
	}
	if strings.TrimSpace(override.Database) != "" {
		result.Database = strings.TrimSpace(override.Database)
	}
	if strings.TrimSpace(override.Descriptor) != "" {
		result.Descriptor = strings.TrimSpace(override.Descriptor)
	}
	if strings.TrimSpace(override.Symbols) != "" {
		result.Symbols = strings.TrimSpace(override.Symbols)
	}
	if strings.TrimSpace(override.Footprints) != "" {
		result.Footprints = strings.TrimSpace(override.Footprints)
	}
	if len(override.VisibleColumns) > 0 {
		result.VisibleColumns = override.VisibleColumns
	}
	if override.TimeoutSeconds > 0 {
		result.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.CheckReferences {
		result.CheckReferences = true
	}
	return result
}

// Load resolves the effective configuration. An explicit manifest path must
// exist; the default manifest is optional.
func Load(manifestPath string) (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(manifestPath)
	explicit := path != ""
	if !explicit {
		path = DefaultManifest
	}
	fileCfg, err := loadManifest(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		cfg = cfg.Merge(fileCfg)
	}

	envCfg, err := loadEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg.Merge(envCfg), nil
}

func loadManifest(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return cfg, nil
}

func loadEnv() (Config, error) {
	cfg := Config{
		Name:        os.Getenv("PARTSDB_NAME"),
		Description: os.Getenv("PARTSDB_DESCRIPTION"),
		CSVDir:      os.Getenv("PARTSDB_CSV_DIR"),
		Database:    os.Getenv("PARTSDB_DATABASE"),
		Descriptor:  os.Getenv("PARTSDB_DESCRIPTOR"),
		Symbols:     os.Getenv("PARTSDB_SYMBOLS"),
		Footprints:  os.Getenv("PARTSDB_FOOTPRINTS"),
	}
	if cols := strings.TrimSpace(os.Getenv("PARTSDB_VISIBLE_COLUMNS")); cols != "" {
		for _, col := range strings.Split(cols, ",") {
			if trimmed := strings.TrimSpace(col); trimmed != "" {
				cfg.VisibleColumns = append(cfg.VisibleColumns, trimmed)
			}
		}
	}
	if timeout := strings.TrimSpace(os.Getenv("PARTSDB_TIMEOUT_SECONDS")); timeout != "" {
		value, err := strconv.Atoi(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse PARTSDB_TIMEOUT_SECONDS: %w", err)
		}
		cfg.TimeoutSeconds = value
	}
	if check := strings.TrimSpace(os.Getenv("PARTSDB_CHECK_REFERENCES")); check != "" {
		value, err := strconv.ParseBool(check)
		if err != nil {
			return Config{}, fmt.Errorf("parse PARTSDB_CHECK_REFERENCES: %w", err)
		}
		cfg.CheckReferences = value
	}
	return cfg, nil
}

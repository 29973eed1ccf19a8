// =============================================================================
// Purchase Order Exporter - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. Built-in defaults
//   2. The YAML file (config.yaml unless --config names another)
//   3. POEXPORT_* environment variables, optionally read from a .env file
//
// The default config.yaml may be absent; an explicitly named file may not.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .xlsx files when convert is given no files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated .csv files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives processed spreadsheets when archiving is on.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveOnSuccess moves each spreadsheet to InputArchiveDir after its
	// export is written.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	Export    ExportConfig    `yaml:"export"`
	Suppliers SuppliersConfig `yaml:"suppliers"`
	Server    ServerConfig    `yaml:"server"`
}

// ExportConfig selects the output format.
type ExportConfig struct {
	// Variant is "semicolon" or "comma".
	// Default: "semicolon"
	Variant string `yaml:"variant"`

	// StoreCode is written to the Loja column.
	// Default: "'01"
	StoreCode string `yaml:"store_code"`

	// LocationCode is written to the Local column.
	// Default: "'01"
	LocationCode string `yaml:"location_code"`
}

// SuppliersConfig selects the supplier directory.
type SuppliersConfig struct {
	// Source is "json", "csv" or "postgres".
	// Default: "json"
	Source string `yaml:"source"`

	// Path is the supplier file for the json and csv sources.
	// Default: "./fornecedor.json"
	Path string `yaml:"path"`

	// CSVDelimiter is the field separator of a csv source.
	// Default: ";"
	CSVDelimiter string `yaml:"csv_delimiter"`

	// DatabaseURL is the PostgreSQL connection string for the postgres source.
	DatabaseURL string `yaml:"database_url"`

	// Table is the supplier table for the postgres source.
	// Default: "fornecedores"
	Table string `yaml:"table"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadBytes caps the size of an uploaded spreadsheet.
	// Default: 10 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - path: The YAML file. Empty means DefaultPath, which may be missing.
//
// RETURNS:
//   - The configuration with defaults and environment overrides applied.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func Load(path string) (*Config, error) {
	var config Config

	optional := path == ""
	if optional {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overwriting variables that are already set. Missing
// files are ignored. No arguments means ".env".
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}

	if config.Export.Variant == "" {
		config.Export.Variant = string(csvwriter.VariantSemicolon)
	}
	if config.Export.StoreCode == "" {
		config.Export.StoreCode = csvwriter.DefaultPlaceholder
	}
	if config.Export.LocationCode == "" {
		config.Export.LocationCode = csvwriter.DefaultPlaceholder
	}

	if config.Suppliers.Source == "" {
		config.Suppliers.Source = "json"
	}
	if config.Suppliers.Path == "" {
		config.Suppliers.Path = "./fornecedor.json"
	}
	if config.Suppliers.CSVDelimiter == "" {
		config.Suppliers.CSVDelimiter = ";"
	}
	if config.Suppliers.Table == "" {
		config.Suppliers.Table = "fornecedores"
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = 10 << 20
	}
	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = 60 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 15 * time.Second
	}
}

// envOverrides maps environment variables to the string settings they
// replace. DATABASE_URL is accepted as an alternate name.
func envOverrides(config *Config) map[string]*string {
	return map[string]*string{
		"POEXPORT_INPUT_DIR":         &config.InputDir,
		"POEXPORT_OUTPUT_DIR":        &config.OutputDir,
		"POEXPORT_INPUT_ARCHIVE_DIR": &config.InputArchiveDir,
		"POEXPORT_LOG_LEVEL":         &config.LogLevel,
		"POEXPORT_LOG_FORMAT":        &config.LogFormat,
		"POEXPORT_EXPORT_VARIANT":    &config.Export.Variant,
		"POEXPORT_SUPPLIERS_SOURCE":  &config.Suppliers.Source,
		"POEXPORT_SUPPLIERS_PATH":    &config.Suppliers.Path,
		"POEXPORT_SUPPLIERS_TABLE":   &config.Suppliers.Table,
		"POEXPORT_DATABASE_URL":      &config.Suppliers.DatabaseURL,
		"POEXPORT_SERVER_ADDR":       &config.Server.Addr,
	}
}

func applyEnv(config *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Suppliers.DatabaseURL = v
	}
	for name, field := range envOverrides(config) {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("POEXPORT_ARCHIVE_ON_SUCCESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("POEXPORT_ARCHIVE_ON_SUCCESS: %w", err)
		}
		config.ArchiveOnSuccess = b
	}
	if v := os.Getenv("POEXPORT_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("POEXPORT_MAX_UPLOAD_BYTES: %w", err)
		}
		config.Server.MaxUploadBytes = n
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q (want text or json)", c.LogFormat)
	}

	if _, err := csvwriter.ParseVariant(c.Export.Variant); err != nil {
		return fmt.Errorf("export.variant: %w", err)
	}

	switch strings.ToLower(c.Suppliers.Source) {
	case "json", "csv":
	case "postgres":
		if strings.TrimSpace(c.Suppliers.DatabaseURL) == "" {
			return errors.New("suppliers.database_url is required for the postgres source")
		}
	default:
		return fmt.Errorf("suppliers.source %q (want json, csv or postgres)", c.Suppliers.Source)
	}

	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}
	return nil
}

// ExportOptions converts the export settings for csvwriter.
func (c *Config) ExportOptions() csvwriter.Options {
	variant, err := csvwriter.ParseVariant(c.Export.Variant)
	if err != nil {
		variant = csvwriter.VariantSemicolon
	}
	return csvwriter.Options{
		Variant:      variant,
		StoreCode:    c.Export.StoreCode,
		LocationCode: c.Export.LocationCode,
	}
}

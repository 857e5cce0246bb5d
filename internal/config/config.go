// Package config provides configuration loading and validation for the pipeline.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/catalog-etl/internal/extraction"
	"github.com/jonathan/catalog-etl/internal/types"
)

// Default values for a stock deployment.
const (
	DefaultSourceURL    = "https://cottonink.co.id/collections/women"
	DefaultFileBaseName = "fashion_collections"
	DefaultFileFormat   = "csv"
	DefaultSourceKind   = "web"
	DefaultStorageDir   = "/opt/airflow/data"
)

// Config is the run configuration of the pipeline. It can be loaded from a JSON or YAML
// file; keys mirror the DAG run parameters.
type Config struct {
	// Source
	SourceURL       string `json:"url,omitempty" yaml:"url,omitempty" validate:"required,http_url"`
	SourceKind      string `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	ProductSelector string `json:"product_selector,omitempty" yaml:"product_selector,omitempty"`

	// Output. FileFormat "csv" selects the CSV reader, anything else the JSON reader.
	// A nil FileFormat was never supplied; an empty one was supplied as "".
	// ExportJSON additionally writes {filename}.json next to the CSV file.
	FileBaseName string  `json:"filename,omitempty" yaml:"filename,omitempty" validate:"required,excludesall=/\\,ne=.,ne=.."`
	FileFormat   *string `json:"file_type,omitempty" yaml:"file_type,omitempty"`
	StorageDir   string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" validate:"required"`
	ExportJSON   bool   `json:"export_json,omitempty" yaml:"export_json,omitempty"`

	// Behavior. A zero TimeoutSeconds means no HTTP timeout.
	// DatabaseURL enables PostgreSQL run history.
	UseBrowser     bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	DatabaseURL    string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Verbose        bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the configuration used when nothing else is supplied.
func Defaults() Config {
	return Config{
		SourceURL:       DefaultSourceURL,
		SourceKind:      DefaultSourceKind,
		ProductSelector: extraction.DefaultProductSelector,
		FileBaseName:    DefaultFileBaseName,
		FileFormat:      types.StringPtr(DefaultFileFormat),
		StorageDir:      DefaultStorageDir,
	}
}

// LoadConfig loads configuration from a JSON or YAML file.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key rather than the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration can drive a run.
// FileFormat is not restricted; unknown values route to the JSON reader.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("config error: '%s' is required", fe.Field())
		case "http_url":
			return fmt.Errorf("config error: '%s' must be an http or https URL: %q", fe.Field(), fe.Value())
		case "excludesall":
			return fmt.Errorf("config error: '%s' must be a bare file name without path separators", fe.Field())
		case "ne":
			return fmt.Errorf("config error: '%s' must not be %q", fe.Field(), fe.Param())
		case "gte":
			return fmt.Errorf("config error: '%s' must be non-negative", fe.Field())
		default:
			return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("config error: %w", err)
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.SourceURL == "" {
		result.SourceURL = defaults.SourceURL
	}
	if result.SourceKind == "" {
		result.SourceKind = defaults.SourceKind
	}
	if result.ProductSelector == "" {
		result.ProductSelector = defaults.ProductSelector
	}
	if result.FileBaseName == "" {
		result.FileBaseName = defaults.FileBaseName
	}
	if result.FileFormat == nil {
		result.FileFormat = defaults.FileFormat
	}
	if result.StorageDir == "" {
		result.StorageDir = defaults.StorageDir
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FileType returns the configured file type, or the default when none was supplied.
func (c *Config) FileType() string {
	if c.FileFormat == nil {
		return DefaultFileFormat
	}
	return *c.FileFormat
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CSVPath is {data_dir}/{filename}.csv.
func (c *Config) CSVPath() string {
	return filepath.Join(c.StorageDir, c.FileBaseName+".csv")
}

// JSONPath is {data_dir}/{filename}.json.
func (c *Config) JSONPath() string {
	return filepath.Join(c.StorageDir, c.FileBaseName+".json")
}

// DatabasePath is {data_dir}/{filename}.sqlite.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.StorageDir, c.FileBaseName+".sqlite")
}

// TableName is the destination table, named after the file base name.
func (c *Config) TableName() string {
	return c.FileBaseName
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Archive   ArchiveConfig   `yaml:"archive" envconfig:"ARCHIVE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// InputConfig locates the raw shipment workbook
type InputConfig struct {
	File  string `yaml:"file" envconfig:"FILE" validate:"required"`
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// OutputConfig controls the flat-file export
type OutputConfig struct {
	CSVFile   string `yaml:"csv_file" envconfig:"CSV_FILE" validate:"required"`
	BOMPrefix bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
}

// DatabaseConfig contains the relational sink configuration
type DatabaseConfig struct {
	Enabled                bool   `yaml:"enabled" envconfig:"ENABLED"`
	URL                    string `yaml:"url" envconfig:"URL" validate:"required_if=Enabled true"`
	Table                  string `yaml:"table" envconfig:"TABLE" validate:"required"`
	BatchSize              int    `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"min=1"`
	MaxIdleConns           int    `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" validate:"min=0"`
	MaxOpenConns           int    `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS" validate:"min=0"`
	MaxConnLifetimeSeconds int    `yaml:"max_conn_lifetime_seconds" envconfig:"MAX_CONN_LIFETIME_SECONDS" validate:"min=0"`
	LogLevel               string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=silent error warn info"`
}

// ArchiveConfig contains S3-compatible object storage configuration.
// Archiving is off unless Bucket is set.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket" envconfig:"BUCKET"`
	Prefix    string `yaml:"prefix" envconfig:"PREFIX"`
	Region    string `yaml:"region" envconfig:"REGION" validate:"required_with=Bucket"`
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT" validate:"omitempty,url"`
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY"`
}

// Enabled reports whether processed files should be archived
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	PushgatewayURL string `yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL" validate:"omitempty,url"`
	JobName        string `yaml:"job_name" envconfig:"JOB_NAME" validate:"required"`
}

// PathsConfig contains file system path configuration
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// Load loads configuration from defaults, the config file if one exists,
// and environment variables
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration using configFile as the YAML layer.
// An empty configFile skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override the earlier layers
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints and normalizes a few values
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// PathResolver returns the Paths used to resolve relative file locations
func (c *Config) PathResolver() (*Paths, error) {
	if c.Paths.BaseDir != "" {
		return NewPaths(c.Paths.BaseDir), nil
	}
	return GetPaths()
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			File: DefaultInputFile,
		},
		Output: OutputConfig{
			CSVFile: DefaultOutputCSV,
		},
		Database: DatabaseConfig{
			Enabled:                true,
			URL:                    DefaultDatabaseURL,
			Table:                  DefaultShipmentTable,
			BatchSize:              DefaultInsertBatch,
			MaxIdleConns:           2,
			MaxOpenConns:           4,
			MaxConnLifetimeSeconds: 3600,
			LogLevel:               "warn",
		},
		Archive: ArchiveConfig{
			Prefix: DefaultArchivePrefix,
			Region: DefaultArchiveRegion,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			Environment:   "development",
			TraceExporter: "none",
			JobName:       DefaultMetricsJob,
		},
	}
}

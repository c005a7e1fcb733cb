package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
}

// PipelineConfig contains the knobs of the chunk-aggregation pipeline.
type PipelineConfig struct {
	RawDir        string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	ChunkSize     int    `yaml:"chunk_size" envconfig:"CHUNK_SIZE" validate:"min=1"`
	ChunkMode     string `yaml:"chunk_mode" envconfig:"CHUNK_MODE" validate:"oneof=rows time"`
	BaselineLabel string `yaml:"baseline_label" envconfig:"BASELINE_LABEL" validate:"required"`
	Workers       int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
	FullRework    bool   `yaml:"full_rework" envconfig:"FULL_REWORK"`
	MetadataRows  int    `yaml:"metadata_rows" envconfig:"METADATA_ROWS" validate:"min=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	Exporter string `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=stdout none"`
}

// Load loads configuration from environment variables (prefix PSA) and an
// optional YAML config file. Environment variables win over file values;
// defaults fill whatever neither source set.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("PSA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs fills fields the environment left unset from the file config.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Pipeline.RawDir == "" {
		envConfig.Pipeline.RawDir = fileConfig.Pipeline.RawDir
	}
	if envConfig.Pipeline.OutputDir == "" {
		envConfig.Pipeline.OutputDir = fileConfig.Pipeline.OutputDir
	}
	if envConfig.Pipeline.ChunkSize == 0 {
		envConfig.Pipeline.ChunkSize = fileConfig.Pipeline.ChunkSize
	}
	if envConfig.Pipeline.ChunkMode == "" {
		envConfig.Pipeline.ChunkMode = fileConfig.Pipeline.ChunkMode
	}
	if envConfig.Pipeline.BaselineLabel == "" {
		envConfig.Pipeline.BaselineLabel = fileConfig.Pipeline.BaselineLabel
	}
	if envConfig.Pipeline.Workers == 0 {
		envConfig.Pipeline.Workers = fileConfig.Pipeline.Workers
	}
	if !envConfig.Pipeline.FullRework {
		envConfig.Pipeline.FullRework = fileConfig.Pipeline.FullRework
	}
	if envConfig.Pipeline.MetadataRows == 0 {
		envConfig.Pipeline.MetadataRows = fileConfig.Pipeline.MetadataRows
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if !envConfig.Tracing.Enabled {
		envConfig.Tracing.Enabled = fileConfig.Tracing.Enabled
	}
	if envConfig.Tracing.Exporter == "" {
		envConfig.Tracing.Exporter = fileConfig.Tracing.Exporter
	}
	return envConfig
}

// applyDefaults fills the fields neither the environment nor the config file
// provided.
func (c *Config) applyDefaults() {
	if c.Pipeline.ChunkSize == 0 {
		c.Pipeline.ChunkSize = 100
	}
	if c.Pipeline.ChunkMode == "" {
		c.Pipeline.ChunkMode = "rows"
	}
	if c.Pipeline.BaselineLabel == "" {
		c.Pipeline.BaselineLabel = "baseline"
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.MetadataRows == 0 {
		c.Pipeline.MetadataRows = 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/psa.log"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

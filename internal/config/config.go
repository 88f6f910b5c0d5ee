package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

const defaultConfigFile = "config.yaml"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// EngineConfig represents computation engine configuration
type EngineConfig struct {
	ExecutionMode string `yaml:"execution_mode"` // auto, sequential, parallel
	Workers       int    `yaml:"workers"`        // 0 = GOMAXPROCS
	BatchSize     int    `yaml:"batch_size"`     // auto mode goes parallel above this
}

// PricingConfig holds the defaults used when a request leaves them out
type PricingConfig struct {
	DayCount        string  `yaml:"day_count"`
	RangeBuffer     float64 `yaml:"range_buffer"`
	RangeSamples    int     `yaml:"range_samples"`
	IVTolerance     float64 `yaml:"iv_tolerance"`
	IVMaxIterations int     `yaml:"iv_max_iterations"`
}

// CSVConfig represents CSV export configuration
type CSVConfig struct {
	FilenameFormat string `yaml:"filename_format"`
}

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Pricing PricingConfig `yaml:"pricing"`
	CSV     CSVConfig     `yaml:"csv"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			LogLevel: "info",
		},
		Engine: EngineConfig{
			ExecutionMode: "auto",
			BatchSize:     1000,
		},
		Pricing: PricingConfig{
			DayCount:        optionlab.CalendarDays.Name,
			RangeBuffer:     optionlab.DefaultRangeBuffer,
			RangeSamples:    optionlab.DefaultRangeSamples,
			IVTolerance:     optionlab.DefaultIVOptions.Tolerance,
			IVMaxIterations: optionlab.DefaultIVOptions.MaxIterations,
		},
		CSV: CSVConfig{
			FilenameFormat: "{timestamp}_{strategy}_{exp_date}.csv",
		},
	}
}

// Load reads an optional .env, overlays the YAML file named by OPTIONLAB_CONFIG
// (config.yaml by default) on the built-in defaults and then applies environment
// overrides. A missing YAML file is not an error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	path := getEnv("OPTIONLAB_CONFIG", defaultConfigFile)
	if err := loadYAMLConfig(path, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Logging.LogLevel = getEnv("LOG_LEVEL", cfg.Logging.LogLevel)
	cfg.Logging.LogFile = getEnv("LOG_FILE", cfg.Logging.LogFile)

	cfg.Engine.ExecutionMode = getEnv("ENGINE_EXECUTION_MODE", cfg.Engine.ExecutionMode)
	cfg.Engine.Workers = getEnvInt("ENGINE_WORKERS", cfg.Engine.Workers)
	cfg.Engine.BatchSize = getEnvInt("ENGINE_BATCH_SIZE", cfg.Engine.BatchSize)

	cfg.Pricing.DayCount = getEnv("PRICING_DAY_COUNT", cfg.Pricing.DayCount)
	cfg.Pricing.RangeBuffer = getEnvFloat("PRICING_RANGE_BUFFER", cfg.Pricing.RangeBuffer)
	cfg.Pricing.RangeSamples = getEnvInt("PRICING_RANGE_SAMPLES", cfg.Pricing.RangeSamples)

	cfg.CSV.FilenameFormat = getEnv("CSV_FILENAME_FORMAT", cfg.CSV.FilenameFormat)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := optionlab.ParseExecutionMode(c.Engine.ExecutionMode); err != nil {
		return fmt.Errorf("engine.execution_mode: %w", err)
	}
	if _, err := optionlab.ParseDayCount(c.Pricing.DayCount); err != nil {
		return fmt.Errorf("pricing.day_count: %w", err)
	}
	if c.Pricing.RangeBuffer < 0 {
		return fmt.Errorf("pricing.range_buffer must not be negative, got %v", c.Pricing.RangeBuffer)
	}
	if c.Pricing.RangeSamples < 2 {
		return fmt.Errorf("pricing.range_samples must be at least 2, got %d", c.Pricing.RangeSamples)
	}
	return nil
}

// DayCount returns the configured convention, calendar days when unset.
func (c *Config) DayCount() optionlab.DayCount {
	dc, err := optionlab.ParseDayCount(c.Pricing.DayCount)
	if err != nil {
		return optionlab.CalendarDays
	}
	return dc
}

func (c *Config) IVOptions() optionlab.IVOptions {
	return optionlab.IVOptions{
		Tolerance:     c.Pricing.IVTolerance,
		MaxIterations: c.Pricing.IVMaxIterations,
	}
}

// EngineOptions translates the worker and batch settings into engine options.
func (c *Config) EngineOptions() []optionlab.EngineOption {
	return []optionlab.EngineOption{
		optionlab.WithWorkers(c.Engine.Workers),
		optionlab.WithBatchSize(c.Engine.BatchSize),
	}
}

// NewEngine builds an engine in the configured execution mode.
func (c *Config) NewEngine(opts ...optionlab.EngineOption) *optionlab.Engine {
	return optionlab.NewEngineForced(c.Engine.ExecutionMode, append(c.EngineOptions(), opts...)...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// FormatCurveFilename formats curve export filenames using the configured template
func FormatCurveFilename(format, strategy, expDate, timestamp string) string {
	result := format
	result = strings.ReplaceAll(result, "{strategy}", strategy)
	result = strings.ReplaceAll(result, "{exp_date}", expDate)
	result = strings.ReplaceAll(result, "{timestamp}", timestamp)
	return result
}

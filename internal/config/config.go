// Package config loads run configuration from environment variables, with
// an optional YAML file overriding the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Symbols        []string `yaml:"symbols"`
	DataDir        string   `yaml:"data_dir"`
	StartDate      string   `yaml:"start_date"`
	EndDate        string   `yaml:"end_date"`
	InitialSize    int      `yaml:"initial_size"`
	AssessSize     int      `yaml:"assess_size"`
	Cumulative     bool     `yaml:"cumulative"`
	Model          string   `yaml:"model"` // "ols" or "forest"
	ForestTrees    int      `yaml:"forest_trees"`
	ForestDepth    int      `yaml:"forest_depth"`
	Seed           int64    `yaml:"seed"`
	Workers        int      `yaml:"workers"`
	OnFitError     string   `yaml:"on_fit_error"` // "abort" or "skip"
	DatabaseURL    string   `yaml:"database_url"`
	LogLevel       string   `yaml:"log_level"`
	RequestTimeout int      `yaml:"request_timeout"` // seconds
}

// Load initializes configuration from environment variables, then applies
// the YAML file at path on top if one is given.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		Symbols:        splitList(getEnvWithDefault("SYMBOLS", "XLB,XLE,XLF,XLI,XLK,XLP,XLU,XLV,XLY")),
		DataDir:        getEnvWithDefault("DATA_DIR", "data"),
		StartDate:      getEnvWithDefault("START_DATE", "1998-12-22"),
		EndDate:        os.Getenv("END_DATE"),
		InitialSize:    getEnvIntWithDefault("INITIAL_SIZE", 60),
		AssessSize:     getEnvIntWithDefault("ASSESS_SIZE", 1),
		Cumulative:     getEnvBoolWithDefault("CUMULATIVE", false),
		Model:          getEnvWithDefault("MODEL", "ols"),
		ForestTrees:    getEnvIntWithDefault("FOREST_TREES", 200),
		ForestDepth:    getEnvIntWithDefault("FOREST_DEPTH", 5),
		Seed:           int64(getEnvIntWithDefault("SEED", 42)),
		Workers:        getEnvIntWithDefault("WORKERS", 1),
		OnFitError:     getEnvWithDefault("ON_FIT_ERROR", "abort"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		RequestTimeout: getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}
	if c.InitialSize < 1 || c.AssessSize < 1 {
		return fmt.Errorf("window sizes must be >= 1, got initial %d assess %d", c.InitialSize, c.AssessSize)
	}
	switch c.Model {
	case "ols", "forest":
	default:
		return fmt.Errorf("unknown model %q", c.Model)
	}
	switch c.OnFitError {
	case "abort", "skip":
	default:
		return fmt.Errorf("on_fit_error must be abort or skip, got %q", c.OnFitError)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

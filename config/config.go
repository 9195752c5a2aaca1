// Package config loads the coursematch YAML configuration file.
//
// Values of the form ${VAR} or ${VAR:-default} are expanded from the
// environment before parsing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/poiesic/coursematch/core"
	"gopkg.in/yaml.v3"
)

// Catalog formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type CatalogConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, sqlite (default: from the file extension)
	Table  string `yaml:"table"`  // sqlite only (default: courses)
}

type VectorizerConfig struct {
	NgramMin    int     `yaml:"ngram_min"`
	NgramMax    int     `yaml:"ngram_max"`
	MaxFeatures int     `yaml:"max_features"`
	MinDF       int     `yaml:"min_df"`
	MaxDF       float64 `yaml:"max_df"`
	StopWords   *bool   `yaml:"stop_words"` // default: true
	Workers     int     `yaml:"workers"`    // encoding workers, 0 or 1 = sequential
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads, expands, defaults and validates the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load for config file contents.
func Parse(data []byte) (Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return Config{}, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Decode expands environment variables and unmarshals data without
// applying defaults, so callers can layer overrides before validating.
func Decode(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
// The catalog path still has to be set before it validates.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	defaults := core.DefaultBuildConfig()

	if c.Database.Path == "" && !c.Database.InMemory {
		c.Database.Path = "coursematch.db"
	}
	if c.Catalog.Format == "" && c.Catalog.Path != "" {
		c.Catalog.Format = formatFromPath(c.Catalog.Path)
	}
	if c.Catalog.Table == "" {
		c.Catalog.Table = "courses"
	}
	if c.Vectorizer.NgramMin <= 0 {
		c.Vectorizer.NgramMin = defaults.NgramMin
	}
	if c.Vectorizer.NgramMax <= 0 {
		c.Vectorizer.NgramMax = defaults.NgramMax
	}
	if c.Vectorizer.MaxFeatures <= 0 {
		c.Vectorizer.MaxFeatures = defaults.MaxFeatures
	}
	if c.Vectorizer.MinDF <= 0 {
		c.Vectorizer.MinDF = defaults.MinDF
	}
	if c.Vectorizer.MaxDF <= 0 {
		c.Vectorizer.MaxDF = defaults.MaxDF
	}
	if c.Vectorizer.StopWords == nil {
		stopWords := defaults.StopWords
		c.Vectorizer.StopWords = &stopWords
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("database.path is required unless database.in_memory is set")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	switch c.Catalog.Format {
	case FormatCSV, FormatSQLite:
	default:
		return fmt.Errorf("catalog.format must be %q or %q, got %q", FormatCSV, FormatSQLite, c.Catalog.Format)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if err := c.BuildConfig().Validate(); err != nil {
		return fmt.Errorf("vectorizer: %w", err)
	}
	return nil
}

// BuildConfig returns the vectorizer section as a core.BuildConfig.
func (c *Config) BuildConfig() core.BuildConfig {
	stopWords := core.DefaultBuildConfig().StopWords
	if c.Vectorizer.StopWords != nil {
		stopWords = *c.Vectorizer.StopWords
	}
	return core.BuildConfig{
		NgramMin:    c.Vectorizer.NgramMin,
		NgramMax:    c.Vectorizer.NgramMax,
		MaxFeatures: c.Vectorizer.MaxFeatures,
		MinDF:       c.Vectorizer.MinDF,
		MaxDF:       c.Vectorizer.MaxDF,
		StopWords:   stopWords,
	}
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", level)
	}
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

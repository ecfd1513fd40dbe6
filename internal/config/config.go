package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/notewise/internal/model"
)

// EnvLogLevel overrides Log.Level when set.
const EnvLogLevel = "NOTEWISE_LOG_LEVEL"

// Config represents the top-level notewise.yaml configuration.
type Config struct {
	Business       BusinessConfig       `yaml:"business"`
	Classification ClassificationConfig `yaml:"classification"`
	Rules          string               `yaml:"rules,omitempty"` // rule-table YAML, relative to the config file
	Log            LogConfig            `yaml:"log"`
	Batch          BatchConfig          `yaml:"batch"`
}

// BusinessConfig identifies the entity whose statements are prepared.
type BusinessConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // e.g. "Trading" or "Manufacturing"
}

// ClassificationConfig tunes the classifiers.
type ClassificationConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	FallbackSign   string  `yaml:"fallback_sign"` // "Dr" or "Cr"
	NoteLevel      int     `yaml:"note_level"`    // hierarchy level used when no note mapping matches
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// BatchConfig bounds concurrent engagement runs.
type BatchConfig struct {
	Parallelism int `yaml:"parallelism"`
}

// Load reads a notewise.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new engagement.
func Default(businessName, businessType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
			Type: businessType,
		},
		Classification: ClassificationConfig{
			FuzzyThreshold: 0.6,
			FallbackSign:   string(model.Dr),
			NoteLevel:      int(model.H3),
		},
		Log: LogConfig{
			Level: "info",
		},
		Batch: BatchConfig{
			Parallelism: 4,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if t := c.Classification.FuzzyThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("classification.fuzzy_threshold %v outside [0, 1]", t))
	}
	if s := c.Classification.FallbackSign; s != "" {
		if _, ok := model.ParseSign(s); !ok {
			errs = append(errs, fmt.Errorf("classification.fallback_sign %q is not Dr or Cr", s))
		}
	}
	if l := c.Classification.NoteLevel; l < 0 || l > int(model.H5) {
		errs = append(errs, fmt.Errorf("classification.note_level %d outside 1..5", l))
	}
	if c.Batch.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("batch.parallelism %d is negative", c.Batch.Parallelism))
	}
	return errors.Join(errs...)
}

// FallbackSign returns the configured default side, Dr when unset.
func (c *Config) FallbackSign() model.BalanceSign {
	if s, ok := model.ParseSign(c.Classification.FallbackSign); ok {
		return s
	}
	return model.Dr
}

// NoteLevel returns the fallback note level, H3 when unset.
func (c *Config) NoteLevel() model.Level {
	if c.Classification.NoteLevel == 0 {
		return model.H3
	}
	return model.Level(c.Classification.NoteLevel)
}

// RulesPath resolves Rules against the directory holding the config file.
// It returns "" when no rule table is configured.
func (c *Config) RulesPath(configPath string) string {
	if c.Rules == "" {
		return ""
	}
	if filepath.IsAbs(c.Rules) {
		return c.Rules
	}
	return filepath.Join(filepath.Dir(configPath), c.Rules)
}

// ApplyEnv loads an optional .env file from dir into the process
// environment, then applies environment overrides to c. Variables already
// set in the environment win over the file.
func (c *Config) ApplyEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Log.Level = lvl
	}
	return nil
}

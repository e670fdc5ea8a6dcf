package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/bundlecheck/internal/bundle"
	"github.com/lehigh-university-libraries/bundlecheck/internal/catalog"
	"github.com/lehigh-university-libraries/bundlecheck/internal/logging"
	"github.com/lehigh-university-libraries/bundlecheck/internal/ownership"
	"github.com/lehigh-university-libraries/bundlecheck/internal/report"
)

// Environment variables read by Load
const (
	EnvCatalogs       = "BUNDLECHECK_CATALOGS"
	EnvFuzzyThreshold = "BUNDLECHECK_FUZZY_THRESHOLD"
	EnvLogLevel       = "BUNDLECHECK_LOG_LEVEL"
)

// searchPaths are tried in order when no config file is named
var searchPaths = []string{"bundlecheck.yaml", "bundlecheck.yml", "bundlecheck.toml"}

// Matching tunes the ownership classifier and volume expansion
type Matching struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" toml:"fuzzy_threshold"`
	Workers        int     `yaml:"workers" toml:"workers"`
	MaxVolumeSpan  int     `yaml:"max_volume_span" toml:"max_volume_span"`
}

// Output picks the report format and optional destination file
type Output struct {
	Format string `yaml:"format" toml:"format"`
	Path   string `yaml:"path" toml:"path"`
}

// Logging configures the slog handler
type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Config holds every setting of a bundlecheck run
type Config struct {
	Catalogs      []string         `yaml:"catalogs" toml:"catalogs"`
	DefaultBundle string           `yaml:"default_bundle" toml:"default_bundle"`
	Matching      Matching         `yaml:"matching" toml:"matching"`
	Output        Output           `yaml:"output" toml:"output"`
	Logging       Logging          `yaml:"logging" toml:"logging"`
	Selectors     bundle.Selectors `yaml:"selectors" toml:"selectors"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Catalogs:      []string{},
		DefaultBundle: catalog.DefaultBundleName,
		Matching: Matching{
			FuzzyThreshold: ownership.DefaultThreshold,
			Workers:        4,
			MaxVolumeSpan:  500,
		},
		Output: Output{
			Format: string(report.FormatText),
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers the defaults, a YAML or TOML config file and the
// environment, then validates the result. An empty path searches the
// working directory; a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if resolved != "" {
		file, err := readFile(resolved)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config %s: %w", resolved, err)
		}
		slog.Debug("Loaded config file", "path", resolved)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("failed to stat config: %w", err)
		}
		return path, nil
	}

	for _, candidate := range searchPaths {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat config: %w", err)
		}
	}

	return "", nil
}

func readFile(path string) (Config, error) {
	var file Config

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		return file, fmt.Errorf("unsupported config format: %s (supported: .yaml, .yml, .toml)", filepath.Ext(path))
	}
	if err != nil {
		return file, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return file, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvCatalogs)); v != "" {
		c.Catalogs = splitList(v)
	}

	if v := strings.TrimSpace(os.Getenv(EnvFuzzyThreshold)); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFuzzyThreshold, err)
		}
		c.Matching.FuzzyThreshold = threshold
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// splitList accepts comma separated values as well as the OS path list
// separator
func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == filepath.ListSeparator
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Validate rejects settings no run could use
func (c *Config) Validate() error {
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return fmt.Errorf("matching.fuzzy_threshold must be between 0 and 100, got %v", c.Matching.FuzzyThreshold)
	}
	if c.Matching.Workers < 0 {
		return fmt.Errorf("matching.workers must not be negative, got %d", c.Matching.Workers)
	}
	if c.Matching.MaxVolumeSpan < 0 {
		return fmt.Errorf("matching.max_volume_span must not be negative, got %d", c.Matching.MaxVolumeSpan)
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

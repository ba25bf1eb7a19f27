package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all blurple configuration.
type Config struct {
	// Formatter knobs
	Format FormatConfig `yaml:"format"`

	// Uwu transformer knobs
	Uwu UwuConfig `yaml:"uwu"`

	// Directory watcher
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// FormatConfig configures the formatter.
type FormatConfig struct {
	// Target length for packed statement lines.
	LineBudget int `yaml:"line_budget"`

	// Bounds for the per-suite indent step.
	IndentMin int `yaml:"indent_min"`
	IndentMax int `yaml:"indent_max"`

	// Seed for the whitespace jitter; 0 draws from the clock per run.
	Seed int64 `yaml:"seed"`
}

// UwuConfig configures the uwu transformer.
type UwuConfig struct {
	StutterStrength float64 `yaml:"stutter_strength"`
	EmojiStrength   float64 `yaml:"emoji_strength"`
}

// WatchConfig configures the format-on-save watcher.
type WatchConfig struct {
	Dirs         []string `yaml:"dirs"`
	Extensions   []string `yaml:"extensions"`
	Debounce     string   `yaml:"debounce"`
	OutputSuffix string   `yaml:"output_suffix"`
}

// LoggingConfig configures logging output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Format: FormatConfig{
			LineBudget: 50,
			IndentMin:  2,
			IndentMax:  4,
		},
		Uwu: UwuConfig{
			StutterStrength: 0.2,
			EmojiStrength:   0.1,
		},
		Watch: WatchConfig{
			Dirs:         []string{"."},
			Extensions:   []string{".py"},
			Debounce:     "500ms",
			OutputSuffix: ".blurple.py",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BLURPLE_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Format.Seed = seed
		}
	}
	if v := os.Getenv("BLURPLE_LINE_BUDGET"); v != "" {
		if budget, err := strconv.Atoi(v); err == nil && budget > 0 {
			c.Format.LineBudget = budget
		}
	}
	if v := os.Getenv("BLURPLE_WATCH_DIRS"); v != "" {
		c.Watch.Dirs = splitList(v)
	}
	if v := os.Getenv("BLURPLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetDebounce returns the watch debounce window as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Format.LineBudget <= 0 {
		return fmt.Errorf("format.line_budget must be positive, got %d", c.Format.LineBudget)
	}
	if c.Format.IndentMin < 1 {
		return fmt.Errorf("format.indent_min must be at least 1, got %d", c.Format.IndentMin)
	}
	if c.Format.IndentMax < c.Format.IndentMin {
		return fmt.Errorf("format.indent_max %d is below format.indent_min %d",
			c.Format.IndentMax, c.Format.IndentMin)
	}
	if c.Uwu.StutterStrength < 0 || c.Uwu.StutterStrength > 1 {
		return fmt.Errorf("uwu.stutter_strength must be within [0, 1], got %g", c.Uwu.StutterStrength)
	}
	if c.Uwu.EmojiStrength < 0 || c.Uwu.EmojiStrength > 1 {
		return fmt.Errorf("uwu.emoji_strength must be within [0, 1], got %g", c.Uwu.EmojiStrength)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce: %w", err)
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("watch extension %q must start with a dot", ext)
		}
	}
	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}

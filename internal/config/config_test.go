package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearBlurpleEnv blanks every override so Load tests see the file alone.
func clearBlurpleEnv(t *testing.T) {
	t.Setenv("BLURPLE_SEED", "")
	t.Setenv("BLURPLE_LINE_BUDGET", "")
	t.Setenv("BLURPLE_WATCH_DIRS", "")
	t.Setenv("BLURPLE_LOG_LEVEL", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Format.LineBudget != 50 {
		t.Errorf("expected LineBudget=50, got %d", cfg.Format.LineBudget)
	}
	if cfg.Format.IndentMin != 2 || cfg.Format.IndentMax != 4 {
		t.Errorf("expected indent bounds 2..4, got %d..%d", cfg.Format.IndentMin, cfg.Format.IndentMax)
	}
	if cfg.Watch.OutputSuffix != ".blurple.py" {
		t.Errorf("expected OutputSuffix=.blurple.py, got %s", cfg.Watch.OutputSuffix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearBlurpleEnv(t)
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Format.LineBudget = 72
	cfg.Format.Seed = 1234
	cfg.Watch.Dirs = []string{"src", "scripts"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Format.LineBudget != 72 {
		t.Errorf("expected LineBudget=72, got %d", loaded.Format.LineBudget)
	}
	if loaded.Format.Seed != 1234 {
		t.Errorf("expected Seed=1234, got %d", loaded.Format.Seed)
	}
	if len(loaded.Watch.Dirs) != 2 || loaded.Watch.Dirs[0] != "src" {
		t.Errorf("expected watch dirs [src scripts], got %v", loaded.Watch.Dirs)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearBlurpleEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Format.LineBudget != 50 {
		t.Errorf("expected defaults, got LineBudget=%d", cfg.Format.LineBudget)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearBlurpleEnv(t)
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	partial := "format:\n  line_budget: 60\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Format.LineBudget != 60 {
		t.Errorf("expected LineBudget=60, got %d", cfg.Format.LineBudget)
	}
	if cfg.Format.IndentMin != 2 {
		t.Errorf("unset field lost its default, IndentMin=%d", cfg.Format.IndentMin)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unset section lost its default, Level=%s", cfg.Logging.Level)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml {"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero budget", func(c *Config) { c.Format.LineBudget = 0 }, "line_budget"},
		{"zero indent", func(c *Config) { c.Format.IndentMin = 0 }, "indent_min"},
		{"inverted indents", func(c *Config) { c.Format.IndentMin = 5 }, "indent_max"},
		{"stutter range", func(c *Config) { c.Uwu.StutterStrength = 1.5 }, "stutter_strength"},
		{"emoji range", func(c *Config) { c.Uwu.EmojiStrength = -0.1 }, "emoji_strength"},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "fast" }, "debounce"},
		{"bad extension", func(c *Config) { c.Watch.Extensions = []string{"py"} }, "dot"},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, "logging level"},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: Validate accepted the config", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestGetDebounce(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetDebounce(); got.Milliseconds() != 500 {
		t.Errorf("default debounce = %v, want 500ms", got)
	}
	cfg.Watch.Debounce = "2s"
	if got := cfg.GetDebounce(); got.Seconds() != 2 {
		t.Errorf("debounce = %v, want 2s", got)
	}
	cfg.Watch.Debounce = "nonsense"
	if got := cfg.GetDebounce(); got.Milliseconds() != 500 {
		t.Errorf("fallback debounce = %v, want 500ms", got)
	}
}

package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"syncell/pkg/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Canvas.Height != 120 || cfg.Canvas.Width != 120 {
		t.Errorf("canvas = %dx%d, want 120x120", cfg.Canvas.Height, cfg.Canvas.Width)
	}
	if cfg.Render.MinIntensity != 8500 {
		t.Errorf("MinIntensity = %d, want 8500", cfg.Render.MinIntensity)
	}
	if cfg.Sample.Count != 15 {
		t.Errorf("Count = %d, want 15", cfg.Sample.Count)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Error("missing file should yield the defaults")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "syncell.yaml")

	cfg := DefaultConfig()
	cfg.Canvas.Height = 256
	cfg.Render.IrregularEdge = true
	cfg.Sample.Seed = 42
	cfg.Sample.Aspect = FloatRange{Min: 1.2, Max: 1.8}
	cfg.Output.Manifest = ""

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded config differs:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	content := "canvas:\n  height: 64\nsample:\n  count: 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Canvas.Height != 64 || cfg.Canvas.Width != 120 {
		t.Errorf("canvas = %dx%d, want 64x120", cfg.Canvas.Height, cfg.Canvas.Width)
	}
	if cfg.Sample.Count != 3 || cfg.Sample.Size.Max != 30 {
		t.Errorf("sample section not merged with defaults: %+v", cfg.Sample)
	}
}

func TestLoadConfigExplicitZeroKeepProbability(t *testing.T) {
	dir := t.TempDir()

	omitted := filepath.Join(dir, "omitted.yaml")
	if err := os.WriteFile(omitted, []byte("render:\n  irregularEdge: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(omitted)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Render.KeepProbability != 0.98 {
		t.Errorf("omitted keepProbability = %v, want the 0.98 default", cfg.Render.KeepProbability)
	}

	zero := filepath.Join(dir, "zero.yaml")
	if err := os.WriteFile(zero, []byte("render:\n  keepProbability: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(zero)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("explicit keepProbability 0 should be rejected, got %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("canvas: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncell.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero height", func(c *Config) { c.Canvas.Height = 0 }},
		{"negative width", func(c *Config) { c.Canvas.Width = -3 }},
		{"negative sigma", func(c *Config) { c.Render.SigmaRow = -1 }},
		{"keep probability above one", func(c *Config) { c.Render.KeepProbability = 1.5 }},
		{"negative erosion radius", func(c *Config) { c.Render.ErosionRadius = -1 }},
		{"zero keep probability", func(c *Config) { c.Render.KeepProbability = 0 }},
		{"NaN keep probability", func(c *Config) { c.Render.KeepProbability = math.NaN() }},
		{"zero erosion radius", func(c *Config) { c.Render.ErosionRadius = 0 }},
		{"size above maximum", func(c *Config) { c.Sample.Size = IntRange{Min: 10, Max: 5000} }},
		{"negative count", func(c *Config) { c.Sample.Count = -1 }},
		{"empty row range", func(c *Config) { c.Sample.Row = IntRange{Min: 5, Max: 5} }},
		{"intensity above 16 bits", func(c *Config) { c.Sample.Intensity.Max = 70000 }},
		{"zero size", func(c *Config) { c.Sample.Size = IntRange{Min: 0, Max: 4} }},
		{"zero aspect", func(c *Config) { c.Sample.Aspect = FloatRange{Min: 0, Max: 1} }},
		{"reversed aspect", func(c *Config) { c.Sample.Aspect = FloatRange{Min: 2, Max: 1} }},
		{"missing label path", func(c *Config) { c.Output.Label = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.SigmaRow = 5
	cfg.Render.OffCenter = true

	opts := cfg.RenderOptions()
	if opts.Sigma.Row != 5 || opts.Sigma.Col != 7 {
		t.Errorf("sigma = %+v", opts.Sigma)
	}
	if !opts.OffCenter || opts.IrregularEdge {
		t.Errorf("modes = %+v", opts)
	}
	if opts.Source != nil {
		t.Error("source should be left to the caller")
	}
}

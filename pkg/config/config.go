// Package config provides configuration loading and management for syncell.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"syncell/pkg/cell"
	"syncell/pkg/errors"
	"syncell/pkg/gaussian"
)

// IntRange is a half-open integer interval [Min, Max).
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is a half-open interval [Min, Max).
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Canvas dimensions
	Canvas struct {
		Height int `yaml:"height"`
		Width  int `yaml:"width"`
	} `yaml:"canvas"`

	// Rendering parameters shared by every generated cell
	Render struct {
		// MinIntensity separates foreground from background after shaping
		MinIntensity int `yaml:"minIntensity"`

		// SigmaRow and SigmaCol are the spreads of the Gaussian field
		SigmaRow float64 `yaml:"sigmaRow"`
		SigmaCol float64 `yaml:"sigmaCol"`

		// OffCenter moves the Gaussian peak to a random foreground pixel
		OffCenter bool `yaml:"offCenter"`

		// IrregularEdge enables erosion plus random speckle on the mask edge
		IrregularEdge bool `yaml:"irregularEdge"`

		// KeepProbability is the per-pixel keep chance for irregular edges,
		// in (0, 1]. Omit the key to keep the default of 0.98.
		KeepProbability float64 `yaml:"keepProbability"`

		// ErosionRadius is the structuring disk radius for irregular edges,
		// at least 1. Omit the key to keep the default of 3.
		ErosionRadius int `yaml:"erosionRadius"`
	} `yaml:"render"`

	// Random sampling of cell parameters for the generate command
	Sample struct {
		// Count is how many cells to add
		Count int `yaml:"count"`

		// Seed initializes the random source; 0 picks a time-based seed
		Seed uint64 `yaml:"seed"`

		Row       IntRange   `yaml:"row"`
		Col       IntRange   `yaml:"col"`
		Intensity IntRange   `yaml:"intensity"`
		Size      IntRange   `yaml:"size"`
		Aspect    FloatRange `yaml:"aspect"`
		Rotation  IntRange   `yaml:"rotation"`
	} `yaml:"sample"`

	// Output parameters
	Output struct {
		// Image is the path of the 16-bit intensity image (.png or .tif)
		Image string `yaml:"image"`

		// Label is the path of the 8-bit label image
		Label string `yaml:"label"`

		// Manifest is the path of the YAML run manifest; empty disables it
		Manifest string `yaml:"manifest"`

		// LabelPreview is an optional contrast-stretched copy of the label image
		LabelPreview string `yaml:"labelPreview,omitempty"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Canvas.Height = 120
	cfg.Canvas.Width = 120

	cfg.Render.MinIntensity = cell.DefaultMinIntensity
	cfg.Render.SigmaRow = gaussian.DefaultSigma
	cfg.Render.SigmaCol = gaussian.DefaultSigma
	cfg.Render.KeepProbability = cell.DefaultKeepProbability
	cfg.Render.ErosionRadius = cell.DefaultErosionRadius

	cfg.Sample.Count = 15
	cfg.Sample.Row = IntRange{Min: 10, Max: 110}
	cfg.Sample.Col = IntRange{Min: 40, Max: 110}
	cfg.Sample.Intensity = IntRange{Min: 20000, Max: 60000}
	cfg.Sample.Size = IntRange{Min: 10, Max: 30}
	cfg.Sample.Aspect = FloatRange{Min: 1, Max: 2}
	cfg.Sample.Rotation = IntRange{Min: 0, Max: 359}

	cfg.Output.Image = "cellimage.png"
	cfg.Output.Label = "celllabel.png"
	cfg.Output.Manifest = "cells.yaml"
	cfg.Output.Verbose = false

	return cfg
}

// RenderOptions converts the render section into cell rendering options.
// The random source is left for the caller to set.
func (c *Config) RenderOptions() cell.Options {
	return cell.Options{
		Sigma:           gaussian.Sigma{Row: c.Render.SigmaRow, Col: c.Render.SigmaCol},
		OffCenter:       c.Render.OffCenter,
		IrregularEdge:   c.Render.IrregularEdge,
		KeepProbability: c.Render.KeepProbability,
		ErosionRadius:   c.Render.ErosionRadius,
	}
}

// Validate reports the first setting that cannot produce a valid run.
func (c *Config) Validate() error {
	if c.Canvas.Height <= 0 || c.Canvas.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"canvas dimensions must be positive, got %dx%d", c.Canvas.Height, c.Canvas.Width)
	}
	if c.Render.SigmaRow < 0 || c.Render.SigmaCol < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sigma must not be negative")
	}
	// The renderer reads zero as "use the default", so an explicit zero
	// here would be replaced without notice.
	if !(c.Render.KeepProbability > 0 && c.Render.KeepProbability <= 1) {
		return errors.New(errors.ErrCodeInvalidInput,
			"keepProbability must lie in (0, 1], got %v", c.Render.KeepProbability)
	}
	if c.Render.ErosionRadius < 1 {
		return errors.New(errors.ErrCodeInvalidInput,
			"erosionRadius must be at least 1, got %d", c.Render.ErosionRadius)
	}
	if c.Sample.Count < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sample count must not be negative")
	}

	ints := []struct {
		name string
		r    IntRange
	}{
		{"row", c.Sample.Row},
		{"col", c.Sample.Col},
		{"intensity", c.Sample.Intensity},
		{"size", c.Sample.Size},
		{"rotation", c.Sample.Rotation},
	}
	for _, ir := range ints {
		if ir.r.Max <= ir.r.Min {
			return errors.New(errors.ErrCodeInvalidInput,
				"sample %s range [%d, %d) is empty", ir.name, ir.r.Min, ir.r.Max)
		}
	}
	if c.Sample.Intensity.Min < 0 || c.Sample.Intensity.Max > cell.MaxIntensity+1 {
		return errors.New(errors.ErrCodeInvalidInput,
			"sample intensity range must stay within [0, %d]", cell.MaxIntensity)
	}
	if c.Sample.Size.Min <= 0 || c.Sample.Size.Max-1 > cell.MaxSize {
		return errors.New(errors.ErrCodeInvalidInput, "sample sizes must lie in [1, %d]", cell.MaxSize)
	}
	if !(c.Sample.Aspect.Min > 0) || c.Sample.Aspect.Max < c.Sample.Aspect.Min {
		return errors.New(errors.ErrCodeInvalidInput,
			"sample aspect range [%v, %v) must be positive and ordered", c.Sample.Aspect.Min, c.Sample.Aspect.Max)
	}

	if c.Output.Image == "" || c.Output.Label == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output image and label paths are required")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "error parsing config file %s", configPath)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

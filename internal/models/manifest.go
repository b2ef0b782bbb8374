package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"syncell/pkg/canvas"
	"syncell/pkg/cell"
)

// CellRecord describes one canvas slot as written to the run manifest
type CellRecord struct {
	// ID is the label value the cell was painted with
	ID int `yaml:"id"`

	// Deleted marks an emptied slot; the remaining fields are then zero
	Deleted bool `yaml:"deleted,omitempty"`

	Row          int     `yaml:"row,omitempty"`
	Col          int     `yaml:"col,omitempty"`
	Intensity    int     `yaml:"intensity,omitempty"`
	Size         int     `yaml:"size,omitempty"`
	AspectRatio  float64 `yaml:"aspectRatio,omitempty"`
	Rotation     float64 `yaml:"rotation,omitempty"`
	MinIntensity int     `yaml:"minIntensity,omitempty"`

	// Area and MeanIntensity describe the rendered footprint before any
	// occlusion by later cells
	Area          int     `yaml:"area,omitempty"`
	MeanIntensity float64 `yaml:"meanIntensity,omitempty"`
}

// Manifest records how a synthetic image was produced
type Manifest struct {
	Height int    `yaml:"height"`
	Width  int    `yaml:"width"`
	Seed   uint64 `yaml:"seed"`

	// Image and Label are the paths of the written rasters
	Image string `yaml:"image"`
	Label string `yaml:"label"`

	Issued     int `yaml:"issued"`
	Live       int `yaml:"live"`
	Foreground int `yaml:"foreground"`

	Cells []CellRecord `yaml:"cells"`
}

// NewCellRecord builds the record for slot index of a canvas. A nil cell
// yields a deleted record.
func NewCellRecord(index int, c *cell.Cell) CellRecord {
	rec := CellRecord{ID: index + 1}
	if c == nil {
		rec.Deleted = true
		return rec
	}

	s := c.Describe()
	rec.Row = s.Spec.Centroid.Row
	rec.Col = s.Spec.Centroid.Col
	rec.Intensity = s.Spec.Intensity
	rec.Size = s.Spec.Size
	rec.AspectRatio = s.Spec.AspectRatio
	rec.Rotation = s.Spec.Rotation
	rec.MinIntensity = s.Spec.MinIntensity
	rec.Area = s.Area
	rec.MeanIntensity = s.MeanIntensity
	return rec
}

// NewManifest captures the current state of cv.
func NewManifest(cv *canvas.Canvas, seed uint64) *Manifest {
	s := cv.Describe()
	m := &Manifest{
		Height:     s.Height,
		Width:      s.Width,
		Seed:       seed,
		Issued:     s.Issued,
		Live:       s.Live,
		Foreground: s.Foreground,
	}
	for i, c := range cv.Slots() {
		m.Cells = append(m.Cells, NewCellRecord(i, c))
	}
	return m
}

// Save writes the manifest as YAML
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating manifest directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by Save
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("error parsing manifest: %w", err)
	}
	return m, nil
}

// Spec rebuilds the cell specification of a live record.
func (r CellRecord) Spec() cell.Spec {
	return cell.Spec{
		Centroid:     cell.Point{Row: r.Row, Col: r.Col},
		Intensity:    r.Intensity,
		Size:         r.Size,
		AspectRatio:  r.AspectRatio,
		Rotation:     r.Rotation,
		MinIntensity: r.MinIntensity,
	}
}

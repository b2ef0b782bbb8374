package cell

import (
	"math"

	"syncell/pkg/errors"
)

// DefaultMinIntensity is the threshold separating foreground from background
// after Gaussian shaping, picked by visual inspection of rendered cells.
const DefaultMinIntensity = 8500

// MaxIntensity is the largest intensity a 16-bit raster can hold.
const MaxIntensity = math.MaxUint16

// MaxSize is the largest disk radius Render accepts.
const MaxSize = 1024

// MaxExtent bounds the number of rows an aspect ratio may stretch a cell to.
const MaxExtent = 4 * MaxSize

// MaxCoordinate bounds the magnitude of a centroid component. Patch bounds
// are kept in canvas coordinates and must not overflow int.
const MaxCoordinate = math.MaxInt / 4

// Point is an integer position in canvas coordinates.
type Point struct {
	Row int
	Col int
}

// Spec fully describes one cell before rendering.
type Spec struct {
	// Centroid is where the center of the rendered patch lands on the canvas.
	Centroid Point

	// Intensity is the peak intensity, within [0, MaxIntensity].
	Intensity int

	// Size is the disk radius in pixels before any deformation.
	Size int

	// AspectRatio stretches the cell along the row axis; 1 keeps it circular.
	AspectRatio float64

	// Rotation is the counter-clockwise rotation in degrees.
	Rotation float64

	// MinIntensity is the lowest patch value that still counts as the cell.
	// Pixels must be strictly brighter to enter the mask.
	MinIntensity int
}

// NewSpec returns a circular, unrotated spec with the default threshold.
func NewSpec(centroid Point, intensity, size int) Spec {
	return Spec{
		Centroid:     centroid,
		Intensity:    intensity,
		Size:         size,
		AspectRatio:  1,
		Rotation:     0,
		MinIntensity: DefaultMinIntensity,
	}
}

// Validate checks s without allocating any raster. The returned error
// carries errors.ErrCodeInvalidInput.
func (s Spec) Validate() error {
	if s.Intensity < 0 || s.Intensity > MaxIntensity {
		return errors.New(errors.ErrCodeInvalidInput,
			"intensity %d outside 16-bit range [0, %d]", s.Intensity, MaxIntensity)
	}
	if s.Size <= 0 || s.Size > MaxSize {
		return errors.New(errors.ErrCodeInvalidInput, "cell size must be an integer in [1, %d], got %d", MaxSize, s.Size)
	}
	if !(s.AspectRatio > 0) || math.IsInf(s.AspectRatio, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "aspect ratio must be positive and finite, got %v", s.AspectRatio)
	}
	if rows := float64(s.Size) * s.AspectRatio; rows > MaxExtent {
		return errors.New(errors.ErrCodeInvalidInput,
			"aspect ratio %v stretches the cell to %.0f rows, more than %d", s.AspectRatio, rows, MaxExtent)
	}
	if !inRange(s.Centroid.Row) || !inRange(s.Centroid.Col) {
		return errors.New(errors.ErrCodeInvalidInput,
			"centroid (%d, %d) is further than %d from the origin", s.Centroid.Row, s.Centroid.Col, MaxCoordinate)
	}
	if math.IsNaN(s.Rotation) || math.IsInf(s.Rotation, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "rotation must be a finite number of degrees, got %v", s.Rotation)
	}
	return nil
}

func inRange(v int) bool {
	return v >= -MaxCoordinate && v <= MaxCoordinate
}

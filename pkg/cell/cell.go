package cell

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"

	"syncell/pkg/raster"
)

// Cell is a rendered cell. Its patch and mask share the same bounds, given
// in canvas coordinates. A Cell never changes after Render returns
// it; callers must treat Patch and Mask as read-only.
type Cell struct {
	spec  Spec
	patch *image.Gray16
	mask  *raster.Mask
}

// Spec returns the specification the cell was rendered from.
func (c *Cell) Spec() Spec { return c.spec }

// Patch returns the aligned intensity patch.
func (c *Cell) Patch() *image.Gray16 { return c.patch }

// Mask returns the aligned foreground mask.
func (c *Cell) Mask() *raster.Mask { return c.mask }

// Bounds returns the extent of the aligned patch in canvas coordinates.
func (c *Cell) Bounds() image.Rectangle { return c.patch.Bounds() }

// Summary describes a rendered cell.
type Summary struct {
	Spec Spec

	// Rows and Cols are the aligned patch dimensions.
	Rows int
	Cols int

	// Area is the number of foreground pixels.
	Area int

	// MeanIntensity and StdIntensity are computed over foreground pixels.
	MeanIntensity float64
	StdIntensity  float64
}

// Describe summarizes the cell's footprint and intensity distribution.
func (c *Cell) Describe() Summary {
	b := c.patch.Bounds()
	values := make([]float64, 0, c.mask.Count())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c.mask.At(x, y) {
				values = append(values, float64(c.patch.Gray16At(x, y).Y))
			}
		}
	}

	s := Summary{
		Spec: c.spec,
		Rows: b.Dy(),
		Cols: b.Dx(),
		Area: len(values),
	}
	switch len(values) {
	case 0:
	case 1:
		s.MeanIntensity = values[0]
	default:
		s.MeanIntensity, s.StdIntensity = stat.MeanStdDev(values, nil)
	}
	return s
}

// String formats the summary on one line.
func (s Summary) String() string {
	return fmt.Sprintf("cell at (%d, %d): intensity %d, size %d, aspect %.2f, rotation %.1f, area %d px, mean %.1f, std %.1f",
		s.Spec.Centroid.Row, s.Spec.Centroid.Col, s.Spec.Intensity, s.Spec.Size,
		s.Spec.AspectRatio, s.Spec.Rotation, s.Area, s.MeanIntensity, s.StdIntensity)
}

// Package geometry deforms intensity patches: anisotropic resizing and
// rotation about the patch center. Both run in a single bilinear resampling
// pass, so the output may contain values that were not present in the input.
// The x/image kernels widen their support when shrinking, which filters
// downsampled patches instead of point-sampling them.
package geometry

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// Deform resamples src to rows x cols and rotates the result
// counter-clockwise by degrees about its center. Scaling and rotation are
// composed into one affine map, so the patch is quantized once. Non-positive
// targets are raised to 1 because a patch always keeps at least one pixel
// per axis.
func Deform(src *mat.Dense, rows, cols int, degrees float64) *mat.Dense {
	rows, cols = max(rows, 1), max(cols, 1)
	in := toGray16(src)
	out := image.NewGray16(image.Rect(0, 0, cols, rows))
	if degrees == 0 {
		xdraw.BiLinear.Scale(out, out.Bounds(), in, in.Bounds(), xdraw.Src, nil)
		return fromGray16(out)
	}

	sb := in.Bounds()
	sx := float64(cols) / float64(sb.Dx())
	sy := float64(rows) / float64(sb.Dy())
	r := rotation(out.Bounds(), degrees)
	s2d := f64.Aff3{
		r[0] * sx, r[1] * sy, r[2],
		r[3] * sx, r[4] * sy, r[5],
	}
	xdraw.BiLinear.Transform(out, s2d, in, sb, xdraw.Src, nil)
	return fromGray16(out)
}

// rotation returns the source-to-destination affine transform for a
// counter-clockwise rotation about the center of bounds. Image rows grow
// downwards, so a positive angle moves the +x axis towards -y.
func rotation(bounds image.Rectangle, degrees float64) f64.Aff3 {
	theta := degrees * math.Pi / 180
	sin, cos := math.Sincos(theta)
	cx := float64(bounds.Min.X+bounds.Max.X) / 2
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2
	return f64.Aff3{
		cos, sin, cx - cos*cx - sin*cy,
		-sin, cos, cy + sin*cx - cos*cy,
	}
}

// toGray16 converts a matrix to a 16-bit image, truncating and clamping
// each value into [0, 65535] the same way the final patch is quantized.
func toGray16(m *mat.Dense) *image.Gray16 {
	rows, cols := m.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c, v := range m.RawRowView(r) {
			img.SetGray16(c, r, color.Gray16{Y: clamp16(v)})
		}
	}
	return img
}

// fromGray16 converts a 16-bit image back to a matrix.
func fromGray16(img *image.Gray16) *mat.Dense {
	b := img.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		row := m.RawRowView(y)
		for x := range row {
			row[x] = float64(img.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return m
}

func clamp16(v float64) uint16 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

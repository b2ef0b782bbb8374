// Package cell renders synthetic cells into canvas-aligned intensity patches
// and foreground masks.
//
// Rendering runs a fixed pipeline:
//  1. draw a uniform disk of the requested radius
//  2. shape its intensity with a Gaussian field and threshold the result
//  3. stretch and rotate the patch when requested, then threshold again
//  4. optionally roughen the mask edge (erosion plus random speckle)
//  5. move the patch so its center lands on the requested centroid, cropping
//     whatever falls above or left of the canvas
//
// Every stage consumes the previous stage's output and nothing is exposed
// until the whole pipeline succeeds.
package cell

import (
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/exp/rand"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"syncell/pkg/errors"
	"syncell/pkg/gaussian"
	"syncell/pkg/geometry"
	"syncell/pkg/raster"
)

const (
	// DefaultKeepProbability is the chance that an eroded edge pixel survives
	// the speckle pass of the irregular-edge mode.
	DefaultKeepProbability = 0.98

	// DefaultErosionRadius is the radius of the disk used to erode the mask
	// in the irregular-edge mode.
	DefaultErosionRadius = 3
)

// Options selects the optional rendering modes. The zero value renders a
// smooth cell with its intensity peak on the patch center.
type Options struct {
	// Sigma is the spread of the Gaussian intensity field. Zero components
	// fall back to gaussian.DefaultSigma.
	Sigma gaussian.Sigma

	// OffCenter places the Gaussian peak on a foreground pixel drawn
	// uniformly at random instead of the patch center.
	OffCenter bool

	// IrregularEdge erodes the mask and intersects it with a random
	// per-pixel keep-mask, giving speckled non-convex boundaries.
	IrregularEdge bool

	// KeepProbability is the per-pixel keep chance for IrregularEdge.
	// Zero means DefaultKeepProbability; a keep chance of exactly zero
	// would erase every cell and is not expressible.
	KeepProbability float64

	// ErosionRadius is the structuring disk radius for IrregularEdge.
	// Zero means DefaultErosionRadius.
	ErosionRadius int

	// Source drives the random modes. When nil a time-seeded source is used.
	Source rand.Source
}

func (o Options) validate() error {
	if o.KeepProbability < 0 || o.KeepProbability > 1 || math.IsNaN(o.KeepProbability) {
		return errors.New(errors.ErrCodeInvalidInput, "keep probability must lie in [0, 1], got %v", o.KeepProbability)
	}
	if o.ErosionRadius < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "erosion radius must not be negative, got %d", o.ErosionRadius)
	}
	return nil
}

func (o Options) withDefaults() Options {
	o.Sigma = o.Sigma.OrDefault()
	if o.KeepProbability == 0 {
		o.KeepProbability = DefaultKeepProbability
	}
	if o.ErosionRadius == 0 {
		o.ErosionRadius = DefaultErosionRadius
	}
	if o.Source == nil && (o.OffCenter || o.IrregularEdge) {
		o.Source = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return o
}

// Render validates spec and runs the rendering pipeline. On a validation
// failure it returns an error carrying errors.ErrCodeInvalidInput and
// allocates nothing.
func Render(spec Spec, opts Options) (*Cell, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	// Stage 1: uniform disk
	patch, mask := drawDisk(spec.Intensity, spec.Size)

	// Stage 2: Gaussian shaping
	rows, cols := patch.Dims()
	center := gaussian.GeometricCenter(rows, cols)
	if opts.OffCenter {
		center = randomForeground(mask, opts.Source, center)
	}
	gaussian.Apply(patch, center, opts.Sigma)
	mask = threshold(patch, spec.MinIntensity)

	// Stage 3: deformation
	if spec.AspectRatio != 1 || spec.Rotation != 0 {
		target := rows
		if spec.AspectRatio != 1 {
			target = int(math.Round(float64(spec.Size) * spec.AspectRatio))
			cols = spec.Size
		}
		patch = geometry.Deform(patch, target, cols, spec.Rotation)
		mask = threshold(patch, spec.MinIntensity)
	}

	// Stage 4: irregular edge
	if opts.IrregularEdge {
		mask = roughen(mask, opts)
	}

	// Stage 5: canvas alignment
	img, mask := align(quantize(patch), mask, spec.Centroid)
	return &Cell{spec: spec, patch: img, mask: mask}, nil
}

// drawDisk returns a (2r+1)x(2r+1) patch holding intensity on the disk of
// radius r and zero elsewhere, together with the disk mask.
func drawDisk(intensity, radius int) (*mat.Dense, *raster.Mask) {
	mask := raster.Disk(radius)
	n := mask.Width()
	patch := mat.NewDense(n, n, nil)
	for r := 0; r < n; r++ {
		row := patch.RawRowView(r)
		for c := range row {
			if mask.At(c, r) {
				row[c] = float64(intensity)
			}
		}
	}
	return patch, mask
}

// randomForeground picks a set pixel of mask uniformly at random. It returns
// fallback when the mask is empty.
func randomForeground(mask *raster.Mask, src rand.Source, fallback gaussian.Center) gaussian.Center {
	pts := mask.Points()
	if len(pts) == 0 {
		return fallback
	}
	p := pts[rand.New(src).Intn(len(pts))]
	return gaussian.Center{Row: float64(p.Y), Col: float64(p.X)}
}

// threshold marks every pixel whose stored 16-bit value exceeds minIntensity.
// Comparing the truncated value keeps the mask consistent with the final
// quantized patch.
func threshold(patch *mat.Dense, minIntensity int) *raster.Mask {
	rows, cols := patch.Dims()
	mask := raster.NewMask(cols, rows)
	for r := 0; r < rows; r++ {
		for c, v := range patch.RawRowView(r) {
			if int(toUint16(v)) > minIntensity {
				mask.Set(c, r, true)
			}
		}
	}
	return mask
}

// roughen erodes the mask with a disk and drops surviving pixels with
// probability 1-KeepProbability.
func roughen(mask *raster.Mask, opts Options) *raster.Mask {
	eroded := mask.Erode(raster.Disk(opts.ErosionRadius))

	keep := raster.NewMask(mask.Width(), mask.Height())
	coin := distuv.Bernoulli{P: opts.KeepProbability, Src: opts.Source}
	for y := 0; y < keep.Height(); y++ {
		for x := 0; x < keep.Width(); x++ {
			keep.Set(x, y, coin.Rand() == 1)
		}
	}

	eroded.And(keep)
	return eroded
}

// quantize truncates the patch into a 16-bit image.
func quantize(patch *mat.Dense) *image.Gray16 {
	rows, cols := patch.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c, v := range patch.RawRowView(r) {
			img.SetGray16(c, r, color.Gray16{Y: toUint16(v)})
		}
	}
	return img
}

// toUint16 truncates v into [0, 65535].
func toUint16(v float64) uint16 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= MaxIntensity:
		return MaxIntensity
	}
	return uint16(v)
}

// quadrant is the part of the plane a canvas can cover.
var quadrant = image.Rect(0, 0, math.MaxInt, math.MaxInt)

// align moves the patch so that its center pixel lands on centroid. The
// result keeps canvas coordinates as its bounds and is cropped to the
// non-negative quadrant, so nothing is allocated for the offset itself.
func align(img *image.Gray16, mask *raster.Mask, centroid Point) (*image.Gray16, *raster.Mask) {
	b := img.Bounds()
	off := image.Pt(centroid.Col-b.Dx()/2, centroid.Row-b.Dy()/2)
	r := b.Add(off).Intersect(quadrant)

	out := image.NewGray16(r)
	xdraw.Draw(out, r, img, r.Min.Sub(off), xdraw.Src)
	return out, mask.Translate(off.X, off.Y).Crop(r)
}

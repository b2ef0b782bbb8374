// Package canvas composites rendered cells into a shared intensity image and
// a matching label image.
//
// A Canvas hands out identifiers 1..255 in insertion order. Identifier i+1
// always belongs to slot i, and deleting a cell empties its slot without
// renumbering or reusing anything. Cells added later overwrite earlier ones
// wherever their masks overlap.
//
// Deleting a cell erases every pixel under its own mask, including pixels
// that a later cell currently covers. The canvas keeps only each cell's
// mask, not a per-pixel history, so the later cell's pixels in that overlap
// are lost as well.
//
// A Canvas is not safe for concurrent use; see Locked.
package canvas

import (
	"image"
	"image/color"

	"github.com/charmbracelet/log"

	"syncell/pkg/cell"
	"syncell/pkg/errors"
)

// MaxCells is the number of identifiers an 8-bit label image can hold,
// with 0 reserved for background.
const MaxCells = 255

// Canvas owns the intensity and label rasters and the list of cell slots.
type Canvas struct {
	// height and width are fixed at construction.
	height int
	width  int

	// image holds the composited intensities.
	image *image.Gray16

	// label holds the identifier of the cell drawn at each pixel, or 0.
	label *image.Gray

	// slots is append-only; a nil entry is a deleted cell. Its length is
	// the number of identifiers issued so far.
	slots []*cell.Cell

	logger *log.Logger
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger used for rejected operations and debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty height x width canvas. Both dimensions must be
// positive; otherwise an error carrying errors.ErrCodeInvalidInput is
// returned and nothing is allocated.
func New(height, width int, opts ...Option) (*Canvas, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"canvas dimensions must be positive integers, got %dx%d", height, width)
	}

	c := &Canvas{
		height: height,
		width:  width,
		image:  image.NewGray16(image.Rect(0, 0, width, height)),
		label:  image.NewGray(image.Rect(0, 0, width, height)),
		slots:  make([]*cell.Cell, 0),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Issued returns how many identifiers have been handed out, live or deleted.
func (c *Canvas) Issued() int { return len(c.slots) }

// Add composites cl onto the canvas and returns its identifier.
//
// When all MaxCells identifiers have been issued, Add returns an error
// carrying errors.ErrCodeCapacityExceeded and leaves the canvas untouched,
// even if some slots have since been emptied.
func (c *Canvas) Add(cl *cell.Cell) (int, error) {
	if cl == nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "cannot add a nil cell")
	}
	if len(c.slots) >= MaxCells {
		c.logger.Warn("maximum number of cells reached", "issued", len(c.slots))
		return 0, errors.New(errors.ErrCodeCapacityExceeded,
			"all %d cell identifiers have been issued", MaxCells)
	}

	id := len(c.slots) + 1
	c.slots = append(c.slots, cl)

	overlap := c.overlap(cl)
	patch, mask := cl.Patch(), cl.Mask()
	painted := 0
	for y := overlap.Min.Y; y < overlap.Max.Y; y++ {
		for x := overlap.Min.X; x < overlap.Max.X; x++ {
			if !mask.At(x, y) {
				continue
			}
			c.image.SetGray16(x, y, patch.Gray16At(x, y))
			c.label.SetGray(x, y, color.Gray{Y: uint8(id)})
			painted++
		}
	}

	c.logger.Debug("added cell", "id", id, "pixels", painted)
	return id, nil
}

// AddSpec renders spec with opts and adds the result. The capacity check
// runs before rendering, so a full canvas never renders anything.
func (c *Canvas) AddSpec(spec cell.Spec, opts cell.Options) (int, error) {
	if len(c.slots) >= MaxCells {
		c.logger.Warn("maximum number of cells reached", "issued", len(c.slots))
		return 0, errors.New(errors.ErrCodeCapacityExceeded,
			"all %d cell identifiers have been issued", MaxCells)
	}
	cl, err := cell.Render(spec, opts)
	if err != nil {
		return 0, err
	}
	return c.Add(cl)
}

// Delete erases the cell in slot index (identifier index+1) and empties the
// slot. It reports false, changing nothing, when the index was never issued
// or the slot is already empty.
func (c *Canvas) Delete(index int) bool {
	if index < 0 || index >= len(c.slots) || c.slots[index] == nil {
		c.logger.Warn("cell not found", "index", index)
		return false
	}

	cl := c.slots[index]
	overlap := c.overlap(cl)
	mask := cl.Mask()
	erased := 0
	for y := overlap.Min.Y; y < overlap.Max.Y; y++ {
		for x := overlap.Min.X; x < overlap.Max.X; x++ {
			if !mask.At(x, y) {
				continue
			}
			c.image.SetGray16(x, y, color.Gray16{})
			c.label.SetGray(x, y, color.Gray{})
			erased++
		}
	}
	c.slots[index] = nil

	c.logger.Debug("deleted cell", "id", index+1, "pixels", erased)
	return true
}

// Cell returns the cell stored in slot index, if it is live.
func (c *Canvas) Cell(index int) (*cell.Cell, bool) {
	if index < 0 || index >= len(c.slots) || c.slots[index] == nil {
		return nil, false
	}
	return c.slots[index], true
}

// Image returns a copy of the intensity raster.
func (c *Canvas) Image() *image.Gray16 {
	out := image.NewGray16(c.image.Bounds())
	copy(out.Pix, c.image.Pix)
	return out
}

// Label returns a copy of the label raster.
func (c *Canvas) Label() *image.Gray {
	out := image.NewGray(c.label.Bounds())
	copy(out.Pix, c.label.Pix)
	return out
}

// overlap returns the part of the cell's patch that falls on the canvas.
// Top/left clipping already happened while rendering; this crops the
// bottom/right.
func (c *Canvas) overlap(cl *cell.Cell) image.Rectangle {
	return cl.Bounds().Intersect(c.image.Bounds())
}

package canvas

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"syncell/pkg/cell"
)

// Summary reports the canvas dimensions and slot usage.
type Summary struct {
	Height int
	Width  int

	// Live is the number of non-empty slots.
	Live int

	// Issued counts every identifier handed out, including deleted ones.
	Issued int

	// Remaining is how many identifiers can still be issued.
	Remaining int

	// Foreground is the number of labelled pixels.
	Foreground int

	// MeanIntensity is the mean image value over labelled pixels.
	MeanIntensity float64
}

// Describe summarizes the canvas. It does not modify any state.
func (c *Canvas) Describe() Summary {
	s := Summary{
		Height:    c.height,
		Width:     c.width,
		Issued:    len(c.slots),
		Remaining: MaxCells - len(c.slots),
	}
	for _, cl := range c.slots {
		if cl != nil {
			s.Live++
		}
	}

	var values []float64
	for i, id := range c.label.Pix {
		if id == 0 {
			continue
		}
		// Gray16 stores big-endian pairs.
		v := uint16(c.image.Pix[2*i])<<8 | uint16(c.image.Pix[2*i+1])
		values = append(values, float64(v))
	}
	s.Foreground = len(values)
	if len(values) > 0 {
		s.MeanIntensity = stat.Mean(values, nil)
	}
	return s
}

// String formats the summary on one line.
func (s Summary) String() string {
	return fmt.Sprintf("canvas %dx%d: %d live cells, %d/%d ids issued, %d foreground px, mean %.1f",
		s.Height, s.Width, s.Live, s.Issued, MaxCells, s.Foreground, s.MeanIntensity)
}

// Slots returns a copy of the slot list. Entry i holds the cell with
// identifier i+1, or nil if it was deleted.
func (c *Canvas) Slots() []*cell.Cell {
	out := make([]*cell.Cell, len(c.slots))
	copy(out, c.slots)
	return out
}

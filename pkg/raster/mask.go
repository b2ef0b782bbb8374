// Package raster provides the boolean footprint type shared by the cell
// renderer and the canvas.
package raster

import "image"

// Mask is a boolean raster over a rectangle that need not start at the
// origin. A true value marks a foreground pixel. Pixels are stored
// row-major; (x, y) is (column, row) in the mask's own coordinates.
type Mask struct {
	rect image.Rectangle
	data []bool
}

// NewMask creates a new empty mask covering (0,0)-(width,height).
// Negative dimensions are treated as zero.
func NewMask(width, height int) *Mask {
	return NewMaskRect(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// NewMaskRect creates a new empty mask covering r. An empty r yields an
// empty mask.
func NewMaskRect(r image.Rectangle) *Mask {
	if r.Empty() {
		r = image.Rectangle{}
	}
	return &Mask{
		rect: r,
		data: make([]bool, r.Dx()*r.Dy()),
	}
}

// Disk returns the (2r+1)x(2r+1) mask of lattice points whose Euclidean
// distance from the center is at most r.
func Disk(radius int) *Mask {
	n := 2*radius + 1
	m := NewMask(n, n)
	r2 := radius * radius
	for y := 0; y < n; y++ {
		dy := y - radius
		for x := 0; x < n; x++ {
			dx := x - radius
			m.data[y*n+x] = dx*dx+dy*dy <= r2
		}
	}
	return m
}

// Bounds returns the rectangle the mask covers.
func (m *Mask) Bounds() image.Rectangle { return m.rect }

// Width returns the mask width.
func (m *Mask) Width() int { return m.rect.Dx() }

// Height returns the mask height.
func (m *Mask) Height() int { return m.rect.Dy() }

func (m *Mask) offset(x, y int) (int, bool) {
	if !image.Pt(x, y).In(m.rect) {
		return 0, false
	}
	return (y-m.rect.Min.Y)*m.rect.Dx() + (x - m.rect.Min.X), true
}

// At reports whether (x, y) is set.
// Returns false for coordinates outside the mask bounds.
func (m *Mask) At(x, y int) bool {
	i, ok := m.offset(x, y)
	return ok && m.data[i]
}

// Set sets the value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, value bool) {
	if i, ok := m.offset(x, y); ok {
		m.data[i] = value
	}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Points returns the coordinates of all set pixels in row-major order.
func (m *Mask) Points() []image.Point {
	pts := make([]image.Point, 0, m.Count())
	w := m.rect.Dx()
	for i, v := range m.data {
		if v {
			pts = append(pts, image.Pt(m.rect.Min.X+i%w, m.rect.Min.Y+i/w))
		}
	}
	return pts
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := NewMaskRect(m.rect)
	copy(c.data, m.data)
	return c
}

// And clears every pixel that is not also set in other.
// Pixels outside other's bounds are cleared.
func (m *Mask) And(other *Mask) {
	for y := m.rect.Min.Y; y < m.rect.Max.Y; y++ {
		for x := m.rect.Min.X; x < m.rect.Max.X; x++ {
			if !other.At(x, y) {
				m.Set(x, y, false)
			}
		}
	}
}

// Erode returns the binary erosion of m by the structuring element se,
// centered on se's middle pixel. Pixels outside m count as set, so the
// patch border alone never erodes a footprint.
func (m *Mask) Erode(se *Mask) *Mask {
	out := NewMaskRect(m.rect)
	sb := se.Bounds()
	center := image.Pt(sb.Min.X+sb.Dx()/2, sb.Min.Y+sb.Dy()/2)
	offsets := make([]image.Point, 0, se.Count())
	for _, p := range se.Points() {
		offsets = append(offsets, p.Sub(center))
	}

	for y := m.rect.Min.Y; y < m.rect.Max.Y; y++ {
		for x := m.rect.Min.X; x < m.rect.Max.X; x++ {
			if !m.At(x, y) {
				continue
			}
			keep := true
			for _, o := range offsets {
				i, ok := m.offset(x+o.X, y+o.Y)
				if ok && !m.data[i] {
					keep = false
					break
				}
			}
			out.Set(x, y, keep)
		}
	}
	return out
}

// Translate returns a copy of m moved by (dx, dy). Only the bounds change;
// nothing is padded or dropped.
func (m *Mask) Translate(dx, dy int) *Mask {
	c := m.Clone()
	c.rect = m.rect.Add(image.Pt(dx, dy))
	return c
}

// Crop returns the part of m inside r. The result may be empty.
func (m *Mask) Crop(r image.Rectangle) *Mask {
	out := NewMaskRect(m.rect.Intersect(r))
	for y := out.rect.Min.Y; y < out.rect.Max.Y; y++ {
		for x := out.rect.Min.X; x < out.rect.Max.X; x++ {
			out.Set(x, y, m.At(x, y))
		}
	}
	return out
}

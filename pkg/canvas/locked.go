package canvas

import (
	"image"
	"sync"

	"syncell/pkg/cell"
)

// Locked serializes access to a Canvas so several goroutines can share it.
// Identifier assignment and the raster writes of one call happen under the
// same lock.
type Locked struct {
	mu     sync.Mutex
	canvas *Canvas
}

// NewLocked wraps c. The caller must stop using c directly.
func NewLocked(c *Canvas) *Locked {
	return &Locked{canvas: c}
}

// Add composites cl under the lock. See Canvas.Add.
func (l *Locked) Add(cl *cell.Cell) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canvas.Add(cl)
}

// AddSpec renders outside the lock and composites under it, so concurrent
// callers render in parallel. Unlike Canvas.AddSpec the capacity check runs
// after rendering; a full canvas still rejects the cell with
// errors.ErrCodeCapacityExceeded.
func (l *Locked) AddSpec(spec cell.Spec, opts cell.Options) (int, error) {
	cl, err := cell.Render(spec, opts)
	if err != nil {
		return 0, err
	}
	return l.Add(cl)
}

// Delete erases the cell in slot index under the lock. See Canvas.Delete.
func (l *Locked) Delete(index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canvas.Delete(index)
}

// Describe returns a summary taken under the lock, consistent with a single
// point between writes.
func (l *Locked) Describe() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canvas.Describe()
}

// Image returns a copy of the intensity raster taken under the lock.
func (l *Locked) Image() *image.Gray16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canvas.Image()
}

// Label returns a copy of the label raster taken under the lock.
func (l *Locked) Label() *image.Gray {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canvas.Label()
}

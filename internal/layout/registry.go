// Package layout maintains measured item geometry for a virtualized
// list. The Registry stores per-index lengths as items are measured,
// lazily recomputes cumulative offsets, and answers the frame lookups
// the viewability tracker scans with. Unmeasured items are reported as
// absent, never as zero-length.
package layout

import (
	"sync"

	"github.com/dshills/virtlist/internal/geometry"
)

const unmeasured = -1

// Registry holds the measured lengths of a list's items and derives
// each item's offset along the scroll axis. Items are laid out back to
// back in index order; an unmeasured item contributes no length until
// it is measured.
type Registry struct {
	mu sync.RWMutex

	// lengths holds the measured length per index, unmeasured sentinel
	// where no measurement has arrived.
	lengths []float64

	// offsets is the cumulative position per index, rebuilt lazily.
	offsets []float64

	// stale marks offsets as needing a rebuild.
	stale bool
}

// NewRegistry creates a registry for a list of the given size.
// Negative counts are treated as zero.
func NewRegistry(itemCount int) *Registry {
	if itemCount < 0 {
		itemCount = 0
	}
	r := &Registry{
		lengths: make([]float64, itemCount),
		offsets: make([]float64, itemCount),
	}
	for i := range r.lengths {
		r.lengths[i] = unmeasured
	}
	return r
}

// Len returns the number of items the registry tracks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lengths)
}

// Resize grows or shrinks the tracked list. Existing measurements are
// kept; new slots start unmeasured.
func (r *Registry) Resize(itemCount int) {
	if itemCount < 0 {
		itemCount = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case itemCount < len(r.lengths):
		r.lengths = r.lengths[:itemCount]
	case itemCount > len(r.lengths):
		for len(r.lengths) < itemCount {
			r.lengths = append(r.lengths, unmeasured)
		}
	}
	r.stale = true
}

// SetLength records a measurement for an item. Lengths must be
// non-negative; zero is a valid measured length. Out-of-range indices
// are ignored.
func (r *Registry) SetLength(index int, length float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.lengths) || length < 0 {
		return
	}
	if r.lengths[index] != length {
		r.lengths[index] = length
		r.stale = true
	}
}

// Invalidate discards the measurement for an item, returning it to the
// unmeasured state.
func (r *Registry) Invalidate(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.lengths) {
		return
	}
	if r.lengths[index] != unmeasured {
		r.lengths[index] = unmeasured
		r.stale = true
	}
}

// Frame returns the measured frame for an item. The boolean is false
// for out-of-range or unmeasured indices.
func (r *Registry) Frame(index int) (geometry.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.lengths) || r.lengths[index] == unmeasured {
		return geometry.Frame{}, false
	}
	r.rebuildLocked()
	return geometry.Frame{Offset: r.offsets[index], Length: r.lengths[index]}, true
}

// MeasuredCount returns how many items have a recorded measurement.
func (r *Registry) MeasuredCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, length := range r.lengths {
		if length != unmeasured {
			n++
		}
	}
	return n
}

// TotalLength returns the summed length of all measured items; this is
// the scrollable extent once every item is measured.
func (r *Registry) TotalLength() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0.0
	for _, length := range r.lengths {
		if length != unmeasured {
			total += length
		}
	}
	return total
}

// rebuildLocked recomputes cumulative offsets if measurements changed.
// Unmeasured items occupy no space until measured, so offsets shift as
// measurements arrive.
func (r *Registry) rebuildLocked() {
	if !r.stale && len(r.offsets) == len(r.lengths) {
		return
	}

	if cap(r.offsets) < len(r.lengths) {
		r.offsets = make([]float64, len(r.lengths))
	}
	r.offsets = r.offsets[:len(r.lengths)]

	position := 0.0
	for i, length := range r.lengths {
		r.offsets[i] = position
		if length != unmeasured {
			position += length
		}
	}
	r.stale = false
}

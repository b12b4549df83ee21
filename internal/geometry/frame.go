// Package geometry provides the one-dimensional frame math used for
// viewport visibility decisions. Items are modeled as extents along the
// scroll axis; the package converts absolute item frames into
// viewport-relative placements and answers overlap and coverage queries.
package geometry

// Frame describes an item's extent along the scroll axis.
type Frame struct {
	// Offset is the item's absolute position along the scroll axis.
	Offset float64

	// Length is the item's size along the scroll axis.
	Length float64
}

// MetricsFunc looks up the frame for an item index.
// The boolean reports whether the item has been measured; an unmeasured
// item is distinct from one with a zero-length frame.
type MetricsFunc func(index int) (Frame, bool)

// Placement is an item's position relative to the viewport origin.
type Placement struct {
	// Top is the item's leading edge relative to the viewport.
	Top float64

	// Bottom is the item's trailing edge relative to the viewport.
	Bottom float64
}

// Place converts an absolute frame to a viewport-relative placement.
func Place(f Frame, scrollOffset float64) Placement {
	top := f.Offset - scrollOffset
	return Placement{Top: top, Bottom: top + f.Length}
}

// Length returns the extent of the placement along the scroll axis.
func (p Placement) Length() float64 {
	return p.Bottom - p.Top
}

// Overlaps reports whether any part of the placement intersects a
// viewport of the given height.
func (p Placement) Overlaps(viewportHeight float64) bool {
	return p.Top < viewportHeight && p.Bottom > 0
}

// EntirelyVisible reports whether the whole placement lies inside a
// viewport of the given height. A zero-length placement is never
// entirely visible.
func (p Placement) EntirelyVisible(viewportHeight float64) bool {
	return p.Top >= 0 && p.Bottom <= viewportHeight && p.Bottom > p.Top
}

// VisibleLength returns the extent of the placement that lies inside a
// viewport of the given height, clipped at both edges. Returns 0 when
// the placement does not overlap the viewport.
func (p Placement) VisibleLength(viewportHeight float64) float64 {
	top := p.Top
	if top < 0 {
		top = 0
	}
	bottom := p.Bottom
	if bottom > viewportHeight {
		bottom = viewportHeight
	}
	if bottom <= top {
		return 0
	}
	return bottom - top
}

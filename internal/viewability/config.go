package viewability

import (
	"fmt"
	"time"

	"github.com/dshills/virtlist/internal/geometry"
)

// InteractionFilter restricts which scrolls count as a user interaction
// when WaitForInteraction is set. A zero field leaves that condition
// unset; when both are set, both must hold.
type InteractionFilter struct {
	// MinimumOffset is the scroll offset a scroll must reach to count
	// as an interaction.
	MinimumOffset float64

	// MinimumElapsed is the time that must have passed since the first
	// measured update before a scroll counts as an interaction.
	MinimumElapsed time.Duration
}

// Config holds the viewability policy for a tracker. It is validated
// once at construction and immutable for the tracker's lifetime.
type Config struct {
	// MinimumViewTime is how long an item must stay viewable before it
	// is reported. Zero disables the debounce.
	MinimumViewTime time.Duration

	// ViewAreaCoveragePercentThreshold judges viewability by the
	// percent of the viewport an item covers (0-100). Exactly one of
	// this and ItemVisiblePercentThreshold must be set.
	ViewAreaCoveragePercentThreshold *float64

	// ItemVisiblePercentThreshold judges viewability by the percent of
	// the item itself that is visible (0-100).
	ItemVisiblePercentThreshold *float64

	// WaitForInteraction suppresses all viewability reporting until
	// the user has interacted with the list.
	WaitForInteraction bool

	// ScrollInteractionFilter narrows which scrolls latch the
	// interaction. Valid only when WaitForInteraction is set.
	ScrollInteractionFilter *InteractionFilter
}

// Validate checks the configuration invariants. It fails when neither
// or both thresholds are set, when a threshold is outside 0-100, or
// when a scroll interaction filter is supplied without
// WaitForInteraction.
func (c Config) Validate() error {
	area := c.ViewAreaCoveragePercentThreshold
	item := c.ItemVisiblePercentThreshold

	switch {
	case area == nil && item == nil:
		return ErrNoThreshold
	case area != nil && item != nil:
		return ErrBothThresholds
	}

	threshold := c.threshold()
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: got %v", ErrThresholdOutOfRange, threshold)
	}

	if c.ScrollInteractionFilter != nil && !c.WaitForInteraction {
		return ErrFilterWithoutInteraction
	}
	return nil
}

// threshold returns the configured threshold value. Call only after
// validation has established that exactly one threshold is set.
func (c Config) threshold() float64 {
	if c.ViewAreaCoveragePercentThreshold != nil {
		return *c.ViewAreaCoveragePercentThreshold
	}
	return *c.ItemVisiblePercentThreshold
}

// viewable applies the configured policy to a placed item. An entirely
// visible item is always viewable; otherwise the visible extent is
// measured against the viewport (view-area mode) or the item's own
// length (item-visible mode) and compared to the threshold.
func (c Config) viewable(p geometry.Placement, viewportHeight float64) bool {
	if p.EntirelyVisible(viewportHeight) {
		return true
	}

	visible := p.VisibleLength(viewportHeight)
	base := viewportHeight
	if c.ItemVisiblePercentThreshold != nil {
		base = p.Length()
	}
	if base <= 0 {
		return false
	}
	return 100*visible/base >= c.threshold()
}

// Threshold reports the active threshold value and whether view-area
// mode is selected.
func (c Config) Threshold() (value float64, viewAreaMode bool) {
	if c.ViewAreaCoveragePercentThreshold != nil {
		return *c.ViewAreaCoveragePercentThreshold, true
	}
	if c.ItemVisiblePercentThreshold != nil {
		return *c.ItemVisiblePercentThreshold, false
	}
	return 0, false
}

package viewability

import "errors"

// Errors returned by tracker construction and operations.
var (
	// ErrNoThreshold indicates neither visibility threshold is configured.
	ErrNoThreshold = errors.New("no visibility threshold configured")

	// ErrBothThresholds indicates both visibility thresholds are configured.
	ErrBothThresholds = errors.New("view-area and item-visible thresholds are mutually exclusive")

	// ErrThresholdOutOfRange indicates a threshold outside the 0-100 range.
	ErrThresholdOutOfRange = errors.New("threshold must be between 0 and 100")

	// ErrFilterWithoutInteraction indicates a scroll interaction filter
	// configured without WaitForInteraction.
	ErrFilterWithoutInteraction = errors.New("scroll interaction filter requires WaitForInteraction")

	// ErrMissingCallback indicates a required callback was not supplied.
	ErrMissingCallback = errors.New("missing required callback")

	// ErrRangeOutOfBounds indicates a render range that doesn't fit the
	// item count.
	ErrRangeOutOfBounds = errors.New("render range out of bounds")

	// ErrDisposed indicates an operation on a disposed tracker.
	ErrDisposed = errors.New("tracker is disposed")
)

// Package viewability decides which items of a virtualized list are
// currently viewable and reports transitions to a consumer.
//
// A Tracker is fed scroll/layout updates and applies a configurable
// policy: a geometric coverage test, an optional minimum dwell time
// that filters out items flicked past during fast scrolling, and
// optional gating on the first user interaction. Transitions are
// reported as a minimal change-set keyed by stable item identity, so
// rapid updates that don't change the viewable set produce no
// notifications.
package viewability

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/virtlist/internal/geometry"
	"github.com/dshills/virtlist/internal/schedule"
)

// Callbacks supplies the tracker's collaborators. All three are
// required.
type Callbacks struct {
	// FrameMetrics looks up an item's geometry. It is called multiple
	// times per scan and must be idempotent for a given layout state.
	FrameMetrics geometry.MetricsFunc

	// CreateViewToken builds the application payload for an item being
	// finalized as viewable.
	CreateViewToken TokenFunc

	// OnViewableItemsChanged receives notifications. It runs with the
	// tracker's internal lock held and must not call back into the
	// tracker.
	OnViewableItemsChanged ChangedFunc
}

// Tracker owns the viewability state for one list instance. Its methods
// are safe for concurrent use; debounce timers re-validate against
// current state when they fire, so overlapping timers are safe.
type Tracker struct {
	mu        sync.Mutex
	config    Config
	callbacks Callbacks
	scheduler schedule.Scheduler
	clock     schedule.Clock

	// hasInteracted latches true once and is never reset.
	hasInteracted bool

	// lastUpdate is zero until the first item with known geometry is
	// observed; elapsed time is measured from that point, not from
	// construction.
	lastUpdate time.Time

	// viewableIndices is the pre-debounce result of the last accepted
	// scan, ascending.
	viewableIndices []int

	// viewableItems and viewableKeys are the committed set last
	// reported to the consumer, keyed by token identity. viewableKeys
	// preserves insertion order for deterministic emission.
	viewableItems map[string]ViewToken
	viewableKeys  []string

	disposed bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithScheduler sets the scheduler used for debounce timers. The
// tracker assumes exclusive ownership: Dispose cancels everything the
// scheduler holds.
func WithScheduler(s schedule.Scheduler) Option {
	return func(t *Tracker) {
		if s != nil {
			t.scheduler = s
		}
	}
}

// WithClock sets the time source.
func WithClock(c schedule.Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// New creates a tracker with the given policy and collaborators. The
// configuration is validated here; an invalid configuration is a
// caller bug and fails immediately.
func New(cfg Config, cb Callbacks, opts ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case cb.FrameMetrics == nil:
		return nil, fmt.Errorf("%w: FrameMetrics", ErrMissingCallback)
	case cb.CreateViewToken == nil:
		return nil, fmt.Errorf("%w: CreateViewToken", ErrMissingCallback)
	case cb.OnViewableItemsChanged == nil:
		return nil, fmt.Errorf("%w: OnViewableItemsChanged", ErrMissingCallback)
	}

	t := &Tracker{
		config:        cfg,
		callbacks:     cb,
		scheduler:     schedule.NewSet(),
		clock:         schedule.SystemClock{},
		viewableItems: make(map[string]ViewToken),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns the tracker's policy.
func (t *Tracker) Config() Config {
	return t.config
}

// HasInteracted reports whether an interaction has been latched.
func (t *Tracker) HasInteracted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasInteracted
}

// ViewableIndices returns a copy of the pre-debounce viewable indices
// from the last accepted scan.
func (t *Tracker) ViewableIndices() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]int, len(t.viewableIndices))
	copy(out, t.viewableIndices)
	return out
}

// ViewableItems returns a copy of the committed viewable tokens in
// emission order.
func (t *Tracker) ViewableItems() []ViewToken {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committedLocked()
}

// Compute returns the indices viewable at the given scroll position,
// without touching tracker state. renderRange restricts the scan to
// rendered indices; nil scans the full list.
func (t *Tracker) Compute(itemCount int, scrollOffset, viewportHeight float64, renderRange *Range) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed {
		return nil, ErrDisposed
	}
	return t.computeLocked(itemCount, scrollOffset, viewportHeight, renderRange)
}

// computeLocked scans [first, last] collecting viewable indices.
// Unmeasured items are skipped without ending the scan; once the
// visible band has started, the first non-overlapping item ends it
// (item layout is assumed contiguous and monotonic along the axis).
func (t *Tracker) computeLocked(itemCount int, scrollOffset, viewportHeight float64, renderRange *Range) ([]int, error) {
	if itemCount == 0 {
		return nil, nil
	}

	first, last := 0, itemCount-1
	if renderRange != nil {
		if renderRange.First < 0 || renderRange.Last >= itemCount {
			return nil, fmt.Errorf("%w: [%d, %d] with %d items",
				ErrRangeOutOfBounds, renderRange.First, renderRange.Last, itemCount)
		}
		first, last = renderRange.First, renderRange.Last
	}

	var viewable []int
	firstVisible := false
	for index := first; index <= last; index++ {
		frame, ok := t.callbacks.FrameMetrics(index)
		if !ok {
			continue
		}
		placement := geometry.Place(frame, scrollOffset)
		if placement.Overlaps(viewportHeight) {
			firstVisible = true
			if t.config.viewable(placement, viewportHeight) {
				viewable = append(viewable, index)
			}
		} else if firstVisible {
			break
		}
	}
	return viewable, nil
}

// Update processes one scroll/layout tick. It gates on interaction,
// rescans viewability, short-circuits when nothing changed, and either
// finalizes immediately or defers finalization until the minimum view
// time has elapsed. Update never blocks.
func (t *Tracker) Update(itemCount int, scrollOffset, viewportHeight float64, renderRange *Range) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed {
		return ErrDisposed
	}

	now := t.clock.Now()
	if t.lastUpdate.IsZero() && itemCount > 0 {
		if _, ok := t.callbacks.FrameMetrics(0); ok {
			t.lastUpdate = now
		}
	}

	var elapsed time.Duration
	if !t.lastUpdate.IsZero() {
		elapsed = now.Sub(t.lastUpdate)
	}

	if t.config.WaitForInteraction && !t.hasInteracted && scrollOffset != 0 {
		t.hasInteracted = t.matchesInteractionFilter(scrollOffset, elapsed)
	}
	if t.config.WaitForInteraction && !t.hasInteracted {
		// Viewability is undefined until the user interacts.
		return nil
	}

	var viewable []int
	if itemCount > 0 {
		v, err := t.computeLocked(itemCount, scrollOffset, viewportHeight, renderRange)
		if err != nil {
			return err
		}
		viewable = v
	}

	// Ticks arrive far more often than visibility changes.
	if equalIndices(viewable, t.viewableIndices) {
		return nil
	}

	t.viewableIndices = viewable
	t.lastUpdate = now

	if t.config.MinimumViewTime > 0 && elapsed < t.config.MinimumViewTime {
		snapshot := make([]int, len(viewable))
		copy(snapshot, viewable)
		t.scheduler.After(t.config.MinimumViewTime, func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if t.disposed {
				return
			}
			t.finalizeLocked(snapshot)
		})
		return nil
	}

	t.finalizeLocked(viewable)
	return nil
}

// RecordInteraction latches the interaction flag unconditionally, for
// interactions detected through channels other than scrolling.
func (t *Tracker) RecordInteraction() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hasInteracted = true
}

// Dispose cancels every pending debounce timer. No notification fires
// after Dispose returns, and further Update/Compute calls fail with
// ErrDisposed.
func (t *Tracker) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disposed {
		return
	}
	t.disposed = true
	t.scheduler.CancelAll()
}

// matchesInteractionFilter decides whether a non-zero scroll latches
// the interaction. With no filter any non-zero scroll counts; with a
// filter every set condition must hold.
func (t *Tracker) matchesInteractionFilter(scrollOffset float64, elapsed time.Duration) bool {
	filter := t.config.ScrollInteractionFilter
	if filter == nil {
		return true
	}
	if filter.MinimumOffset > 0 && scrollOffset < filter.MinimumOffset {
		return false
	}
	if filter.MinimumElapsed > 0 && elapsed < filter.MinimumElapsed {
		return false
	}
	return true
}

// finalizeLocked commits a debounced scan result and notifies the
// consumer of the difference from the previously committed set.
//
// The input is the index sequence captured at scheduling time, which
// may be stale: it is first re-filtered against the current
// viewableIndices so items that scrolled out before the timer fired
// are dropped, while items reported by a later, faster-resolving call
// survive. This re-validation is what makes overlapping timers safe.
func (t *Tracker) finalizeLocked(indices []int) {
	current := make(map[int]struct{}, len(t.viewableIndices))
	for _, index := range t.viewableIndices {
		current[index] = struct{}{}
	}

	next := make(map[string]ViewToken, len(indices))
	nextKeys := make([]string, 0, len(indices))
	for _, index := range indices {
		if _, ok := current[index]; !ok {
			continue
		}
		token := t.callbacks.CreateViewToken(index, true)
		if _, dup := next[token.Key]; dup {
			continue
		}
		next[token.Key] = token
		nextKeys = append(nextKeys, token.Key)
	}

	// Appeared first, then departed with the flag flipped.
	var changed []ViewToken
	for _, key := range nextKeys {
		if _, ok := t.viewableItems[key]; !ok {
			changed = append(changed, next[key])
		}
	}
	for _, key := range t.viewableKeys {
		if _, ok := next[key]; !ok {
			previous := t.viewableItems[key]
			previous.IsViewable = false
			changed = append(changed, previous)
		}
	}

	if len(changed) == 0 {
		return
	}

	t.viewableItems = next
	t.viewableKeys = nextKeys
	t.callbacks.OnViewableItemsChanged(Changed{
		ViewableItems: t.committedLocked(),
		Changed:       changed,
	})
}

// committedLocked returns the committed tokens in emission order.
func (t *Tracker) committedLocked() []ViewToken {
	out := make([]ViewToken, 0, len(t.viewableKeys))
	for _, key := range t.viewableKeys {
		out = append(out, t.viewableItems[key])
	}
	return out
}

// equalIndices reports whether two index sequences are identical.
func equalIndices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

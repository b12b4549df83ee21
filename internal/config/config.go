// Package config provides TOML configuration loading for the virtlist
// demo: the viewability policy the tracker runs with and the shape of
// the synthetic list the demo renders. A missing file is not an error;
// defaults apply.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/virtlist/internal/viewability"
)

// File is the root of the demo configuration.
type File struct {
	// Tracker holds the viewability policy.
	Tracker TrackerOptions `toml:"tracker"`

	// List describes the synthetic list the demo renders.
	List ListOptions `toml:"list"`
}

// TrackerOptions configures the viewability tracker.
type TrackerOptions struct {
	// MinimumViewTimeMS is the debounce floor in milliseconds.
	MinimumViewTimeMS int64 `toml:"minimum_view_time_ms"`

	// ViewAreaThreshold judges viewability by percent of viewport
	// covered (0-100). At most one of the two thresholds may be set;
	// when neither is, ItemVisibleThreshold defaults to 50.
	ViewAreaThreshold *float64 `toml:"view_area_threshold"`

	// ItemVisibleThreshold judges viewability by percent of the item
	// visible (0-100).
	ItemVisibleThreshold *float64 `toml:"item_visible_threshold"`

	// WaitForInteraction suppresses reporting until the user scrolls.
	WaitForInteraction bool `toml:"wait_for_interaction"`

	// MinimumOffset is the scroll offset a scroll must reach to count
	// as an interaction (0 = unset). Requires WaitForInteraction.
	MinimumOffset float64 `toml:"minimum_offset"`

	// MinimumElapsedMS is the time in milliseconds that must pass
	// before a scroll counts as an interaction (0 = unset). Requires
	// WaitForInteraction.
	MinimumElapsedMS int64 `toml:"minimum_elapsed_ms"`
}

// ListOptions configures the demo's synthetic list.
type ListOptions struct {
	// ItemCount is the number of items to generate.
	ItemCount int `toml:"item_count"`

	// MinItemRows and MaxItemRows bound each item's height in rows.
	MinItemRows int `toml:"min_item_rows"`
	MaxItemRows int `toml:"max_item_rows"`

	// Seed fixes the random item heights; 0 seeds from the clock.
	Seed int64 `toml:"seed"`
}

// Default returns the configuration used when no file is present.
func Default() *File {
	return &File{
		Tracker: TrackerOptions{
			MinimumViewTimeMS: 250,
		},
		List: ListOptions{
			ItemCount:   500,
			MinItemRows: 1,
			MaxItemRows: 4,
		},
	}
}

// Load reads the configuration file at path, applying defaults for
// anything the file omits. A nonexistent file yields the defaults.
func Load(path string) (*File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks option ranges the TOML schema can't express. The
// threshold exclusivity and interaction-filter invariants are enforced
// by the tracker itself at construction.
func (f *File) validate() error {
	if f.Tracker.MinimumViewTimeMS < 0 {
		return fmt.Errorf("%w: minimum_view_time_ms must be >= 0", ErrInvalidOption)
	}
	if f.Tracker.MinimumElapsedMS < 0 {
		return fmt.Errorf("%w: minimum_elapsed_ms must be >= 0", ErrInvalidOption)
	}
	if f.List.ItemCount < 0 {
		return fmt.Errorf("%w: item_count must be >= 0", ErrInvalidOption)
	}
	if f.List.MinItemRows < 1 {
		return fmt.Errorf("%w: min_item_rows must be >= 1", ErrInvalidOption)
	}
	if f.List.MaxItemRows < f.List.MinItemRows {
		return fmt.Errorf("%w: max_item_rows must be >= min_item_rows", ErrInvalidOption)
	}
	return nil
}

// TrackerConfig maps the options onto the tracker's configuration.
// When neither threshold is set, item-visible 50% is applied here so
// the tracker's exactly-one invariant holds; setting both is left for
// the tracker's own validation to reject.
func (o TrackerOptions) TrackerConfig() viewability.Config {
	cfg := viewability.Config{
		MinimumViewTime:                  time.Duration(o.MinimumViewTimeMS) * time.Millisecond,
		ViewAreaCoveragePercentThreshold: o.ViewAreaThreshold,
		ItemVisiblePercentThreshold:      o.ItemVisibleThreshold,
		WaitForInteraction:               o.WaitForInteraction,
	}

	if cfg.ViewAreaCoveragePercentThreshold == nil && cfg.ItemVisiblePercentThreshold == nil {
		half := 50.0
		cfg.ItemVisiblePercentThreshold = &half
	}

	if o.MinimumOffset > 0 || o.MinimumElapsedMS > 0 {
		cfg.ScrollInteractionFilter = &viewability.InteractionFilter{
			MinimumOffset:  o.MinimumOffset,
			MinimumElapsed: time.Duration(o.MinimumElapsedMS) * time.Millisecond,
		}
	}
	return cfg
}

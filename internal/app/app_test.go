package app

import (
	"testing"

	"github.com/dshills/virtlist/internal/config"
	"github.com/dshills/virtlist/internal/layout"
)

func TestGenerateItems(t *testing.T) {
	opts := config.ListOptions{ItemCount: 50, MinItemRows: 2, MaxItemRows: 5, Seed: 1}
	items, registry := generateItems(opts)

	if len(items) != 50 {
		t.Fatalf("got %d items, want 50", len(items))
	}
	if registry.Len() != 50 || registry.MeasuredCount() != 50 {
		t.Errorf("registry Len/Measured = %d/%d, want 50/50", registry.Len(), registry.MeasuredCount())
	}

	keys := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.Rows < 2 || item.Rows > 5 {
			t.Errorf("item %d rows = %d, want within [2, 5]", i, item.Rows)
		}
		if _, dup := keys[item.Key]; dup {
			t.Errorf("duplicate key %q", item.Key)
		}
		keys[item.Key] = struct{}{}
	}
}

func TestGenerateItemsDeterministicWithSeed(t *testing.T) {
	opts := config.ListOptions{ItemCount: 20, MinItemRows: 1, MaxItemRows: 4, Seed: 42}
	a, _ := generateItems(opts)
	b, _ := generateItems(opts)

	for i := range a {
		if a[i].Rows != b[i].Rows {
			t.Fatalf("item %d rows differ across runs with same seed: %d vs %d", i, a[i].Rows, b[i].Rows)
		}
	}
}

func TestVisibleRange(t *testing.T) {
	registry := layout.NewRegistry(10)
	for i := 0; i < 10; i++ {
		registry.SetLength(i, 3)
	}

	tests := []struct {
		name     string
		scroll   float64
		viewport float64
		want     *struct{ first, last int }
	}{
		{"at top", 0, 9, &struct{ first, last int }{0, 2}},
		{"mid item", 4, 9, &struct{ first, last int }{1, 4}},
		{"at bottom", 21, 9, &struct{ first, last int }{7, 9}},
		{"past the end", 100, 9, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibleRange(registry, 10, tt.scroll, tt.viewport)
			if tt.want == nil {
				if got != nil {
					t.Errorf("visibleRange = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("visibleRange = nil, want a range")
			}
			if got.First != tt.want.first || got.Last != tt.want.last {
				t.Errorf("visibleRange = [%d, %d], want [%d, %d]", got.First, got.Last, tt.want.first, tt.want.last)
			}
		})
	}
}

func TestVisibleRangeEmptyList(t *testing.T) {
	if got := visibleRange(layout.NewRegistry(0), 0, 0, 10); got != nil {
		t.Errorf("visibleRange on empty list = %+v, want nil", got)
	}
}

func TestAppReportsViewabilityHeadless(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	// Rebuild with no debounce so the update finalizes synchronously.
	cfg := config.Default()
	cfg.Tracker.MinimumViewTimeMS = 0
	cfg.List.Seed = 1
	if err := a.applyConfig(cfg); err != nil {
		t.Fatalf("applyConfig: %v", err)
	}

	a.update()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.notifications != 1 {
		t.Errorf("notifications = %d, want 1", a.notifications)
	}
	if len(a.viewable) == 0 {
		t.Error("no items viewable after initial update")
	}
	if len(a.seen) != len(a.viewable) {
		t.Errorf("seen = %d, viewable = %d; first notification should make them equal", len(a.seen), len(a.viewable))
	}
}

func TestAppConfigReloadSwapsTracker(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	cfg := config.Default()
	cfg.Tracker.MinimumViewTimeMS = 0
	cfg.List.ItemCount = 10
	cfg.List.Seed = 3
	if err := a.applyConfig(cfg); err != nil {
		t.Fatalf("applyConfig: %v", err)
	}
	a.update()

	a.mu.Lock()
	oldTracker := a.tracker
	a.mu.Unlock()

	cfg2 := config.Default()
	cfg2.Tracker.MinimumViewTimeMS = 0
	cfg2.List.ItemCount = 25
	cfg2.List.Seed = 4
	if err := a.applyConfig(cfg2); err != nil {
		t.Fatalf("applyConfig: %v", err)
	}

	a.mu.Lock()
	itemCount := len(a.items)
	newTracker := a.tracker
	a.mu.Unlock()

	if itemCount != 25 {
		t.Errorf("item count after reload = %d, want 25", itemCount)
	}
	if newTracker == oldTracker {
		t.Error("tracker not rebuilt on reload")
	}
	// The old tracker is disposed; further updates must fail.
	if err := oldTracker.Update(10, 0, 20, nil); err == nil {
		t.Error("old tracker still accepts updates after reload")
	}
}

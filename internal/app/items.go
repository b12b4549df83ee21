package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/virtlist/internal/config"
	"github.com/dshills/virtlist/internal/layout"
)

// Item is one entry in the demo list.
type Item struct {
	// Key is the stable identity reported in view tokens.
	Key string

	// Rows is the item's height in terminal rows.
	Rows int

	// Title is the rendered label.
	Title string
}

// generateItems builds the synthetic list described by the options and
// a registry pre-measured with every item's height.
func generateItems(opts config.ListOptions) ([]Item, *layout.Registry) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	items := make([]Item, opts.ItemCount)
	registry := layout.NewRegistry(opts.ItemCount)
	span := opts.MaxItemRows - opts.MinItemRows + 1

	for i := range items {
		rows := opts.MinItemRows + rng.Intn(span)
		items[i] = Item{
			Key:   uuid.NewString(),
			Rows:  rows,
			Title: fmt.Sprintf("item %04d", i),
		}
		registry.SetLength(i, float64(rows))
	}
	return items, registry
}

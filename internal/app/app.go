// Package app wires the virtlist demo together: a tcell-rendered
// virtualized list whose scroll position drives the viewability
// tracker, with live-reloaded configuration.
package app

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/virtlist/internal/config"
	"github.com/dshills/virtlist/internal/layout"
	"github.com/dshills/virtlist/internal/viewability"
)

// reservedRows is the header and status line.
const reservedRows = 2

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty runs on
	// defaults without watching.
	ConfigPath string
}

// App is the demo application: list model, tracker, and event loop.
type App struct {
	opts    Options
	watcher *config.Watcher

	mu       sync.Mutex
	screen   tcell.Screen
	items    []Item
	registry *layout.Registry
	tracker  *viewability.Tracker
	scroll   float64

	// viewable mirrors the tracker's committed set for rendering.
	viewable map[string]bool

	// seen counts items that have ever been reported viewable.
	seen map[string]struct{}

	notifications int
	lastChange    string
	statusErr     string

	shutdown bool
}

// New creates the application and builds the initial list and tracker
// from the configuration file (or defaults if it is absent).
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &App{opts: opts}
	if err := a.applyConfig(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// applyConfig rebuilds the list model and tracker for a configuration.
// The old tracker is disposed after the swap so no stale notification
// can land on the new state.
func (a *App) applyConfig(cfg *config.File) error {
	items, registry := generateItems(cfg.List)

	tracker, err := viewability.New(cfg.Tracker.TrackerConfig(), viewability.Callbacks{
		FrameMetrics: registry.Frame,
		CreateViewToken: func(index int, isViewable bool) viewability.ViewToken {
			return viewability.ViewToken{
				Key:        items[index].Key,
				IsViewable: isViewable,
				Index:      index,
				Item:       items[index].Title,
			}
		},
		OnViewableItemsChanged: a.onViewableChanged,
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	old := a.tracker
	a.items = items
	a.registry = registry
	a.tracker = tracker
	a.scroll = 0
	a.viewable = make(map[string]bool)
	a.seen = make(map[string]struct{})
	a.notifications = 0
	a.lastChange = ""
	a.statusErr = ""
	a.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	return nil
}

// onViewableChanged records the tracker's notification for rendering.
// It may run on a debounce timer goroutine, so it only mutates app
// state and pokes the event loop.
func (a *App) onViewableChanged(c viewability.Changed) {
	a.mu.Lock()
	a.notifications++
	a.viewable = make(map[string]bool, len(c.ViewableItems))
	for _, token := range c.ViewableItems {
		a.viewable[token.Key] = true
	}
	appeared, departed := 0, 0
	for _, token := range c.Changed {
		if token.IsViewable {
			appeared++
			a.seen[token.Key] = struct{}{}
		} else {
			departed++
		}
	}
	a.lastChange = fmt.Sprintf("+%d -%d", appeared, departed)
	screen := a.screen
	a.mu.Unlock()

	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// Run initializes the terminal and drives the event loop until quit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	a.mu.Lock()
	a.screen = screen
	a.mu.Unlock()

	if a.opts.ConfigPath != "" {
		watcher, err := config.Watch(a.opts.ConfigPath, a.reload, a.reportError)
		if err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
		a.watcher = watcher
		defer a.watcher.Close()
	}

	a.update()

	for {
		a.draw()

		ev := screen.PollEvent()
		if ev == nil {
			// Screen finalized under us (shutdown path).
			return ErrQuit
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
			a.update()
		case *tcell.EventInterrupt:
			// State changed off-loop; redraw on the next iteration.
		case *tcell.EventKey:
			if quit := a.handleKey(ev); quit {
				return ErrQuit
			}
		}
	}
}

// Shutdown releases the tracker and config watcher. Safe to call more
// than once.
func (a *App) Shutdown() {
	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return
	}
	a.shutdown = true
	tracker := a.tracker
	screen := a.screen
	a.mu.Unlock()

	if tracker != nil {
		tracker.Dispose()
	}
	if screen != nil {
		screen.Fini()
	}
}

// reload applies a changed configuration file.
func (a *App) reload(cfg *config.File) {
	if err := a.applyConfig(cfg); err != nil {
		a.reportError(err)
		return
	}
	a.update()
	a.poke()
}

// reportError surfaces a background error on the status line.
func (a *App) reportError(err error) {
	a.mu.Lock()
	a.statusErr = err.Error()
	screen := a.screen
	a.mu.Unlock()

	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// poke wakes the event loop for a redraw.
func (a *App) poke() {
	a.mu.Lock()
	screen := a.screen
	a.mu.Unlock()
	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// handleKey processes one key event; returns true on quit.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	_, rows := a.screenSize()
	page := float64(rows - reservedRows)
	if page < 1 {
		page = 1
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyDown:
		a.scrollBy(1)
	case tcell.KeyUp:
		a.scrollBy(-1)
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		a.scrollBy(page)
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		a.scrollBy(-page)
	case tcell.KeyHome:
		a.scrollTo(0)
	case tcell.KeyEnd:
		a.scrollTo(a.maxScroll())
	case tcell.KeyEnter:
		// Stands in for a tap: latches interaction without scrolling.
		a.recordInteraction()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'j':
			a.scrollBy(1)
		case 'k':
			a.scrollBy(-1)
		case 'g':
			a.scrollTo(0)
		case 'G':
			a.scrollTo(a.maxScroll())
		}
	}
	return false
}

// recordInteraction latches interaction and refreshes viewability.
func (a *App) recordInteraction() {
	a.mu.Lock()
	tracker := a.tracker
	a.mu.Unlock()

	tracker.RecordInteraction()
	a.update()
}

// scrollBy moves the scroll position and refreshes viewability.
func (a *App) scrollBy(delta float64) {
	a.mu.Lock()
	a.scroll += delta
	a.mu.Unlock()
	a.clampScroll()
	a.update()
}

// scrollTo jumps to an absolute scroll position.
func (a *App) scrollTo(offset float64) {
	a.mu.Lock()
	a.scroll = offset
	a.mu.Unlock()
	a.clampScroll()
	a.update()
}

// maxScroll returns the largest useful scroll offset.
func (a *App) maxScroll() float64 {
	a.mu.Lock()
	registry := a.registry
	a.mu.Unlock()

	_, rows := a.screenSize()
	viewport := float64(rows - reservedRows)
	limit := registry.TotalLength() - viewport
	if limit < 0 {
		limit = 0
	}
	return limit
}

// clampScroll keeps the scroll offset within the list.
func (a *App) clampScroll() {
	limit := a.maxScroll()
	a.mu.Lock()
	if a.scroll < 0 {
		a.scroll = 0
	}
	if a.scroll > limit {
		a.scroll = limit
	}
	a.mu.Unlock()
}

// screenSize returns the terminal dimensions, tolerating a nil screen
// for tests.
func (a *App) screenSize() (int, int) {
	a.mu.Lock()
	screen := a.screen
	a.mu.Unlock()

	if screen == nil {
		return 80, 24
	}
	return screen.Size()
}

// update feeds the current scroll state to the tracker. Tracker calls
// happen outside the app lock; the changed callback takes it.
func (a *App) update() {
	a.mu.Lock()
	tracker := a.tracker
	registry := a.registry
	itemCount := len(a.items)
	scroll := a.scroll
	a.mu.Unlock()

	_, rows := a.screenSize()
	viewport := float64(rows - reservedRows)
	if viewport < 1 {
		viewport = 1
	}

	renderRange := visibleRange(registry, itemCount, scroll, viewport)
	if err := tracker.Update(itemCount, scroll, viewport, renderRange); err != nil {
		a.reportError(err)
	}
}

// visibleRange bounds the tracker's scan to the indices the demo would
// actually render for this scroll position.
func visibleRange(registry *layout.Registry, itemCount int, scroll, viewport float64) *viewability.Range {
	if itemCount == 0 {
		return nil
	}

	first, last := -1, -1
	for i := 0; i < itemCount; i++ {
		frame, ok := registry.Frame(i)
		if !ok {
			continue
		}
		top := frame.Offset - scroll
		bottom := top + frame.Length
		if top < viewport && bottom > 0 {
			if first == -1 {
				first = i
			}
			last = i
		} else if first != -1 {
			break
		}
	}
	if first == -1 {
		return nil
	}
	return &viewability.Range{First: first, Last: last}
}

// draw renders the list and status lines.
func (a *App) draw() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.screen == nil {
		return
	}
	screen := a.screen
	screen.Clear()

	cols, rows := screen.Size()
	viewport := rows - reservedRows

	headerStyle := tcell.StyleDefault.Bold(true)
	drawText(screen, 0, 0, cols, headerStyle, "virtlist | j/k scroll, Enter interact, q quit")

	if a.registry != nil {
		rng := visibleRange(a.registry, len(a.items), a.scroll, float64(viewport))
		if rng != nil {
			for i := rng.First; i <= rng.Last; i++ {
				a.drawItemLocked(screen, cols, viewport, i)
			}
		}
	}

	status := fmt.Sprintf("offset %.0f  viewable %d  seen %d  notifications %d  change %s",
		a.scroll, len(a.viewable), len(a.seen), a.notifications, a.lastChange)
	if a.statusErr != "" {
		status = "error: " + a.statusErr
	}
	drawText(screen, 0, rows-1, cols, tcell.StyleDefault.Reverse(true), status)

	screen.Show()
}

// drawItemLocked renders one item's rows inside the viewport band.
func (a *App) drawItemLocked(screen tcell.Screen, cols, viewport int, index int) {
	frame, ok := a.registry.Frame(index)
	if !ok {
		return
	}
	item := a.items[index]

	style := tcell.StyleDefault
	marker := ' '
	if a.viewable[item.Key] {
		style = style.Foreground(tcell.ColorGreen).Bold(true)
		marker = '>'
	} else if _, seen := a.seen[item.Key]; seen {
		marker = '.'
	}

	top := int(frame.Offset - a.scroll)
	for row := 0; row < item.Rows; row++ {
		y := 1 + top + row
		if y < 1 || y > viewport {
			continue
		}
		line := fmt.Sprintf("%c %s  [%s]", marker, item.Title, item.Key[:8])
		if row > 0 {
			line = fmt.Sprintf("%c   …", marker)
		}
		drawText(screen, 0, y, cols, style, line)
	}
}

// drawText writes a clipped string at a screen position.
func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}

// Package pipeline turns filter-store change notifications into list
// fetches: a trailing-edge debounce coalesces rapid edits into one apply.
// Only the most recent pending apply survives; the fire callback sees the
// params as they were when the quiet window closed
package pipeline

import (
	"sync"
	"time"

	"flathunt/internal/core/catalog"
)

// DefaultQuiet is the debounce window used when none is configured.
// Tuned for slider-style controls: long enough to swallow a drag, short
// enough to feel immediate
const DefaultQuiet = 400 * time.Millisecond

// Debouncer schedules a fire after a quiet period of filter changes.
// The first notification establishes the comparison baseline without
// firing: stores replaying their initial state must not trigger a fetch,
// the bootstrap load already happened. Later notifications arm (or
// re-arm) the timer; on expiry the current params are compared against
// the last fired snapshot and the callback runs only when they differ
type Debouncer struct {
	quiet time.Duration
	fire  func(catalog.FilterParams)

	mu       sync.Mutex
	latest   catalog.FilterParams
	baseline string
	primed   bool

	kick chan struct{}
	quit chan struct{}
	done chan struct{}
	stop sync.Once
}

// New starts the debounce loop. quiet <= 0 falls back to DefaultQuiet;
// fire must be non nil and may block (a slow fetch only delays later
// applies, it never drops them)
func New(quiet time.Duration, fire func(catalog.FilterParams)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	if fire == nil {
		panic("pipeline: nil fire callback")
	}
	d := &Debouncer{
		quiet: quiet,
		fire:  fire,
		kick:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

// Notify records the newest params and re-arms the quiet timer. The very
// first call only records the baseline; it never fires
func (d *Debouncer) Notify(p catalog.FilterParams) {
	d.mu.Lock()
	d.latest = p.Clone()
	if !d.primed {
		d.primed = true
		d.baseline = p.Encode()
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Flush evaluates immediately on the caller's goroutine: if the latest
// params differ from the last fired snapshot, fire now. A no-op when
// nothing changed or nothing was ever notified
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.primed {
		d.mu.Unlock()
		return
	}
	enc := d.latest.Encode()
	if enc == d.baseline {
		d.mu.Unlock()
		return
	}
	d.baseline = enc
	p := d.latest.Clone()
	d.mu.Unlock()

	d.fire(p)
}

// Stop cancels any pending apply and waits for the loop to exit. Safe to
// call more than once
func (d *Debouncer) Stop() {
	d.stop.Do(func() { close(d.quit) })
	<-d.done
}

func (d *Debouncer) loop() {
	defer close(d.done)

	timer := time.NewTimer(d.quiet)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}

	for {
		select {
		case <-d.quit:
			timer.Stop()
			return
		case <-d.kick:
			timer.Reset(d.quiet)
		case <-timer.C:
			d.Flush()
		}
	}
}

// Package session wires the browse engine together: the filter store,
// the list store, the debounced apply pipeline, URL sync, and filter
// persistence. It owns the bootstrap order (load unfiltered, adopt
// metadata, restore URL or persisted filters) and the subscriptions that
// keep the three persistence channels consistent afterwards
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"flathunt/internal/browse/filterstore"
	"flathunt/internal/browse/liststore"
	"flathunt/internal/browse/persist"
	"flathunt/internal/browse/pipeline"
	"flathunt/internal/browse/urlstate"
	"flathunt/internal/core/catalog"
	"flathunt/internal/platform/logger"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Options configures a Session. Filters, List and Location are required
type Options struct {
	Filters  *filterstore.Store
	List     *liststore.Store
	Location urlstate.Location

	// Persist is the durable filter memory; nil disables it
	Persist *persist.Store

	// Quiet is the debounce window; <=0 uses the pipeline default
	Quiet time.Duration

	Log *logger.Logger
}

// Session is the browse page controller
type Session struct {
	filters *filterstore.Store
	list    *liststore.Store
	loc     urlstate.Location
	saved   *persist.Store
	deb     *pipeline.Debouncer
	log     logger.Logger

	mu  sync.Mutex
	ctx context.Context

	wired   sync.Once
	wiredUp atomic.Bool
}

// New builds a session around the given stores. The debounce pipeline
// starts immediately but stays idle until Start wires the subscriptions
func New(opts Options) *Session {
	if opts.Filters == nil || opts.List == nil || opts.Location == nil {
		panic("session: Filters, List and Location are required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("browse")
	}
	s := &Session{
		filters: opts.Filters,
		list:    opts.List,
		loc:     opts.Location,
		saved:   opts.Persist,
		log:     *log,
		ctx:     context.Background(),
	}
	s.deb = pipeline.New(opts.Quiet, s.fireApply)
	return s
}

// Start bootstraps the session: one unfiltered load to obtain the
// dataset metadata, filter-store initialization, restoration of URL
// filters (which win) or persisted filters, then the standing
// subscriptions. A failed bootstrap load is returned but leaves the
// session usable; Retry finishes the initialization once the API answers
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	err := s.list.Load(ctx)
	s.initFilters(ctx)
	s.wire()
	return err
}

// Stop cancels the pending apply, if any, and stops the pipeline
func (s *Session) Stop() { s.deb.Stop() }

// Filters returns the filter store the session drives
func (s *Session) Filters() *filterstore.Store { return s.filters }

// List returns the list store the session drives
func (s *Session) List() *liststore.Store { return s.list }

// Retry re-runs the current effective load after a failure. When the
// bootstrap itself failed the metadata adoption is completed here too
func (s *Session) Retry(ctx context.Context) error {
	err := s.list.Load(ctx)
	s.initFilters(ctx)
	return err
}

// Reset returns the whole session to its unfiltered state: filter
// defaults, empty list, clean URL, no persisted selection, then a fresh
// unfiltered load. With active filters the reload arrives through the
// pipeline (flushed immediately); without any the pipeline has nothing
// to fire, so the load is issued directly
func (s *Session) Reset(ctx context.Context) error {
	wasActive := s.filters.HasActiveFilters()

	s.filters.Reset()
	s.list.Reset()
	urlstate.Clear(s.loc)
	if s.saved != nil {
		s.saved.Delete()
	}

	if wasActive {
		s.deb.Flush()
		return nil
	}
	return s.list.Load(ctx)
}

// ApplyNow skips the remaining quiet window and applies any pending
// filter change immediately
func (s *Session) ApplyNow() { s.deb.Flush() }

// SortByTitle reorders the loaded page set by title, collated for
// humans rather than bytewise. Client-side only; never refetches
func (s *Session) SortByTitle() {
	c := collate.New(language.English, collate.Loose)
	s.list.Sort(func(a, b catalog.Apartment) bool {
		return c.CompareString(a.Title, b.Title) < 0
	})
}

// SortByPrice reorders the loaded page set by price. Client-side only
func (s *Session) SortByPrice(asc bool) {
	s.list.Sort(func(a, b catalog.Apartment) bool {
		if asc {
			return a.Price < b.Price
		}
		return a.Price > b.Price
	})
}

// initFilters adopts the dataset metadata into the filter store exactly
// once, then restores filters: URL parameters win over the persisted
// selection, both leniently sanitized. An adopted active selection
// triggers the filtered fetch and is mirrored back to the URL
func (s *Session) initFilters(ctx context.Context) {
	meta := s.list.Meta()
	if meta.IsZero() || !s.filters.Meta().IsZero() {
		return
	}

	// Read the URL before Init: once subscriptions are live, store
	// writes mirror back into it
	urlParams, urlFound := urlstate.Parse(s.loc, meta)

	s.filters.Init(meta)

	adopted := false
	if urlFound {
		adopted = s.filters.Apply(urlParams, false) == nil
	} else if s.saved != nil {
		if p, ok := s.saved.Load(meta); ok {
			adopted = s.filters.Apply(p, false) == nil
		}
	}
	if !adopted || !s.filters.HasActiveFilters() {
		return
	}

	if s.wiredUp.Load() {
		// late initialization (bootstrap retry): the pipeline is live
		// and already saw the adoption; apply it without the window
		s.deb.Flush()
		return
	}
	p := s.filters.Params()
	if err := s.list.ApplyFilters(ctx, &p); err != nil {
		s.log.Warn().Err(err).Msg("restored filter fetch failed")
	}
	urlstate.Write(s.loc, p, meta)
}

// wire attaches the standing subscriptions once: filter changes feed
// the debouncer, the URL mirror, and the persisted selection; external
// URL navigation feeds back into the filter store
func (s *Session) wire() {
	s.wired.Do(func() {
		s.filters.Subscribe(s.onFilterChange)

		// prime the pipeline with the committed state so the next
		// change fires but the bootstrap replay does not
		s.deb.Notify(s.filters.Params())

		if w, ok := s.loc.(urlstate.Watcher); ok {
			w.Watch(s.onNavigate)
		}
		s.wiredUp.Store(true)
	})
}

// onFilterChange runs after every accepted filter mutation
func (s *Session) onFilterChange(ch filterstore.Change) {
	s.deb.Notify(ch.Params)

	meta := s.filters.Meta()
	urlstate.Write(s.loc, ch.Params, meta)

	if s.saved == nil {
		return
	}
	if ch.Active {
		s.saved.Save(ch.Params)
	} else {
		// back at defaults: durable memory would only re-apply a no-op
		s.saved.Delete()
	}
}

// onNavigate runs when the location changes underneath us (back or
// forward navigation). Only usable filter parameters are adopted, and a
// URL that already matches the committed filters is a no-op, which is
// what breaks the write-then-watch feedback loop
func (s *Session) onNavigate() {
	meta := s.filters.Meta()
	if meta.IsZero() {
		return
	}
	p, found := urlstate.Parse(s.loc, meta)
	if !found {
		return
	}
	cur := s.filters.Params()
	if urlstate.Effective(p, meta).Encode() == urlstate.Effective(cur, meta).Encode() {
		return
	}
	if err := s.filters.Apply(p, false); err != nil {
		s.log.Warn().Err(err).Msg("url filter adoption failed")
		return
	}
	// a navigation is a discrete jump; no quiet window needed
	s.deb.Flush()
}

// fireApply is the pipeline callback: fetch with the settled params.
// The list store normalizes a default selection back to the unfiltered
// request path
func (s *Session) fireApply(p catalog.FilterParams) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	c := p.Clone()
	if err := s.list.ApplyFilters(ctx, &c); err != nil {
		s.log.Warn().Err(err).Msg("filter apply fetch failed")
	}
}

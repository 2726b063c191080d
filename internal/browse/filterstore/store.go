// Package filterstore owns the browse session's filter state: the current
// FilterParams, the metadata bounds they validate against, and the
// aggregate validation message shown next to the controls. Interactive
// edits go through strict validated setters; URL and persisted snapshots
// are adopted leniently. Every accepted mutation notifies subscribers
package filterstore

import (
	"sort"
	"sync"

	"flathunt/internal/core/catalog"
	perr "flathunt/internal/platform/errors"
)

const notInitializedMsg = "filters are not ready yet: metadata has not loaded"

// Change is delivered to subscribers after every accepted mutation
type Change struct {
	// Params is a snapshot clone; subscribers may keep it
	Params catalog.FilterParams

	// Active reports whether Params differ from the metadata defaults
	Active bool
}

// Snapshot is a point in time copy of the visible store state
type Snapshot struct {
	Params catalog.FilterParams
	Err    string
	Active bool
}

// Store is the filter state machine. Safe for concurrent use; subscribers
// are invoked outside the lock, in subscription order
type Store struct {
	mu     sync.Mutex
	meta   catalog.FilterMetadata
	params catalog.FilterParams
	errMsg string
	subs   []func(Change)
}

// New returns an uninitialized store. Mutations are rejected until Init
// delivers the metadata bounds
func New() *Store { return &Store{} }

// Init adopts the dataset metadata and resets params to the widest
// defaults. Calling it again re-adopts; callers normally guard so the
// bounds are set exactly once per session
func (s *Store) Init(meta catalog.FilterMetadata) {
	s.mu.Lock()
	s.meta = meta
	s.params = catalog.DefaultFilters(meta)
	s.errMsg = ""
	notify := s.changeLocked()
	s.mu.Unlock()
	notify()
}

// Meta returns the adopted metadata (zero before Init)
func (s *Store) Meta() catalog.FilterMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Params returns a clone of the current filter params
func (s *Store) Params() catalog.FilterParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

// Err returns the aggregate validation message, empty when clean
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// HasActiveFilters reports whether the params differ from the metadata
// defaults in any dimension. Derived, never stored
func (s *Store) HasActiveFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// Snapshot returns the visible state in one locked read
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Params: s.params.Clone(), Err: s.errMsg, Active: s.activeLocked()}
}

// Subscribe registers a change listener. Listeners live as long as the
// store; they receive a params snapshot after every accepted mutation
func (s *Store) Subscribe(fn func(Change)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// SetPriceRange replaces the price dimension. A nil side falls back to
// the metadata bound for that end. The candidate is strict validated
// against the metadata; on violation the previous params are kept and
// the aggregate message is recorded and returned
func (s *Store) SetPriceRange(min, max *int64) error {
	return s.mutate(func(p *catalog.FilterParams) {
		p.PriceMin, p.PriceMax = cloneI64(min), cloneI64(max)
	})
}

// SetAreaRange replaces the area dimension, same discipline as price
func (s *Store) SetAreaRange(min, max *float64) error {
	return s.mutate(func(p *catalog.FilterParams) {
		p.AreaMin, p.AreaMax = cloneF64(min), cloneF64(max)
	})
}

// SetFloorRange replaces the floor dimension, same discipline as price
func (s *Store) SetFloorRange(min, max *int) error {
	return s.mutate(func(p *catalog.FilterParams) {
		p.FloorMin, p.FloorMax = cloneInt(min), cloneInt(max)
	})
}

// SetRooms replaces the rooms selection wholesale. Input is deduped and
// sorted before validation so equal selections always compare equal
func (s *Store) SetRooms(rooms []int) error {
	return s.mutate(func(p *catalog.FilterParams) {
		p.Rooms = normalizeRooms(rooms)
	})
}

// ToggleRoom adds n to the selection when absent and removes it when
// present. The selection stays sorted ascending for deterministic display
func (s *Store) ToggleRoom(n int) error {
	return s.mutate(func(p *catalog.FilterParams) {
		for i, r := range p.Rooms {
			if r == n {
				p.Rooms = append(p.Rooms[:i], p.Rooms[i+1:]...)
				if len(p.Rooms) == 0 {
					p.Rooms = nil
				}
				return
			}
		}
		p.Rooms = append(p.Rooms, n)
		sort.Ints(p.Rooms)
	})
}

// Apply adopts a whole params value at once. strict=false sanitizes the
// input against the metadata and always accepts (URL and persisted
// snapshots must never corrupt the store); strict=true validates and
// rejects on violation, same as the setters
func (s *Store) Apply(p catalog.FilterParams, strict bool) error {
	s.mu.Lock()
	if s.meta.IsZero() {
		s.errMsg = notInitializedMsg
		s.mu.Unlock()
		return perr.New(perr.ErrorCodeValidation, notInitializedMsg)
	}
	if !strict {
		clean := catalog.Sanitize(p, s.meta)
		resolveBounds(&clean, s.meta)
		s.params = clean
		s.errMsg = ""
		notify := s.changeLocked()
		s.mu.Unlock()
		notify()
		return nil
	}
	candidate := p.Clone()
	candidate.Rooms = normalizeRooms(candidate.Rooms)
	resolveBounds(&candidate, s.meta)
	if err := catalog.ValidateErr(candidate, s.meta); err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		return err
	}
	s.params = candidate
	s.errMsg = ""
	notify := s.changeLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Reset restores the metadata defaults, clears the error, and notifies.
// Idempotent; a no-op before Init
func (s *Store) Reset() {
	s.mu.Lock()
	if s.meta.IsZero() {
		s.mu.Unlock()
		return
	}
	s.params = catalog.DefaultFilters(s.meta)
	s.errMsg = ""
	notify := s.changeLocked()
	s.mu.Unlock()
	notify()
}

// Revalidate re-checks the full current params against the metadata. The
// params are valid by construction, so a failure means the metadata
// changed underneath us; the aggregate message is recorded when a
// violation is found. A clean pass leaves any existing message alone so
// a just-rejected edit stays visible
func (s *Store) Revalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta.IsZero() {
		s.errMsg = notInitializedMsg
		return perr.New(perr.ErrorCodeValidation, notInitializedMsg)
	}
	if err := catalog.ValidateErr(s.params, s.meta); err != nil {
		s.errMsg = err.Error()
		return err
	}
	return nil
}

// mutate applies edit to a candidate clone, strict validates it, and
// commits on success. Shared by every interactive setter
func (s *Store) mutate(edit func(*catalog.FilterParams)) error {
	s.mu.Lock()
	if s.meta.IsZero() {
		s.errMsg = notInitializedMsg
		s.mu.Unlock()
		return perr.New(perr.ErrorCodeValidation, notInitializedMsg)
	}
	candidate := s.params.Clone()
	edit(&candidate)
	resolveBounds(&candidate, s.meta)
	if err := catalog.ValidateErr(candidate, s.meta); err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		return err
	}
	s.params = candidate
	s.errMsg = ""
	notify := s.changeLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// changeLocked captures the subscriber list and change payload under the
// lock and returns a func that delivers them after unlock
func (s *Store) changeLocked() func() {
	if len(s.subs) == 0 {
		return func() {}
	}
	subs := append(([]func(Change))(nil), s.subs...)
	ch := Change{Params: s.params.Clone(), Active: s.activeLocked()}
	return func() {
		for _, fn := range subs {
			fn(ch)
		}
	}
}

func (s *Store) activeLocked() bool {
	return !catalog.IsDefault(s.params, s.meta)
}

// resolveBounds fills unbounded range sides with the metadata bounds.
// Committed params always carry concrete range values, like the inputs
// they model, so the default comparison stays pointwise
func resolveBounds(p *catalog.FilterParams, meta catalog.FilterMetadata) {
	if meta.IsZero() {
		return
	}
	if p.PriceMin == nil {
		v := meta.PriceRange.Min
		p.PriceMin = &v
	}
	if p.PriceMax == nil {
		v := meta.PriceRange.Max
		p.PriceMax = &v
	}
	if p.AreaMin == nil {
		v := meta.AreaRange.Min
		p.AreaMin = &v
	}
	if p.AreaMax == nil {
		v := meta.AreaRange.Max
		p.AreaMax = &v
	}
	if p.FloorMin == nil {
		v := meta.FloorsRange.Min
		p.FloorMin = &v
	}
	if p.FloorMax == nil {
		v := meta.FloorsRange.Max
		p.FloorMax = &v
	}
}

func normalizeRooms(rooms []int) []int {
	if len(rooms) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(rooms))
	out := make([]int, 0, len(rooms))
	for _, r := range rooms {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

func cloneI64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneF64(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Package liststore owns the paginated apartment result set on the
// browse side: the accumulated pages, the request window, the has-more
// bookkeeping, and the filter metadata adopted from the first response.
// Fetching is injected so the store works the same against the HTTP
// client and against test fakes
package liststore

import (
	"context"
	"sort"
	"sync"

	"flathunt/internal/core/catalog"
	perr "flathunt/internal/platform/errors"
	"flathunt/internal/platform/logger"
)

// Fetcher loads one page. Normally the listing client's Fetch
type Fetcher func(ctx context.Context, p catalog.FilterParams, pg catalog.PaginationParams) (catalog.ApartmentListResponse, error)

// Snapshot is a point in time copy of the visible list state
type Snapshot struct {
	Apartments []catalog.Apartment
	Total      int
	Page       int
	Limit      int
	Loading    bool
	Err        string
	HasMore    bool
}

// Store accumulates paginated results. Safe for concurrent use. Every
// full reload stamps a request generation; a response whose generation
// is no longer current is discarded, so a slow continuation can never
// clobber a list that a filter change already replaced
type Store struct {
	fetch Fetcher
	log   logger.Logger

	mu         sync.Mutex
	apartments []catalog.Apartment
	filters    *catalog.FilterParams // nil = unfiltered
	meta       catalog.FilterMetadata
	total      int
	page       int
	limit      int
	loading    bool
	errMsg     string
	hasMore    bool
	gen        uint64
}

// Option mutates Store during New
type Option func(*Store)

// WithLimit sets the initial page size
func WithLimit(n int) Option {
	return func(s *Store) {
		if n >= 1 && n <= catalog.MaxLimit {
			s.limit = n
		}
	}
}

// WithLogger sets the logger used for fetch warnings
func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New builds an empty store around fetch
func New(fetch Fetcher, opts ...Option) *Store {
	if fetch == nil {
		panic("liststore: nil fetcher")
	}
	s := &Store{
		fetch:   fetch,
		log:     *logger.Named("liststore"),
		page:    catalog.DefaultPage,
		limit:   catalog.DefaultLimit,
		hasMore: true,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load performs a full reload: page 1 with the current filters. On
// success the list is replaced and total, has-more, and (once) metadata
// are adopted from the response. On failure the list is cleared rather
// than left showing results for some earlier filter, and the error is
// recorded. The previous items stay visible while the fetch is in
// flight; only the outcome replaces them
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.page = catalog.DefaultPage
	s.loading = true
	filters := s.requestFiltersLocked()
	pg := catalog.PaginationParams{Page: s.page, Limit: s.limit}
	s.mu.Unlock()

	resp, err := s.fetch(ctx, filters, pg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// superseded by a newer reload; that request owns the state now
		return nil
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.apartments = nil
		s.total = 0
		s.hasMore = false
		s.log.Warn().Err(err).Msg("list load failed")
		return err
	}
	s.adoptLocked(resp, false)
	return nil
}

// LoadMore fetches the next page and appends it. A no-op when a load is
// already in flight or nothing more is available. On failure the page
// increment is rolled back so a retry re-requests the same page, and the
// items already loaded are left untouched
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	s.page++
	s.loading = true
	filters := s.requestFiltersLocked()
	pg := catalog.PaginationParams{Page: s.page, Limit: s.limit}
	s.mu.Unlock()

	resp, err := s.fetch(ctx, filters, pg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.page--
		s.errMsg = err.Error()
		s.log.Warn().Err(err).Int("page", s.page+1).Msg("load more failed")
		return err
	}
	s.adoptLocked(resp, true)
	return nil
}

// ApplyFilters adopts a new filter selection and reloads from page 1.
// nil means unfiltered; a selection equal to the metadata defaults is
// normalized to nil so the request takes the unfiltered path
func (s *Store) ApplyFilters(ctx context.Context, p *catalog.FilterParams) error {
	s.mu.Lock()
	switch {
	case p == nil || p.IsZero():
		s.filters = nil
	case !s.meta.IsZero() && catalog.IsDefault(*p, s.meta):
		s.filters = nil
	default:
		c := p.Clone()
		s.filters = &c
	}
	s.mu.Unlock()
	return s.Load(ctx)
}

// Reset clears the visible state without fetching: empty list, page 1,
// no filters, no error. Metadata is kept, the bounds are a property of
// the dataset rather than of any one query. The generation bump discards
// any response still in flight
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.apartments = nil
	s.filters = nil
	s.total = 0
	s.page = catalog.DefaultPage
	s.loading = false
	s.errMsg = ""
	s.hasMore = true
}

// SetLimit changes the page size. Accumulated pages were fetched under
// the old size, so the rest of the state resets the same way Reset does;
// the caller triggers the reload. Out of range sizes are rejected
func (s *Store) SetLimit(n int) error {
	if n < 1 || n > catalog.MaxLimit {
		return perr.Newf(perr.ErrorCodeValidation, "page size must be between 1 and %d", catalog.MaxLimit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.limit = n
	s.apartments = nil
	s.filters = nil
	s.total = 0
	s.page = catalog.DefaultPage
	s.loading = false
	s.errMsg = ""
	s.hasMore = true
	return nil
}

// Sort reorders the loaded items in place. Client-side only: the order
// of pages still to be fetched is unaffected
func (s *Store) Sort(less func(a, b catalog.Apartment) bool) {
	if less == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.apartments, func(i, j int) bool {
		return less(s.apartments[i], s.apartments[j])
	})
}

// HasMore reports whether the server holds records beyond the loaded set
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Loading reports whether a fetch is in flight
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the recorded fetch error message, empty when clean
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Meta returns the filter metadata adopted from the first response that
// carried it. Zero until then
func (s *Store) Meta() catalog.FilterMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Filters returns a clone of the active filter selection, nil when the
// store is unfiltered
func (s *Store) Filters() *catalog.FilterParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filters == nil {
		return nil
	}
	c := s.filters.Clone()
	return &c
}

// Snapshot returns a copy of the visible state in one locked read
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Apartments: append([]catalog.Apartment(nil), s.apartments...),
		Total:      s.total,
		Page:       s.page,
		Limit:      s.limit,
		Loading:    s.loading,
		Err:        s.errMsg,
		HasMore:    s.hasMore,
	}
}

// requestFiltersLocked returns the filter params the next request should
// carry. Caller holds mu
func (s *Store) requestFiltersLocked() catalog.FilterParams {
	if s.filters == nil {
		return catalog.FilterParams{}
	}
	return s.filters.Clone()
}

// adoptLocked merges one successful response. Caller holds mu
func (s *Store) adoptLocked(resp catalog.ApartmentListResponse, appendPage bool) {
	if appendPage {
		s.apartments = append(s.apartments, resp.Apartments...)
	} else {
		s.apartments = append([]catalog.Apartment(nil), resp.Apartments...)
	}
	s.total = resp.Meta.Total
	s.hasMore = len(s.apartments) < s.total
	s.errMsg = ""
	if s.meta.IsZero() && resp.Meta.Filters != nil {
		s.meta = *resp.Meta.Filters
	}
}

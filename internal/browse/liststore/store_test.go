package liststore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"flathunt/internal/core/catalog"
	perr "flathunt/internal/platform/errors"
)

func testMeta() catalog.FilterMetadata {
	return catalog.FilterMetadata{
		PriceRange:     catalog.Int64Range{Min: 0, Max: 100000000},
		AreaRange:      catalog.FloatRange{Min: 1, Max: 1000},
		RoomsAvailable: []int{1, 2, 3, 4},
		FloorsRange:    catalog.IntRange{Min: 1, Max: 50},
	}
}

// dataset builds n records with prices stepping up by one million
func dataset(n int) []catalog.Apartment {
	out := make([]catalog.Apartment, n)
	for i := range out {
		out[i] = catalog.Apartment{
			ID: fmt.Sprintf("a%02d", i+1), Title: fmt.Sprintf("flat %02d", i+1),
			Price: int64(i+1) * 1000000, Area: 40, Rooms: 2, Floor: 3,
			TotalFloors: 9, Address: "somewhere",
		}
	}
	return out
}

// fakeFetcher pages over an in-memory dataset and records every request
type fakeFetcher struct {
	mu    sync.Mutex
	all   []catalog.Apartment
	meta  catalog.FilterMetadata
	calls []catalog.PaginationParams
	fail  bool
	// gate, when set, blocks a fetch until released (race tests)
	gate chan struct{}
}

func (f *fakeFetcher) fetch(_ context.Context, p catalog.FilterParams, pg catalog.PaginationParams) (catalog.ApartmentListResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pg)
	fail := f.fail
	gate := f.gate
	f.gate = nil
	var matched []catalog.Apartment
	for _, a := range f.all {
		if p.Matches(a) {
			matched = append(matched, a)
		}
	}
	meta := f.meta
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return catalog.ApartmentListResponse{}, perr.Unavailablef("fetch failed")
	}

	start := pg.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pg.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return catalog.ApartmentListResponse{
		Apartments: matched[start:end],
		Meta:       catalog.ListMeta{Total: len(matched), Filters: &meta},
	}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func TestLoadThenLoadMoreExhaustsDataset(t *testing.T) {
	f := &fakeFetcher{all: dataset(25), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Apartments) != 20 || snap.Total != 25 {
		t.Fatalf("after load: %d items, total %d", len(snap.Apartments), snap.Total)
	}
	if !snap.HasMore {
		t.Fatal("20 of 25 loaded should leave more")
	}

	if err := s.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	snap = s.Snapshot()
	if len(snap.Apartments) != 25 {
		t.Fatalf("after load more: %d items, want 25", len(snap.Apartments))
	}
	if snap.HasMore {
		t.Fatal("full dataset loaded, hasMore must be false")
	}
	if snap.Page != 2 {
		t.Fatalf("page = %d, want 2", snap.Page)
	}

	// exhausted: no further fetch
	calls := f.callCount()
	if err := s.LoadMore(context.Background()); err != nil {
		t.Fatalf("exhausted LoadMore: %v", err)
	}
	if f.callCount() != calls {
		t.Fatal("LoadMore with hasMore=false still fetched")
	}
	if got := s.Snapshot().Page; got != 2 {
		t.Fatalf("exhausted LoadMore moved page to %d", got)
	}
}

func TestLoadMoreFailureRollsBackPage(t *testing.T) {
	f := &fakeFetcher{all: dataset(25), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	f.setFail(true)
	if err := s.LoadMore(context.Background()); err == nil {
		t.Fatal("failed fetch must propagate")
	}

	snap := s.Snapshot()
	if snap.Page != 1 {
		t.Fatalf("page = %d after failed load more, want 1", snap.Page)
	}
	if len(snap.Apartments) != 20 {
		t.Fatalf("loaded items lost on failed continuation: %d", len(snap.Apartments))
	}
	if snap.Err == "" {
		t.Fatal("failure must record an error message")
	}

	// retry re-requests page 2, not page 3
	f.setFail(false)
	if err := s.LoadMore(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	f.mu.Lock()
	last := f.calls[len(f.calls)-1]
	f.mu.Unlock()
	if last.Page != 2 {
		t.Fatalf("retry requested page %d, want 2", last.Page)
	}
	if got := len(s.Snapshot().Apartments); got != 25 {
		t.Fatalf("after retry: %d items, want 25", got)
	}
}

func TestFailedReloadClearsList(t *testing.T) {
	f := &fakeFetcher{all: dataset(5), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(s.Snapshot().Apartments); got != 5 {
		t.Fatalf("loaded %d items", got)
	}

	f.setFail(true)
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("failed reload must propagate")
	}
	snap := s.Snapshot()
	if len(snap.Apartments) != 0 {
		t.Fatal("failed reload must not leave the previous result set visible")
	}
	if snap.Loading {
		t.Fatal("loading flag stuck after failure")
	}
	if snap.Err == "" {
		t.Fatal("failure must record an error message")
	}
}

func TestApplyFiltersRequestsFromPageOne(t *testing.T) {
	f := &fakeFetcher{all: dataset(25), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	min, max := int64(5000000), int64(10000000)
	p := catalog.FilterParams{PriceMin: &min, PriceMax: &max}
	if err := s.ApplyFilters(context.Background(), &p); err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}

	snap := s.Snapshot()
	if snap.Page != 1 {
		t.Fatalf("filter change must restart at page 1, got %d", snap.Page)
	}
	// prices 5..10 million = 6 records
	if len(snap.Apartments) != 6 || snap.Total != 6 {
		t.Fatalf("filtered: %d items, total %d, want 6/6", len(snap.Apartments), snap.Total)
	}
	for _, a := range snap.Apartments {
		if a.Price < min || a.Price > max {
			t.Fatalf("apartment %s price %d outside filter", a.ID, a.Price)
		}
	}
}

func TestApplyFiltersNormalizesDefaultsToUnfiltered(t *testing.T) {
	f := &fakeFetcher{all: dataset(5), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	defaults := catalog.DefaultFilters(testMeta())
	if err := s.ApplyFilters(context.Background(), &defaults); err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}
	if s.Filters() != nil {
		t.Fatal("metadata-default selection must normalize to the unfiltered path")
	}
}

func TestStaleContinuationIsDiscardedAfterReload(t *testing.T) {
	f := &fakeFetcher{all: dataset(25), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// LoadMore blocks on the gate while a filter reload overtakes it
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.LoadMore(context.Background()) }()

	// wait for the continuation to be registered, then reload under it
	for f.callCount() < 2 {
		time.Sleep(time.Millisecond)
	}
	min, max := int64(1000000), int64(3000000)
	p := catalog.FilterParams{PriceMin: &min, PriceMax: &max}
	if err := s.ApplyFilters(context.Background(), &p); err != nil {
		t.Fatalf("ApplyFilters: %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("discarded continuation should not error: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Apartments) != 3 || snap.Total != 3 {
		t.Fatalf("stale continuation leaked into the filtered list: %d items, total %d", len(snap.Apartments), snap.Total)
	}
	if snap.Page != 1 {
		t.Fatalf("page = %d, want 1 after the reload", snap.Page)
	}
}

func TestResetClearsStateButKeepsMetadata(t *testing.T) {
	f := &fakeFetcher{all: dataset(5), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Meta().IsZero() {
		t.Fatal("metadata not adopted from response")
	}

	s.Reset()
	snap := s.Snapshot()
	if len(snap.Apartments) != 0 || snap.Total != 0 || snap.Page != 1 || snap.Err != "" {
		t.Fatalf("reset state = %+v", snap)
	}
	if !snap.HasMore {
		t.Fatal("reset must restore hasMore")
	}
	if s.Meta().IsZero() {
		t.Fatal("reset must not drop dataset metadata")
	}
}

func TestSetLimitValidatesAndResets(t *testing.T) {
	f := &fakeFetcher{all: dataset(25), meta: testMeta()}
	s := New(f.fetch)

	if err := s.SetLimit(0); err == nil {
		t.Fatal("limit 0 accepted")
	}
	if err := s.SetLimit(101); err == nil {
		t.Fatal("limit 101 accepted")
	}

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.SetLimit(10); err != nil {
		t.Fatalf("SetLimit(10): %v", err)
	}
	snap := s.Snapshot()
	if snap.Limit != 10 || len(snap.Apartments) != 0 || snap.Page != 1 {
		t.Fatalf("after SetLimit: %+v", snap)
	}

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(s.Snapshot().Apartments); got != 10 {
		t.Fatalf("page size %d items, want 10", got)
	}
}

func TestSortReordersInPlace(t *testing.T) {
	f := &fakeFetcher{all: dataset(5), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Sort(func(a, b catalog.Apartment) bool { return a.Price > b.Price })

	snap := s.Snapshot()
	for i := 1; i < len(snap.Apartments); i++ {
		if snap.Apartments[i-1].Price < snap.Apartments[i].Price {
			t.Fatalf("not sorted descending at %d: %+v", i, snap.Apartments)
		}
	}
	if snap.Total != 5 {
		t.Fatal("sort must not touch bookkeeping")
	}
}

func TestSnapshotItemsAreACopy(t *testing.T) {
	f := &fakeFetcher{all: dataset(3), meta: testMeta()}
	s := New(f.fetch)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	snap.Apartments[0].ID = "mutated"
	if s.Snapshot().Apartments[0].ID == "mutated" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

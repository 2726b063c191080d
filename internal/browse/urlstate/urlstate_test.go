package urlstate

import (
	"net/url"
	"testing"

	"flathunt/internal/core/catalog"
)

func testMeta() catalog.FilterMetadata {
	return catalog.FilterMetadata{
		PriceRange:     catalog.Int64Range{Min: 0, Max: 100000000},
		AreaRange:      catalog.FloatRange{Min: 1, Max: 1000},
		RoomsAvailable: []int{1, 2, 3, 4},
		FloorsRange:    catalog.IntRange{Min: 1, Max: 50},
	}
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func TestParseEmptyQuery(t *testing.T) {
	loc := NewMemLocation("")
	if _, found := Parse(loc, testMeta()); found {
		t.Fatal("empty query should not report filters")
	}
	if HasFilters(loc) {
		t.Fatal("empty query should not have filter keys")
	}
}

func TestParseReadsAllDimensions(t *testing.T) {
	loc := NewMemLocation("priceMin=1000&priceMax=5000&areaMin=20.5&areaMax=80&rooms=2,3&floorMin=2&floorMax=9&view=grid")
	p, found := Parse(loc, testMeta())
	if !found {
		t.Fatal("expected filters to be found")
	}
	want := catalog.FilterParams{
		PriceMin: i64(1000), PriceMax: i64(5000),
		AreaMin: f64(20.5), AreaMax: f64(80),
		Rooms:    []int{2, 3},
		FloorMin: iptr(2), FloorMax: iptr(9),
	}
	if !p.Equal(want) {
		t.Fatalf("parsed %+v, want %+v", p, want)
	}
}

func TestParseDropsBrokenDimensionsOnly(t *testing.T) {
	// half price pair, non numeric area, ok floors
	loc := NewMemLocation("priceMin=1000&areaMin=abc&areaMax=50&floorMin=1&floorMax=5")
	p, found := Parse(loc, testMeta())
	if !found {
		t.Fatal("floors should still be adopted")
	}
	if p.PriceMin != nil || p.PriceMax != nil {
		t.Fatalf("half price pair should drop: %+v", p)
	}
	if p.AreaMin != nil || p.AreaMax != nil {
		t.Fatalf("broken area should drop: %+v", p)
	}
	if p.FloorMin == nil || *p.FloorMin != 1 || p.FloorMax == nil || *p.FloorMax != 5 {
		t.Fatalf("floors not adopted: %+v", p)
	}
}

func TestParseSanitizesAgainstMetadata(t *testing.T) {
	loc := NewMemLocation("priceMin=1000&priceMax=999999999999&rooms=3,7")
	p, found := Parse(loc, testMeta())
	if !found {
		t.Fatal("expected filters to be found")
	}
	if p.PriceMax == nil || *p.PriceMax != 100000000 {
		t.Fatalf("out of bounds price should clamp: %+v", p)
	}
	if len(p.Rooms) != 1 || p.Rooms[0] != 3 {
		t.Fatalf("unknown room should drop: %v", p.Rooms)
	}
}

func TestWriteOmitsDefaults(t *testing.T) {
	meta := testMeta()
	loc := NewMemLocation("view=grid&priceMin=1&priceMax=2")

	Write(loc, catalog.DefaultFilters(meta), meta)

	if HasFilters(loc) {
		t.Fatalf("default params should clear filter keys, got %q", loc.RawQuery())
	}
	if loc.Query().Get("view") != "grid" {
		t.Fatal("unrelated parameter lost")
	}
}

func TestWriteMirrorsActiveDimensions(t *testing.T) {
	meta := testMeta()
	loc := NewMemLocation("sort=price&floorMin=9&floorMax=9")

	p := catalog.DefaultFilters(meta)
	p.PriceMin, p.PriceMax = i64(2000), i64(8000)
	p.Rooms = []int{1, 4}
	Write(loc, p, meta)

	q := loc.Query()
	if got := q.Get("priceMin"); got != "2000" {
		t.Fatalf("priceMin = %q", got)
	}
	if got := q.Get("priceMax"); got != "8000" {
		t.Fatalf("priceMax = %q", got)
	}
	if got := q.Get("rooms"); got != "1,4" {
		t.Fatalf("rooms = %q", got)
	}
	if q.Get("floorMin") != "" || q.Get("floorMax") != "" {
		t.Fatalf("stale floor keys should be rewritten away: %q", loc.RawQuery())
	}
	if q.Get("areaMin") != "" || q.Get("areaMax") != "" {
		t.Fatalf("default area should stay omitted: %q", loc.RawQuery())
	}
	if q.Get("sort") != "price" {
		t.Fatal("unrelated parameter lost")
	}
}

func TestWriteCompletesHalfSetDimension(t *testing.T) {
	meta := testMeta()
	loc := NewMemLocation("")

	// only the max side differs from the dataset bounds
	p := catalog.FilterParams{PriceMax: i64(5000)}
	Write(loc, p, meta)

	q := loc.Query()
	if got := q.Get("priceMin"); got != "0" {
		t.Fatalf("priceMin should mirror the dataset bound, got %q", got)
	}
	if got := q.Get("priceMax"); got != "5000" {
		t.Fatalf("priceMax = %q", got)
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	meta := testMeta()
	loc := NewMemLocation("tab=map")

	p := catalog.FilterParams{
		PriceMin: i64(1500), PriceMax: i64(60000),
		AreaMin: f64(33.5), AreaMax: f64(120),
		Rooms:    []int{2, 3},
		FloorMin: iptr(3), FloorMax: iptr(12),
	}
	Write(loc, p, meta)

	got, found := Parse(loc, meta)
	if !found {
		t.Fatal("written filters should parse back")
	}
	if !got.Equal(p) {
		t.Fatalf("round trip changed params:\n wrote %+v\n read  %+v", p, got)
	}
}

func TestClearRemovesFilterKeysOnly(t *testing.T) {
	loc := NewMemLocation("priceMin=1&priceMax=2&rooms=2&page=3&view=grid")

	Clear(loc)

	if HasFilters(loc) {
		t.Fatalf("filter keys should be gone, got %q", loc.RawQuery())
	}
	q := loc.Query()
	if q.Get("page") != "3" || q.Get("view") != "grid" {
		t.Fatalf("unrelated parameters lost: %q", loc.RawQuery())
	}
}

func TestMemLocationWatchSemantics(t *testing.T) {
	loc := NewMemLocation("")
	var notified int
	loc.Watch(func() { notified++ })

	loc.SetQuery(url.Values{"priceMin": {"1"}, "priceMax": {"2"}})
	if notified != 0 {
		t.Fatal("SetQuery must not notify watchers")
	}

	loc.Navigate("rooms=2")
	if notified != 1 {
		t.Fatalf("Navigate should notify once, got %d", notified)
	}
	if got := loc.Query().Get("rooms"); got != "2" {
		t.Fatalf("navigate did not replace query: %q", got)
	}
	if loc.Query().Get("priceMin") != "" {
		t.Fatal("navigate should replace, not merge")
	}
}

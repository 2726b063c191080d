package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

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

// clock is a settable time source for expiry tests
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(t *testing.T, ck *clock) *Store {
	t.Helper()
	return New(t.TempDir(), WithClock(ck.now))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	p := catalog.FilterParams{
		PriceMin: i64(1000), PriceMax: i64(50000),
		AreaMin: f64(25.5), AreaMax: f64(90),
		Rooms:    []int{2, 3},
		FloorMin: iptr(2), FloorMax: iptr(10),
	}
	s.Save(p)

	got, ok := s.Load(testMeta())
	if !ok {
		t.Fatal("fresh save should load")
	}
	if !got.Equal(p) {
		t.Fatalf("round trip changed params:\n saved %+v\n loaded %+v", p, got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	if _, ok := s.Load(testMeta()); ok {
		t.Fatal("missing file should not load")
	}
}

func TestLoadCorruptFileDeletes(t *testing.T) {
	ck := &clock{t: time.Now()}
	dir := t.TempDir()
	s := New(dir, WithClock(ck.now))

	path := filepath.Join(dir, "filters.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Load(testMeta()); ok {
		t.Fatal("corrupt file should not load")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("corrupt file should be deleted on read")
	}
}

func TestLoadExpiredDeletes(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	s.Save(catalog.FilterParams{PriceMin: i64(1000), PriceMax: i64(2000)})

	ck.t = ck.t.Add(MaxAge + time.Hour)
	if _, ok := s.Load(testMeta()); ok {
		t.Fatal("expired file should not load")
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatal("expired file should be deleted on read")
	}
}

func TestLoadWithinWindow(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	p := catalog.FilterParams{Rooms: []int{2}}
	s.Save(p)

	ck.t = ck.t.Add(6 * 24 * time.Hour)
	got, ok := s.Load(testMeta())
	if !ok {
		t.Fatal("six day old file is still fresh")
	}
	if !got.Equal(p) {
		t.Fatalf("loaded %+v, want %+v", got, p)
	}
}

func TestLoadSanitizesAgainstMetadata(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	// saved under wider bounds than the current dataset allows
	s.Save(catalog.FilterParams{
		PriceMin: i64(-500), PriceMax: i64(999999999999),
		Rooms: []int{3, 9},
	})

	got, ok := s.Load(testMeta())
	if !ok {
		t.Fatal("expected load")
	}
	if got.PriceMin == nil || *got.PriceMin != 0 {
		t.Fatalf("price min should clamp to 0: %+v", got)
	}
	if got.PriceMax == nil || *got.PriceMax != 100000000 {
		t.Fatalf("price max should clamp: %+v", got)
	}
	if len(got.Rooms) != 1 || got.Rooms[0] != 3 {
		t.Fatalf("unknown room should drop: %v", got.Rooms)
	}
}

func TestHalfPairIsNotPersisted(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	s.Save(catalog.FilterParams{PriceMin: i64(1000), Rooms: []int{1}})

	got, ok := s.Load(testMeta())
	if !ok {
		t.Fatal("rooms alone should still load")
	}
	if got.PriceMin != nil || got.PriceMax != nil {
		t.Fatalf("half price pair should not survive: %+v", got)
	}
	if len(got.Rooms) != 1 || got.Rooms[0] != 1 {
		t.Fatalf("rooms = %v", got.Rooms)
	}
}

func TestZeroParamsDoNotLoad(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	s.Save(catalog.FilterParams{})
	if _, ok := s.Load(testMeta()); ok {
		t.Fatal("an empty selection is nothing to adopt")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	ck := &clock{t: time.Now()}
	s := newStore(t, ck)

	s.Save(catalog.FilterParams{Rooms: []int{2}})
	s.Delete()
	s.Delete()

	if _, ok := s.Load(testMeta()); ok {
		t.Fatal("deleted file should not load")
	}
}

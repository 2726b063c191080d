// Package persist keeps the active filter selection on disk between
// browse sessions. Storage is best effort: failures are logged and the
// session carries on without durable memory, never with an error
package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"flathunt/internal/core/catalog"
	"flathunt/internal/platform/logger"
	ptime "flathunt/internal/platform/time"
)

const fileName = "filters.json"

// MaxAge is how long a saved selection stays adoptable. Older files are
// deleted on read and a fresh session starts from defaults
const MaxAge = 7 * 24 * time.Hour

// fileShape is the stored form: nullable [min,max] pairs per range
// dimension, the rooms selection, and the write time in epoch
// milliseconds. A pair is present only when both sides were constrained
type fileShape struct {
	PriceRange *catalog.Int64Range `json:"priceRange"`
	AreaRange  *catalog.FloatRange `json:"areaRange"`
	Rooms      []int               `json:"rooms,omitempty"`
	Floors     *catalog.IntRange   `json:"floors"`
	Timestamp  int64               `json:"timestamp"`
}

// Store reads and writes <dir>/filters.json. The dir is the same state
// root the response cache namespaces itself under, so clearing cached
// responses never touches saved filters
type Store struct {
	path   string
	maxAge time.Duration
	log    logger.Logger
	now    func() time.Time
}

// Option mutates Store during New
type Option func(*Store)

// WithLogger sets the logger used for storage warnings
func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a store rooted at dir. The directory is created lazily on
// the first Save
func New(dir string, opts ...Option) *Store {
	s := &Store{
		path:   filepath.Join(dir, fileName),
		maxAge: MaxAge,
		log:    *logger.Named("persist"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the file the store reads and writes
func (s *Store) Path() string { return s.path }

// Save writes p atomically with the current time as its timestamp.
// Failures are logged, not returned
func (s *Store) Save(p catalog.FilterParams) {
	shape := toShape(p, ptime.UnixMS(s.now()))

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("filter save failed")
		return
	}
	if err := writeAtomic(s.path, shape); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("filter save failed")
	}
}

// Load returns the saved selection sanitized against meta. Missing,
// corrupt, empty or expired files yield (zero, false); corrupt and
// expired files are deleted on read so they are not retried forever
func (s *Store) Load(meta catalog.FilterMetadata) (catalog.FilterParams, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("filter load failed")
		}
		return catalog.FilterParams{}, false
	}

	var shape fileShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("persisted filters unreadable, dropping")
		s.Delete()
		return catalog.FilterParams{}, false
	}

	written := ptime.FromUnixMS(shape.Timestamp)
	if written.IsZero() || s.now().Sub(written) > s.maxAge {
		s.Delete()
		return catalog.FilterParams{}, false
	}

	p := shape.params()
	if p.IsZero() {
		return catalog.FilterParams{}, false
	}
	return catalog.Sanitize(p, meta), true
}

// Delete removes the file, ignoring not-exist
func (s *Store) Delete() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", s.path).Msg("filter delete failed")
	}
}

func toShape(p catalog.FilterParams, ts int64) fileShape {
	shape := fileShape{Timestamp: ts}
	if p.PriceMin != nil && p.PriceMax != nil {
		shape.PriceRange = &catalog.Int64Range{Min: *p.PriceMin, Max: *p.PriceMax}
	}
	if p.AreaMin != nil && p.AreaMax != nil {
		shape.AreaRange = &catalog.FloatRange{Min: *p.AreaMin, Max: *p.AreaMax}
	}
	if p.FloorMin != nil && p.FloorMax != nil {
		shape.Floors = &catalog.IntRange{Min: *p.FloorMin, Max: *p.FloorMax}
	}
	if len(p.Rooms) > 0 {
		shape.Rooms = append([]int(nil), p.Rooms...)
	}
	return shape
}

func (f fileShape) params() catalog.FilterParams {
	var p catalog.FilterParams
	if f.PriceRange != nil {
		lo, hi := f.PriceRange.Min, f.PriceRange.Max
		p.PriceMin, p.PriceMax = &lo, &hi
	}
	if f.AreaRange != nil {
		lo, hi := f.AreaRange.Min, f.AreaRange.Max
		p.AreaMin, p.AreaMax = &lo, &hi
	}
	if f.Floors != nil {
		lo, hi := f.Floors.Min, f.Floors.Max
		p.FloorMin, p.FloorMax = &lo, &hi
	}
	if len(f.Rooms) > 0 {
		p.Rooms = append([]int(nil), f.Rooms...)
	}
	return p
}

// writeAtomic saves the shape via a .part file and rename, the same
// discipline the response cache uses for its entry files
func writeAtomic(path string, shape fileShape) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(shape); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

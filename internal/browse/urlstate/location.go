package urlstate

import (
	"net/url"
	"sync"
)

// MemLocation is an in-process Location. The terminal client uses it as
// its address bar stand-in; tests use it to drive navigation. SetQuery
// replaces the query without telling watchers (our own mirror writes);
// Navigate replaces it and notifies (an external back/forward jump)
type MemLocation struct {
	mu       sync.Mutex
	values   url.Values
	watchers []func()
}

// NewMemLocation parses rawQuery ("priceMin=1&rooms=2,3", no leading ?)
// as the starting query string. An unparsable query starts empty
func NewMemLocation(rawQuery string) *MemLocation {
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		v = url.Values{}
	}
	return &MemLocation{values: v}
}

// Query returns a copy of the current query values
func (l *MemLocation) Query() url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneValues(l.values)
}

// SetQuery replaces the query values. Watchers are not notified: this is
// the replace-style write URL sync performs, and echoing it back would
// loop
func (l *MemLocation) SetQuery(v url.Values) {
	l.mu.Lock()
	l.values = cloneValues(v)
	l.mu.Unlock()
}

// Navigate replaces the query as an external navigation would and
// notifies watchers. Unparsable input clears the query
func (l *MemLocation) Navigate(rawQuery string) {
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		v = url.Values{}
	}
	l.mu.Lock()
	l.values = v
	fns := append([]func(){}, l.watchers...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Watch registers fn to run on Navigate
func (l *MemLocation) Watch(fn func()) {
	l.mu.Lock()
	l.watchers = append(l.watchers, fn)
	l.mu.Unlock()
}

// RawQuery returns the canonical encoded form of the current query
func (l *MemLocation) RawQuery() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values.Encode()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

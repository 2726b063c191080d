package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Wire names of the seven filter query parameters. URL sync and the
// listing endpoint must agree on these exactly; anything else in a query
// string is left alone
const (
	ParamPriceMin = "priceMin"
	ParamPriceMax = "priceMax"
	ParamAreaMin  = "areaMin"
	ParamAreaMax  = "areaMax"
	ParamRooms    = "rooms"
	ParamFloorMin = "floorMin"
	ParamFloorMax = "floorMax"
)

// FilterKeys lists the filter parameter names in wire order
var FilterKeys = []string{
	ParamPriceMin, ParamPriceMax,
	ParamAreaMin, ParamAreaMax,
	ParamRooms,
	ParamFloorMin, ParamFloorMax,
}

// FilterParams is one multi dimensional search constraint. A nil pointer
// or empty rooms slice means the dimension is unconstrained. Owned by the
// filter store; everything else treats values as snapshots
type FilterParams struct {
	PriceMin *int64   `json:"priceMin,omitempty"`
	PriceMax *int64   `json:"priceMax,omitempty"`
	AreaMin  *float64 `json:"areaMin,omitempty"`
	AreaMax  *float64 `json:"areaMax,omitempty"`
	Rooms    []int    `json:"rooms,omitempty"`
	FloorMin *int     `json:"floorMin,omitempty"`
	FloorMax *int     `json:"floorMax,omitempty"`
}

// IsZero reports whether no dimension is constrained
func (p FilterParams) IsZero() bool {
	return p.PriceMin == nil && p.PriceMax == nil &&
		p.AreaMin == nil && p.AreaMax == nil &&
		len(p.Rooms) == 0 &&
		p.FloorMin == nil && p.FloorMax == nil
}

// Equal deep compares two params. Rooms order matters; callers keep rooms
// sorted ascending so equality stays deterministic
func (p FilterParams) Equal(o FilterParams) bool {
	if !eqI64(p.PriceMin, o.PriceMin) || !eqI64(p.PriceMax, o.PriceMax) {
		return false
	}
	if !eqF64(p.AreaMin, o.AreaMin) || !eqF64(p.AreaMax, o.AreaMax) {
		return false
	}
	if !eqInt(p.FloorMin, o.FloorMin) || !eqInt(p.FloorMax, o.FloorMax) {
		return false
	}
	if len(p.Rooms) != len(o.Rooms) {
		return false
	}
	for i := range p.Rooms {
		if p.Rooms[i] != o.Rooms[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy (the rooms slice is copied)
func (p FilterParams) Clone() FilterParams {
	c := FilterParams{
		PriceMin: cloneI64(p.PriceMin),
		PriceMax: cloneI64(p.PriceMax),
		AreaMin:  cloneF64(p.AreaMin),
		AreaMax:  cloneF64(p.AreaMax),
		FloorMin: cloneInt(p.FloorMin),
		FloorMax: cloneInt(p.FloorMax),
	}
	if len(p.Rooms) > 0 {
		c.Rooms = append([]int(nil), p.Rooms...)
	}
	return c
}

// Matches reports whether a satisfies every populated dimension.
// Dimensions combine with AND; the rooms set is an OR within its dimension
func (p FilterParams) Matches(a Apartment) bool {
	if p.PriceMin != nil && a.Price < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && a.Price > *p.PriceMax {
		return false
	}
	if p.AreaMin != nil && a.Area < *p.AreaMin {
		return false
	}
	if p.AreaMax != nil && a.Area > *p.AreaMax {
		return false
	}
	if p.FloorMin != nil && a.Floor < *p.FloorMin {
		return false
	}
	if p.FloorMax != nil && a.Floor > *p.FloorMax {
		return false
	}
	if len(p.Rooms) > 0 {
		ok := false
		for _, r := range p.Rooms {
			if a.Rooms == r {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// QueryValues appends the populated dimensions to v using the wire names.
// Rooms is comma joined and omitted entirely when empty; numbers are
// plain decimal (no exponent forms)
func (p FilterParams) QueryValues(v url.Values) {
	if p.PriceMin != nil {
		v.Set(ParamPriceMin, strconv.FormatInt(*p.PriceMin, 10))
	}
	if p.PriceMax != nil {
		v.Set(ParamPriceMax, strconv.FormatInt(*p.PriceMax, 10))
	}
	if p.AreaMin != nil {
		v.Set(ParamAreaMin, formatFloat(*p.AreaMin))
	}
	if p.AreaMax != nil {
		v.Set(ParamAreaMax, formatFloat(*p.AreaMax))
	}
	if len(p.Rooms) > 0 {
		v.Set(ParamRooms, joinInts(p.Rooms))
	}
	if p.FloorMin != nil {
		v.Set(ParamFloorMin, strconv.Itoa(*p.FloorMin))
	}
	if p.FloorMax != nil {
		v.Set(ParamFloorMax, strconv.Itoa(*p.FloorMax))
	}
}

// Encode returns the canonical query string form of p. url.Values.Encode
// sorts by key, so equal params always encode identically regardless of
// construction order. The cache key and the debounce comparison both use
// this form
func (p FilterParams) Encode() string {
	v := url.Values{}
	p.QueryValues(v)
	return v.Encode()
}

// ParamsFromValues reads the seven filter keys out of v. A range pair is
// adopted only when both members parse and min<=max; a half pair or an
// inverted pair drops the whole dimension. Rooms accepts a single comma
// joined value or repeated keys, keeps positive numbers only, dedupes and
// sorts ascending. found reports whether at least one dimension was
// adopted. Callers sanitize the result against metadata before use
func ParamsFromValues(v url.Values) (p FilterParams, found bool) {
	if lo, hi, ok := int64Pair(v.Get(ParamPriceMin), v.Get(ParamPriceMax)); ok {
		p.PriceMin, p.PriceMax = &lo, &hi
		found = true
	}
	if lo, hi, ok := floatPair(v.Get(ParamAreaMin), v.Get(ParamAreaMax)); ok {
		p.AreaMin, p.AreaMax = &lo, &hi
		found = true
	}
	if lo, hi, ok := intPair(v.Get(ParamFloorMin), v.Get(ParamFloorMax)); ok {
		p.FloorMin, p.FloorMax = &lo, &hi
		found = true
	}
	if rooms := parseRooms(v[ParamRooms]); len(rooms) > 0 {
		p.Rooms = rooms
		found = true
	}
	return p, found
}

// HasFilterKeys reports whether any of the seven filter keys is present
// non empty, independent of value validity
func HasFilterKeys(v url.Values) bool {
	for _, k := range FilterKeys {
		if v.Get(k) != "" {
			return true
		}
	}
	return false
}

// PaginationParams is the page window of a listing request
type PaginationParams struct {
	Page  int `json:"page" validate:"min=1" example:"1"`
	Limit int `json:"limit" validate:"min=1,max=100" example:"20"`
}

const (
	// DefaultPage is the first page
	DefaultPage = 1

	// DefaultLimit is the page size used when none is requested
	DefaultLimit = 20

	// MaxLimit caps the page size a request may ask for
	MaxLimit = 100
)

// DefaultPagination returns the page=1 limit=20 window
func DefaultPagination() PaginationParams {
	return PaginationParams{Page: DefaultPage, Limit: DefaultLimit}
}

// Offset converts the window into a slice offset
func (p PaginationParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// QueryValues appends page and limit to v
func (p PaginationParams) QueryValues(v url.Values) {
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
}

// PaginationFromValues reads page and limit out of v, clamping rather
// than rejecting: a missing or invalid page becomes 1, a missing or
// invalid limit becomes the default, an oversized limit becomes the cap
func PaginationFromValues(v url.Values) PaginationParams {
	p := DefaultPagination()
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n >= 1 {
		p.Limit = n
		if p.Limit > MaxLimit {
			p.Limit = MaxLimit
		}
	}
	return p
}

// helpers

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func int64Pair(lo, hi string) (int64, int64, bool) {
	if lo == "" || hi == "" {
		return 0, 0, false
	}
	l, err1 := strconv.ParseInt(lo, 10, 64)
	h, err2 := strconv.ParseInt(hi, 10, 64)
	if err1 != nil || err2 != nil || l > h {
		return 0, 0, false
	}
	return l, h, true
}

func floatPair(lo, hi string) (float64, float64, bool) {
	if lo == "" || hi == "" {
		return 0, 0, false
	}
	l, err1 := strconv.ParseFloat(lo, 64)
	h, err2 := strconv.ParseFloat(hi, 64)
	if err1 != nil || err2 != nil || l != l || h != h || l > h {
		return 0, 0, false
	}
	return l, h, true
}

func intPair(lo, hi string) (int, int, bool) {
	if lo == "" || hi == "" {
		return 0, 0, false
	}
	l, err1 := strconv.Atoi(lo)
	h, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil || l > h {
		return 0, 0, false
	}
	return l, h, true
}

func parseRooms(raw []string) []int {
	seen := map[int]bool{}
	var out []int
	for _, chunk := range raw {
		for _, part := range strings.Split(chunk, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || n <= 0 || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

func eqI64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqF64(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
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

package catalog

import (
	"fmt"
	"sort"
	"strings"

	perr "flathunt/internal/platform/errors"
)

// Violation is a single rejected filter dimension. Field names the
// dimension (price, area, rooms, floors), Code is a stable machine label,
// Msg is the human explanation shown next to the control
type Violation struct {
	Field string `json:"field"`
	Code  string `json:"code"`
	Msg   string `json:"message"`
}

// Violation codes. Stable; the browse UI keys off them
const (
	ViolationBelowMin      = "below_min"
	ViolationAboveMax      = "above_max"
	ViolationInvertedRange = "inverted_range"
	ViolationUnknownRoom   = "unknown_room"
)

// Dimension field names as they appear in violations
const (
	FieldPrice  = "price"
	FieldArea   = "area"
	FieldRooms  = "rooms"
	FieldFloors = "floors"
)

func (v Violation) String() string { return fmt.Sprintf("%s: %s", v.Field, v.Msg) }

// Validate checks p against the dataset bounds in meta and returns every
// violation found, one per offending dimension check. Bounds are
// inclusive. Dimensions validate independently: a bad price never blocks
// a good area. Unset dimensions are always valid, as is an empty rooms
// selection. A zero meta imposes no bounds, so only inversions can fail
func Validate(p FilterParams, meta FilterMetadata) []Violation {
	var vs []Violation

	bounded := !meta.IsZero()

	if p.PriceMin != nil && bounded && *p.PriceMin < meta.PriceRange.Min {
		vs = append(vs, Violation{FieldPrice, ViolationBelowMin,
			fmt.Sprintf("minimum price %d is below the lowest listing price %d", *p.PriceMin, meta.PriceRange.Min)})
	}
	if p.PriceMax != nil && bounded && *p.PriceMax > meta.PriceRange.Max {
		vs = append(vs, Violation{FieldPrice, ViolationAboveMax,
			fmt.Sprintf("maximum price %d is above the highest listing price %d", *p.PriceMax, meta.PriceRange.Max)})
	}
	if p.PriceMin != nil && p.PriceMax != nil && *p.PriceMin > *p.PriceMax {
		vs = append(vs, Violation{FieldPrice, ViolationInvertedRange,
			fmt.Sprintf("price range is inverted: %d > %d", *p.PriceMin, *p.PriceMax)})
	}

	if p.AreaMin != nil && bounded && *p.AreaMin < meta.AreaRange.Min {
		vs = append(vs, Violation{FieldArea, ViolationBelowMin,
			fmt.Sprintf("minimum area %s is below the smallest listing area %s", formatFloat(*p.AreaMin), formatFloat(meta.AreaRange.Min))})
	}
	if p.AreaMax != nil && bounded && *p.AreaMax > meta.AreaRange.Max {
		vs = append(vs, Violation{FieldArea, ViolationAboveMax,
			fmt.Sprintf("maximum area %s is above the largest listing area %s", formatFloat(*p.AreaMax), formatFloat(meta.AreaRange.Max))})
	}
	if p.AreaMin != nil && p.AreaMax != nil && *p.AreaMin > *p.AreaMax {
		vs = append(vs, Violation{FieldArea, ViolationInvertedRange,
			fmt.Sprintf("area range is inverted: %s > %s", formatFloat(*p.AreaMin), formatFloat(*p.AreaMax))})
	}

	if bounded && len(meta.RoomsAvailable) > 0 {
		for _, r := range p.Rooms {
			if !meta.AllowsRoom(r) {
				vs = append(vs, Violation{FieldRooms, ViolationUnknownRoom,
					fmt.Sprintf("no listings with %d rooms", r)})
			}
		}
	}

	if p.FloorMin != nil && bounded && *p.FloorMin < meta.FloorsRange.Min {
		vs = append(vs, Violation{FieldFloors, ViolationBelowMin,
			fmt.Sprintf("minimum floor %d is below the lowest listing floor %d", *p.FloorMin, meta.FloorsRange.Min)})
	}
	if p.FloorMax != nil && bounded && *p.FloorMax > meta.FloorsRange.Max {
		vs = append(vs, Violation{FieldFloors, ViolationAboveMax,
			fmt.Sprintf("maximum floor %d is above the highest listing floor %d", *p.FloorMax, meta.FloorsRange.Max)})
	}
	if p.FloorMin != nil && p.FloorMax != nil && *p.FloorMin > *p.FloorMax {
		vs = append(vs, Violation{FieldFloors, ViolationInvertedRange,
			fmt.Sprintf("floor range is inverted: %d > %d", *p.FloorMin, *p.FloorMax)})
	}

	return vs
}

// ValidateErr runs Validate and folds the violations into a single
// validation error: messages comma joined, field set to the first
// offending dimension. Returns nil when p is valid
func ValidateErr(p FilterParams, meta FilterMetadata) error {
	vs := Validate(p, meta)
	if len(vs) == 0 {
		return nil
	}
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Msg
	}
	err := perr.New(perr.ErrorCodeValidation, strings.Join(msgs, ", "))
	return perr.WithField(err, vs[0].Field)
}

// Sanitize coerces p into a valid state against meta instead of
// rejecting it: range bounds clamp to the dataset bounds, a range still
// inverted after clamping is swapped, rooms outside the available set
// are dropped and the rest deduped and sorted. Unset dimensions stay
// unset. Used for input the user did not just type (URLs, persisted
// snapshots), where silently correcting beats an error banner
func Sanitize(p FilterParams, meta FilterMetadata) FilterParams {
	out := p.Clone()
	if meta.IsZero() {
		sanitizeInversions(&out)
		return out
	}

	if out.PriceMin != nil {
		*out.PriceMin = clampI64(*out.PriceMin, meta.PriceRange.Min, meta.PriceRange.Max)
	}
	if out.PriceMax != nil {
		*out.PriceMax = clampI64(*out.PriceMax, meta.PriceRange.Min, meta.PriceRange.Max)
	}
	if out.AreaMin != nil {
		*out.AreaMin = clampF64(*out.AreaMin, meta.AreaRange.Min, meta.AreaRange.Max)
	}
	if out.AreaMax != nil {
		*out.AreaMax = clampF64(*out.AreaMax, meta.AreaRange.Min, meta.AreaRange.Max)
	}
	if out.FloorMin != nil {
		*out.FloorMin = clampInt(*out.FloorMin, meta.FloorsRange.Min, meta.FloorsRange.Max)
	}
	if out.FloorMax != nil {
		*out.FloorMax = clampInt(*out.FloorMax, meta.FloorsRange.Min, meta.FloorsRange.Max)
	}
	sanitizeInversions(&out)

	if len(out.Rooms) > 0 && len(meta.RoomsAvailable) > 0 {
		kept := out.Rooms[:0]
		seen := map[int]bool{}
		for _, r := range out.Rooms {
			if meta.AllowsRoom(r) && !seen[r] {
				seen[r] = true
				kept = append(kept, r)
			}
		}
		sort.Ints(kept)
		if len(kept) == 0 {
			out.Rooms = nil
		} else {
			out.Rooms = kept
		}
	}
	return out
}

// DefaultFilters returns the widest params for a dataset: range bounds
// pinned to the metadata extremes and no rooms selection. With default
// filters every listing matches
func DefaultFilters(meta FilterMetadata) FilterParams {
	p := FilterParams{}
	if meta.IsZero() {
		return p
	}
	pMin, pMax := meta.PriceRange.Min, meta.PriceRange.Max
	aMin, aMax := meta.AreaRange.Min, meta.AreaRange.Max
	fMin, fMax := meta.FloorsRange.Min, meta.FloorsRange.Max
	p.PriceMin, p.PriceMax = &pMin, &pMax
	p.AreaMin, p.AreaMax = &aMin, &aMax
	p.FloorMin, p.FloorMax = &fMin, &fMax
	return p
}

// IsDefault reports whether p equals the widest params for meta
func IsDefault(p FilterParams, meta FilterMetadata) bool {
	return p.Equal(DefaultFilters(meta))
}

func sanitizeInversions(p *FilterParams) {
	if p.PriceMin != nil && p.PriceMax != nil && *p.PriceMin > *p.PriceMax {
		*p.PriceMin, *p.PriceMax = *p.PriceMax, *p.PriceMin
	}
	if p.AreaMin != nil && p.AreaMax != nil && *p.AreaMin > *p.AreaMax {
		*p.AreaMin, *p.AreaMax = *p.AreaMax, *p.AreaMin
	}
	if p.FloorMin != nil && p.FloorMax != nil && *p.FloorMin > *p.FloorMax {
		*p.FloorMin, *p.FloorMax = *p.FloorMax, *p.FloorMin
	}
}

func clampI64(n, lo, hi int64) int64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampF64(n, lo, hi float64) float64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Package urlstate maps filter params to and from the seven shareable
// query parameters. The mapping is pure and reversible for non-default
// dimensions: defaults are omitted from the URL by design, so a copied
// link carries exactly the narrowing the user applied. Anything else in
// the query string is left untouched
package urlstate

import (
	"net/url"

	"flathunt/internal/core/catalog"
)

// Location abstracts the address bar. The terminal client backs it with
// an in-process value; tests use the same. SetQuery has replace
// semantics: mirroring filters must not create history entries
type Location interface {
	Query() url.Values
	SetQuery(url.Values)
}

// Watcher is an optional Location extension for contexts where the query
// can change underneath us (back/forward navigation). The callback runs
// on external changes only, never on our own SetQuery writes
type Watcher interface {
	Watch(fn func())
}

// Parse reads the filter keys from loc and sanitizes them against meta.
// Numeric parse failures and half pairs drop just their dimension; rooms
// drop non-numeric and non-positive elements. found reports whether at
// least one dimension was present and usable
func Parse(loc Location, meta catalog.FilterMetadata) (catalog.FilterParams, bool) {
	p, found := catalog.ParamsFromValues(loc.Query())
	if !found {
		return catalog.FilterParams{}, false
	}
	return catalog.Sanitize(p, meta), true
}

// Write mirrors p into the query string. Only dimensions that differ
// from the metadata defaults are written; an unset bound counts as the
// metadata extreme, so a half-open dimension round-trips as a full pair.
// The seven filter keys are rewritten from scratch; every unrelated
// query parameter is preserved verbatim
func Write(loc Location, p catalog.FilterParams, meta catalog.FilterMetadata) {
	q := loc.Query()
	for _, k := range catalog.FilterKeys {
		q.Del(k)
	}
	Effective(p, meta).QueryValues(q)
	loc.SetQuery(q)
}

// Clear removes exactly the seven filter keys, leaving unrelated
// parameters in place
func Clear(loc Location) {
	q := loc.Query()
	for _, k := range catalog.FilterKeys {
		q.Del(k)
	}
	loc.SetQuery(q)
}

// HasFilters reports whether any filter key is present non-empty,
// independent of whether its value would parse
func HasFilters(loc Location) bool {
	return catalog.HasFilterKeys(loc.Query())
}

// Effective reduces p to the dimensions worth sharing: each range is
// resolved against the metadata bounds and kept only when it narrows
// them; rooms are kept when non-empty. Two selections that fetch the
// same results reduce identically, which is also what makes it the
// equality the session's navigation guard compares under
func Effective(p catalog.FilterParams, meta catalog.FilterMetadata) catalog.FilterParams {
	var out catalog.FilterParams

	if !meta.IsZero() {
		pMin, pMax := meta.PriceRange.Min, meta.PriceRange.Max
		if p.PriceMin != nil {
			pMin = *p.PriceMin
		}
		if p.PriceMax != nil {
			pMax = *p.PriceMax
		}
		if pMin != meta.PriceRange.Min || pMax != meta.PriceRange.Max {
			out.PriceMin, out.PriceMax = &pMin, &pMax
		}

		aMin, aMax := meta.AreaRange.Min, meta.AreaRange.Max
		if p.AreaMin != nil {
			aMin = *p.AreaMin
		}
		if p.AreaMax != nil {
			aMax = *p.AreaMax
		}
		if aMin != meta.AreaRange.Min || aMax != meta.AreaRange.Max {
			out.AreaMin, out.AreaMax = &aMin, &aMax
		}

		fMin, fMax := meta.FloorsRange.Min, meta.FloorsRange.Max
		if p.FloorMin != nil {
			fMin = *p.FloorMin
		}
		if p.FloorMax != nil {
			fMax = *p.FloorMax
		}
		if fMin != meta.FloorsRange.Min || fMax != meta.FloorsRange.Max {
			out.FloorMin, out.FloorMax = &fMin, &fMax
		}
	} else {
		// no bounds known: mirror whatever is set
		out = p.Clone()
		out.Rooms = nil
	}

	if len(p.Rooms) > 0 {
		out.Rooms = append([]int(nil), p.Rooms...)
	}
	return out
}

// Package repo provides catalog access for listings
package repo

import (
	"context"

	"flathunt/internal/core/catalog"
	"flathunt/internal/modkit/repokit"
	perr "flathunt/internal/platform/errors"
)

// Repo defines the repository contract for listings
type Repo interface {
	List(ctx context.Context, p catalog.FilterParams, pg catalog.PaginationParams) ([]catalog.Apartment, int, error)
	Get(ctx context.Context, id string) (catalog.Apartment, error)
	Bounds(ctx context.Context) (catalog.FilterMetadata, error)
}

type (
	// Mem implements the Repo binder over the in-memory dataset
	Mem struct{}

	// view holds the bound read surface
	view struct{ src repokit.Source }
)

// NewMem creates a new in-memory repository binder
func NewMem() repokit.Binder[Repo] { return Mem{} }

// Bind binds a dataset source to the Repo implementation
func (Mem) Bind(s repokit.Source) Repo { return &view{src: s} }

// List filters the full catalog, then windows the matches. The total is
// the match count before paging; a window past the end is an empty page
func (r *view) List(_ context.Context, p catalog.FilterParams, pg catalog.PaginationParams) ([]catalog.Apartment, int, error) {
	all := r.src.Apartments()
	matched := make([]catalog.Apartment, 0, len(all))
	for _, a := range all {
		if p.Matches(a) {
			matched = append(matched, a)
		}
	}
	total := len(matched)

	start := pg.Offset()
	if start > total {
		start = total
	}
	end := start + pg.Limit
	if end > total {
		end = total
	}
	out := make([]catalog.Apartment, end-start)
	copy(out, matched[start:end])
	return out, total, nil
}

func (r *view) Get(_ context.Context, id string) (catalog.Apartment, error) {
	a, ok := r.src.ByID(id)
	if !ok {
		return catalog.Apartment{}, perr.NotFoundf("apartment %s not found", id)
	}
	return a, nil
}

func (r *view) Bounds(_ context.Context) (catalog.FilterMetadata, error) {
	return r.src.Bounds(), nil
}

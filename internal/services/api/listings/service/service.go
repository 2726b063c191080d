// Package service contains listings workflows
package service

import (
	"context"

	"flathunt/internal/core/catalog"
	"flathunt/internal/modkit/repokit"
	perr "flathunt/internal/platform/errors"
	"flathunt/internal/services/api/listings/domain"
	"flathunt/internal/services/api/listings/repo"
)

// Service defines the service contract for listings
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	src    repokit.Source
}

// New creates a new listings service bound to the dataset source
func New(src repokit.Source, binder repokit.Binder[repo.Repo]) *Svc {
	if src == nil {
		panic("listings.Service requires a non nil Source")
	}
	if binder == nil {
		panic("listings.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: repokit.MustBind(binder, src), binder: binder, src: src}
}

// List returns one catalog page. Query filters are lenient: out of range
// values clamp to the bounds, inverted ranges swap, unknown rooms drop,
// so a shared or stale URL still answers with data instead of an error
func (s *Svc) List(ctx context.Context, p catalog.FilterParams, pg catalog.PaginationParams) (catalog.ApartmentListResponse, error) {
	meta, err := s.Repo.Bounds(ctx)
	if err != nil {
		return catalog.ApartmentListResponse{}, err
	}
	items, total, err := s.Repo.List(ctx, catalog.Sanitize(p, meta), pg)
	if err != nil {
		return catalog.ApartmentListResponse{}, err
	}
	return catalog.ApartmentListResponse{
		Apartments: items,
		Meta:       catalog.ListMeta{Total: total, Filters: &meta},
	}, nil
}

// Search is the strict counterpart for interactive clients: a body that
// violates the dataset bounds is rejected with the aggregate message
func (s *Svc) Search(ctx context.Context, in domain.SearchInput) (catalog.ApartmentListResponse, error) {
	meta, err := s.Repo.Bounds(ctx)
	if err != nil {
		return catalog.ApartmentListResponse{}, err
	}
	p := in.Params()
	if err := catalog.ValidateErr(p, meta); err != nil {
		return catalog.ApartmentListResponse{}, err
	}
	items, total, err := s.Repo.List(ctx, p, in.Pagination())
	if err != nil {
		return catalog.ApartmentListResponse{}, err
	}
	return catalog.ApartmentListResponse{
		Apartments: items,
		Meta:       catalog.ListMeta{Total: total, Filters: &meta},
	}, nil
}

// Get looks one apartment up by id
func (s *Svc) Get(ctx context.Context, id string) (catalog.Apartment, error) {
	if id == "" {
		return catalog.Apartment{}, perr.InvalidArgf("id required")
	}
	return s.Repo.Get(ctx, id)
}

// Bounds returns the dataset filter metadata
func (s *Svc) Bounds(ctx context.Context) (catalog.FilterMetadata, error) {
	return s.Repo.Bounds(ctx)
}

package domain

import (
	"context"

	"flathunt/internal/core/catalog"
)

// ServicePort defines the service contract for listings
type ServicePort interface {
	List(ctx context.Context, p catalog.FilterParams, pg catalog.PaginationParams) (catalog.ApartmentListResponse, error)
	Search(ctx context.Context, in SearchInput) (catalog.ApartmentListResponse, error)
	Get(ctx context.Context, id string) (catalog.Apartment, error)
	Bounds(ctx context.Context) (catalog.FilterMetadata, error)
}

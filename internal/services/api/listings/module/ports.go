package module

import (
	"context"

	"flathunt/internal/core/catalog"
	listingsdom "flathunt/internal/services/api/listings/domain"
	listingssvc "flathunt/internal/services/api/listings/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptListingsPort adapts the listings service to the domain port interface
type adaptListingsPort struct{ svc listingssvc.Service }

// List implements the domain ServicePort interface
func (a adaptListingsPort) List(ctx context.Context, p catalog.FilterParams, pg catalog.PaginationParams) (catalog.ApartmentListResponse, error) {
	return a.svc.List(ctx, p, pg)
}

// Search implements the domain ServicePort interface
func (a adaptListingsPort) Search(ctx context.Context, in listingsdom.SearchInput) (catalog.ApartmentListResponse, error) {
	return a.svc.Search(ctx, in)
}

// Get implements the domain ServicePort interface
func (a adaptListingsPort) Get(ctx context.Context, id string) (catalog.Apartment, error) {
	return a.svc.Get(ctx, id)
}

// Bounds implements the domain ServicePort interface
func (a adaptListingsPort) Bounds(ctx context.Context) (catalog.FilterMetadata, error) {
	return a.svc.Bounds(ctx)
}

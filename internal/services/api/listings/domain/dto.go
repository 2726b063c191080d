// Package domain holds DTOs for listings http and service contracts
package domain

import "flathunt/internal/core/catalog"

// SearchInput is the strict POST counterpart of the GET query filters.
// Shape violations are rejected by the binder; bound violations by the
// service against the dataset metadata
type SearchInput struct {
	PriceMin *int64   `json:"priceMin,omitempty" validate:"omitempty,min=0" example:"8000000"`
	PriceMax *int64   `json:"priceMax,omitempty" validate:"omitempty,min=0" example:"15000000"`
	AreaMin  *float64 `json:"areaMin,omitempty" validate:"omitempty,gt=0" example:"40"`
	AreaMax  *float64 `json:"areaMax,omitempty" validate:"omitempty,gt=0" example:"90"`
	FloorMin *int     `json:"floorMin,omitempty" validate:"omitempty,min=1" example:"2"`
	FloorMax *int     `json:"floorMax,omitempty" validate:"omitempty,min=1" example:"10"`
	Rooms    []int    `json:"rooms,omitempty" validate:"omitempty,dive,min=1"`
	Page     int      `json:"page,omitempty" validate:"omitempty,min=1" example:"1"`
	Limit    int      `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"20"`
}

// Params maps the filter dimensions onto catalog params
func (in SearchInput) Params() catalog.FilterParams {
	return catalog.FilterParams{
		PriceMin: in.PriceMin,
		PriceMax: in.PriceMax,
		AreaMin:  in.AreaMin,
		AreaMax:  in.AreaMax,
		FloorMin: in.FloorMin,
		FloorMax: in.FloorMax,
		Rooms:    append([]int(nil), in.Rooms...),
	}
}

// Pagination maps page and limit, filling catalog defaults for the rest
func (in SearchInput) Pagination() catalog.PaginationParams {
	pg := catalog.DefaultPagination()
	if in.Page > 0 {
		pg.Page = in.Page
	}
	if in.Limit > 0 {
		pg.Limit = in.Limit
	}
	return pg
}

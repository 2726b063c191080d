// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"flathunt/internal/core/catalog"
)

// Source is the minimal read surface listing repos bind to. The dataset
// pack implements it; tests swap in fixtures
type Source interface {
	// Apartments returns every record in stable ID order. Shared slice;
	// callers must not mutate
	Apartments() []catalog.Apartment

	// Bounds returns the dataset-derived filter metadata
	Bounds() catalog.FilterMetadata

	// ByID looks a single record up
	ByID(id string) (catalog.Apartment, bool)
}

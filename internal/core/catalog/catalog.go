// Package catalog holds the apartment listing domain types shared by the
// API service and the browse engine: records, filter params, metadata
// bounds, pagination, and the wire envelope of the listing endpoint
package catalog

import (
	"encoding/json"
	"fmt"
)

// Apartment is a single immutable listing record. Created server side from
// the static dataset, read only everywhere else
type Apartment struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       int64    `json:"price"`
	Area        float64  `json:"area"`
	Rooms       int      `json:"rooms"`
	Floor       int      `json:"floor"`
	TotalFloors int      `json:"totalFloors"`
	Address     string   `json:"address"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
	Description string   `json:"description,omitempty"`
}

// ListMeta is the meta block of the listing response
type ListMeta struct {
	Total   int             `json:"total"`
	Filters *FilterMetadata `json:"filters,omitempty"`
}

// ApartmentListResponse is the wire shape of the listing endpoint
type ApartmentListResponse struct {
	Apartments []Apartment `json:"apartments"`
	Meta       ListMeta    `json:"meta"`
}

// Range pairs encode as two element JSON arrays [min,max] on every wire
// and persisted surface

// Int64Range is a closed [min,max] pair of integer currency units
type Int64Range struct {
	Min int64
	Max int64
}

// MarshalJSON encodes the range as [min,max]
func (r Int64Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{r.Min, r.Max})
}

// UnmarshalJSON decodes a two element array into the range
func (r *Int64Range) UnmarshalJSON(b []byte) error {
	var pair [2]int64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("catalog: int64 range: %w", err)
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// FloatRange is a closed [min,max] pair of fractional values (areas)
type FloatRange struct {
	Min float64
	Max float64
}

// MarshalJSON encodes the range as [min,max]
func (r FloatRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Min, r.Max})
}

// UnmarshalJSON decodes a two element array into the range
func (r *FloatRange) UnmarshalJSON(b []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("catalog: float range: %w", err)
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// IntRange is a closed [min,max] pair of small integers (floors)
type IntRange struct {
	Min int
	Max int
}

// MarshalJSON encodes the range as [min,max]
func (r IntRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Min, r.Max})
}

// UnmarshalJSON decodes a two element array into the range
func (r *IntRange) UnmarshalJSON(b []byte) error {
	var pair [2]int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("catalog: int range: %w", err)
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// FilterMetadata is the dataset declared legal domain for FilterParams.
// Immutable once computed, fetched once per session by clients
type FilterMetadata struct {
	PriceRange     Int64Range `json:"priceRange"`
	AreaRange      FloatRange `json:"areaRange"`
	RoomsAvailable []int      `json:"roomsAvailable"`
	FloorsRange    IntRange   `json:"floorsRange"`
}

// IsZero reports whether the metadata has not been populated yet
func (m FilterMetadata) IsZero() bool {
	return m.PriceRange == (Int64Range{}) &&
		m.AreaRange == (FloatRange{}) &&
		len(m.RoomsAvailable) == 0 &&
		m.FloorsRange == (IntRange{})
}

// AllowsRoom reports whether n is one of the dataset's room options
func (m FilterMetadata) AllowsRoom(n int) bool {
	for _, r := range m.RoomsAvailable {
		if r == n {
			return true
		}
	}
	return false
}

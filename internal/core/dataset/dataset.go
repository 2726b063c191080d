// Package dataset loads the embedded apartment catalog from apartments.json.
// It validates every record and precomputes the filter metadata bounds the
// API serves and the browse client validates against
package dataset

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"flathunt/internal/core/catalog"
)

//go:embed apartments.json
var embedded []byte

type rawDataset struct {
	Version    int                 `json:"version"`
	City       string              `json:"city"`
	Currency   string              `json:"currency"`
	Apartments []catalog.Apartment `json:"apartments"`
}

// Pack is a loaded, validated catalog. Records are sorted by ID and the
// slice returned by Apartments is shared, so callers treat it as read only
type Pack struct {
	Version  int
	City     string
	Currency string

	apartments []catalog.Apartment
	bounds     catalog.FilterMetadata
	byID       map[string]int
}

// Load returns the pack compiled from the embedded apartments.json
func Load() (*Pack, error) {
	return LoadBytes(embedded)
}

// LoadFile loads a pack from an external apartments.json, letting deploys
// swap the catalog without rebuilding
func LoadFile(path string) (*Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	p, err := LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return p, nil
}

// LoadBytes parses and validates a dataset document
func LoadBytes(b []byte) (*Pack, error) {
	var raw rawDataset
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("dataset: parse apartments.json: %w", err)
	}
	if raw.Version != 1 {
		return nil, fmt.Errorf("dataset: unsupported version %d (want 1)", raw.Version)
	}
	if len(raw.Apartments) == 0 {
		return nil, fmt.Errorf("dataset: no apartments")
	}

	p := &Pack{
		Version:    raw.Version,
		City:       raw.City,
		Currency:   raw.Currency,
		apartments: raw.Apartments,
		byID:       make(map[string]int, len(raw.Apartments)),
	}

	for i, a := range p.apartments {
		if err := validateRecord(a); err != nil {
			return nil, fmt.Errorf("dataset: apartment %d (%q): %w", i, a.ID, err)
		}
		if _, dup := p.byID[a.ID]; dup {
			return nil, fmt.Errorf("dataset: duplicate apartment id %q", a.ID)
		}
		p.byID[a.ID] = i
	}

	// Deterministic listing order
	sort.Slice(p.apartments, func(i, j int) bool {
		return p.apartments[i].ID < p.apartments[j].ID
	})
	for i, a := range p.apartments {
		p.byID[a.ID] = i
	}

	p.bounds = computeBounds(p.apartments)
	return p, nil
}

func validateRecord(a catalog.Apartment) error {
	switch {
	case a.ID == "":
		return fmt.Errorf("empty id")
	case a.Title == "":
		return fmt.Errorf("empty title")
	case a.Price <= 0:
		return fmt.Errorf("price %d must be positive", a.Price)
	case a.Area <= 0:
		return fmt.Errorf("area %v must be positive", a.Area)
	case a.Rooms <= 0:
		return fmt.Errorf("rooms %d must be positive", a.Rooms)
	case a.Floor <= 0:
		return fmt.Errorf("floor %d must be positive", a.Floor)
	case a.TotalFloors < a.Floor:
		return fmt.Errorf("floor %d above totalFloors %d", a.Floor, a.TotalFloors)
	case a.Address == "":
		return fmt.Errorf("empty address")
	}
	return nil
}

func computeBounds(apts []catalog.Apartment) catalog.FilterMetadata {
	m := catalog.FilterMetadata{
		PriceRange:  catalog.Int64Range{Min: apts[0].Price, Max: apts[0].Price},
		AreaRange:   catalog.FloatRange{Min: apts[0].Area, Max: apts[0].Area},
		FloorsRange: catalog.IntRange{Min: apts[0].Floor, Max: apts[0].Floor},
	}
	rooms := map[int]struct{}{}
	for _, a := range apts {
		if a.Price < m.PriceRange.Min {
			m.PriceRange.Min = a.Price
		}
		if a.Price > m.PriceRange.Max {
			m.PriceRange.Max = a.Price
		}
		if a.Area < m.AreaRange.Min {
			m.AreaRange.Min = a.Area
		}
		if a.Area > m.AreaRange.Max {
			m.AreaRange.Max = a.Area
		}
		if a.Floor < m.FloorsRange.Min {
			m.FloorsRange.Min = a.Floor
		}
		if a.Floor > m.FloorsRange.Max {
			m.FloorsRange.Max = a.Floor
		}
		rooms[a.Rooms] = struct{}{}
	}
	for r := range rooms {
		m.RoomsAvailable = append(m.RoomsAvailable, r)
	}
	sort.Ints(m.RoomsAvailable)
	return m
}

// Apartments returns all records in ID order. Shared slice; do not mutate
func (p *Pack) Apartments() []catalog.Apartment { return p.apartments }

// Bounds returns the precomputed filter metadata
func (p *Pack) Bounds() catalog.FilterMetadata { return p.bounds }

// Count returns the number of records
func (p *Pack) Count() int { return len(p.apartments) }

// Info is the dataset identity line surfaced by the meta endpoints
type Info struct {
	Version  int    `json:"version"  example:"1"`
	City     string `json:"city"     example:"Riverton"`
	Currency string `json:"currency" example:"RUB"`
	Count    int    `json:"count"    example:"28"`
}

// Describe returns the dataset identity line
func (p *Pack) Describe() Info {
	return Info{Version: p.Version, City: p.City, Currency: p.Currency, Count: p.Count()}
}

// ByID looks a record up by its id
func (p *Pack) ByID(id string) (catalog.Apartment, bool) {
	i, ok := p.byID[id]
	if !ok {
		return catalog.Apartment{}, false
	}
	return p.apartments[i], true
}

// Ping reports readiness. A loaded pack is always ready; the signature
// exists so startup guards and the health endpoint can treat the dataset
// like any other dependency
func (p *Pack) Ping(ctx context.Context) error {
	if p == nil || len(p.apartments) == 0 {
		return fmt.Errorf("dataset: not loaded")
	}
	return ctx.Err()
}

package domain

import "context"

// Station is the metadata for one reporting site. Elevation is in meters.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// StationProvider looks up station metadata without blocking.
type StationProvider interface {
	LookupStation(id string) (Station, bool)
}

// StationTable is an in-memory StationProvider keyed by station id. It is
// read-only once built and safe to share between goroutines.
type StationTable map[string]Station

func (t StationTable) LookupStation(id string) (Station, bool) {
	s, ok := t[id]
	return s, ok
}

// StationResolver fetches station metadata from a remote source. A zero
// Station with a nil error means the source has no such station.
type StationResolver interface {
	ResolveStation(ctx context.Context, id string) (Station, error)
}

package models

import "github.com/google/uuid"

// LocationType says whether inventory sits on a vehicle or at a station.
type LocationType string

const (
	LocationUnit    LocationType = "unit"
	LocationStation LocationType = "station"
)

func (t LocationType) Valid() bool {
	return t == LocationUnit || t == LocationStation
}

// Location identifies one unit or station.
type Location struct {
	Type LocationType `json:"location_type"`
	ID   uuid.UUID    `json:"location_id"`
}

// LocationInfo is a location resolved within an agency.
type LocationInfo struct {
	Location
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Place is a geolocated point of interest visited during a trip.
type Place struct {
	ID          int64     `json:"-"`
	APIID       uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"required,min=5,max=50000"`
	Location    Point     `json:"location"`
	PictureURL  string    `json:"pictureUrl" validate:"omitempty,min=10,max=1000"`
	Trip        Ref       `json:"trip"`
	OwnerID     int64     `json:"-"` // internal id of the trip's owner
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Point is a WGS84 position with an optional altitude in metres.
type Point struct {
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// GeoJSONPoint is the GeoJSON representation of a Point:
// {"type": "Point", "coordinates": [longitude, latitude, altitude?]}.
type GeoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// GeoJSON converts p to its wire representation.
func (p Point) GeoJSON() GeoJSONPoint {
	coords := []float64{p.Longitude, p.Latitude}
	if p.Altitude != nil {
		coords = append(coords, *p.Altitude)
	}
	return GeoJSONPoint{Type: "Point", Coordinates: coords}
}

// PlaceInput holds the client-editable properties of a place. The trip may be
// given either by external id or by href.
type PlaceInput struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Location    *GeoJSONPoint `json:"location"`
	PictureURL  *string       `json:"pictureUrl"`
	TripID      *string       `json:"tripId"`
	TripHref    *string       `json:"tripHref"`
}

// PlaceEditableProperties lists the request body keys copied onto a place.
var PlaceEditableProperties = []string{"name", "description", "location", "pictureUrl", "tripId", "tripHref"}

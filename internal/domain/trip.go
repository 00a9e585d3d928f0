package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a journey created by a user. Places belong to a trip.
type Trip struct {
	ID          int64     `json:"-"`
	APIID       uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"required,min=5,max=50000"`
	// User is the owner; it is fixed when the trip is created.
	User        Ref       `json:"user"`
	PlacesCount int       `json:"placesCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TripInput holds the client-editable properties of a trip.
type TripInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// TripEditableProperties lists the request body keys copied onto a trip.
var TripEditableProperties = []string{"title", "description"}

// Package domain contains the core data types for the travel log API.
// It depends on nothing inside the module and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// API resource paths. An entity's href is its resource path followed by its
// external id.
const (
	UsersResource  = "/api/users"
	TripsResource  = "/api/trips"
	PlacesResource = "/api/places"
)

// User is a registered account. Users own trips.
type User struct {
	// ID is the internal database key; it never leaves the server.
	ID           int64     `json:"-"`
	APIID        uuid.UUID `json:"id"`
	Name         string    `json:"name" validate:"required,min=3,max=25,slug"`
	PasswordHash string    `json:"-"`
	TripsCount   int       `json:"tripsCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserInput holds the client-editable properties of a user. Fields absent
// from the request body stay nil and leave the user untouched.
type UserInput struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserEditableProperties lists the request body keys copied onto a user.
var UserEditableProperties = []string{"name", "password"}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 4

// MaxPasswordBytes is the longest accepted password in bytes, the most
// bcrypt hashes.
const MaxPasswordBytes = 72

// Ref is a resolved reference to another entity. Repositories always load
// both keys, so a Ref is usable for hrefs and joins alike.
type Ref struct {
	ID    int64
	APIID uuid.UUID
}

// IsZero reports whether the reference points nowhere.
func (r Ref) IsZero() bool {
	return r.ID == 0 && r.APIID == uuid.Nil
}

// Stats are the aggregate counts pushed to realtime clients.
type Stats struct {
	Users  int64 `json:"users"`
	Trips  int64 `json:"trips"`
	Places int64 `json:"places"`
}

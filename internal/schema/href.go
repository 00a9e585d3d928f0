package schema

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMissingResource is returned by Href when no resource path is given.
	ErrMissingResource = errors.New("href: resource path is missing")
	// ErrMissingAPIID is returned by Href when the entity has no external id.
	ErrMissingAPIID = errors.New("href: external id is missing")
)

// Href joins an API resource path and an external id, e.g.
// "/api/trips/0b9b...". Both parts are mandatory.
func Href(resource string, id uuid.UUID) (string, error) {
	if resource == "" {
		return "", ErrMissingResource
	}
	if id == uuid.Nil {
		return "", ErrMissingAPIID
	}
	return strings.TrimSuffix(resource, "/") + "/" + id.String(), nil
}

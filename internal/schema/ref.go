package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

var (
	// ErrRefMissing means neither an id nor an href was provided.
	ErrRefMissing = errors.New("reference is missing")
	// ErrRefInvalid means the id or href cannot identify an entity of the
	// expected resource, or the entity it identifies does not exist.
	ErrRefInvalid = errors.New("reference is invalid")
)

// ResolveRef returns the external id designated by a reference property
// given either as an id ("tripId") or as an href ("tripHref"). The id wins
// when both are present.
func ResolveRef(resource string, id, href *string) (uuid.UUID, error) {
	var raw string
	switch {
	case id != nil && *id != "":
		raw = *id
	case href != nil && *href != "":
		prefix := strings.TrimSuffix(resource, "/") + "/"
		if !strings.HasPrefix(*href, prefix) {
			return uuid.Nil, ErrRefInvalid
		}
		raw = strings.TrimPrefix(*href, prefix)
	default:
		return uuid.Nil, ErrRefMissing
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrRefInvalid
	}
	return parsed, nil
}

// AddRefError records a reference failure on the "<prop>Href" path of verr.
// kind names the referenced entity in the message (e.g. "trip").
func AddRefError(verr *domain.ValidationError, prop, kind string, value any, err error) {
	path := prop + "Href"
	switch {
	case errors.Is(err, ErrRefMissing):
		verr.Add(path, "required", fmt.Sprintf("Path `%s` is required.", path), nil)
	default:
		verr.Add(path, "invalid reference", fmt.Sprintf("Path `%s` does not correspond to a known %s.", path, kind), value)
	}
}

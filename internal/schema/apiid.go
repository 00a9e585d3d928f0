package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MaxAPIIDAttempts bounds how many random ids NewAPIID draws before giving up.
const MaxAPIIDAttempts = 10

// ErrAPIIDExhausted is returned when every drawn id was already taken.
var ErrAPIIDExhausted = errors.New("could not find a unique API ID")

// ExistsFunc reports whether an external id is already used.
type ExistsFunc func(ctx context.Context, id uuid.UUID) (bool, error)

// NewAPIID draws random UUIDv4 external ids until exists reports one as free.
func NewAPIID(ctx context.Context, exists ExistsFunc) (uuid.UUID, error) {
	for attempt := 0; attempt < MaxAPIIDAttempts; attempt++ {
		id, err := uuid.NewRandom()
		if err != nil {
			return uuid.Nil, fmt.Errorf("schema.NewAPIID: %w", err)
		}

		taken, err := exists(ctx, id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("schema.NewAPIID: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return uuid.Nil, fmt.Errorf("schema.NewAPIID: %w after %d attempts", ErrAPIIDExhausted, MaxAPIIDAttempts)
}

// Package service contains the business logic for the travel log API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// Services depend on repo interfaces and never issue SQL themselves.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// clock returns the current time. Services default to schema.Now and tests
// replace it through WithClock.
type clock func() time.Time

// uniqueViolation turns a unique constraint failure reported by the repo
// layer into the validation error clients receive for a taken value. It
// covers the race between the pre-write uniqueness check and the write.
// Other errors are returned unchanged.
func uniqueViolation(err error, entity, message string, value any) error {
	var dup *domain.DuplicateError
	if !errors.As(err, &dup) || dup.Field == "id" {
		return err
	}
	verr := domain.NewValidationError(entity)
	verr.Add(dup.Field, "unique", message, value)
	return verr
}

// takenMessage is the message of a "unique" validation failure.
func takenMessage(value string) string {
	return fmt.Sprintf("%s is already taken", value)
}

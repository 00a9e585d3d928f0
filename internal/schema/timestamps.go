package schema

import "time"

// Now returns the current UTC time at the precision Postgres stores, so
// values returned to clients match what a later read returns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Touch maintains an entity's timestamps before it is saved. A zero
// createdAt marks a new entity: both timestamps are set to now. Otherwise
// only updatedAt moves, and never before createdAt.
func Touch(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
		*updatedAt = now
		return
	}
	*updatedAt = now
	if updatedAt.Before(*createdAt) {
		*updatedAt = *createdAt
	}
}

package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/repo"
	"github.com/vitpintodas/comem-travel-log-api/testutil"
)

// repos bundles every repository over one rolled-back test transaction.
type repos struct {
	users  repo.UserRepo
	trips  repo.TripRepo
	places repo.PlaceRepo
	stats  repo.StatsRepo
}

// newTestRepos opens a transaction against the test database and returns
// repositories backed by it. Requires TEST_DATABASE_URL.
func newTestRepos(t *testing.T) repos {
	t.Helper()
	tx := testutil.NewTx(t)
	return repos{
		users:  repo.NewUserRepo(tx),
		trips:  repo.NewTripRepo(tx),
		places: repo.NewPlaceRepo(tx),
		stats:  repo.NewStatsRepo(tx),
	}
}

var fixtureTime = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func createUser(t *testing.T, r repos, name string) domain.User {
	t.Helper()
	u, err := r.users.Create(context.Background(), domain.User{
		APIID:        uuid.New(),
		Name:         name,
		PasswordHash: "$2a$04$notarealhashbutlongenough",
		CreatedAt:    fixtureTime,
		UpdatedAt:    fixtureTime,
	})
	require.NoError(t, err)
	return u
}

func createTrip(t *testing.T, r repos, owner domain.User, title string) domain.Trip {
	t.Helper()
	trip, err := r.trips.Create(context.Background(), domain.Trip{
		APIID:       uuid.New(),
		Title:       title,
		Description: "A trip used in tests",
		User:        domain.Ref{ID: owner.ID, APIID: owner.APIID},
		CreatedAt:   fixtureTime,
		UpdatedAt:   fixtureTime,
	})
	require.NoError(t, err)
	return trip
}

func createPlace(t *testing.T, r repos, trip domain.Trip, name string, lon, lat float64) domain.Place {
	t.Helper()
	p, err := r.places.Create(context.Background(), domain.Place{
		APIID:       uuid.New(),
		Name:        name,
		Description: "A place used in tests",
		Location:    domain.Point{Longitude: lon, Latitude: lat},
		Trip:        domain.Ref{ID: trip.ID, APIID: trip.APIID},
		CreatedAt:   fixtureTime,
		UpdatedAt:   fixtureTime,
	})
	require.NoError(t, err)
	return p
}

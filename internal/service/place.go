package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
	"github.com/vitpintodas/comem-travel-log-api/internal/repo"
	"github.com/vitpintodas/comem-travel-log-api/internal/schema"
	"github.com/vitpintodas/comem-travel-log-api/internal/validation"
)

const coordinatesMessage = "Coordinates must be an array of 2 to 3 numbers: longitude (between -180 and 180) " +
	"and latitude (between -90 and 90) and an optional altitude"

// PlaceService implements business logic for Place operations.
type PlaceService struct {
	repo  repo.PlaceRepo
	trips repo.TripRepo
	now   clock
}

// NewPlaceService constructs a PlaceService. trips is used to resolve the
// trip a place belongs to.
func NewPlaceService(r repo.PlaceRepo, trips repo.TripRepo) *PlaceService {
	return &PlaceService{repo: r, trips: trips, now: schema.Now}
}

// WithClock replaces the time source used for timestamps.
func (s *PlaceService) WithClock(now func() time.Time) *PlaceService {
	s.now = now
	return s
}

// Create validates and persists a new place in one of actor's trips.
func (s *PlaceService) Create(ctx context.Context, actor domain.User, in domain.PlaceInput) (domain.Place, error) {
	var place domain.Place
	if err := s.apply(ctx, actor, &place, in, true); err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}

	id, err := schema.NewAPIID(ctx, s.repo.APIIDExists)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}
	place.APIID = id
	schema.Touch(&place.CreatedAt, &place.UpdatedAt, s.now())

	created, err := s.repo.Create(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w",
			uniqueViolation(err, "Place", nameInTripMessage(place.Name), place.Name))
	}

	slog.InfoContext(ctx, "created place", "place_id", created.APIID, "name", created.Name, "trip_id", created.Trip.APIID)
	return created, nil
}

// GetByID returns a single place by external id.
func (s *PlaceService) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	p, err := s.repo.GetByAPIID(ctx, id)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of places selected by the request query.
func (s *PlaceService) List(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error) {
	places, res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, query.Result{}, fmt.Errorf("service.PlaceService.List: %w", err)
	}
	return places, res, nil
}

// Update applies the present input fields to place and saves it. Moving the
// place to another trip requires actor to own that trip too.
func (s *PlaceService) Update(ctx context.Context, actor domain.User, place domain.Place, in domain.PlaceInput) (domain.Place, error) {
	if err := s.apply(ctx, actor, &place, in, false); err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
	}
	schema.Touch(&place.CreatedAt, &place.UpdatedAt, s.now())

	updated, err := s.repo.Update(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w",
			uniqueViolation(err, "Place", nameInTripMessage(place.Name), place.Name))
	}

	slog.InfoContext(ctx, "updated place", "place_id", updated.APIID, "name", updated.Name)
	return updated, nil
}

// Delete removes a place.
func (s *PlaceService) Delete(ctx context.Context, place domain.Place) error {
	if err := s.repo.Delete(ctx, place.ID); err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	slog.InfoContext(ctx, "removed place", "place_id", place.APIID, "name", place.Name)
	return nil
}

func (s *PlaceService) apply(ctx context.Context, actor domain.User, place *domain.Place, in domain.PlaceInput, creating bool) error {
	verr := domain.NewValidationError("Place")

	if in.Name != nil {
		place.Name = *in.Name
	}
	if in.Description != nil {
		place.Description = *in.Description
	}
	if in.PictureURL != nil {
		place.PictureURL = *in.PictureURL
	}
	if in.Location != nil {
		if p, ok := parseLocation(verr, *in.Location); ok {
			place.Location = p
		}
	} else if creating {
		verr.Add("location", "required", "Path `location` is required.", nil)
	}

	if creating || in.TripID != nil || in.TripHref != nil {
		if err := s.resolveTrip(ctx, actor, verr, place, in); err != nil {
			return err
		}
	}

	if err := validation.Check(verr, place); err != nil {
		return err
	}

	if !verr.Has("name") && !place.Trip.IsZero() {
		taken, err := s.repo.NameTaken(ctx, place.Trip.ID, place.Name, place.ID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("name", "unique", nameInTripMessage(place.Name), place.Name)
		}
	}
	return verr.OrNil()
}

// resolveTrip points place at the trip referenced by the input. A reference
// that cannot be resolved is a validation failure; a trip actor does not own
// is forbidden.
func (s *PlaceService) resolveTrip(ctx context.Context, actor domain.User, verr *domain.ValidationError, place *domain.Place, in domain.PlaceInput) error {
	value := in.TripHref
	if in.TripID != nil {
		value = in.TripID
	}

	id, err := schema.ResolveRef(domain.TripsResource, in.TripID, in.TripHref)
	if err != nil {
		schema.AddRefError(verr, "trip", "trip", value, err)
		return nil
	}
	if !place.Trip.IsZero() && id == place.Trip.APIID {
		return nil
	}

	trip, err := s.trips.GetByAPIID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		schema.AddRefError(verr, "trip", "trip", value, schema.ErrRefInvalid)
		return nil
	} else if err != nil {
		return err
	}

	if !CanModifyTrip(actor, trip) {
		return domain.Forbidden()
	}
	place.Trip = domain.Ref{ID: trip.ID, APIID: trip.APIID}
	place.OwnerID = trip.User.ID
	return nil
}

// parseLocation converts a GeoJSON point to a Point, recording what is wrong
// with it otherwise.
func parseLocation(verr *domain.ValidationError, g domain.GeoJSONPoint) (domain.Point, bool) {
	ok := true
	if g.Type != "Point" {
		verr.Add("location.type", "enum", fmt.Sprintf("`%s` is not a valid enum value for path `location.type`.", g.Type), g.Type)
		ok = false
	}

	c := g.Coordinates
	if len(c) < 2 || len(c) > 3 ||
		c[0] < -180 || c[0] > 180 ||
		c[1] < -90 || c[1] > 90 {
		verr.Add("location.coordinates", "coordinates", coordinatesMessage, c)
		return domain.Point{}, false
	}
	if !ok {
		return domain.Point{}, false
	}

	p := domain.Point{Longitude: c[0], Latitude: c[1]}
	if len(c) == 3 {
		alt := c[2]
		p.Altitude = &alt
	}
	return p, true
}

func nameInTripMessage(name string) string {
	return fmt.Sprintf("There is already a place named %q in this trip", name)
}

// CanModifyPlace reports whether actor may change or delete place: only the
// creator of the place's trip can.
func CanModifyPlace(actor domain.User, place domain.Place) bool {
	return place.OwnerID == actor.ID
}

package service

import (
	"context"
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

// TripService implements business logic for Trip operations.
type TripService struct {
	repo repo.TripRepo
	now  clock
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r, now: schema.Now}
}

// WithClock replaces the time source used for timestamps.
func (s *TripService) WithClock(now func() time.Time) *TripService {
	s.now = now
	return s
}

// Create validates and persists a new trip owned by actor.
func (s *TripService) Create(ctx context.Context, actor domain.User, in domain.TripInput) (domain.Trip, error) {
	trip := domain.Trip{User: domain.Ref{ID: actor.ID, APIID: actor.APIID}}
	if err := s.apply(ctx, &trip, in); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	id, err := schema.NewAPIID(ctx, s.repo.APIIDExists)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip.APIID = id
	schema.Touch(&trip.CreatedAt, &trip.UpdatedAt, s.now())

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w",
			uniqueViolation(err, "Trip", takenMessage(trip.Title), trip.Title))
	}

	slog.InfoContext(ctx, "created trip", "trip_id", created.APIID, "title", created.Title, "user_id", actor.APIID)
	return created, nil
}

// GetByID returns a single trip by external id.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	t, err := s.repo.GetByAPIID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return t, nil
}

// ListByIDs returns the trips with the given internal ids.
func (s *TripService) ListByIDs(ctx context.Context, ids []int64) ([]domain.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	trips, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByIDs: %w", err)
	}
	return trips, nil
}

// List returns one page of trips selected by the request query.
func (s *TripService) List(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error) {
	trips, res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, query.Result{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, res, nil
}

// Update applies the present input fields to trip and saves it.
func (s *TripService) Update(ctx context.Context, trip domain.Trip, in domain.TripInput) (domain.Trip, error) {
	if err := s.apply(ctx, &trip, in); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	schema.Touch(&trip.CreatedAt, &trip.UpdatedAt, s.now())

	updated, err := s.repo.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w",
			uniqueViolation(err, "Trip", takenMessage(trip.Title), trip.Title))
	}

	slog.InfoContext(ctx, "updated trip", "trip_id", updated.APIID, "title", updated.Title)
	return updated, nil
}

// Delete removes a trip together with its places.
func (s *TripService) Delete(ctx context.Context, trip domain.Trip) error {
	if err := s.repo.Delete(ctx, trip.ID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	slog.InfoContext(ctx, "removed trip", "trip_id", trip.APIID, "title", trip.Title)
	return nil
}

func (s *TripService) apply(ctx context.Context, trip *domain.Trip, in domain.TripInput) error {
	verr := domain.NewValidationError("Trip")

	if in.Title != nil {
		trip.Title = *in.Title
	}
	if in.Description != nil {
		trip.Description = *in.Description
	}
	if err := validation.Check(verr, trip); err != nil {
		return err
	}

	if !verr.Has("title") {
		taken, err := s.repo.TitleTaken(ctx, trip.Title, trip.ID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("title", "unique", takenMessage(trip.Title), trip.Title)
		}
	}
	return verr.OrNil()
}

// CanModifyTrip reports whether actor may change or delete trip: only its
// creator can.
func CanModifyTrip(actor domain.User, trip domain.Trip) bool {
	return trip.User.ID == actor.ID
}

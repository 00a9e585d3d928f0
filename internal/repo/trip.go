package repo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

// TripRepo defines the persistence operations for Trips.
type TripRepo interface {
	// Create inserts a new trip and returns it with its internal id set.
	// A taken title yields a *domain.DuplicateError for "title".
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByAPIID retrieves a trip, with its owner reference and place count.
	// Returns domain.ErrNotFound if no trip has that id.
	GetByAPIID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByIDs loads the trips with the given internal ids.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Trip, error)

	// List returns one page of trips selected by the request query
	// (page, pageSize, user, title, search, sort).
	List(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error)

	// Update overwrites the mutable fields of a trip.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip together with its places.
	Delete(ctx context.Context, id int64) error

	APIIDExists(ctx context.Context, id uuid.UUID) (bool, error)

	// TitleTaken reports whether another trip (not exceptID) has the title.
	TitleTaken(ctx context.Context, title string, exceptID int64) (bool, error)
}

var tripConstraints = map[string]string{
	"trips_title_key":  "title",
	"trips_api_id_key": "id",
}

var tripSorter = query.NewSorter(map[string]string{
	"title":       "title",
	"placesCount": "places_count",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"id":          "api_id",
	"href":        "api_id",
	"user.name":   "user_name",
	"user.id":     "user_api_id",
	"user.href":   "user_api_id",
}, "-createdAt")

var tripFilters = query.Filters(
	query.MatchAny("user", "user_api_id"),
	query.MatchAnyFold("title", "title"),
	query.Search("search", "title", "description"),
)

// tripPipeline selects trip documents: the trip row, its owner's id and name,
// and its place count.
func tripPipeline() *query.Pipeline {
	return query.New("trips t",
		"t.id", "t.api_id", "t.title", "t.description", "t.user_id", "t.created_at", "t.updated_at",
	).With(
		query.RelatedProperties(query.Relation{Table: "users", Alias: "u", ForeignKey: "t.user_id", As: "user"}, "api_id", "name"),
		query.CountRelated(query.Count{Table: "places", Alias: "p", ForeignKey: "trip_id", OwnerKey: "t.id", As: "places_count"}),
	)
}

type pgTripRepo struct {
	runner
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{newRunner(db)}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (api_id, title, description, user_id, created_at, updated_at)
		VALUES (@api_id, @title, @description, @user_id, @created_at, @updated_at)
		RETURNING id`

	args := pgx.NamedArgs{
		"api_id":      trip.APIID,
		"title":       trip.Title,
		"description": trip.Description,
		"user_id":     trip.User.ID,
		"created_at":  trip.CreatedAt,
		"updated_at":  trip.UpdatedAt,
	}

	if err := r.db.QueryRow(ctx, q, args).Scan(&trip.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", translateUnique(err, tripConstraints))
	}
	trip.PlacesCount = 0
	return trip, nil
}

func (r *pgTripRepo) GetByAPIID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	p := tripPipeline()
	p.Where("doc.api_id = " + p.Bind(id))

	t, err := one(ctx, r.runner, p, scanTrip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByAPIID: %w", err)
	}
	return t, nil
}

func (r *pgTripRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Trip, error) {
	p := tripPipeline()
	p.Where("doc.id = ANY(" + p.Bind(ids) + ")")

	trips, err := collect(ctx, r.runner, p, scanTrip)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByIDs: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) List(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error) {
	trips, res, err := list(ctx, r.runner, tripPipeline(), q, tripFilters, tripSorter, scanTrip)
	if err != nil {
		return nil, query.Result{}, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, res, nil
}

// Update writes title, description and updated_at. The owner never changes.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET title       = @title,
		    description = @description,
		    updated_at  = @updated_at
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"title":       trip.Title,
		"description": trip.Description,
		"updated_at":  trip.UpdatedAt,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", translateUnique(err, tripConstraints))
	}
	if tag.RowsAffected() == 0 {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}
	return trip, nil
}

// Delete removes the trip's places and then the trip in a single transaction.
func (r *pgTripRepo) Delete(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{"id": id}
		if _, err := tx.Exec(ctx, `DELETE FROM places WHERE trip_id = @id`, args); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM trips WHERE id = @id`, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	return nil
}

func (r *pgTripRepo) APIIDExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := r.exists(ctx, `SELECT 1 FROM trips WHERE api_id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.APIIDExists: %w", err)
	}
	return found, nil
}

func (r *pgTripRepo) TitleTaken(ctx context.Context, title string, exceptID int64) (bool, error) {
	found, err := r.exists(ctx, `SELECT 1 FROM trips WHERE title = @title AND id <> @except`,
		pgx.NamedArgs{"title": title, "except": exceptID})
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.TitleTaken: %w", err)
	}
	return found, nil
}

// scanTrip maps a trip document into a domain.Trip. The owner's name is only
// present for sorting and is skipped.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		apiID     pgtype.UUID
		userAPIID pgtype.UUID
	)
	err := s.Scan(&t.ID, &apiID, &t.Title, &t.Description, &t.User.ID, &t.CreatedAt, &t.UpdatedAt,
		&userAPIID, nil, &t.PlacesCount)
	if err != nil {
		return domain.Trip{}, err
	}
	t.APIID = toUUID(apiID)
	t.User.APIID = toUUID(userAPIID)
	return t, nil
}

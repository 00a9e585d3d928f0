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

// PlaceRepo defines the persistence operations for Places.
type PlaceRepo interface {
	// Create inserts a new place. A name already used in the same trip
	// (ignoring case) yields a *domain.DuplicateError for "name".
	Create(ctx context.Context, place domain.Place) (domain.Place, error)

	// GetByAPIID retrieves a place with its trip reference.
	// Returns domain.ErrNotFound if no place has that id.
	GetByAPIID(ctx context.Context, id uuid.UUID) (domain.Place, error)

	// List returns one page of places selected by the request query
	// (page, pageSize, trip, name, search, bbox, near, sort).
	List(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error)

	// Update overwrites the mutable fields of a place, including its trip.
	Update(ctx context.Context, place domain.Place) (domain.Place, error)

	Delete(ctx context.Context, id int64) error

	APIIDExists(ctx context.Context, id uuid.UUID) (bool, error)

	// NameTaken reports whether another place (not exceptID) of the trip
	// has the name, ignoring case.
	NameTaken(ctx context.Context, tripID int64, name string, exceptID int64) (bool, error)
}

var placeConstraints = map[string]string{
	"places_trip_name_key": "name",
	"places_api_id_key":    "id",
}

var placeSorter = query.NewSorter(map[string]string{
	"name":       "name",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"id":         "api_id",
	"href":       "api_id",
	"trip.title": "trip_title",
	"trip.id":    "trip_api_id",
	"trip.href":  "trip_api_id",
}, "createdAt")

var placeFilters = query.Filters(
	query.MatchAny("trip", "trip_api_id"),
	query.MatchAnyFold("name", "name"),
	query.Search("search", "name", "description"),
	query.WithinBBox("bbox", "longitude", "latitude"),
	query.NearPoint("near", "longitude", "latitude"),
)

// placePipeline selects place documents: the place row plus its trip's id,
// title and owner.
func placePipeline() *query.Pipeline {
	return query.New("places pl",
		"pl.id", "pl.api_id", "pl.name", "pl.description", "pl.longitude", "pl.latitude", "pl.altitude",
		"pl.picture_url", "pl.trip_id", "pl.created_at", "pl.updated_at",
	).With(
		query.RelatedProperties(query.Relation{Table: "trips", Alias: "t", ForeignKey: "pl.trip_id", As: "trip"}, "api_id", "title", "user_id"),
	)
}

type pgPlaceRepo struct {
	runner
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{newRunner(db)}
}

func placeArgs(place domain.Place) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          place.ID,
		"api_id":      place.APIID,
		"name":        place.Name,
		"description": place.Description,
		"longitude":   place.Location.Longitude,
		"latitude":    place.Location.Latitude,
		"altitude":    place.Location.Altitude, // nil becomes NULL
		"picture_url": pgtype.Text{String: place.PictureURL, Valid: place.PictureURL != ""},
		"trip_id":     place.Trip.ID,
		"created_at":  place.CreatedAt,
		"updated_at":  place.UpdatedAt,
	}
}

func (r *pgPlaceRepo) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		INSERT INTO places (api_id, name, description, longitude, latitude, altitude, picture_url, trip_id, created_at, updated_at)
		VALUES (@api_id, @name, @description, @longitude, @latitude, @altitude, @picture_url, @trip_id, @created_at, @updated_at)
		RETURNING id`

	if err := r.db.QueryRow(ctx, q, placeArgs(place)).Scan(&place.ID); err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", translateUnique(err, placeConstraints))
	}
	return place, nil
}

func (r *pgPlaceRepo) GetByAPIID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	p := placePipeline()
	p.Where("doc.api_id = " + p.Bind(id))

	pl, err := one(ctx, r.runner, p, scanPlace)
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByAPIID: %w", err)
	}
	return pl, nil
}

func (r *pgPlaceRepo) List(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error) {
	places, res, err := list(ctx, r.runner, placePipeline(), q, placeFilters, placeSorter, scanPlace)
	if err != nil {
		return nil, query.Result{}, fmt.Errorf("repo.PlaceRepo.List: %w", err)
	}
	return places, res, nil
}

func (r *pgPlaceRepo) Update(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		UPDATE places
		SET name        = @name,
		    description = @description,
		    longitude   = @longitude,
		    latitude    = @latitude,
		    altitude    = @altitude,
		    picture_url = @picture_url,
		    trip_id     = @trip_id,
		    updated_at  = @updated_at
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, placeArgs(place))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Update: %w", translateUnique(err, placeConstraints))
	}
	if tag.RowsAffected() == 0 {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Update: %w", domain.ErrNotFound)
	}
	return place, nil
}

func (r *pgPlaceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPlaceRepo) APIIDExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := r.exists(ctx, `SELECT 1 FROM places WHERE api_id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.PlaceRepo.APIIDExists: %w", err)
	}
	return found, nil
}

func (r *pgPlaceRepo) NameTaken(ctx context.Context, tripID int64, name string, exceptID int64) (bool, error) {
	found, err := r.exists(ctx,
		`SELECT 1 FROM places WHERE trip_id = @trip_id AND lower(name) = lower(@name) AND id <> @except`,
		pgx.NamedArgs{"trip_id": tripID, "name": name, "except": exceptID})
	if err != nil {
		return false, fmt.Errorf("repo.PlaceRepo.NameTaken: %w", err)
	}
	return found, nil
}

// scanPlace maps a place document into a domain.Place. The trip title is only
// present for sorting and is skipped.
func scanPlace(s scanner) (domain.Place, error) {
	var (
		pl         domain.Place
		apiID      pgtype.UUID
		tripAPIID  pgtype.UUID
		pictureURL pgtype.Text
	)
	err := s.Scan(&pl.ID, &apiID, &pl.Name, &pl.Description,
		&pl.Location.Longitude, &pl.Location.Latitude, &pl.Location.Altitude,
		&pictureURL, &pl.Trip.ID, &pl.CreatedAt, &pl.UpdatedAt,
		&tripAPIID, nil, &pl.OwnerID)
	if err != nil {
		return domain.Place{}, err
	}
	pl.APIID = toUUID(apiID)
	pl.Trip.APIID = toUUID(tripAPIID)
	pl.PictureURL = pictureURL.String
	return pl, nil
}

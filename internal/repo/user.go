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

// UserRepo defines the persistence operations for Users.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type UserRepo interface {
	// Create inserts a new user and returns it with its internal id set.
	// A taken name yields a *domain.DuplicateError for "name".
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByAPIID retrieves a user, with its trip count, by external id.
	// Returns domain.ErrNotFound if no user has that id.
	GetByAPIID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByName retrieves a user by name, ignoring case.
	GetByName(ctx context.Context, name string) (domain.User, error)

	// ListByIDs loads the users with the given internal ids, in no
	// particular order.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error)

	// List returns one page of users selected by the request query
	// (page, pageSize, name, search, sort).
	List(ctx context.Context, q url.Values) ([]domain.User, query.Result, error)

	// Update overwrites the mutable fields of a user.
	Update(ctx context.Context, user domain.User) (domain.User, error)

	// Delete removes a user together with its trips and their places.
	Delete(ctx context.Context, id int64) error

	// APIIDExists reports whether a user already has the external id.
	APIIDExists(ctx context.Context, id uuid.UUID) (bool, error)

	// NameTaken reports whether another user (not exceptID) has the name,
	// ignoring case.
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
}

var userConstraints = map[string]string{
	"users_name_key":   "name",
	"users_api_id_key": "id",
}

var userSorter = query.NewSorter(map[string]string{
	"name":       "name",
	"tripsCount": "trips_count",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"id":         "api_id",
	"href":       "api_id",
}, "name")

var userFilters = query.Filters(
	query.MatchAnyFold("name", "name"),
	query.Search("search", "name"),
)

// userPipeline selects user documents: the user row plus its trip count.
func userPipeline() *query.Pipeline {
	return query.New("users u",
		"u.id", "u.api_id", "u.name", "u.password_hash", "u.created_at", "u.updated_at",
	).With(
		query.CountRelated(query.Count{Table: "trips", Alias: "t", ForeignKey: "user_id", OwnerKey: "u.id", As: "trips_count"}),
	)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	runner
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{newRunner(db)}
}

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (api_id, name, password_hash, created_at, updated_at)
		VALUES (@api_id, @name, @password_hash, @created_at, @updated_at)
		RETURNING id`

	args := pgx.NamedArgs{
		"api_id":        user.APIID,
		"name":          user.Name,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	if err := r.db.QueryRow(ctx, q, args).Scan(&user.ID); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", translateUnique(err, userConstraints))
	}
	user.TripsCount = 0
	return user, nil
}

func (r *pgUserRepo) GetByAPIID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	p := userPipeline()
	p.Where("doc.api_id = " + p.Bind(id))

	u, err := one(ctx, r.runner, p, scanUser)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByAPIID: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByName(ctx context.Context, name string) (domain.User, error) {
	p := userPipeline()
	p.Where("lower(doc.name) = lower(" + p.Bind(name) + ")")

	u, err := one(ctx, r.runner, p, scanUser)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByName: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	p := userPipeline()
	p.Where("doc.id = ANY(" + p.Bind(ids) + ")")

	users, err := collect(ctx, r.runner, p, scanUser)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListByIDs: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) List(ctx context.Context, q url.Values) ([]domain.User, query.Result, error) {
	users, res, err := list(ctx, r.runner, userPipeline(), q, userFilters, userSorter, scanUser)
	if err != nil {
		return nil, query.Result{}, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	return users, res, nil
}

func (r *pgUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		UPDATE users
		SET name          = @name,
		    password_hash = @password_hash,
		    updated_at    = @updated_at
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":            user.ID,
		"name":          user.Name,
		"password_hash": user.PasswordHash,
		"updated_at":    user.UpdatedAt,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", translateUnique(err, userConstraints))
	}
	if tag.RowsAffected() == 0 {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", domain.ErrNotFound)
	}
	return user, nil
}

// Delete removes the user's places, trips and finally the user in a single
// transaction.
func (r *pgUserRepo) Delete(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{"id": id}
		if _, err := tx.Exec(ctx, `DELETE FROM places WHERE trip_id IN (SELECT id FROM trips WHERE user_id = @id)`, args); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM trips WHERE user_id = @id`, args); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = @id`, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	}
	return nil
}

func (r *pgUserRepo) APIIDExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := r.exists(ctx, `SELECT 1 FROM users WHERE api_id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.UserRepo.APIIDExists: %w", err)
	}
	return found, nil
}

func (r *pgUserRepo) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	found, err := r.exists(ctx, `SELECT 1 FROM users WHERE lower(name) = lower(@name) AND id <> @except`,
		pgx.NamedArgs{"name": name, "except": exceptID})
	if err != nil {
		return false, fmt.Errorf("repo.UserRepo.NameTaken: %w", err)
	}
	return found, nil
}

// scanUser maps a user document into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var (
		u     domain.User
		apiID pgtype.UUID
	)
	if err := s.Scan(&u.ID, &apiID, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.TripsCount); err != nil {
		return domain.User{}, err
	}
	u.APIID = toUUID(apiID)
	return u, nil
}

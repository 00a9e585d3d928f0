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

// UserService implements business logic for User operations.
type UserService struct {
	repo       repo.UserRepo
	bcryptCost int
	now        clock
}

// NewUserService constructs a UserService. Passwords are hashed with bcrypt
// at bcryptCost.
func NewUserService(r repo.UserRepo, bcryptCost int) *UserService {
	return &UserService{repo: r, bcryptCost: bcryptCost, now: schema.Now}
}

// WithClock replaces the time source used for timestamps.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Create validates the input and registers a new user.
func (s *UserService) Create(ctx context.Context, in domain.UserInput) (domain.User, error) {
	var user domain.User
	if err := s.apply(ctx, &user, in, true); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}

	id, err := schema.NewAPIID(ctx, s.repo.APIIDExists)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	user.APIID = id
	schema.Touch(&user.CreatedAt, &user.UpdatedAt, s.now())

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w",
			uniqueViolation(err, "User", takenMessage(user.Name), user.Name))
	}

	slog.InfoContext(ctx, "created user", "user_id", created.APIID, "name", created.Name)
	return created, nil
}

// GetByID returns a single user by external id.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.repo.GetByAPIID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return u, nil
}

// ListByIDs returns the users with the given internal ids.
func (s *UserService) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.ListByIDs: %w", err)
	}
	return users, nil
}

// List returns one page of users selected by the request query.
func (s *UserService) List(ctx context.Context, q url.Values) ([]domain.User, query.Result, error) {
	users, res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, query.Result{}, fmt.Errorf("service.UserService.List: %w", err)
	}
	return users, res, nil
}

// Update applies the present input fields to user and saves it.
func (s *UserService) Update(ctx context.Context, user domain.User, in domain.UserInput) (domain.User, error) {
	if err := s.apply(ctx, &user, in, false); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w", err)
	}
	schema.Touch(&user.CreatedAt, &user.UpdatedAt, s.now())

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Update: %w",
			uniqueViolation(err, "User", takenMessage(user.Name), user.Name))
	}

	slog.InfoContext(ctx, "updated user", "user_id", updated.APIID, "name", updated.Name)
	return updated, nil
}

// Delete removes a user with all of its trips and their places.
func (s *UserService) Delete(ctx context.Context, user domain.User) error {
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("service.UserService.Delete: %w", err)
	}
	slog.InfoContext(ctx, "removed user", "user_id", user.APIID, "name", user.Name)
	return nil
}

// apply copies the input onto user, validates the result and hashes a new
// password. A password is mandatory when creating.
func (s *UserService) apply(ctx context.Context, user *domain.User, in domain.UserInput, creating bool) error {
	verr := domain.NewValidationError("User")

	if in.Name != nil {
		user.Name = *in.Name
	}
	if creating || in.Password != nil {
		checkPassword(verr, in.Password)
	}
	if err := validation.Check(verr, user); err != nil {
		return err
	}

	if !verr.Has("name") {
		taken, err := s.repo.NameTaken(ctx, user.Name, user.ID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("name", "unique", takenMessage(user.Name), user.Name)
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	if in.Password != nil {
		hash, err := hashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return nil
}

// CanModifyUser reports whether actor may change or delete target: users
// only manage their own account.
func CanModifyUser(actor, target domain.User) bool {
	return actor.ID == target.ID
}

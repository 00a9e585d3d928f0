package service_test

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
	"github.com/vitpintodas/comem-travel-log-api/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field; set only the ones your test needs.

type mockUserRepo struct {
	create      func(ctx context.Context, user domain.User) (domain.User, error)
	getByAPIID  func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByName   func(ctx context.Context, name string) (domain.User, error)
	listByIDs   func(ctx context.Context, ids []int64) ([]domain.User, error)
	list        func(ctx context.Context, q url.Values) ([]domain.User, query.Result, error)
	update      func(ctx context.Context, user domain.User) (domain.User, error)
	delete      func(ctx context.Context, id int64) error
	apiIDExists func(ctx context.Context, id uuid.UUID) (bool, error)
	nameTaken   func(ctx context.Context, name string, exceptID int64) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.create(ctx, user)
}
func (m *mockUserRepo) GetByAPIID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByAPIID(ctx, id)
}
func (m *mockUserRepo) GetByName(ctx context.Context, name string) (domain.User, error) {
	return m.getByName(ctx, name)
}
func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockUserRepo) List(ctx context.Context, q url.Values) ([]domain.User, query.Result, error) {
	return m.list(ctx, q)
}
func (m *mockUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	return m.update(ctx, user)
}
func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockUserRepo) APIIDExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.apiIDExists == nil {
		return false, nil
	}
	return m.apiIDExists(ctx, id)
}
func (m *mockUserRepo) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	if m.nameTaken == nil {
		return false, nil
	}
	return m.nameTaken(ctx, name, exceptID)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockTripRepo struct {
	create      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByAPIID  func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByIDs   func(ctx context.Context, ids []int64) ([]domain.Trip, error)
	list        func(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error)
	update      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete      func(ctx context.Context, id int64) error
	apiIDExists func(ctx context.Context, id uuid.UUID) (bool, error)
	titleTaken  func(ctx context.Context, title string, exceptID int64) (bool, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByAPIID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByAPIID(ctx, id)
}
func (m *mockTripRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Trip, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockTripRepo) List(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error) {
	return m.list(ctx, q)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) APIIDExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.apiIDExists == nil {
		return false, nil
	}
	return m.apiIDExists(ctx, id)
}
func (m *mockTripRepo) TitleTaken(ctx context.Context, title string, exceptID int64) (bool, error) {
	if m.titleTaken == nil {
		return false, nil
	}
	return m.titleTaken(ctx, title, exceptID)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockPlaceRepo struct {
	create      func(ctx context.Context, place domain.Place) (domain.Place, error)
	getByAPIID  func(ctx context.Context, id uuid.UUID) (domain.Place, error)
	list        func(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error)
	update      func(ctx context.Context, place domain.Place) (domain.Place, error)
	delete      func(ctx context.Context, id int64) error
	apiIDExists func(ctx context.Context, id uuid.UUID) (bool, error)
	nameTaken   func(ctx context.Context, tripID int64, name string, exceptID int64) (bool, error)
}

func (m *mockPlaceRepo) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	return m.create(ctx, place)
}
func (m *mockPlaceRepo) GetByAPIID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	return m.getByAPIID(ctx, id)
}
func (m *mockPlaceRepo) List(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error) {
	return m.list(ctx, q)
}
func (m *mockPlaceRepo) Update(ctx context.Context, place domain.Place) (domain.Place, error) {
	return m.update(ctx, place)
}
func (m *mockPlaceRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockPlaceRepo) APIIDExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.apiIDExists == nil {
		return false, nil
	}
	return m.apiIDExists(ctx, id)
}
func (m *mockPlaceRepo) NameTaken(ctx context.Context, tripID int64, name string, exceptID int64) (bool, error) {
	if m.nameTaken == nil {
		return false, nil
	}
	return m.nameTaken(ctx, tripID, name, exceptID)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

// validationErrors extracts the per-path failures of a validation error.
func validationErrors(err error) map[string]domain.FieldError {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	return verr.Errors
}

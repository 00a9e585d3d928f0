package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/handler"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs.

type mockAuth struct {
	login        func(ctx context.Context, username, password string) (string, domain.User, error)
	authenticate func(ctx context.Context, token string) (domain.User, error)
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	return m.login(ctx, username, password)
}
func (m *mockAuth) Authenticate(ctx context.Context, token string) (domain.User, error) {
	return m.authenticate(ctx, token)
}

var _ handler.Authenticator = (*mockAuth)(nil)

type mockUserServicer struct {
	create    func(ctx context.Context, in domain.UserInput) (domain.User, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.User, error)
	listByIDs func(ctx context.Context, ids []int64) ([]domain.User, error)
	list      func(ctx context.Context, q url.Values) ([]domain.User, query.Result, error)
	update    func(ctx context.Context, user domain.User, in domain.UserInput) (domain.User, error)
	delete    func(ctx context.Context, user domain.User) error
}

func (m *mockUserServicer) Create(ctx context.Context, in domain.UserInput) (domain.User, error) {
	return m.create(ctx, in)
}
func (m *mockUserServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserServicer) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockUserServicer) List(ctx context.Context, q url.Values) ([]domain.User, query.Result, error) {
	return m.list(ctx, q)
}
func (m *mockUserServicer) Update(ctx context.Context, user domain.User, in domain.UserInput) (domain.User, error) {
	return m.update(ctx, user, in)
}
func (m *mockUserServicer) Delete(ctx context.Context, user domain.User) error {
	return m.delete(ctx, user)
}

var _ handler.UserServicer = (*mockUserServicer)(nil)

type mockTripServicer struct {
	create    func(ctx context.Context, actor domain.User, in domain.TripInput) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByIDs func(ctx context.Context, ids []int64) ([]domain.Trip, error)
	list      func(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error)
	update    func(ctx context.Context, trip domain.Trip, in domain.TripInput) (domain.Trip, error)
	delete    func(ctx context.Context, trip domain.Trip) error
}

func (m *mockTripServicer) Create(ctx context.Context, actor domain.User, in domain.TripInput) (domain.Trip, error) {
	return m.create(ctx, actor, in)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListByIDs(ctx context.Context, ids []int64) ([]domain.Trip, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockTripServicer) List(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error) {
	return m.list(ctx, q)
}
func (m *mockTripServicer) Update(ctx context.Context, trip domain.Trip, in domain.TripInput) (domain.Trip, error) {
	return m.update(ctx, trip, in)
}
func (m *mockTripServicer) Delete(ctx context.Context, trip domain.Trip) error {
	return m.delete(ctx, trip)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockPlaceServicer struct {
	create  func(ctx context.Context, actor domain.User, in domain.PlaceInput) (domain.Place, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Place, error)
	list    func(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error)
	update  func(ctx context.Context, actor domain.User, place domain.Place, in domain.PlaceInput) (domain.Place, error)
	delete  func(ctx context.Context, place domain.Place) error
}

func (m *mockPlaceServicer) Create(ctx context.Context, actor domain.User, in domain.PlaceInput) (domain.Place, error) {
	return m.create(ctx, actor, in)
}
func (m *mockPlaceServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlaceServicer) List(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error) {
	return m.list(ctx, q)
}
func (m *mockPlaceServicer) Update(ctx context.Context, actor domain.User, place domain.Place, in domain.PlaceInput) (domain.Place, error) {
	return m.update(ctx, actor, place, in)
}
func (m *mockPlaceServicer) Delete(ctx context.Context, place domain.Place) error {
	return m.delete(ctx, place)
}

var _ handler.PlaceServicer = (*mockPlaceServicer)(nil)

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) Notify() { n.calls.Add(1) }

// ---- helpers ---------------------------------------------------------------

const (
	testBaseURL = "http://localhost:3000"
	ownerToken  = "owner-token"
	otherToken  = "other-token"
)

var (
	created = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	owner = domain.User{
		ID: 1, APIID: uuid.MustParse("d68cf4e9-1349-4d45-b356-c1294e49ef23"), Name: "jdoe",
		TripsCount: 1, CreatedAt: created, UpdatedAt: created,
	}
	stranger = domain.User{
		ID: 2, APIID: uuid.MustParse("ceedea00-507a-4b27-a025-8918ca6758b9"), Name: "intruder",
		CreatedAt: created, UpdatedAt: created,
	}
)

// tokenAuth accepts ownerToken and otherToken only.
func tokenAuth() *mockAuth {
	return &mockAuth{
		authenticate: func(_ context.Context, token string) (domain.User, error) {
			switch token {
			case ownerToken:
				return owner, nil
			case otherToken:
				return stranger, nil
			}
			return domain.User{}, domain.NewError(http.StatusUnauthorized, domain.CodeAuthTokenInvalid, "Authentication token is invalid")
		},
	}
}

type deps struct {
	auth     *mockAuth
	users    *mockUserServicer
	trips    *mockTripServicer
	places   *mockPlaceServicer
	notifier *countingNotifier
	opts     handler.Options
}

func newDeps() *deps {
	return &deps{
		auth:     tokenAuth(),
		users:    &mockUserServicer{},
		trips:    &mockTripServicer{},
		places:   &mockPlaceServicer{},
		notifier: &countingNotifier{},
		opts:     handler.Options{BaseURL: testBaseURL, Version: "1.2.3"},
	}
}

// router wires a Server with the mocks into its chi router, exactly as
// main.go does in production.
func (d *deps) router() http.Handler {
	return handler.NewServer(d.auth, d.users, d.trips, d.places, d.notifier, d.opts).Routes()
}

func (d *deps) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func notFoundByID[T any](context.Context, uuid.UUID) (T, error) {
	var zero T
	return zero, domain.ErrNotFound
}

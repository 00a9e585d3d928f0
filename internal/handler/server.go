// Package handler implements the HTTP handlers for the travel log API.
// All handlers are methods on Server. Methods are split into resource files
// (user.go, trip.go, place.go, ...) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

// Authenticator defines the authentication operations handlers depend on.
// Defining the interfaces here (in the consumer package) lets handler tests
// inject mocks without touching the database or service layer.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, domain.User, error)
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// UserServicer defines the user operations handlers depend on.
type UserServicer interface {
	Create(ctx context.Context, in domain.UserInput) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
	List(ctx context.Context, q url.Values) ([]domain.User, query.Result, error)
	Update(ctx context.Context, user domain.User, in domain.UserInput) (domain.User, error)
	Delete(ctx context.Context, user domain.User) error
}

// TripServicer defines the trip operations handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, actor domain.User, in domain.TripInput) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Trip, error)
	List(ctx context.Context, q url.Values) ([]domain.Trip, query.Result, error)
	Update(ctx context.Context, trip domain.Trip, in domain.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, trip domain.Trip) error
}

// PlaceServicer defines the place operations handlers depend on.
type PlaceServicer interface {
	Create(ctx context.Context, actor domain.User, in domain.PlaceInput) (domain.Place, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error)
	List(ctx context.Context, q url.Values) ([]domain.Place, query.Result, error)
	Update(ctx context.Context, actor domain.User, place domain.Place, in domain.PlaceInput) (domain.Place, error)
	Delete(ctx context.Context, place domain.Place) error
}

// Notifier is told after every successful create, update or delete.
type Notifier interface {
	Notify()
}

// Options holds the settings handlers need from the configuration.
type Options struct {
	// BaseURL prefixes the Location and Link URLs sent to clients.
	BaseURL string
	// Version is reported by GET /api.
	Version string
	// AuthRateLimit is the number of login attempts allowed per IP and minute.
	AuthRateLimit int
}

// Server holds the dependencies of every handler.
type Server struct {
	auth     Authenticator
	users    UserServicer
	trips    TripServicer
	places   PlaceServicer
	notifier Notifier
	opts     Options
}

// NewServer constructs the Server with all its dependencies. A nil notifier
// disables change notifications.
func NewServer(auth Authenticator, users UserServicer, trips TripServicer, places PlaceServicer, notifier Notifier, opts Options) *Server {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Server{
		auth:     auth,
		users:    users,
		trips:    trips,
		places:   places,
		notifier: notifier,
		opts:     opts,
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify() {}

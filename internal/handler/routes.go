package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/service"
)

// Routes returns the router serving GET /, GET /healthz and everything
// under /api. Unknown routes and methods get a 404 resourceNotFound.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", s.RedirectToIndex)
	r.Get("/healthz", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.GetIndex)

		r.With(s.loginRateLimit(), requireJSON).Post("/auth", s.CreateToken)

		r.Route("/users", func(r chi.Router) {
			r.With(requireJSON).Post("/", s.CreateUser)
			r.Get("/", s.ListUsers)
			r.Route("/{id}", func(r chi.Router) {
				loadUser := load("user", s.users.GetByID)
				r.With(loadUser).Get("/", s.GetUser)
				r.With(s.authenticate, loadUser, authorize(service.CanModifyUser), requireJSON).Patch("/", s.UpdateUser)
				r.With(s.authenticate, loadUser, authorize(service.CanModifyUser)).Delete("/", s.DeleteUser)
			})
		})

		r.Route("/trips", func(r chi.Router) {
			r.With(s.authenticate, requireJSON).Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)
			r.Route("/{id}", func(r chi.Router) {
				loadTrip := load("trip", s.trips.GetByID)
				r.With(loadTrip).Get("/", s.GetTrip)
				r.With(s.authenticate, loadTrip, authorize(service.CanModifyTrip), requireJSON).Patch("/", s.UpdateTrip)
				r.With(s.authenticate, loadTrip, authorize(service.CanModifyTrip)).Delete("/", s.DeleteTrip)
			})
		})

		r.Route("/places", func(r chi.Router) {
			r.With(s.authenticate, requireJSON).Post("/", s.CreatePlace)
			r.Get("/", s.ListPlaces)
			r.Route("/{id}", func(r chi.Router) {
				loadPlace := load("place", s.places.GetByID)
				r.With(loadPlace).Get("/", s.GetPlace)
				r.With(s.authenticate, loadPlace, authorize(service.CanModifyPlace), requireJSON).Patch("/", s.UpdatePlace)
				r.With(s.authenticate, loadPlace, authorize(service.CanModifyPlace)).Delete("/", s.DeletePlace)
			})
		})
	})

	return r
}

// loginRateLimit throttles token requests per client IP.
func (s *Server) loginRateLimit() func(http.Handler) http.Handler {
	limit := s.opts.AuthRateLimit
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, domain.NewError(http.StatusTooManyRequests, domain.CodeTooManyRequests,
				"Too many authentication attempts, please try again later"))
		}),
	)
}

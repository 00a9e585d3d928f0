package handler

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

type tripResponse struct {
	ID          uuid.UUID     `json:"id"`
	Href        string        `json:"href"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	PlacesCount int           `json:"placesCount"`
	UserID      uuid.UUID     `json:"userId"`
	UserHref    string        `json:"userHref"`
	User        *userResponse `json:"user,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var in domain.TripInput
	if err := decodeBody(r, "Trip", &in); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.trips.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()

	resp := toTripResponse(created, nil)
	w.Header().Set("Location", s.opts.BaseURL+resp.Href)
	writeJSON(w, r, http.StatusCreated, resp)
}

// ListTrips handles GET /api/trips.
// Supports pagination, the user, title and search filters, sort and
// include=user.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trips, res, err := s.trips.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := s.tripResponses(r.Context(), q, "", trips)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.WriteHeaders(w.Header(), s.opts.BaseURL, r.URL)
	writeJSON(w, r, http.StatusOK, data)
}

// GetTrip handles GET /api/trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	s.writeTrip(w, r, resourceFrom[domain.Trip](r))
}

// UpdateTrip handles PATCH /api/trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var in domain.TripInput
	if err := decodeBody(r, "Trip", &in); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.trips.Update(r.Context(), resourceFrom[domain.Trip](r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()
	s.writeTrip(w, r, updated)
}

// DeleteTrip handles DELETE /api/trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Delete(r.Context(), resourceFrom[domain.Trip](r)); err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeTrip(w http.ResponseWriter, r *http.Request, trip domain.Trip) {
	data, err := s.tripResponses(r.Context(), r.URL.Query(), "", []domain.Trip{trip})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, data[0])
}

// tripResponses renders trips, embedding their owners when the include
// parameter asks for "<prefix>user".
func (s *Server) tripResponses(ctx context.Context, q url.Values, prefix string, trips []domain.Trip) ([]tripResponse, error) {
	var owners map[int64]domain.User
	if included(q, prefix+"user") {
		ids := make([]int64, 0, len(trips))
		for _, t := range trips {
			ids = append(ids, t.User.ID)
		}
		users, err := s.users.ListByIDs(ctx, uniq(ids))
		if err != nil {
			return nil, err
		}
		owners = make(map[int64]domain.User, len(users))
		for _, u := range users {
			owners[u.ID] = u
		}
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		var owner *domain.User
		if u, ok := owners[t.User.ID]; ok {
			owner = &u
		}
		data[i] = toTripResponse(t, owner)
	}
	return data, nil
}

func toTripResponse(t domain.Trip, owner *domain.User) tripResponse {
	resp := tripResponse{
		ID:          t.APIID,
		Href:        href(domain.TripsResource, t.APIID),
		Title:       t.Title,
		Description: t.Description,
		PlacesCount: t.PlacesCount,
		UserID:      t.User.APIID,
		UserHref:    href(domain.UsersResource, t.User.APIID),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if owner != nil {
		u := toUserResponse(*owner)
		resp.User = &u
	}
	return resp
}

// included reports whether the include query parameter names a relation.
func included(q url.Values, relation string) bool {
	return slices.Contains(q["include"], relation)
}

func uniq(ids []int64) []int64 {
	slices.Sort(ids)
	return slices.Compact(ids)
}

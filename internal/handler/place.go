package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

type placeResponse struct {
	ID          uuid.UUID           `json:"id"`
	Href        string              `json:"href"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Location    domain.GeoJSONPoint `json:"location"`
	PictureURL  string              `json:"pictureUrl,omitempty"`
	TripID      uuid.UUID           `json:"tripId"`
	TripHref    string              `json:"tripHref"`
	Trip        *tripResponse       `json:"trip,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// CreatePlace handles POST /api/places.
func (s *Server) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var in domain.PlaceInput
	if err := decodeBody(r, "Place", &in); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.places.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()

	resp := toPlaceResponse(created, nil)
	w.Header().Set("Location", s.opts.BaseURL+resp.Href)
	writeJSON(w, r, http.StatusCreated, resp)
}

// ListPlaces handles GET /api/places.
// Supports pagination, the trip, name, search, bbox and near filters, sort
// and include=trip / include=trip.user.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	places, res, err := s.places.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := s.placeResponses(r.Context(), q, places)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.WriteHeaders(w.Header(), s.opts.BaseURL, r.URL)
	writeJSON(w, r, http.StatusOK, data)
}

// GetPlace handles GET /api/places/{id}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	s.writePlace(w, r, resourceFrom[domain.Place](r))
}

// UpdatePlace handles PATCH /api/places/{id}.
func (s *Server) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var in domain.PlaceInput
	if err := decodeBody(r, "Place", &in); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.places.Update(r.Context(), actorFrom(r), resourceFrom[domain.Place](r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()
	s.writePlace(w, r, updated)
}

// DeletePlace handles DELETE /api/places/{id}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := s.places.Delete(r.Context(), resourceFrom[domain.Place](r)); err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writePlace(w http.ResponseWriter, r *http.Request, place domain.Place) {
	data, err := s.placeResponses(r.Context(), r.URL.Query(), []domain.Place{place})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, data[0])
}

// placeResponses renders places, embedding their trips for include=trip and
// also the trips' owners for include=trip.user.
func (s *Server) placeResponses(ctx context.Context, q url.Values, places []domain.Place) ([]placeResponse, error) {
	var trips map[int64]tripResponse
	if included(q, "trip") || included(q, "trip.user") {
		ids := make([]int64, 0, len(places))
		for _, p := range places {
			ids = append(ids, p.Trip.ID)
		}
		loaded, err := s.trips.ListByIDs(ctx, uniq(ids))
		if err != nil {
			return nil, err
		}
		rendered, err := s.tripResponses(ctx, q, "trip.", loaded)
		if err != nil {
			return nil, err
		}
		trips = make(map[int64]tripResponse, len(loaded))
		for i, t := range loaded {
			trips[t.ID] = rendered[i]
		}
	}

	data := make([]placeResponse, len(places))
	for i, p := range places {
		var trip *tripResponse
		if t, ok := trips[p.Trip.ID]; ok {
			trip = &t
		}
		data[i] = toPlaceResponse(p, trip)
	}
	return data, nil
}

func toPlaceResponse(p domain.Place, trip *tripResponse) placeResponse {
	return placeResponse{
		ID:          p.APIID,
		Href:        href(domain.PlacesResource, p.APIID),
		Name:        p.Name,
		Description: p.Description,
		Location:    p.Location.GeoJSON(),
		PictureURL:  p.PictureURL,
		TripID:      p.Trip.APIID,
		TripHref:    href(domain.TripsResource, p.Trip.APIID),
		Trip:        trip,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/schema"
)

type userResponse struct {
	ID         uuid.UUID `json:"id"`
	Href       string    `json:"href"`
	Name       string    `json:"name"`
	TripsCount int       `json:"tripsCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateUser handles POST /api/users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeBody(r, "User", &in); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()

	resp := toUserResponse(created)
	w.Header().Set("Location", s.opts.BaseURL+resp.Href)
	writeJSON(w, r, http.StatusCreated, resp)
}

// ListUsers handles GET /api/users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, res, err := s.users.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]userResponse, len(users))
	for i, u := range users {
		data[i] = toUserResponse(u)
	}
	res.WriteHeaders(w.Header(), s.opts.BaseURL, r.URL)
	writeJSON(w, r, http.StatusOK, data)
}

// GetUser handles GET /api/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toUserResponse(resourceFrom[domain.User](r)))
}

// UpdateUser handles PATCH /api/users/{id}.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeBody(r, "User", &in); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.users.Update(r.Context(), resourceFrom[domain.User](r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()
	writeJSON(w, r, http.StatusOK, toUserResponse(updated))
}

// DeleteUser handles DELETE /api/users/{id}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), resourceFrom[domain.User](r)); err != nil {
		writeError(w, r, err)
		return
	}
	s.notifier.Notify()
	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:         u.APIID,
		Href:       href(domain.UsersResource, u.APIID),
		Name:       u.Name,
		TripsCount: u.TripsCount,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// href links to a stored entity. Stored entities always have an external
// id, so the error of schema.Href cannot occur here.
func href(resource string, id uuid.UUID) string {
	h, _ := schema.Href(resource, id)
	return h
}

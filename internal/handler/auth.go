package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

type contextKey int

const (
	actorKey contextKey = iota
	resourceKey
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// CreateToken handles POST /api/auth.
func (s *Server) CreateToken(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeBody(r, "Credentials", &creds); err != nil {
		writeError(w, r, err)
		return
	}

	token, user, err := s.auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tokenResponse{Token: token, User: toUserResponse(user)})
}

// authenticate requires a valid bearer token and stores the user it
// identifies in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, r, domain.NewError(http.StatusUnauthorized, domain.CodeAuthHeaderMissing,
				"Authorization header is missing"))
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeError(w, r, domain.NewError(http.StatusUnauthorized, domain.CodeAuthHeaderMalformed,
				`Authorization header is not a valid bearer token (format must be "Bearer TOKEN")`))
			return
		}

		actor, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// authorize lets the request through only if allowed accepts the
// authenticated user and the resource loaded for the route.
func authorize[T any](allowed func(actor domain.User, resource T) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(actorFrom(r), resourceFrom[T](r)) {
				writeError(w, r, domain.Forbidden())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// actorFrom returns the authenticated user of the request.
func actorFrom(r *http.Request) domain.User {
	actor, _ := r.Context().Value(actorKey).(domain.User)
	return actor
}

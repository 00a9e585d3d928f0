package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash),
// or "*" to allow any origin.
// Allowed methods and headers cover the full REST surface of the API, and the
// pagination and Location headers are exposed to browser clients.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: append([]string{"Location"}, query.Headers...),
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}

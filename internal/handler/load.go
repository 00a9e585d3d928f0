package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// load resolves the {id} URL parameter with get and stores the entity in the
// request context. Ids that are not UUIDs cannot exist and are reported like
// unknown ids.
func load[T any](kind string, get func(ctx context.Context, id uuid.UUID) (T, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, "id")

			// Path parameters are bound with the same runtime the OpenAPI
			// server stubs use, so {id} follows OpenAPI "simple" style rules
			// (required, percent-decoded) before the UUID parse.
			var id openapi_types.UUID
			err := runtime.BindStyledParameterWithOptions("simple", "id", raw, &id,
				runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
			if err != nil {
				writeError(w, r, domain.RecordNotFound(kind, raw))
				return
			}

			entity, err := get(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, r, domain.RecordNotFound(kind, raw))
				return
			} else if err != nil {
				writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resourceKey, entity)))
		})
	}
}

// resourceFrom returns the entity stored by load.
func resourceFrom[T any](r *http.Request) T {
	v, _ := r.Context().Value(resourceKey).(T)
	return v
}

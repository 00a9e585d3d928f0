package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "failed to encode response", "error", err)
	}
}

// requireJSON rejects write requests that do not carry a JSON object.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/json" {
			if contentType == "" {
				contentType = "not specified"
			}
			writeError(w, r, domain.NewError(http.StatusUnsupportedMediaType, domain.CodeWrongRequestFormat,
				"This resource only has an application/json representation, but the content type of the request is "+contentType))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeBody reads a JSON object into dst. Unknown properties are ignored.
// A property of the wrong JSON type is reported as a validation error of
// entity, like any other invalid value.
func decodeBody(r *http.Request, entity string, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.NewError(http.StatusRequestEntityTooLarge, domain.CodeInvalidRequestBody,
				fmt.Sprintf("The request body must not be larger than %d bytes", tooLarge.Limit))
		}
		return fmt.Errorf("handler.decodeBody: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return bodyNotObject()
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			path := jsonPath(dst, typeErr.Field)
			verr := domain.NewValidationError(entity)
			verr.Add(path, "type",
				fmt.Sprintf("Cast to %s failed for value %s at path `%s`", typeErr.Type, typeErr.Value, path), typeErr.Value)
			return verr
		}
		return bodyNotObject()
	}
	return nil
}

// jsonPath maps the field named in a decoding error to its JSON property
// name in dst.
func jsonPath(dst any, field string) string {
	if field == "" {
		return "body"
	}
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(field); ok {
			if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
				return name
			}
		}
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func bodyNotObject() *domain.Error {
	return domain.NewError(http.StatusBadRequest, domain.CodeInvalidRequestBody, "The request body must be a JSON object")
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// writeError renders err as {code, message, ...properties}. Client errors are
// logged at debug level, everything else at warn with the full error chain.
// Only errors marked as exposed reveal their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)

	if status >= 400 && status <= 499 {
		slog.DebugContext(r.Context(), "request failed", "status", status, "error", err)
	} else {
		slog.WarnContext(r.Context(), "request failed", "status", status, "error", err)
	}

	writeJSON(w, r, status, body)
}

func errorBody(err error) (int, map[string]any) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, map[string]any{
			"code":    domain.CodeInvalid,
			"message": verr.Error(),
			"errors":  verr.Errors,
		}
	}

	var apiErr *domain.Error
	if errors.As(err, &apiErr) {
		body := make(map[string]any, len(apiErr.Properties)+2)
		for k, v := range apiErr.Properties {
			body[k] = v
		}
		body["code"] = apiErr.Code
		body["message"] = apiErr.Message
		if !apiErr.Expose {
			body["code"] = domain.CodeUnexpected
			body["message"] = domain.UnexpectedMessage
		}
		return apiErr.Status, body
	}

	return http.StatusInternalServerError, map[string]any{
		"code":    domain.CodeUnexpected,
		"message": domain.UnexpectedMessage,
	}
}

// notFound answers requests that match no route.
func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, domain.NewError(http.StatusNotFound, domain.CodeResourceNotFound,
		"No resource found matching the request URI."))
}

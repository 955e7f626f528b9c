package handler

// RESPONSE HELPERS:
// Every handler finishes with writeJSON or writeError, so the API has one
// success shape per resource and one error shape overall:
//
//	{"error": "not_found", "message": "article not found: how-to-train-your-dragon"}
//
// Validation failures add a per-field map:
//
//	{"error": "validation_error", "message": "...", "errors": {"email": "email can't be blank"}}

import (
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/sakif/conduit/internal/apperror"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`            // machine-readable kind, e.g. "not_found"
	Message string            `json:"message"`          // human-readable description
	Errors  map[string]string `json:"errors,omitempty"` // per-field validation messages
}

// writeJSON sends data as JSON with the given status. render.Status stores
// the status on the request; render.JSON writes headers, status and body in
// that order.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// writeEmpty sends a bodiless success, used by the DELETE endpoints.
func writeEmpty(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// writeError maps a domain error to its HTTP status and sends it.
//
// errors.Is walks the wrap chain, so a service error such as
//
//	fmt.Errorf("service/article: updating %q: %w", slug, apperror.NotFoundOrForbidden(...))
//
// still matches apperror.ErrNotFound and becomes a 404.
//
// Anything that is not an *apperror.AppError is a storage or programming
// failure: it is logged with the request id and the client sees a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("requestID", chimiddleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
		return
	}

	status, kind := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, kind = http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, kind = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	}

	writeJSON(w, r, status, ErrorResponse{
		Error:   kind,
		Message: appErr.Message,
		Errors:  apperror.FieldErrors(appErr),
	})
}
